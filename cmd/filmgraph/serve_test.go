package main

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yaoapp/filmgraph/server/http"
)

func serveAsync(ctx context.Context, server *http.Server, ready func(port int)) chan error {
	errs := make(chan error, 1)
	go func() { errs <- serveUntil(ctx, server, ready) }()
	return errs
}

func TestServeUntilInterrupted(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	server := http.New(gin.New(), http.Option{Host: "127.0.0.1", Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	ports := make(chan int, 1)
	errs := serveAsync(ctx, server, func(port int) { ports <- port })

	select {
	case port := <-ports:
		assert.Greater(t, port, 0)
	case <-time.After(5 * time.Second):
		t.Fatal("server never became ready")
	}

	cancel()
	select {
	case err := <-errs:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.False(t, server.Ready())
}

func TestServeUntilInterruptedBeforeReady(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	server := http.New(gin.New(), http.Option{Host: "127.0.0.1", Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	errs := serveAsync(ctx, server, func(int) {})

	select {
	case err := <-errs:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after an early interrupt")
	}
	assert.False(t, server.Ready())
}
