package http

import (
	"net"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// CREATED the server instance was created
	CREATED = uint8(iota)
	// STARTING the server instance is starting
	STARTING
	// READY the server instance is ready
	READY
	// CLOSED the server instance was stopped
	CLOSED
)

const (
	// CLOSE close signal
	CLOSE = uint8(iota)
	// ERROR error signal
	ERROR
)

const defaultTimeout = 5 * time.Second

// Option the http server option
type Option struct {
	Port    int           `json:"port,omitempty"`
	Host    string        `json:"host,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty"` // graceful shutdown timeout
}

// Server a gin router bound to a listener
type Server struct {
	router *gin.Engine
	addr   net.Addr
	signal chan uint8
	event  chan uint8
	status uint8
	option *Option
	mu     sync.RWMutex
}
