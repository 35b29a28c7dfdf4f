package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yaoapp/kun/log"
)

// New create a new http server
func New(router *gin.Engine, option Option) *Server {
	if option.Timeout == 0 {
		option.Timeout = defaultTimeout
	}

	return &Server{
		router: router,
		option: &option,
		signal: make(chan uint8, 1),
		event:  make(chan uint8, 4),
		status: CREATED,
	}
}

// Event get event signal: READY once listening, CLOSE once stopped, ERROR if listening failed
func (server *Server) Event() chan uint8 {
	return server.event
}

// Port get the port the server listens on
func (server *Server) Port() (int, error) {
	server.mu.RLock()
	defer server.mu.RUnlock()
	addr, ok := server.addr.(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("can't get port %v", server.addr)
	}
	return addr.Port, nil
}

// Ready check if the status is ready
func (server *Server) Ready() bool {
	return server.getStatus() == READY
}

// Start listens and serves until Stop is called. It blocks.
func (server *Server) Start() error {
	server.mu.Lock()
	switch server.status {
	case READY:
		server.mu.Unlock()
		return fmt.Errorf("server already started")
	case STARTING:
		server.mu.Unlock()
		return fmt.Errorf("server is starting")
	}
	server.status = STARTING
	server.mu.Unlock()

	addr := fmt.Sprintf("%s:%d", server.option.Host, server.option.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("[Server] %s %s", addr, err.Error())
		server.setStatus(CREATED)
		server.emit(ERROR)
		return err
	}

	server.mu.Lock()
	server.addr = listener.Addr()
	server.mu.Unlock()

	srv := &http.Server{Handler: server.router, ReadHeaderTimeout: server.option.Timeout}
	served := make(chan error, 1)
	go func() { served <- srv.Serve(listener) }()

	server.setStatus(READY)
	server.emit(READY)
	log.Info("[Server] %s is ready", listener.Addr().String())

	select {
	case <-server.signal:
		ctx, cancel := context.WithTimeout(context.Background(), server.option.Timeout)
		defer cancel()
		err = srv.Shutdown(ctx)
		if err != nil {
			log.Error("[Server] %s shutdown %s", listener.Addr().String(), err.Error())
			srv.Close()
		}

	case err = <-served:
		log.Error("[Server] %s %s", listener.Addr().String(), err.Error())
	}

	server.setStatus(CLOSED)
	server.emit(CLOSE)
	log.Info("[Server] %s was closed", listener.Addr().String())

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop a http server
func (server *Server) Stop() error {
	if !server.Ready() {
		return fmt.Errorf("server is not ready")
	}
	select {
	case server.signal <- CLOSE:
	default:
	}
	return nil
}

// With middlewares
func (server *Server) With(middlewares ...gin.HandlerFunc) *Server {
	server.router.Use(middlewares...)
	return server
}

func (server *Server) emit(event uint8) {
	select {
	case server.event <- event:
	default:
		log.Warn("[Server] event %d dropped", event)
	}
}

func (server *Server) getStatus() uint8 {
	server.mu.RLock()
	defer server.mu.RUnlock()
	return server.status
}

func (server *Server) setStatus(status uint8) {
	server.mu.Lock()
	defer server.mu.Unlock()
	server.status = status
}
