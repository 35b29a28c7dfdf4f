package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yaoapp/filmgraph/api"
	"github.com/yaoapp/filmgraph/schedule"
	"github.com/yaoapp/filmgraph/server/http"
	"github.com/yaoapp/filmgraph/types"
	"github.com/yaoapp/kun/log"
)

// ServeCmd serves the HTTP API
type ServeCmd struct {
	Host      string   `help:"Listen host." default:"127.0.0.1"`
	Port      int      `help:"Listen port." default:"5099"`
	Root      string   `help:"API root path." default:"/"`
	Allows    []string `help:"Hosts allowed to call the API from a browser." placeholder:"HOST"`
	CacheSize int      `help:"Read cache entries." default:"256"`
	Resync    string   `help:"Re-run the sync on a cron spec, e.g. \"@every 1h\"." placeholder:"SPEC"`
}

// Run the serve command
func (cmd *ServeCmd) Run(g *Globals) error {
	ctx, cancel := context.WithTimeout(context.Background(), g.Timeout)
	s, err := g.open(ctx, true)
	cancel()
	if err != nil {
		return err
	}
	defer s.close()

	films := s.films
	service, err := api.New(s.synchronizer, func() ([]types.Film, error) { return films, nil }, api.Option{
		Root:      cmd.Root,
		Allows:    cmd.Allows,
		CacheSize: cmd.CacheSize,
		Timeout:   g.Timeout,
	})
	if err != nil {
		return err
	}

	if cmd.Resync != "" {
		sch, err := schedule.New("resync", cmd.Resync, g.Timeout, func(ctx context.Context) error {
			_, err := service.Sync(ctx)
			return err
		})
		if err != nil {
			return types.NewError(types.ConfigurationError, "resync", err)
		}
		sch.Start()
		defer sch.Stop(context.Background())
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	service.SetRoutes(router)

	server := http.New(router, http.Option{Host: cmd.Host, Port: cmd.Port, Timeout: 5 * time.Second})
	stop, cancelSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelSignals()

	return serveUntil(stop, server, func(port int) {
		heading.Fprintf(stdout, "Listening on %s:%d%s\n", cmd.Host, port, cmd.Root)
	})
}

// serveUntil runs the server until ctx is done. A stop requested before the server
// is ready is applied as soon as it becomes ready.
func serveUntil(ctx context.Context, server *http.Server, ready func(port int)) error {
	served := make(chan error, 1)
	go func() { served <- server.Start() }()

	done := ctx.Done()
	stopping := false
	for {
		select {
		case event := <-server.Event():
			if event != http.READY {
				continue
			}
			if stopping {
				if err := server.Stop(); err != nil {
					log.Warn("[filmgraph] stop server: %s", err.Error())
				}
				continue
			}
			port, _ := server.Port()
			ready(port)

		case <-done:
			done = nil
			stopping = true
			log.Info("[filmgraph] shutting down")
			if err := server.Stop(); err != nil {
				log.Debug("[filmgraph] server is not ready yet, stopping once it is: %s", err.Error())
			}

		case err := <-served:
			return err
		}
	}
}

// requestLogger logs every request through kun/log
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		log.With(log.F{
			"status":  c.Writer.Status(),
			"elapsed": time.Since(started).String(),
		}).Debug("[API] %s %s", c.Request.Method, c.Request.URL.RequestURI())
	}
}
