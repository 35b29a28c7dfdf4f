package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/yaoapp/filmgraph/config"
	"github.com/yaoapp/filmgraph/dataset"
	"github.com/yaoapp/filmgraph/graph/memory"
	"github.com/yaoapp/filmgraph/graph/neo4j"
	"github.com/yaoapp/filmgraph/types"
	"github.com/yaoapp/kun/log"
)

// stdout the command output
var stdout io.Writer = os.Stdout

// Globals flags shared by every command
type Globals struct {
	Credentials string        `help:"Credentials file in dotenv format. Defaults to credentials.txt if present." placeholder:"FILE"`
	Dataset     string        `help:"Dataset file (.yaml, .yml or .json). Defaults to the built-in films." placeholder:"FILE"`
	Database    string        `help:"Database name, overrides NEO4J_DATABASE."`
	Timeout     time.Duration `help:"Timeout of a command, or of each request when serving." default:"30s"`
	Concurrency int           `help:"Node upserts running at once during a sync. Above 1 needs the schema command first." default:"1"`
	Memory      bool          `help:"Use an in-memory graph seeded with the dataset instead of Neo4j."`
	LogLevel    string        `help:"Log level (trace, debug, info, warn, error), overrides FILMGRAPH_LOG_LEVEL." placeholder:"LEVEL"`
}

// CLI the filmgraph command line
type CLI struct {
	Globals

	Sync      SyncCmd      `cmd:"" help:"Synchronize the dataset into the graph, then list the films."`
	Films     FilmsCmd     `cmd:"" help:"List every film."`
	Actor     ActorCmd     `cmd:"" help:"List the films of an actor."`
	Connected ConnectedCmd `cmd:"" help:"List the co-stars of an actor."`
	Path      PathCmd      `cmd:"" help:"Find the shortest chain of films linking two actors."`
	Random    RandomCmd    `cmd:"" help:"Pick two connected actors."`
	Stats     StatsCmd     `cmd:"" help:"Count films, actors and appearances."`
	Schema    SchemaCmd    `cmd:"" help:"Create the uniqueness constraints on Film and Actor."`
	Serve     ServeCmd     `cmd:"" help:"Serve the HTTP API."`
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("filmgraph"),
		kong.Description("Keep a Neo4j film graph in sync with a dataset and query it."),
		kong.UsageOnError(),
	)

	if err := ctx.Run(&cli.Globals); err != nil {
		log.With(log.F{"kind": types.KindOf(err)}).Error("[filmgraph] %s %s", ctx.Command(), err.Error())
		color.New(color.FgRed).Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}
}

// session an open synchronizer and the dataset it applies
type session struct {
	synchronizer *dataset.Synchronizer
	films        []types.Film
	close        func()
}

// open loads the dataset and connects the store. In memory mode the graph is seeded when seed is set.
func (g *Globals) open(ctx context.Context, seed bool) (*session, error) {
	films, err := g.loadDataset()
	if err != nil {
		return nil, err
	}

	if g.Memory {
		if err := g.setLogLevel(config.LogLevel()); err != nil {
			return nil, err
		}
		s := &session{
			synchronizer: dataset.NewSynchronizer(memory.New(), dataset.WithDatabase(g.Database), dataset.WithConcurrency(g.Concurrency)),
			films:        films,
			close:        func() {},
		}
		if seed {
			if _, err := s.synchronizer.SyncDataset(ctx, films); err != nil {
				return nil, err
			}
		}
		return s, nil
	}

	cfg, err := config.Load(g.Credentials)
	if err != nil {
		return nil, err
	}
	if err := g.setLogLevel(cfg.App.LogLevel); err != nil {
		return nil, err
	}

	storeConfig := cfg.StoreConfig()
	if g.Database != "" {
		storeConfig.Database = g.Database
	}

	store := neo4j.NewStore()
	if err := store.Connect(ctx, storeConfig); err != nil {
		return nil, err
	}

	return &session{
		synchronizer: dataset.NewSynchronizer(store, dataset.WithDatabase(store.Database()), dataset.WithConcurrency(g.Concurrency)),
		films:        films,
		close: func() {
			if err := store.Close(); err != nil {
				log.Warn("[filmgraph] close store: %s", err.Error())
			}
		},
	}, nil
}

func (g *Globals) loadDataset() ([]types.Film, error) {
	if g.Dataset == "" {
		return dataset.Default(), nil
	}
	films, err := dataset.Load(g.Dataset)
	if err != nil {
		return nil, types.NewError(types.ConfigurationError, "load dataset", err)
	}
	return films, nil
}

// setLogLevel applies --log-level, falling back to the configured level
func (g *Globals) setLogLevel(configured string) error {
	name := configured
	if g.LogLevel != "" {
		name = g.LogLevel
	}
	level, err := config.ParseLevel(name)
	if err != nil {
		return types.NewError(types.ConfigurationError, "log level", err)
	}
	log.SetLevel(level)
	return nil
}

// withTimeout runs fn with a session bounded by --timeout
func (g *Globals) withTimeout(seed bool, fn func(ctx context.Context, s *session) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), g.Timeout)
	defer cancel()

	s, err := g.open(ctx, seed)
	if err != nil {
		return err
	}
	defer s.close()

	return fn(ctx, s)
}
