package main

import (
	"context"
	"fmt"

	"github.com/yaoapp/filmgraph/dataset"
)

// SyncCmd synchronizes the dataset, then lists every film and the films of one actor
type SyncCmd struct {
	Actor  string `arg:"" optional:"" default:"Chris Evans" help:"Actor whose films are listed after the sync."`
	Schema bool   `help:"Create the uniqueness constraints before syncing."`
}

// Run the sync command
func (cmd *SyncCmd) Run(g *Globals) error {
	return g.withTimeout(false, func(ctx context.Context, s *session) error {
		if cmd.Schema {
			if err := s.synchronizer.EnsureSchema(ctx); err != nil {
				return err
			}
		}

		report, err := s.synchronizer.SyncDataset(ctx, s.films)
		if err != nil {
			return err
		}
		printReport(report)

		films, err := s.synchronizer.ListAllFilms(ctx)
		if err != nil {
			return err
		}
		printList("Listing all films in database", films)
		printSeparator()

		films, err = s.synchronizer.FindFilmsByActor(ctx, cmd.Actor)
		if err != nil {
			return err
		}
		printList(fmt.Sprintf("Finding all films in database with %s:", cmd.Actor), films)
		return nil
	})
}

// FilmsCmd lists every film
type FilmsCmd struct{}

// Run the films command
func (cmd *FilmsCmd) Run(g *Globals) error {
	return g.withTimeout(true, func(ctx context.Context, s *session) error {
		films, err := s.synchronizer.ListAllFilms(ctx)
		if err != nil {
			return err
		}
		printList("Listing all films in database", films)
		return nil
	})
}

// ActorCmd lists the films of an actor
type ActorCmd struct {
	Name string `arg:"" help:"Actor name."`
}

// Run the actor command
func (cmd *ActorCmd) Run(g *Globals) error {
	return g.withTimeout(true, func(ctx context.Context, s *session) error {
		films, err := s.synchronizer.FindFilmsByActor(ctx, cmd.Name)
		if err != nil {
			return err
		}
		printList(fmt.Sprintf("Finding all films in database with %s:", cmd.Name), films)
		return nil
	})
}

// ConnectedCmd lists the co-stars of an actor
type ConnectedCmd struct {
	Name string `arg:"" help:"Actor name."`
}

// Run the connected command
func (cmd *ConnectedCmd) Run(g *Globals) error {
	return g.withTimeout(true, func(ctx context.Context, s *session) error {
		connections, err := s.synchronizer.ConnectedActors(ctx, cmd.Name)
		if err != nil {
			return err
		}
		printConnections(cmd.Name, connections)
		return nil
	})
}

// PathCmd finds the shortest chain of films between two actors
type PathCmd struct {
	From string `arg:"" help:"Start actor."`
	To   string `arg:"" help:"End actor."`
}

// Run the path command
func (cmd *PathCmd) Run(g *Globals) error {
	return g.withTimeout(true, func(ctx context.Context, s *session) error {
		path, err := s.synchronizer.ShortestPath(ctx, cmd.From, cmd.To)
		if err != nil {
			return err
		}
		if path == nil {
			return fmt.Errorf("no path between %s and %s", cmd.From, cmd.To)
		}
		printPath(path)
		return nil
	})
}

// RandomCmd picks two connected actors
type RandomCmd struct {
	Difficulty string `arg:"" optional:"" default:"easy" enum:"easy,hard" help:"easy picks actors with two or more films, hard any actor."`
}

// Run the random command
func (cmd *RandomCmd) Run(g *Globals) error {
	difficulty, err := dataset.ParseDifficulty(cmd.Difficulty)
	if err != nil {
		return err
	}
	return g.withTimeout(true, func(ctx context.Context, s *session) error {
		pair, err := s.synchronizer.RandomActorPair(ctx, difficulty)
		if err != nil {
			return err
		}
		if pair == nil {
			return fmt.Errorf("no connected actors for difficulty %s", difficulty)
		}
		printList("Connect these actors:", []string{pair.First.Name, pair.Second.Name})
		return nil
	})
}

// StatsCmd counts the graph
type StatsCmd struct{}

// Run the stats command
func (cmd *StatsCmd) Run(g *Globals) error {
	return g.withTimeout(true, func(ctx context.Context, s *session) error {
		stats, err := s.synchronizer.Stats(ctx)
		if err != nil {
			return err
		}
		printStats(stats)
		return nil
	})
}

// SchemaCmd creates the uniqueness constraints
type SchemaCmd struct{}

// Run the schema command
func (cmd *SchemaCmd) Run(g *Globals) error {
	return g.withTimeout(false, func(ctx context.Context, s *session) error {
		if err := s.synchronizer.EnsureSchema(ctx); err != nil {
			return err
		}
		heading.Fprintln(stdout, "Constraints film_name_year and actor_name are in place")
		return nil
	})
}
