package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yaoapp/filmgraph/types"
	"github.com/yaoapp/kun/log"
	"golang.org/x/sync/errgroup"
)

// SyncDataset makes the store contain every film, actor and appearance of films.
//
// Films and actors are upserted first; appearances are linked only once every node
// exists. The first failure aborts the run. The returned report covers the work done
// so far, and re-running completes whatever is missing.
func (s *Synchronizer) SyncDataset(ctx context.Context, films []types.Film) (*types.SyncReport, error) {
	report := &types.SyncReport{RunID: uuid.NewString()}
	started := time.Now()
	defer func() { report.Elapsed = time.Since(started) }()

	for _, film := range films {
		if err := film.Validate(); err != nil {
			return report, err
		}
	}

	nodes := distinctFilms(films)
	actors := distinctActors(films)
	logger := log.With(log.F{"run": report.RunID, "films": len(nodes), "actors": len(actors)})
	logger.Info("[dataset] sync started")

	if err := s.syncNodes(ctx, nodes, actors, report); err != nil {
		logger.Error("[dataset] sync aborted: %s", err.Error())
		return report, err
	}

	for _, film := range films {
		for _, appearance := range film.Appearances() {
			linked, summary, err := s.ensureAppearance(ctx, appearance)
			if err != nil {
				logger.Error("[dataset] sync aborted: %s", err.Error())
				return report, err
			}
			report.RelationshipsCreated += summary.RelationshipsCreated
			if !linked {
				report.Unlinked = append(report.Unlinked, appearance)
				continue
			}
			report.Appearances++
		}
	}

	log.With(log.F{
		"run":                   report.RunID,
		"nodes_created":         report.NodesCreated,
		"relationships_created": report.RelationshipsCreated,
		"unlinked":              len(report.Unlinked),
	}).Info("[dataset] sync finished")

	return report, nil
}

// syncNodes upserts every film and actor, sequentially or with bounded parallelism
func (s *Synchronizer) syncNodes(ctx context.Context, films []types.Film, actors []string, report *types.SyncReport) error {
	var mu sync.Mutex
	record := func(summary types.QuerySummary) {
		mu.Lock()
		report.NodesCreated += summary.NodesCreated
		mu.Unlock()
	}

	tasks := make([]func(ctx context.Context) error, 0, len(films)+len(actors))
	for _, film := range films {
		film := film
		tasks = append(tasks, func(ctx context.Context) error {
			summary, err := s.ensureFilm(ctx, film)
			if err != nil {
				return err
			}
			record(summary)
			mu.Lock()
			report.Films++
			mu.Unlock()
			return nil
		})
	}
	for _, actor := range actors {
		actor := actor
		tasks = append(tasks, func(ctx context.Context) error {
			summary, err := s.ensureActor(ctx, actor)
			if err != nil {
				return err
			}
			record(summary)
			mu.Lock()
			report.Actors++
			mu.Unlock()
			return nil
		})
	}

	if s.concurrency <= 1 {
		for _, task := range tasks {
			if err := task(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return task(gctx)
		})
	}
	return g.Wait()
}

// distinctFilms returns every (name, year) once, in order of first listing
func distinctFilms(films []types.Film) []types.Film {
	seen := map[string]bool{}
	distinct := []types.Film{}
	for _, film := range films {
		if seen[film.Key()] {
			continue
		}
		seen[film.Key()] = true
		distinct = append(distinct, film)
	}
	return distinct
}

// distinctActors returns every actor name once, in order of first listing
func distinctActors(films []types.Film) []string {
	seen := map[string]bool{}
	actors := []string{}
	for _, film := range films {
		for _, actor := range film.Actors {
			if seen[actor] {
				continue
			}
			seen[actor] = true
			actors = append(actors, actor)
		}
	}
	return actors
}
