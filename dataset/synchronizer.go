package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yaoapp/filmgraph/types"
	"github.com/yaoapp/kun/log"
)

// DefaultDatabase the database name used when none is configured
const DefaultDatabase = "neo4j"

// Synchronizer keeps a graph store in line with a film dataset
type Synchronizer struct {
	store       types.QueryExecutor
	database    string
	concurrency int
}

// Option configures a Synchronizer
type Option func(*Synchronizer)

// WithDatabase sets the database every query runs against
func WithDatabase(name string) Option {
	return func(s *Synchronizer) {
		if name != "" {
			s.database = name
		}
	}
}

// WithConcurrency sets how many node upserts may run at once during SyncDataset.
// Values above 1 need the uniqueness constraints from EnsureSchema.
func WithConcurrency(n int) Option {
	return func(s *Synchronizer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewSynchronizer creates a synchronizer over the given store
func NewSynchronizer(store types.QueryExecutor, options ...Option) *Synchronizer {
	s := &Synchronizer{
		store:       store,
		database:    DefaultDatabase,
		concurrency: 1,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Database returns the database name queries run against
func (s *Synchronizer) Database() string {
	return s.database
}

// EnsureFilm creates the film node if no node with the same name and year exists
func (s *Synchronizer) EnsureFilm(ctx context.Context, film types.Film) error {
	_, err := s.ensureFilm(ctx, film)
	return err
}

func (s *Synchronizer) ensureFilm(ctx context.Context, film types.Film) (types.QuerySummary, error) {
	if err := film.Validate(); err != nil {
		return types.QuerySummary{}, err
	}
	result, err := s.run(ctx, fmt.Sprintf("ensure film %q", film.Key()), queryMergeFilm, map[string]any{
		"name": film.Name,
		"year": film.Year,
	}, types.RoutingWrite)
	if err != nil {
		return types.QuerySummary{}, err
	}
	return result.Summary, nil
}

// EnsureActor creates the actor node if no node with the same name exists
func (s *Synchronizer) EnsureActor(ctx context.Context, name string) error {
	_, err := s.ensureActor(ctx, name)
	return err
}

func (s *Synchronizer) ensureActor(ctx context.Context, name string) (types.QuerySummary, error) {
	if strings.TrimSpace(name) == "" {
		return types.QuerySummary{}, fmt.Errorf("%w: actor name cannot be empty", types.ErrInvalidRecord)
	}
	result, err := s.run(ctx, fmt.Sprintf("ensure actor %q", name), queryMergeActor, map[string]any{
		"name": name,
	}, types.RoutingWrite)
	if err != nil {
		return types.QuerySummary{}, err
	}
	return result.Summary, nil
}

// EnsureAppearance links an existing film to an existing actor.
// It returns false, without error, when either node is missing.
func (s *Synchronizer) EnsureAppearance(ctx context.Context, filmName string, filmYear int, actorName string) (bool, error) {
	linked, _, err := s.ensureAppearance(ctx, types.Appearance{FilmName: filmName, FilmYear: filmYear, ActorName: actorName})
	return linked, err
}

func (s *Synchronizer) ensureAppearance(ctx context.Context, appearance types.Appearance) (bool, types.QuerySummary, error) {
	if appearance.FilmName == "" || appearance.ActorName == "" {
		return false, types.QuerySummary{}, fmt.Errorf("%w: appearance needs a film and an actor name", types.ErrInvalidRecord)
	}

	op := fmt.Sprintf("ensure appearance %q in %q (%d)", appearance.ActorName, appearance.FilmName, appearance.FilmYear)
	result, err := s.run(ctx, op, queryMergeAppearance, map[string]any{
		"film":  appearance.FilmName,
		"year":  appearance.FilmYear,
		"actor": appearance.ActorName,
	}, types.RoutingWrite)
	if err != nil {
		return false, types.QuerySummary{}, err
	}

	linked := false
	if len(result.Records) > 0 {
		linked = toInt(result.Records[0]["linked"]) > 0
	}

	if !linked {
		log.With(log.F{
			"film":  appearance.FilmName,
			"year":  appearance.FilmYear,
			"actor": appearance.ActorName,
		}).Warn("[dataset] appearance not linked: film or actor node is missing")
	}

	return linked, result.Summary, nil
}

// EnsureSchema creates the uniqueness constraints backing the upserts
func (s *Synchronizer) EnsureSchema(ctx context.Context) error {
	for _, statement := range []string{queryFilmConstraint, queryActorConstraint} {
		if _, err := s.run(ctx, "ensure schema", statement, nil, types.RoutingWrite); err != nil {
			return err
		}
	}
	return nil
}

// run executes a query and tags failures with the operation name
func (s *Synchronizer) run(ctx context.Context, op, query string, params map[string]any, routing types.Routing) (*types.QueryResult, error) {
	result, err := s.store.ExecuteQuery(ctx, query, params, routing, s.database)
	if err != nil {
		var storeErr *types.Error
		if errors.As(err, &storeErr) {
			return nil, &types.Error{Kind: storeErr.Kind, Op: op, Query: query, Err: storeErr.Err}
		}
		return nil, types.NewQueryError(op, query, err)
	}

	if result == nil {
		result = &types.QueryResult{}
	}

	log.Debug("[dataset] the query `%s` returned %d records in %s", result.Summary.Query, len(result.Records), result.Summary.ResultAvailableAfter)
	return result, nil
}

// toInt converts the integer representations returned by drivers and fakes
func toInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
