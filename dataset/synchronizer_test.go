package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yaoapp/filmgraph/graph/memory"
	"github.com/yaoapp/filmgraph/types"
)

func prepare(t *testing.T, options ...Option) (*Synchronizer, *memory.Store) {
	t.Helper()
	store := memory.New()
	return NewSynchronizer(store, options...), store
}

func TestNewSynchronizer(t *testing.T) {
	s, _ := prepare(t)
	assert.Equal(t, DefaultDatabase, s.Database())
	assert.Equal(t, 1, s.concurrency)

	s, _ = prepare(t, WithDatabase("films"), WithConcurrency(4), WithDatabase(""), WithConcurrency(0))
	assert.Equal(t, "films", s.Database())
	assert.Equal(t, 4, s.concurrency)
}

func TestEnsureFilmIdempotent(t *testing.T) {
	s, store := prepare(t)
	ctx := context.Background()
	film := types.Film{Name: "Pulp Fiction", Year: 1994}

	require.NoError(t, s.EnsureFilm(ctx, film))
	require.NoError(t, s.EnsureFilm(ctx, film))

	films, _, _ := store.Counts()
	assert.Equal(t, 1, films)

	for _, call := range store.Calls() {
		assert.Equal(t, types.RoutingWrite, call.Routing)
		assert.Equal(t, DefaultDatabase, call.Database)
	}
}

func TestEnsureFilmInvalid(t *testing.T) {
	s, store := prepare(t)
	err := s.EnsureFilm(context.Background(), types.Film{Name: "", Year: 1994})
	assert.ErrorIs(t, err, types.ErrInvalidRecord)
	assert.Empty(t, store.Calls())
}

func TestEnsureActorIdempotent(t *testing.T) {
	s, store := prepare(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.EnsureActor(ctx, "Chris Evans"))
	}
	_, actors, _ := store.Counts()
	assert.Equal(t, 1, actors)

	assert.ErrorIs(t, s.EnsureActor(ctx, "  "), types.ErrInvalidRecord)
}

func TestEnsureAppearanceIdempotent(t *testing.T) {
	s, store := prepare(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureFilm(ctx, types.Film{Name: "Knives Out", Year: 2019}))
	require.NoError(t, s.EnsureActor(ctx, "Daniel Craig"))

	for i := 0; i < 3; i++ {
		linked, err := s.EnsureAppearance(ctx, "Knives Out", 2019, "Daniel Craig")
		require.NoError(t, err)
		assert.True(t, linked)
	}

	_, _, edges := store.Counts()
	assert.Equal(t, 1, edges)
}

func TestEnsureAppearanceMissingEndpoints(t *testing.T) {
	s, store := prepare(t)
	ctx := context.Background()

	linked, err := s.EnsureAppearance(ctx, "Knives Out", 2019, "Daniel Craig")
	require.NoError(t, err)
	assert.False(t, linked)

	// the film exists but under another year
	require.NoError(t, s.EnsureFilm(ctx, types.Film{Name: "Knives Out", Year: 2019}))
	require.NoError(t, s.EnsureActor(ctx, "Daniel Craig"))
	linked, err = s.EnsureAppearance(ctx, "Knives Out", 2020, "Daniel Craig")
	require.NoError(t, err)
	assert.False(t, linked)

	_, _, edges := store.Counts()
	assert.Equal(t, 0, edges)

	_, err = s.EnsureAppearance(ctx, "", 2019, "Daniel Craig")
	assert.ErrorIs(t, err, types.ErrInvalidRecord)
}

func TestSyncDataset(t *testing.T) {
	s, store := prepare(t)
	ctx := context.Background()

	report, err := s.SyncDataset(ctx, Default())
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 4, report.Films)
	assert.Equal(t, 9, report.Actors)
	assert.Equal(t, 12, report.Appearances)
	assert.Equal(t, 13, report.NodesCreated)
	assert.Equal(t, 12, report.RelationshipsCreated)
	assert.Empty(t, report.Unlinked)

	films, err := s.ListAllFilms(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Pulp Fiction", "The Avengers", "Knives Out", "Scott Pilgrim vs. the World"}, films)

	films, err = s.FindFilmsByActor(ctx, "Chris Evans")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"The Avengers", "Knives Out", "Scott Pilgrim vs. the World"}, films)

	films, err = s.FindFilmsByActor(ctx, "John Travolta")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pulp Fiction"}, films)

	films, err = s.FindFilmsByActor(ctx, "Nobody")
	require.NoError(t, err)
	assert.Empty(t, films)

	// a second run changes nothing
	second, err := s.SyncDataset(ctx, Default())
	require.NoError(t, err)
	assert.NotEqual(t, report.RunID, second.RunID)
	assert.Equal(t, 0, second.NodesCreated)
	assert.Equal(t, 0, second.RelationshipsCreated)
	assert.Equal(t, 12, second.Appearances)

	filmCount, actorCount, edgeCount := store.Counts()
	assert.Equal(t, 4, filmCount)
	assert.Equal(t, 9, actorCount)
	assert.Equal(t, 12, edgeCount)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &types.GraphStats{Films: 4, Actors: 9, Appearances: 12}, stats)
}

func TestSyncDatasetOrdering(t *testing.T) {
	s, store := prepare(t)
	_, err := s.SyncDataset(context.Background(), Default())
	require.NoError(t, err)

	// every node upsert precedes the first relationship upsert
	firstLink := -1
	lastNode := -1
	for i, call := range store.Calls() {
		switch call.Query {
		case queryMergeAppearance:
			if firstLink < 0 {
				firstLink = i
			}
		case queryMergeFilm, queryMergeActor:
			lastNode = i
		}
	}
	require.GreaterOrEqual(t, firstLink, 0)
	assert.Less(t, lastNode, firstLink)
}

func TestSyncDatasetConcurrent(t *testing.T) {
	s, store := prepare(t, WithConcurrency(4))
	ctx := context.Background()

	report, err := s.SyncDataset(ctx, Default())
	require.NoError(t, err)
	assert.Equal(t, 4, report.Films)
	assert.Equal(t, 9, report.Actors)
	assert.Equal(t, 12, report.Appearances)

	films, actors, edges := store.Counts()
	assert.Equal(t, 4, films)
	assert.Equal(t, 9, actors)
	assert.Equal(t, 12, edges)
}

func TestSyncDatasetFailFast(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		t.Run(fmt.Sprintf("Concurrency%d", concurrency), func(t *testing.T) {
			s, store := prepare(t, WithConcurrency(concurrency))
			store.FailOn("MERGE (a:Actor", types.NewError(types.StoreUnavailable, "execute query", errors.New("connection reset")))

			report, err := s.SyncDataset(context.Background(), Default())
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrStoreUnavailable)
			assert.Contains(t, err.Error(), "ensure actor")
			require.NotNil(t, report)
			assert.Equal(t, 0, report.Appearances)

			// no relationship was attempted after the failure
			for _, call := range store.Calls() {
				assert.NotEqual(t, queryMergeAppearance, call.Query)
			}
		})
	}
}

func TestSyncDatasetRecoversOnRerun(t *testing.T) {
	s, store := prepare(t)
	ctx := context.Background()
	store.FailOn("MERGE (f)-[:HAS]->(a)", errors.New("lost leader"))

	_, err := s.SyncDataset(ctx, Default())
	assert.ErrorIs(t, err, types.ErrQuery)
	films, actors, edges := store.Counts()
	assert.Equal(t, 4, films)
	assert.Equal(t, 9, actors)
	assert.Equal(t, 0, edges)

	store.FailOn("MERGE (f)-[:HAS]->(a)", nil)
	report, err := s.SyncDataset(ctx, Default())
	require.NoError(t, err)
	assert.Equal(t, 0, report.NodesCreated)
	assert.Equal(t, 12, report.RelationshipsCreated)

	films, actors, edges = store.Counts()
	assert.Equal(t, 4, films)
	assert.Equal(t, 9, actors)
	assert.Equal(t, 12, edges)
}

func TestSyncDatasetInvalid(t *testing.T) {
	s, store := prepare(t)
	films := append(Default(), types.Film{Name: "Broken", Year: 2000, Actors: []string{""}})

	_, err := s.SyncDataset(context.Background(), films)
	assert.ErrorIs(t, err, types.ErrInvalidRecord)
	assert.Empty(t, store.Calls())
}

func TestSyncDatasetDuplicateListings(t *testing.T) {
	s, store := prepare(t)
	films := []types.Film{
		{Name: "Pulp Fiction", Year: 1994, Actors: []string{"Uma Thurman", "Uma Thurman"}},
		{Name: "Pulp Fiction", Year: 1994, Actors: []string{"Uma Thurman"}},
		{Name: "Kill Bill", Year: 2003},
	}

	report, err := s.SyncDataset(context.Background(), films)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Films)
	assert.Equal(t, 1, report.Actors)
	assert.Equal(t, 3, report.Appearances)
	assert.Equal(t, 1, report.RelationshipsCreated)

	filmCount, actorCount, edgeCount := store.Counts()
	assert.Equal(t, 2, filmCount)
	assert.Equal(t, 1, actorCount)
	assert.Equal(t, 1, edgeCount)
}

func TestSyncDatasetDuplicateFilmsConcurrent(t *testing.T) {
	s, store := prepare(t, WithConcurrency(4))
	films := []types.Film{
		{Name: "Pulp Fiction", Year: 1994, Actors: []string{"Uma Thurman"}},
		{Name: "Pulp Fiction", Year: 1994, Actors: []string{"John Travolta"}},
		{Name: "Pulp Fiction", Year: 1994},
	}

	report, err := s.SyncDataset(context.Background(), films)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Films)
	assert.Equal(t, 2, report.Appearances)

	merges := 0
	for _, call := range store.Calls() {
		if strings.HasPrefix(call.Query, "MERGE (f:Film") {
			merges++
		}
	}
	assert.Equal(t, 1, merges)
}

func TestReadsUseReadRouting(t *testing.T) {
	s, store := prepare(t, WithDatabase("films"))
	ctx := context.Background()
	_, err := s.SyncDataset(ctx, Default())
	require.NoError(t, err)
	writes := len(store.Calls())

	_, err = s.ListAllFilms(ctx)
	require.NoError(t, err)
	_, err = s.FindFilmsByActor(ctx, "Chris Evans")
	require.NoError(t, err)
	_, err = s.ConnectedActors(ctx, "Chris Evans")
	require.NoError(t, err)
	_, err = s.ShortestPath(ctx, "John Travolta", "Anna Kendrick")
	require.NoError(t, err)
	_, err = s.RandomActorPair(ctx, DifficultyHard)
	require.NoError(t, err)
	_, err = s.Stats(ctx)
	require.NoError(t, err)

	calls := store.Calls()
	for _, call := range calls[:writes] {
		assert.Equal(t, types.RoutingWrite, call.Routing)
	}
	for _, call := range calls[writes:] {
		assert.Equal(t, types.RoutingRead, call.Routing, call.Query)
		assert.Equal(t, "films", call.Database)
	}
}

func TestEnsureSchema(t *testing.T) {
	s, store := prepare(t)
	require.NoError(t, s.EnsureSchema(context.Background()))
	constraints := store.Constraints()
	require.Len(t, constraints, 2)
	assert.Contains(t, constraints[0], "REQUIRE (f.name, f.year) IS UNIQUE")
	assert.Contains(t, constraints[1], "REQUIRE a.name IS UNIQUE")
}

func TestRunWrapsPlainErrors(t *testing.T) {
	s, store := prepare(t)
	store.FailOn("MATCH (f:Film)", errors.New("syntax error"))

	_, err := s.ListAllFilms(context.Background())
	var storeErr *types.Error
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, types.QueryError, storeErr.Kind)
	assert.Equal(t, "list all films", storeErr.Op)
	assert.Equal(t, queryAllFilms, storeErr.Query)
}
