package neo4j

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yaoapp/filmgraph/types"
)

// getTestConfig returns the integration test configuration, nil if NEO4J_TEST_URL is not set
func getTestConfig() *types.GraphStoreConfig {
	url := os.Getenv("NEO4J_TEST_URL")
	if url == "" {
		return nil
	}
	return &types.GraphStoreConfig{
		URI:      url,
		Username: getEnvOrDefault("NEO4J_TEST_USER", "neo4j"),
		Password: getEnvOrDefault("NEO4J_TEST_PASS", "password"),
		Database: getEnvOrDefault("NEO4J_TEST_DATABASE", DefaultDatabase),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// connectTestStore connects a store or skips the test when no server is available
func connectTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	config := getTestConfig()
	if config == nil {
		t.Skip("NEO4J_TEST_URL environment variable not set")
	}

	store := NewStore()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Connect(ctx, *config); err != nil {
		t.Skipf("Connect failed (Neo4j server might not be running): %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore(t *testing.T) {
	store := NewStore()
	require.NotNil(t, store)
	assert.False(t, store.IsConnected())
	assert.Equal(t, DefaultDatabase, store.Database())
}

func TestConnectValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingURI", func(t *testing.T) {
		err := NewStore().Connect(ctx, types.GraphStoreConfig{Password: "secret"})
		assert.ErrorIs(t, err, types.ErrConfiguration)
		assert.Contains(t, err.Error(), "URI is required")
	})

	t.Run("MissingPassword", func(t *testing.T) {
		err := NewStore().Connect(ctx, types.GraphStoreConfig{URI: "neo4j://localhost:7687"})
		assert.ErrorIs(t, err, types.ErrConfiguration)
		assert.Contains(t, err.Error(), "password is required")
	})

	t.Run("InvalidScheme", func(t *testing.T) {
		err := NewStore().Connect(ctx, types.GraphStoreConfig{URI: "ftp://localhost:7687", Password: "secret"})
		assert.ErrorIs(t, err, types.ErrConfiguration)
	})

	t.Run("Unreachable", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping network test in short mode")
		}
		ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		store := NewStore()
		err := store.Connect(ctx, types.GraphStoreConfig{
			URI:               "bolt://127.0.0.1:1",
			Password:          "secret",
			ConnectionTimeout: time.Second,
		})
		assert.ErrorIs(t, err, types.ErrStoreUnavailable)
		assert.False(t, store.IsConnected())
	})
}

func TestDisconnectNotConnected(t *testing.T) {
	store := NewStore()
	assert.NoError(t, store.Disconnect(context.Background()))
	assert.NoError(t, store.Close())
}

func TestExecuteQueryNotConnected(t *testing.T) {
	store := NewStore()
	_, err := store.ExecuteQuery(context.Background(), "RETURN 1", nil, types.RoutingRead, "")
	assert.ErrorIs(t, err, types.ErrStoreUnavailable)
}

func TestIsSchemaStatement(t *testing.T) {
	assert.True(t, isSchemaStatement("CREATE CONSTRAINT film_key IF NOT EXISTS FOR (f:Film) REQUIRE (f.name, f.year) IS UNIQUE"))
	assert.True(t, isSchemaStatement("\n  create   constraint x IF NOT EXISTS FOR (a:Actor) REQUIRE a.name IS UNIQUE"))
	assert.True(t, isSchemaStatement("DROP INDEX film_name IF EXISTS"))
	assert.False(t, isSchemaStatement("MERGE (f:Film {name: $name, year: $year})"))
	assert.False(t, isSchemaStatement("MATCH (n) RETURN n // CREATE CONSTRAINT"))
}

func TestClassifyError(t *testing.T) {
	query := "MATCH (f:Film) RETURN f.name"

	assert.Nil(t, classifyError("op", query, nil))

	err := classifyError("op", query, &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError", Msg: "Invalid input"})
	assert.ErrorIs(t, err, types.ErrQuery)
	var storeErr *types.Error
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, query, storeErr.Query)

	err = classifyError("op", query, fmt.Errorf("wrapped: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, err, types.ErrStoreUnavailable)

	err = classifyError("op", query, errors.New("something else"))
	assert.ErrorIs(t, err, types.ErrQuery)
}

func TestExecuteCriticalOperation(t *testing.T) {
	var mu sync.Mutex
	running, maxRunning := 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := executeCriticalOperation(context.Background(), func() error {
				mu.Lock()
				running++
				if running > maxRunning {
					maxRunning = running
				}
				mu.Unlock()

				time.Sleep(5 * time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxRunning)

	t.Run("Cancelled", func(t *testing.T) {
		initCriticalOperationSemaphore()
		<-criticalOperationSemaphore
		defer func() { criticalOperationSemaphore <- struct{}{} }()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := executeCriticalOperation(ctx, func() error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestConvertEagerResultNil(t *testing.T) {
	result := convertEagerResult(nil)
	assert.Empty(t, result.Keys)
	assert.Empty(t, result.Records)
}

func TestExecuteQueryIntegration(t *testing.T) {
	store := connectTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const label = "FilmgraphStoreTest"
	cleanup := fmt.Sprintf("MATCH (n:%s) DETACH DELETE n", label)
	_, err := store.ExecuteQuery(ctx, cleanup, nil, types.RoutingWrite, "")
	require.NoError(t, err)
	defer store.ExecuteQuery(context.Background(), cleanup, nil, types.RoutingWrite, "")

	merge := fmt.Sprintf("MERGE (n:%s {name: $name})", label)
	result, err := store.ExecuteQuery(ctx, merge, map[string]any{"name": "first"}, types.RoutingWrite, "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.NodesCreated)
	assert.True(t, result.Summary.ContainsUpdates)
	assert.Equal(t, merge, result.Summary.Query)

	result, err = store.ExecuteQuery(ctx, merge, map[string]any{"name": "first"}, types.RoutingWrite, "")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Summary.NodesCreated)

	result, err = store.ExecuteQuery(ctx, fmt.Sprintf("MATCH (n:%s) RETURN n.name AS name", label), nil, types.RoutingRead, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, result.Keys)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "first", result.Records[0]["name"])

	_, err = store.ExecuteQuery(ctx, "THIS IS NOT CYPHER", nil, types.RoutingRead, "")
	assert.ErrorIs(t, err, types.ErrQuery)
}
