package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/yaoapp/filmgraph/types"
	"github.com/yaoapp/kun/log"
)

// ExecuteQuery runs a parameterized Cypher query and collects every record.
// An empty database name falls back to the configured database.
func (s *Store) ExecuteQuery(ctx context.Context, query string, params map[string]any, routing types.Routing, database string) (*types.QueryResult, error) {
	s.mu.RLock()
	driver := s.driver
	connected := s.connected
	s.mu.RUnlock()

	if !connected || driver == nil {
		return nil, types.NewError(types.StoreUnavailable, "execute query", fmt.Errorf("store is not connected"))
	}

	if database == "" {
		database = s.Database()
	}

	options := []neo4j.ExecuteQueryConfigurationOption{neo4j.ExecuteQueryWithDatabase(database)}
	if routing == types.RoutingRead {
		options = append(options, neo4j.ExecuteQueryWithReadersRouting())
	} else {
		options = append(options, neo4j.ExecuteQueryWithWritersRouting())
	}

	var result *neo4j.EagerResult
	run := func() error {
		var err error
		result, err = neo4j.ExecuteQuery(ctx, driver, query, params, neo4j.EagerResultTransformer, options...)
		return err
	}

	var err error
	if isSchemaStatement(query) {
		err = executeCriticalOperation(ctx, run)
	} else {
		err = run()
	}
	if err != nil {
		return nil, classifyError("execute query", query, err)
	}

	converted := convertEagerResult(result)
	log.With(log.F{
		"routing":  routing.String(),
		"database": database,
		"records":  len(converted.Records),
		"elapsed":  converted.Summary.ResultAvailableAfter.String(),
	}).Debug("[neo4j] %s", converted.Summary.Query)

	return converted, nil
}

// convertEagerResult converts the driver's eager result to a types.QueryResult
func convertEagerResult(result *neo4j.EagerResult) *types.QueryResult {
	converted := &types.QueryResult{
		Keys:    []string{},
		Records: make([]map[string]any, 0),
	}
	if result == nil {
		return converted
	}

	if result.Keys != nil {
		converted.Keys = result.Keys
	}

	for _, record := range result.Records {
		converted.Records = append(converted.Records, record.AsMap())
	}

	summary := result.Summary
	if summary == nil {
		return converted
	}

	if q := summary.Query(); q != nil {
		converted.Summary.Query = q.Text()
	}
	converted.Summary.ResultAvailableAfter = summary.ResultAvailableAfter()
	converted.Summary.ResultConsumedAfter = summary.ResultConsumedAfter()

	if counters := summary.Counters(); counters != nil {
		converted.Summary.NodesCreated = counters.NodesCreated()
		converted.Summary.RelationshipsCreated = counters.RelationshipsCreated()
		converted.Summary.PropertiesSet = counters.PropertiesSet()
		converted.Summary.ContainsUpdates = counters.ContainsUpdates()
	}

	return converted
}
