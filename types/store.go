package types

import (
	"context"
	"time"
)

// Routing tells the store whether a query may go to a read replica
type Routing uint8

const (
	// RoutingWrite route to the leader, required for MERGE
	RoutingWrite Routing = iota
	// RoutingRead route to any read replica
	RoutingRead
)

// String implements fmt.Stringer
func (r Routing) String() string {
	if r == RoutingRead {
		return "r"
	}
	return "w"
}

// QueryExecutor executes parameterized queries against a graph store
type QueryExecutor interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]any, routing Routing, database string) (*QueryResult, error)
}

// QueryResult the eager result of a query
type QueryResult struct {
	Keys    []string
	Records []map[string]any
	Summary QuerySummary
}

// QuerySummary metadata about an executed query
type QuerySummary struct {
	Query                string
	ResultAvailableAfter time.Duration
	ResultConsumedAfter  time.Duration
	NodesCreated         int
	RelationshipsCreated int
	PropertiesSet        int
	ContainsUpdates      bool
}

// GraphStoreConfig the graph store connection settings
type GraphStoreConfig struct {
	URI      string `json:"uri"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database,omitempty"`

	MaxConnectionPoolSize int           `json:"max_connection_pool_size,omitempty"`
	ConnectionTimeout     time.Duration `json:"connection_timeout,omitempty"`
}
