package neo4j

import (
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/yaoapp/filmgraph/types"
)

// DefaultDatabase is the default database name for community edition
const DefaultDatabase = "neo4j"

// Store implements types.QueryExecutor for Neo4j
type Store struct {
	config    types.GraphStoreConfig
	driver    neo4j.DriverWithContext
	connected bool
	mu        sync.RWMutex
}

// NewStore creates a new Neo4j graph store instance
func NewStore() *Store {
	return &Store{}
}

// Database returns the database queries run against when the caller names none
func (s *Store) Database() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config.Database == "" {
		return DefaultDatabase
	}
	return s.config.Database
}
