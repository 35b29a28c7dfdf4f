package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/yaoapp/filmgraph/types"
	"github.com/yaoapp/kun/log"
)

// Connect establishes connection to Neo4j server
func (s *Store) Connect(ctx context.Context, config types.GraphStoreConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return nil
	}

	if config.URI == "" {
		return types.NewError(types.ConfigurationError, "connect", fmt.Errorf("database URI is required"))
	}

	username := config.Username
	if username == "" {
		username = "neo4j"
	}

	if config.Password == "" {
		return types.NewError(types.ConfigurationError, "connect", fmt.Errorf("password is required"))
	}

	auth := neo4j.BasicAuth(username, config.Password, "")
	driver, err := neo4j.NewDriverWithContext(config.URI, auth, func(c *neo4j.Config) {
		c.Log = newDriverLogger()
		if config.MaxConnectionPoolSize > 0 {
			c.MaxConnectionPoolSize = config.MaxConnectionPoolSize
		}
		if config.ConnectionTimeout > 0 {
			c.SocketConnectTimeout = config.ConnectionTimeout
			c.ConnectionAcquisitionTimeout = config.ConnectionTimeout
		}
	})
	if err != nil {
		return types.NewError(types.ConfigurationError, "create driver", err)
	}

	// Fail early rather than on the first query
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return types.NewError(types.StoreUnavailable, "verify connectivity", err)
	}

	s.config = config
	s.driver = driver
	s.connected = true

	log.With(log.F{"uri": config.URI, "database": config.Database}).Info("[neo4j] connected")
	return nil
}

// Disconnect closes the connection to Neo4j server
func (s *Store) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil
	}

	if s.driver != nil {
		if err := s.driver.Close(ctx); err != nil {
			return fmt.Errorf("failed to close Neo4j driver: %w", err)
		}
	}

	s.connected = false
	s.config = types.GraphStoreConfig{}
	s.driver = nil

	log.Info("[neo4j] disconnected")
	return nil
}

// IsConnected returns whether the store is connected
func (s *Store) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Close closes the connection and cleans up resources
func (s *Store) Close() error {
	return s.Disconnect(context.Background())
}
