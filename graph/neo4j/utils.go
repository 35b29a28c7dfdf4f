package neo4j

import (
	"context"
	"strings"
	"sync"
)

// Global semaphore to serialize schema operations
var criticalOperationSemaphore = make(chan struct{}, 1)
var criticalOperationOnce sync.Once

func initCriticalOperationSemaphore() {
	criticalOperationOnce.Do(func() {
		criticalOperationSemaphore <- struct{}{}
	})
}

// executeCriticalOperation runs operation while holding the process-wide schema token.
// Concurrent constraint creation on the same label deadlocks on some Neo4j versions.
func executeCriticalOperation(ctx context.Context, operation func() error) error {
	initCriticalOperationSemaphore()

	select {
	case <-criticalOperationSemaphore:
	case <-ctx.Done():
		return ctx.Err()
	}

	defer func() {
		criticalOperationSemaphore <- struct{}{}
	}()

	return operation()
}

var schemaPrefixes = []string{
	"CREATE CONSTRAINT", "DROP CONSTRAINT",
	"CREATE INDEX", "DROP INDEX",
	"CREATE RANGE INDEX", "CREATE TEXT INDEX", "CREATE FULLTEXT INDEX",
}

// isSchemaStatement reports whether query changes the schema
func isSchemaStatement(query string) bool {
	normalized := strings.ToUpper(strings.Join(strings.Fields(query), " "))
	for _, prefix := range schemaPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}
	return false
}
