package neo4j

import (
	"context"
	"errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/yaoapp/filmgraph/types"
)

// classifyError maps a driver error onto the store error taxonomy
func classifyError(op, query string, err error) error {
	if err == nil {
		return nil
	}

	var connErr *neo4j.ConnectivityError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return types.NewError(types.StoreUnavailable, op, err)
	case errors.As(err, &connErr), neo4j.IsConnectivityError(err):
		return types.NewError(types.StoreUnavailable, op, err)
	}

	return types.NewQueryError(op, query, err)
}
