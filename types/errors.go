package types

import (
	"errors"
	"fmt"
)

// ErrorKind the category of a failure
type ErrorKind string

const (
	// ConfigurationError a required connection setting is missing or invalid
	ConfigurationError ErrorKind = "configuration_error"
	// StoreUnavailable the store cannot be reached or the connection was lost
	StoreUnavailable ErrorKind = "store_unavailable"
	// QueryError the store rejected a query
	QueryError ErrorKind = "query_error"
)

var (
	// ErrConfiguration matches every error of kind ConfigurationError
	ErrConfiguration = errors.New(string(ConfigurationError))
	// ErrStoreUnavailable matches every error of kind StoreUnavailable
	ErrStoreUnavailable = errors.New(string(StoreUnavailable))
	// ErrQuery matches every error of kind QueryError
	ErrQuery = errors.New(string(QueryError))
	// ErrInvalidRecord a film or actor record failed validation
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInvalidArgument a query argument was rejected before reaching the store
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error a store or configuration failure
type Error struct {
	Kind  ErrorKind
	Op    string // the operation that failed, e.g. "ensure film"
	Query string // the offending query text, if any
	Err   error
}

// NewError creates an error of the given kind
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// NewQueryError creates a QueryError carrying the query text
func NewQueryError(op, query string, err error) *Error {
	return &Error{Kind: QueryError, Op: op, Query: query, Err: err}
}

// Error implements error
func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Op)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	if e.Query != "" {
		msg = fmt.Sprintf("%s (query: %s)", msg, e.Query)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the same kind
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Kind == ConfigurationError
	case ErrStoreUnavailable:
		return e.Kind == StoreUnavailable
	case ErrQuery:
		return e.Kind == QueryError
	}
	return false
}

// KindOf returns the kind of err, or "" if err is not an *Error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
