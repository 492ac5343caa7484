package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/notionmail/internal/query"
)

// AuthError indicates that the backend rejected the credentials.
// It is returned by clients when a 401 response is received.
type AuthError struct {
	Backend string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Backend, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// APIError is a request that reached the backend and was answered with an
// error status.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Op         string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: backend error %d (%s): %s", e.Op, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: backend error %d: %s", e.Op, e.StatusCode, e.Message)
}

// TransportError is a request that never completed: no response was received.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: no response received: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err (or any error in its chain) is a
// TransportError.
func IsTransportError(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

// StatusCode returns the backend status carried by err, or 0 when the error
// did not come from a backend response.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	if IsAuthError(err) {
		return 401
	}
	return 0
}

// Record is a stored row. Properties holds the plain text of each column.
type Record struct {
	ID         string
	CreatedAt  time.Time
	Properties map[string]string
}

// Get returns the plain text of column, or "" if absent.
func (r Record) Get(column string) string {
	return r.Properties[column]
}

// Query is a single page request against the table.
type Query struct {
	Filter query.Filter

	// Cursor resumes a previous query. Empty requests the first page.
	// A cursor is only valid together with the filter that produced it.
	Cursor string

	PageSize int
}

// Page is one batch of query results.
type Page struct {
	Records    []Record
	HasMore    bool
	NextCursor string
}

// RecordStore is the hosted table messages live in.
type RecordStore interface {
	// Create adds a record with the given properties.
	Create(ctx context.Context, props query.Properties) (*Record, error)

	// Query fetches one page of records matching q.Filter.
	Query(ctx context.Context, q Query) (*Page, error)

	// Archive removes a record from query results.
	Archive(ctx context.Context, id string) error
}

// CallContext bounds a single backend call. A zero timeout leaves ctx as is.
func CallContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
