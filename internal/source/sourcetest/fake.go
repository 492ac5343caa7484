// Package sourcetest provides a scripted source.RecordStore for tests.
package sourcetest

import (
	"context"
	"errors"
	"sync"

	"github.com/nhle/notionmail/internal/query"
	"github.com/nhle/notionmail/internal/source"
)

// ErrUnscripted is returned by Query when no response is queued.
var ErrUnscripted = errors.New("sourcetest: no scripted query response")

type queryResponse struct {
	page *source.Page
	err  error
}

// Store replays queued query responses and records every call.
type Store struct {
	mu sync.Mutex

	responses []queryResponse

	// CreateErr and ArchiveErr, when set, fail the matching call.
	CreateErr  error
	ArchiveErr error

	Queries  []source.Query
	Created  []query.Properties
	Archived []string
}

var _ source.RecordStore = (*Store)(nil)

// New creates an empty fake store.
func New() *Store {
	return &Store{}
}

// Page queues a successful query response.
func (s *Store) Page(hasMore bool, nextCursor string, records ...source.Record) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, queryResponse{page: &source.Page{
		Records:    records,
		HasMore:    hasMore,
		NextCursor: nextCursor,
	}})
	return s
}

// Fail queues a failed query response.
func (s *Store) Fail(err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, queryResponse{err: err})
	return s
}

// Message builds a record laid out by query.MessageSchema.
func Message(id, sender, recipient, body string) source.Record {
	return source.Record{
		ID: id,
		Properties: map[string]string{
			query.MessageSchema.Column(query.FieldSender):    sender,
			query.MessageSchema.Column(query.FieldRecipient): recipient,
			query.MessageSchema.Column(query.FieldMessage):   body,
		},
	}
}

// Create implements source.RecordStore.
func (s *Store) Create(ctx context.Context, props query.Properties) (*source.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Created = append(s.Created, props)
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	return &source.Record{ID: "created"}, nil
}

// Query implements source.RecordStore.
func (s *Store) Query(ctx context.Context, q source.Query) (*source.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Queries = append(s.Queries, q)
	if len(s.responses) == 0 {
		return nil, ErrUnscripted
	}
	r := s.responses[0]
	s.responses = s.responses[1:]
	return r.page, r.err
}

// Archive implements source.RecordStore.
func (s *Store) Archive(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Archived = append(s.Archived, id)
	return s.ArchiveErr
}
