// Package browse implements paginated message browsing: pages are fetched
// on demand by following the backend cursor and accumulated into one
// selection list.
package browse

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/notionmail/internal/prompt"
	"github.com/nhle/notionmail/internal/query"
	"github.com/nhle/notionmail/internal/source"
	"github.com/nhle/notionmail/internal/theme"
)

// DefaultPageSize is the number of records fetched per page.
const DefaultPageSize = 5

// Messages printed to the user.
const (
	MsgReadError = "Error reading messages"
	msgEmpty     = "%s has no messages"
)

type state int

const (
	stateFetching state = iota
	statePresenting
	stateDone
)

// Options tunes a Browser.
type Options struct {
	Schema   query.Schema
	PageSize int

	// Timeout bounds each query. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// Browser drives browse sessions against a record store.
type Browser struct {
	store  source.RecordStore
	prompt prompt.Prompter
	out    *theme.Printer
	log    *zap.Logger
	opts   Options
}

// New creates a Browser. Zero option fields fall back to the message
// schema and DefaultPageSize.
func New(
	store source.RecordStore,
	p prompt.Prompter,
	out *theme.Printer,
	logger *zap.Logger,
	opts Options,
) *Browser {
	if opts.Schema == nil {
		opts.Schema = query.MessageSchema
	}
	if opts.PageSize < 1 {
		opts.PageSize = DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Browser{
		store:  store,
		prompt: p,
		out:    out,
		log:    logger,
		opts:   opts,
	}
}

// session is the state of one Browse call. choices only grows.
type session struct {
	recipient string
	filter    query.Filter
	cursor    string
	choices   []Choice
	pages     int
}

// Browse lists the messages addressed to recipient under title and returns
// the record the user picked. Backend failures and empty mailboxes are
// reported to the user and end the session with no selection; only prompt
// failures are returned as errors.
func (b *Browser) Browse(ctx context.Context, recipient, title string) (Result, error) {
	s := &session{
		recipient: recipient,
		filter: query.BuildEqualityFilter(
			b.opts.Schema.Column(query.FieldRecipient), query.Equals, recipient,
		),
	}

	var (
		result Result
		err    error
	)
	for st := stateFetching; st != stateDone; {
		switch st {
		case stateFetching:
			st = b.fetch(ctx, s)
		case statePresenting:
			st, result, err = b.present(ctx, s, title)
			if err != nil {
				return Result{}, err
			}
		}
	}
	return result, nil
}

func (b *Browser) fetch(ctx context.Context, s *session) state {
	callCtx, cancel := source.CallContext(ctx, b.opts.Timeout)
	defer cancel()

	page, err := b.store.Query(callCtx, source.Query{
		Filter:   s.filter,
		Cursor:   s.cursor,
		PageSize: b.opts.PageSize,
	})
	if err != nil {
		b.log.Error("query failed",
			zap.String("recipient", s.recipient),
			zap.Int("page", s.pages),
			zap.Bool("transport", source.IsTransportError(err)),
			zap.Int("status", source.StatusCode(err)),
			zap.Error(err),
		)
		b.out.Error(MsgReadError)
		return stateDone
	}

	if len(page.Records) == 0 && s.cursor == "" {
		b.out.Error(fmt.Sprintf(msgEmpty, s.recipient))
		return stateDone
	}

	s.cursor = ""
	if page.HasMore {
		s.cursor = page.NextCursor
	}
	for _, rec := range page.Records {
		s.choices = append(s.choices, recordChoice(b.opts.Schema, rec))
	}
	s.pages++

	b.log.Debug("fetched page",
		zap.String("recipient", s.recipient),
		zap.Int("page", s.pages),
		zap.Int("records", len(page.Records)),
		zap.Bool("has_more", s.cursor != ""),
	)
	return statePresenting
}

func (b *Browser) present(ctx context.Context, s *session, title string) (state, Result, error) {
	choices := s.menu()
	labels := make([]string, len(choices))
	for i, c := range choices {
		labels[i] = c.Label
	}

	idx, err := b.prompt.Select(ctx, title, labels)
	if err != nil {
		return stateDone, Result{}, fmt.Errorf("selecting message: %w", err)
	}
	if idx < 0 || idx >= len(choices) {
		return stateDone, Result{}, fmt.Errorf("selecting message: index %d out of range", idx)
	}

	c := choices[idx]
	if c.Kind == KindLoadMore {
		return stateFetching, Result{}, nil
	}
	return stateDone, Result{Kind: c.Kind, ID: c.ID}, nil
}

// menu is the accumulated records followed by the control entries.
func (s *session) menu() []Choice {
	out := make([]Choice, 0, len(s.choices)+2)
	out = append(out, s.choices...)
	if s.cursor != "" {
		out = append(out, loadMoreChoice())
	}
	return append(out, backChoice())
}
