package notion

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nhle/notionmail/internal/query"
	"github.com/nhle/notionmail/internal/source"
)

// MaxPageSize is the largest page the API returns.
const MaxPageSize = 100

// Adapter implements source.RecordStore on top of a single Notion database.
type Adapter struct {
	client     *Client
	databaseID string
}

var _ source.RecordStore = (*Adapter)(nil)

// NewAdapter creates a record store for the database with the given id.
func NewAdapter(client *Client, databaseID string) *Adapter {
	return &Adapter{
		client:     client,
		databaseID: databaseID,
	}
}

// Create adds a page to the database.
func (a *Adapter) Create(
	ctx context.Context,
	props query.Properties,
) (*source.Record, error) {
	body := CreatePageRequest{
		Parent:     Parent{DatabaseID: a.databaseID},
		Properties: props,
	}

	var page Page
	if err := a.client.Post(ctx, "/v1/pages", body, &page); err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}

	rec := pageToRecord(page)
	return &rec, nil
}

// Query fetches one page of database rows matching the filter.
func (a *Adapter) Query(
	ctx context.Context,
	q source.Query,
) (*source.Page, error) {
	pageSize := q.PageSize
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	body := QueryRequest{
		Filter:      q.Filter,
		StartCursor: q.Cursor,
		PageSize:    pageSize,
	}

	path := "/v1/databases/" + url.PathEscape(a.databaseID) + "/query"

	var resp QueryResponse
	if err := a.client.Post(ctx, path, body, &resp); err != nil {
		return nil, fmt.Errorf("querying database: %w", err)
	}

	records := make([]source.Record, 0, len(resp.Results))
	for _, p := range resp.Results {
		records = append(records, pageToRecord(p))
	}

	out := &source.Page{
		Records: records,
		HasMore: resp.HasMore,
	}
	if resp.HasMore && resp.NextCursor != nil {
		out.NextCursor = *resp.NextCursor
	}
	return out, nil
}

// Archive moves a page to the trash.
func (a *Adapter) Archive(ctx context.Context, id string) error {
	path := "/v1/pages/" + url.PathEscape(id)
	if err := a.client.Patch(ctx, path, UpdatePageRequest{Archived: true}, nil); err != nil {
		return fmt.Errorf("archiving page %s: %w", id, err)
	}
	return nil
}

// pageToRecord flattens a page into plain text per column.
func pageToRecord(p Page) source.Record {
	rec := source.Record{
		ID:         p.ID,
		Properties: make(map[string]string, len(p.Properties)),
	}
	if t, err := time.Parse(time.RFC3339, p.CreatedTime); err == nil {
		rec.CreatedAt = t
	}
	for column, v := range p.Properties {
		rec.Properties[column] = v.PlainText()
	}
	return rec
}

// PlainText concatenates the spans of a text-like property.
func (v PropertyValue) PlainText() string {
	spans := v.RichText
	if v.Type == string(query.KindTitle) {
		spans = v.Title
	}

	var b strings.Builder
	for _, s := range spans {
		switch {
		case s.PlainText != "":
			b.WriteString(s.PlainText)
		case s.Text != nil:
			b.WriteString(s.Text.Content)
		}
	}
	return b.String()
}
