package notion_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notionmail/internal/query"
	"github.com/nhle/notionmail/internal/source"
	"github.com/nhle/notionmail/internal/source/notion"
	"github.com/nhle/notionmail/internal/source/notion/notiontest"
)

func recipientFilter(recipient string) query.Filter {
	return query.BuildEqualityFilter("Recipient", query.Equals, recipient)
}

func TestAdapter_CreateSendsPropertiesToDatabase(t *testing.T) {
	srv := notiontest.New(t)
	store := srv.Adapter()

	props := query.BuildCreatePayload(query.MessageSchema, map[string]string{
		query.FieldSender:    "alice",
		query.FieldRecipient: "bob",
		query.FieldMessage:   "hi",
	})

	rec, err := store.Create(context.Background(), props)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Equal(t, "alice", rec.Get("Sender"))
	assert.Equal(t, "bob", rec.Get("Recipient"))
	assert.Equal(t, "hi", rec.Get("Message"))

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/v1/pages", reqs[0].Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	assert.Equal(t, map[string]any{"database_id": srv.DatabaseID}, body["parent"])
}

func TestAdapter_QueryFollowsCursor(t *testing.T) {
	srv := notiontest.New(t)
	store := srv.Adapter()

	var ids []string
	for _, msg := range []string{"one", "two", "three"} {
		ids = append(ids, srv.Seed("alice", "bob", msg))
	}
	srv.Seed("alice", "carol", "not for bob")

	ctx := context.Background()
	first, err := store.Query(ctx, source.Query{Filter: recipientFilter("bob"), PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first.Records, 2)
	assert.True(t, first.HasMore)
	assert.Equal(t, ids[2], first.NextCursor)
	assert.Equal(t, ids[0], first.Records[0].ID)
	assert.Equal(t, "one", first.Records[0].Get("Message"))

	second, err := store.Query(ctx, source.Query{
		Filter:   recipientFilter("bob"),
		Cursor:   first.NextCursor,
		PageSize: 2,
	})
	require.NoError(t, err)
	require.Len(t, second.Records, 1)
	assert.False(t, second.HasMore)
	assert.Empty(t, second.NextCursor)
	assert.Equal(t, ids[2], second.Records[0].ID)

	var body map[string]any
	require.NoError(t, json.Unmarshal(srv.Requests()[1].Body, &body))
	assert.Equal(t, first.NextCursor, body["start_cursor"])
	assert.Equal(t, float64(2), body["page_size"])
	assert.Equal(t, map[string]any{
		"property":  "Recipient",
		"rich_text": map[string]any{"equals": "bob"},
	}, body["filter"])
}

func TestAdapter_QueryEmpty(t *testing.T) {
	srv := notiontest.New(t)

	page, err := srv.Adapter().Query(context.Background(), source.Query{Filter: recipientFilter("nobody"), PageSize: 5})
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.False(t, page.HasMore)
}

func TestAdapter_ArchiveHidesRecord(t *testing.T) {
	srv := notiontest.New(t)
	store := srv.Adapter()
	id := srv.Seed("alice", "bob", "hi")

	require.NoError(t, store.Archive(context.Background(), id))

	p, ok := srv.Page(id)
	require.True(t, ok)
	assert.True(t, p.Archived)

	page, err := store.Query(context.Background(), source.Query{Filter: recipientFilter("bob")})
	require.NoError(t, err)
	assert.Empty(t, page.Records)
}

func TestAdapter_ArchiveUnknownPage(t *testing.T) {
	srv := notiontest.New(t)

	err := srv.Adapter().Archive(context.Background(), "59833787-2cf9-4fdf-8782-e53db20768a5")
	require.Error(t, err)

	var apiErr *source.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "object_not_found", apiErr.Code)
}

func TestPropertyValue_PlainText(t *testing.T) {
	tests := []struct {
		name string
		v    notion.PropertyValue
		want string
	}{
		{
			name: "title spans",
			v: notion.PropertyValue{Type: "title", Title: []notion.RichText{
				{PlainText: "hello "}, {PlainText: "world"},
			}},
			want: "hello world",
		},
		{
			name: "rich text falls back to content",
			v: notion.PropertyValue{Type: "rich_text", RichText: []notion.RichText{
				{Text: &notion.TextSpan{Content: "alice"}},
			}},
			want: "alice",
		},
		{
			name: "no spans",
			v:    notion.PropertyValue{Type: "rich_text"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.PlainText())
		})
	}
}
