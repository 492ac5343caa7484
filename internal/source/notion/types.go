package notion

import "github.com/nhle/notionmail/internal/query"

// Parent identifies the database a page is created in.
type Parent struct {
	DatabaseID string `json:"database_id"`
}

// CreatePageRequest is the body of POST /v1/pages.
type CreatePageRequest struct {
	Parent     Parent           `json:"parent"`
	Properties query.Properties `json:"properties"`
}

// QueryRequest is the body of POST /v1/databases/{id}/query.
type QueryRequest struct {
	Filter      query.Filter `json:"filter"`
	StartCursor string       `json:"start_cursor,omitempty"`
	PageSize    int          `json:"page_size,omitempty"`
}

// UpdatePageRequest is the body of PATCH /v1/pages/{id}.
type UpdatePageRequest struct {
	Archived bool `json:"archived"`
}

// QueryResponse is a paginated list of pages.
type QueryResponse struct {
	Object     string  `json:"object"`
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// Page is a database row.
type Page struct {
	Object      string                   `json:"object"`
	ID          string                   `json:"id"`
	CreatedTime string                   `json:"created_time"`
	Archived    bool                     `json:"archived"`
	Properties  map[string]PropertyValue `json:"properties"`
}

// PropertyValue holds a column value. Only text-like kinds are decoded.
type PropertyValue struct {
	ID       string     `json:"id,omitempty"`
	Type     string     `json:"type"`
	RichText []RichText `json:"rich_text,omitempty"`
	Title    []RichText `json:"title,omitempty"`
}

// RichText is a text span as returned by the API.
type RichText struct {
	Type      string    `json:"type,omitempty"`
	PlainText string    `json:"plain_text,omitempty"`
	Text      *TextSpan `json:"text,omitempty"`
}

// TextSpan is the text content of a rich text span.
type TextSpan struct {
	Content string `json:"content"`
}

// ErrorResponse is the error body returned by the API.
type ErrorResponse struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
