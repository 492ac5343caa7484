// Package notiontest runs an in-memory stand-in for the Notion database
// endpoints used by the mail client.
package notiontest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/notionmail/internal/source/notion"
)

// Token is the integration token the server accepts.
const Token = "secret_test_token"

// Request is a request the server received.
type Request struct {
	Method string
	Path   string
	Body   []byte
}

type failure struct {
	status  int
	code    string
	message string
}

// Server is a fake Notion API bound to one database.
type Server struct {
	*httptest.Server

	DatabaseID string

	mu       sync.Mutex
	pages    []*notion.Page
	requests []Request
	failures []failure
	stalls   int
	now      func() time.Time
}

// New starts a server and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		DatabaseID: uuid.NewString(),
		now:        time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/pages", s.handleCreate)
	mux.HandleFunc("POST /v1/databases/{id}/query", s.handleQuery)
	mux.HandleFunc("PATCH /v1/pages/{id}", s.handleUpdate)

	s.Server = httptest.NewServer(s.authenticate(mux))
	t.Cleanup(s.Close)
	return s
}

// Client returns an API client pointed at the server.
func (s *Server) Client(opts ...notion.ClientOption) *notion.Client {
	opts = append([]notion.ClientOption{
		notion.WithBaseURL(s.URL),
		notion.WithMaxRetries(0),
	}, opts...)
	return notion.NewClient(Token, opts...)
}

// Adapter returns a record store backed by the server.
func (s *Server) Adapter(opts ...notion.ClientOption) *notion.Adapter {
	return notion.NewAdapter(s.Client(opts...), s.DatabaseID)
}

// Seed inserts a message row and returns its id. Rows are returned by
// queries in insertion order.
func (s *Server) Seed(sender, recipient, message string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := &notion.Page{
		Object:      "page",
		ID:          uuid.NewString(),
		CreatedTime: s.now().UTC().Format(time.RFC3339),
		Properties: map[string]notion.PropertyValue{
			"Sender":    textValue("rich_text", sender),
			"Recipient": textValue("rich_text", recipient),
			"Message":   textValue("title", message),
		},
	}
	s.pages = append(s.pages, page)
	return page.ID
}

// FailNext makes the next request answer with the given error.
func (s *Server) FailNext(status int, code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{status: status, code: code, message: message})
}

// StallNext makes the next request hang until the client gives up.
func (s *Server) StallNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stalls++
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Page returns the stored page with id.
func (s *Server) Page(id string) (notion.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pages {
		if p.ID == id {
			return *p, true
		}
	}
	return notion.Page{}, false
}

// Pages returns every stored page, archived ones included.
func (s *Server) Pages() []notion.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notion.Page, len(s.pages))
	for i, p := range s.pages {
		out[i] = *p
	}
	return out
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()

		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: body})
		var f *failure
		if len(s.failures) > 0 {
			f = &s.failures[0]
			s.failures = s.failures[1:]
		}
		stall := s.stalls > 0
		if stall {
			s.stalls--
		}
		s.mu.Unlock()

		if stall {
			<-r.Context().Done()
			return
		}

		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeError(w, http.StatusUnauthorized, "unauthorized", "API token is invalid.")
			return
		}
		if r.Header.Get("Notion-Version") == "" {
			writeError(w, http.StatusBadRequest, "missing_version", "Notion-Version header failed validation.")
			return
		}
		if f != nil {
			writeError(w, f.status, f.code, f.message)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Parent     notion.Parent                           `json:"parent"`
		Properties map[string]map[string][]notion.RichText `json:"properties"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Parent.DatabaseID != s.DatabaseID {
		writeError(w, http.StatusNotFound, "object_not_found", "Could not find database with ID: "+req.Parent.DatabaseID)
		return
	}

	page := &notion.Page{
		Object:      "page",
		ID:          uuid.NewString(),
		CreatedTime: s.now().UTC().Format(time.RFC3339),
		Properties:  make(map[string]notion.PropertyValue, len(req.Properties)),
	}
	for column, byKind := range req.Properties {
		for kind, spans := range byKind {
			var content string
			for _, span := range spans {
				if span.Text != nil {
					content += span.Text.Content
				}
			}
			page.Properties[column] = textValue(kind, content)
		}
	}

	s.mu.Lock()
	s.pages = append(s.pages, page)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("id") != s.DatabaseID {
		writeError(w, http.StatusNotFound, "object_not_found", "Could not find database with ID: "+r.PathValue("id"))
		return
	}

	var req struct {
		Filter struct {
			Property string                     `json:"property"`
			RichText map[string]json.RawMessage `json:"rich_text"`
		} `json:"filter"`
		StartCursor string `json:"start_cursor"`
		PageSize    int    `json:"page_size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	raw, ok := req.Filter.RichText["equals"]
	var want string
	if !ok || len(req.Filter.RichText) != 1 || json.Unmarshal(raw, &want) != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "body failed validation: filter.rich_text should be equals")
		return
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > notion.MaxPageSize {
		pageSize = notion.MaxPageSize
	}

	s.mu.Lock()
	var matches []notion.Page
	for _, p := range s.pages {
		if !p.Archived && p.Properties[req.Filter.Property].PlainText() == want {
			matches = append(matches, *p)
		}
	}
	s.mu.Unlock()

	start := 0
	if req.StartCursor != "" {
		start = -1
		for i, p := range matches {
			if p.ID == req.StartCursor {
				start = i
				break
			}
		}
		if start < 0 {
			writeError(w, http.StatusBadRequest, "validation_error", "start_cursor provided is invalid: "+req.StartCursor)
			return
		}
	}

	end := min(start+pageSize, len(matches))
	resp := notion.QueryResponse{
		Object:  "list",
		Results: matches[start:end],
		HasMore: end < len(matches),
	}
	if resp.Results == nil {
		resp.Results = []notion.Page{}
	}
	if resp.HasMore {
		next := matches[end].ID
		resp.NextCursor = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req notion.UpdatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pages {
		if p.ID == id {
			p.Archived = req.Archived
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeError(w, http.StatusNotFound, "object_not_found", "Could not find page with ID: "+id)
}

func textValue(kind, content string) notion.PropertyValue {
	spans := []notion.RichText{{
		Type:      "text",
		PlainText: content,
		Text:      &notion.TextSpan{Content: content},
	}}
	v := notion.PropertyValue{Type: kind}
	if kind == "title" {
		v.Title = spans
	} else {
		v.RichText = spans
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, notion.ErrorResponse{
		Object:  "error",
		Status:  status,
		Code:    code,
		Message: message,
	})
}
