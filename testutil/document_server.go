/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// DocumentsCreatePath is the path of the document creation endpoint relative to the API base URL.
const DocumentsCreatePath = "/documents/create"

// RecordedRequest is a request received by DocumentServer.
type RecordedRequest struct {
	Method     string
	Path       string
	Header     http.Header
	Body       []byte
	ReceivedAt time.Time
}

// DocumentServerOpts represents options for NewDocumentServerWithOpts.
type DocumentServerOpts struct {
	// BasePath is a path prefix of the API. "/api/v3/lk" by default.
	BasePath string

	// StatusCode is returned for every document creation request. http.StatusOK by default.
	StatusCode int

	// Delay is applied before responding.
	Delay time.Duration
}

// DocumentServer is a fake of the remote document submission API.
// It records all requests to the document creation endpoint.
type DocumentServer struct {
	*httptest.Server

	basePath string
	delay    time.Duration

	mu         sync.Mutex
	statusCode int
	requests   []RecordedRequest
}

// NewDocumentServer starts a new fake document submission API which responds with 200 OK.
func NewDocumentServer() *DocumentServer {
	return NewDocumentServerWithOpts(DocumentServerOpts{})
}

// NewDocumentServerWithOpts starts a new fake document submission API.
func NewDocumentServerWithOpts(opts DocumentServerOpts) *DocumentServer {
	if opts.BasePath == "" {
		opts.BasePath = "/api/v3/lk"
	}
	if opts.StatusCode == 0 {
		opts.StatusCode = http.StatusOK
	}
	s := &DocumentServer{basePath: opts.BasePath, delay: opts.Delay, statusCode: opts.StatusCode}

	router := chi.NewRouter()
	router.Route(opts.BasePath, func(r chi.Router) {
		r.Post(DocumentsCreatePath, s.handleCreate)
	})
	s.Server = httptest.NewServer(router)
	return s
}

func (s *DocumentServer) handleCreate(rw http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		rw.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method:     r.Method,
		Path:       r.URL.Path,
		Header:     r.Header.Clone(),
		Body:       body,
		ReceivedAt: time.Now(),
	})
	statusCode := s.statusCode
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-r.Context().Done():
			return
		}
	}
	rw.WriteHeader(statusCode)
}

// BaseURL returns the URL the submission client should be configured with.
func (s *DocumentServer) BaseURL() string {
	return s.URL + s.basePath
}

// SetStatusCode changes the status code returned for the following requests.
func (s *DocumentServer) SetStatusCode(statusCode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCode = statusCode
}

// Requests returns a copy of all recorded requests in the order they were received.
func (s *DocumentServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// RequestCount returns the number of recorded requests.
func (s *DocumentServer) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
