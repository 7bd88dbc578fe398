package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// MockYouTubeServer is an httptest server that dispatches requests by URL
// path. Tests register handlers for the Data API paths they exercise;
// unregistered paths fail the test.
type MockYouTubeServer struct {
	Server   *httptest.Server
	Handlers map[string]http.HandlerFunc
}

func NewMockYouTubeServer(t *testing.T) *MockYouTubeServer {
	t.Helper()
	m := &MockYouTubeServer{Handlers: map[string]http.HandlerFunc{}}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := m.Handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(m.Server.Close)
	return m
}

// URL returns the mock server's base URL for use with option.WithEndpoint.
func (m *MockYouTubeServer) URL() string { return m.Server.URL }

// JSON writes a canned JSON response body.
func JSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}
