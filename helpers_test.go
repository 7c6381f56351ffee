package i18nbackend

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeRoute is a canned response. Unknown paths answer 404.
type fakeRoute struct {
	status int
	body   string
	delay  time.Duration
}

// fakeServer serves canned responses and records every request it receives.
type fakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string][]fakeRoute
	hits     map[string]int
	bodies   map[string][][]byte
	headers  map[string][]http.Header
	requests int
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	s := &fakeServer{
		routes:  make(map[string][]fakeRoute),
		hits:    make(map[string]int),
		bodies:  make(map[string][][]byte),
		headers: make(map[string][]http.Header),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// route registers responses for path. With several responses they are
// served in order and the last one repeats.
func (s *fakeServer) route(path string, responses ...fakeRoute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[path] = responses
}

func (s *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	path := r.URL.Path
	n := s.hits[path]
	s.hits[path]++
	s.requests++
	s.bodies[path] = append(s.bodies[path], body)
	s.headers[path] = append(s.headers[path], r.Header.Clone())
	responses := s.routes[path]
	s.mu.Unlock()

	if len(responses) == 0 {
		http.NotFound(w, r)
		return
	}
	if n >= len(responses) {
		n = len(responses) - 1
	}
	resp := responses[n]

	if resp.delay > 0 {
		select {
		case <-time.After(resp.delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}

func (s *fakeServer) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *fakeServer) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *fakeServer) body(path string, i int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies[path][i]
}

func (s *fakeServer) header(path string, i int) http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers[path][i]
}

func ok(body string) fakeRoute {
	return fakeRoute{status: http.StatusOK, body: body}
}

func status(code int) fakeRoute {
	return fakeRoute{status: code, body: `{"error":"` + http.StatusText(code) + `"}`}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestBackend points a Backend at srv for both the load path and the API.
func newTestBackend(t *testing.T, srv *fakeServer, opts ...Option) *Backend {
	t.Helper()
	base := []Option{
		WithBaseURL(srv.URL),
		WithAPIURL(srv.URL + "/api"),
		WithLogger(discardLogger()),
	}
	b, err := New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { b.pool.Release() })
	return b
}

// loadErrors records load-error hook invocations.
type loadErrors struct {
	mu    sync.Mutex
	calls []loadErrorCall
}

type loadErrorCall struct {
	err       error
	language  string
	namespace string
}

func (l *loadErrors) hook(err error, language, namespace string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, loadErrorCall{err: err, language: language, namespace: namespace})
}

func (l *loadErrors) all() []loadErrorCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]loadErrorCall, len(l.calls))
	copy(out, l.calls)
	return out
}
