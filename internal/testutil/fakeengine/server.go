// Package fakeengine serves a scriptable stand-in for the engine HTTP API.
package fakeengine

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
)

// Handler answers one engine operation with an HTTP status and body
type Handler func(params url.Values) (int, string)

// Call is a request received by the server
type Call struct {
	Method string
	// Path is component/kind/name, e.g. "core/view/version"
	Path   string
	Format string
	Params url.Values
	Header http.Header
}

// Server is an httptest server speaking the engine API
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
}

// New starts a server reporting version and closes it when the test ends
func New(t testing.TB, version string) *Server {
	s := &Server{handlers: map[string]Handler{}}
	s.JSON("core/view/version", fmt.Sprintf(`{"version":%q}`, version))
	s.Server = httptest.NewServer(s)
	t.Cleanup(s.Close)
	return s
}

// Handle registers a handler for component/kind/name
func (s *Server) Handle(path string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[path] = h
}

// JSON registers a fixed 200 response
func (s *Server) JSON(path, body string) {
	s.Handle(path, func(url.Values) (int, string) { return http.StatusOK, body })
}

// Calls returns the received requests in order
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the received requests for one operation
func (s *Server) CallsTo(path string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Config returns a client configuration pointing at the server
func (s *Server) Config() *model.Config {
	u, _ := url.Parse(s.URL)
	host, portStr, _ := net.SplitHostPort(u.Host)
	port, _ := strconv.Atoi(portStr)

	cfg := model.NewConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.APIKey = "test-key"
	return cfg
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	_ = r.ParseForm()

	call := Call{
		Method: r.Method,
		Format: parts[0],
		Path:   strings.Join(parts[1:], "/"),
		Params: r.Form,
		Header: r.Header.Clone(),
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	h, ok := s.handlers[call.Path]
	s.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, `{"code":"bad_view","message":"No handler for %s"}`, call.Path)
		return
	}

	status, body := h(call.Params)
	if call.Format == "JSON" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
