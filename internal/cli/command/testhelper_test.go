package command

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
)

// mockServer is a test HTTP server with per-route handlers.
type mockServer struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []string
}

// newMockServer creates a mock server closed at test cleanup.
func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	m := &mockServer{handlers: make(map[string]http.HandlerFunc)}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		m.mu.Lock()
		m.requests = append(m.requests, key)
		handler, ok := m.handlers[key]
		m.mu.Unlock()
		if !ok {
			textResponse(w, http.StatusNotFound, "Not found")
			return
		}
		handler(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

// handle registers a handler for "METHOD /path".
func (m *mockServer) handle(route string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[route] = handler
}

func (m *mockServer) count(route string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.requests {
		if r == route {
			n++
		}
	}
	return n
}

// jsonResponse writes a JSON response.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// textResponse writes a plain-text error like the server does.
func textResponse(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(msg))
}

// sampleBoard is a 3x2 board with three painted cells.
func sampleBoard() map[string]any {
	return map[string]any{
		"width":    3,
		"height":   2,
		"cooldown": 5,
		"pixels": [][]string{
			{"#ffffff", "#FF0000", "#ff0000"},
			{"#00ff00", "#ffffff", "#ffffff"},
		},
	}
}

// runApp runs the CLI with an isolated config file and captures output.
func runApp(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return runAppWithConfig(t, filepath.Join(t.TempDir(), "cli.yaml"), args...)
}

func runAppWithConfig(t *testing.T, cfgPath string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &errOut

	full := append([]string{"pixmesh-cli", "--config", cfgPath}, args...)
	err = app.Run(full)
	return out.String(), errOut.String(), err
}
