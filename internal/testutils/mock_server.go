package testutils

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockFrankfurterServer is a scriptable stand-in for the upstream provider.
// Responses are registered per request URI (path plus query); anything not
// scripted answers 404.
type MockFrankfurterServer struct {
	server *httptest.Server

	mu           sync.Mutex
	responses    map[string]scriptedResponse
	requestCount int
}

type scriptedResponse struct {
	statusCode int
	body       string
}

// NewMockFrankfurterServer creates and starts a mock upstream server.
func NewMockFrankfurterServer() *MockFrankfurterServer {
	mock := &MockFrankfurterServer{
		responses: make(map[string]scriptedResponse),
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handler))
	return mock
}

// Script registers the response to return for the given request URI, e.g.
// "/latest?from=USD".
func (m *MockFrankfurterServer) Script(requestURI string, statusCode int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[requestURI] = scriptedResponse{statusCode: statusCode, body: body}
}

// RequestCount reports how many requests reached the server.
func (m *MockFrankfurterServer) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// URL returns the server's base URL.
func (m *MockFrankfurterServer) URL() string {
	return m.server.URL
}

// Close shuts down the server.
func (m *MockFrankfurterServer) Close() {
	m.server.Close()
}

func (m *MockFrankfurterServer) handler(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestCount++
	response, found := m.responses[r.URL.RequestURI()]
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !found {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
		return
	}

	w.WriteHeader(response.statusCode)
	_, _ = w.Write([]byte(response.body))
}
