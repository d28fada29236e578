package router_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// apiMock is a programmable HTTP server standing in for third-party APIs.
// Responses are keyed by method and path; unknown routes answer 404.
type apiMock struct {
	mu               sync.Mutex
	server           *httptest.Server
	requestsReceived map[string][]map[string]any
	headersReceived  map[string][]http.Header
	responseMap      map[string]any
	responseStatus   map[string]int
}

func newAPIMock() *apiMock {
	a := &apiMock{
		requestsReceived: map[string][]map[string]any{},
		headersReceived:  map[string][]http.Header{},
		responseMap:      map[string]any{},
		responseStatus:   map[string]int{},
	}
	a.server = httptest.NewServer(http.HandlerFunc(a.handle))
	return a
}

func (a *apiMock) handle(w http.ResponseWriter, r *http.Request) {
	key := r.Method + r.URL.Path

	body, _ := io.ReadAll(r.Body)
	var request map[string]any
	_ = json.Unmarshal(body, &request)
	if request == nil {
		request = map[string]any{}
	}

	a.mu.Lock()
	a.requestsReceived[key] = append(a.requestsReceived[key], request)
	a.headersReceived[key] = append(a.headersReceived[key], r.Header.Clone())
	status, ok := a.responseStatus[key]
	response := a.responseMap[key]
	a.mu.Unlock()

	if !ok {
		status = http.StatusNotFound
		response = map[string]any{"message": "route not mocked"}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

func (a *apiMock) URL() string {
	return a.server.URL
}

func (a *apiMock) Close() {
	a.server.Close()
}

func (a *apiMock) SetResponse(method, path string, status int, response map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responseStatus[method+path] = status
	a.responseMap[method+path] = response
}

func (a *apiMock) Requests(method, path string) []map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]map[string]any(nil), a.requestsReceived[method+path]...)
}

func (a *apiMock) Headers(method, path string) []http.Header {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]http.Header(nil), a.headersReceived[method+path]...)
}
