package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"sutrasync/internal/contentapi"
)

// RecordedRequest captures one call made to a FakeAPI.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	ContentType   string
	Authorization string
	Body          []byte
}

// JSON decodes the recorded body into a generic map.
func (r RecordedRequest) JSON(t testing.TB) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(r.Body, &out); err != nil {
		t.Fatalf("decode body of %s %s: %v", r.Method, r.Path, err)
	}
	return out
}

// FakeAPI is an httptest-backed content API that records every request.
type FakeAPI struct {
	*httptest.Server

	Token string

	mu                sync.Mutex
	requests          []RecordedRequest
	loginStatuses     []int
	loginCalls        int
	createAdminStatus int
	listStatus        int
	projects          []contentapi.Project
	statusFor         func(method, path string) int
}

// FakeAPIOption customizes a FakeAPI.
type FakeAPIOption func(*FakeAPI)

// WithLoginStatuses sets the status of successive login calls. The last
// status repeats once the list is exhausted.
func WithLoginStatuses(statuses ...int) FakeAPIOption {
	return func(f *FakeAPI) {
		f.loginStatuses = statuses
	}
}

// WithCreateAdminStatus sets the admin provisioning status.
func WithCreateAdminStatus(status int) FakeAPIOption {
	return func(f *FakeAPI) {
		f.createAdminStatus = status
	}
}

// WithExistingProjects seeds the project listing.
func WithExistingProjects(names ...string) FakeAPIOption {
	return func(f *FakeAPI) {
		for _, name := range names {
			f.projects = append(f.projects, contentapi.Project{Name: name, Description: name})
		}
	}
}

// WithListProjectsStatus makes project listing answer with status.
func WithListProjectsStatus(status int) FakeAPIOption {
	return func(f *FakeAPI) {
		f.listStatus = status
	}
}

// WithStatusFunc overrides the status of create and upload calls. Returning
// 0 keeps the default 201.
func WithStatusFunc(fn func(method, path string) int) FakeAPIOption {
	return func(f *FakeAPI) {
		f.statusFor = fn
	}
}

// NewFakeAPI starts a fake content API and registers its shutdown.
func NewFakeAPI(t testing.TB, opts ...FakeAPIOption) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		Token:             "test-token",
		loginStatuses:     []int{http.StatusOK},
		createAdminStatus: http.StatusCreated,
		listStatus:        http.StatusOK,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// Client returns a content API client pointed at the fake.
func (f *FakeAPI) Client(t testing.TB, opts ...contentapi.Option) *contentapi.Client {
	t.Helper()
	client, err := contentapi.New(f.URL, opts...)
	if err != nil {
		t.Fatalf("contentapi.New: %v", err)
	}
	return client
}

// Requests returns a copy of every recorded request in arrival order.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// Matching returns recorded requests with the method whose path ends with suffix.
func (f *FakeAPI) Matching(method, suffix string) []RecordedRequest {
	var out []RecordedRequest
	for _, req := range f.Requests() {
		if req.Method == method && strings.HasSuffix(req.Path, suffix) {
			out = append(out, req)
		}
	}
	return out
}

// Count returns the number of requests Matching would return.
func (f *FakeAPI) Count(method, suffix string) int {
	return len(f.Matching(method, suffix))
}

// Projects returns the fake's current project list.
func (f *FakeAPI) Projects() []contentapi.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]contentapi.Project, len(f.projects))
	copy(out, f.projects)
	return out
}

func (f *FakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		ContentType:   r.Header.Get("Content-Type"),
		Authorization: r.Header.Get("Authorization"),
		Body:          body,
	})

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth/login":
		status := f.loginStatuses[min(f.loginCalls, len(f.loginStatuses)-1)]
		f.loginCalls++
		if status != http.StatusOK {
			http.Error(w, `{"detail":"Incorrect username or password"}`, status)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": f.Token, "token_type": "bearer"})
	case r.Method == http.MethodPost && r.URL.Path == "/auth/create-admin":
		w.WriteHeader(f.createAdminStatus)
	case r.Method == http.MethodGet && r.URL.Path == "/projects/":
		if f.listStatus != http.StatusOK {
			http.Error(w, "listing unavailable", f.listStatus)
			return
		}
		writeJSON(w, http.StatusOK, f.projects)
	case r.Method == http.MethodPost:
		status := http.StatusCreated
		if f.statusFor != nil {
			if override := f.statusFor(r.Method, r.URL.Path); override != 0 {
				status = override
			}
		}
		if r.URL.Path == "/projects" && status < http.StatusMultipleChoices {
			f.projects = append(f.projects, contentapi.Project{
				Name:        r.URL.Query().Get("name"),
				Description: r.URL.Query().Get("description"),
			})
		}
		if status >= http.StatusMultipleChoices {
			http.Error(w, "rejected by fake", status)
			return
		}
		writeJSON(w, status, map[string]bool{"ok": true})
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
