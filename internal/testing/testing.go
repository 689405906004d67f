// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/mvx/internal/models"
)

// MockCatalog is a test double for [services.CatalogService]. Unset funcs return zero values.
type MockCatalog struct {
	mu    sync.Mutex
	Calls []string

	SearchFn         func(query string, page int) (*models.MoviePage, error)
	PopularFn        func(page int) (*models.MoviePage, error)
	MovieFn          func(id int64) (*models.Movie, error)
	CreditsFn        func(id int64) (*models.Credits, error)
	AddFavoriteFn    func(id int64) error
	RemoveFavoriteFn func(id int64) error
	FavoritesFn      func(page, size int) (*models.FavoritesPage, error)
	AddWatchLaterFn  func(id int64) error
	LoginFn          func(email, password string) (*models.TokenResponse, error)
}

func (m *MockCatalog) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

// CallCount returns how many times the named method was called.
func (m *MockCatalog) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == name {
			n++
		}
	}
	return n
}

func (m *MockCatalog) Search(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	m.record("Search")
	if m.SearchFn != nil {
		return m.SearchFn(query, page)
	}
	return &models.MoviePage{Page: page}, nil
}

func (m *MockCatalog) Popular(ctx context.Context, page int) (*models.MoviePage, error) {
	m.record("Popular")
	if m.PopularFn != nil {
		return m.PopularFn(page)
	}
	return &models.MoviePage{Page: page}, nil
}

func (m *MockCatalog) Movie(ctx context.Context, id int64) (*models.Movie, error) {
	m.record("Movie")
	if m.MovieFn != nil {
		return m.MovieFn(id)
	}
	return &models.Movie{ID: id}, nil
}

func (m *MockCatalog) Credits(ctx context.Context, id int64) (*models.Credits, error) {
	m.record("Credits")
	if m.CreditsFn != nil {
		return m.CreditsFn(id)
	}
	return &models.Credits{MovieID: id}, nil
}

func (m *MockCatalog) AddFavorite(ctx context.Context, id int64) error {
	m.record("AddFavorite")
	if m.AddFavoriteFn != nil {
		return m.AddFavoriteFn(id)
	}
	return nil
}

func (m *MockCatalog) RemoveFavorite(ctx context.Context, id int64) error {
	m.record("RemoveFavorite")
	if m.RemoveFavoriteFn != nil {
		return m.RemoveFavoriteFn(id)
	}
	return nil
}

func (m *MockCatalog) Favorites(ctx context.Context, page, size int) (*models.FavoritesPage, error) {
	m.record("Favorites")
	if m.FavoritesFn != nil {
		return m.FavoritesFn(page, size)
	}
	return &models.FavoritesPage{Number: page, Size: size}, nil
}

func (m *MockCatalog) AddWatchLater(ctx context.Context, id int64) error {
	m.record("AddWatchLater")
	if m.AddWatchLaterFn != nil {
		return m.AddWatchLaterFn(id)
	}
	return nil
}

func (m *MockCatalog) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	m.record("Login")
	if m.LoginFn != nil {
		return m.LoginFn(email, password)
	}
	return &models.TokenResponse{Token: "test-token", Type: "Bearer"}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// JSONResponse builds an [http.Response] with the given status and body.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// RecordingRoundTripper captures every request before delegating to Next (or [http.DefaultTransport]).
type RecordingRoundTripper struct {
	Next http.RoundTripper

	mu       sync.Mutex
	requests []*http.Request
}

func (r *RecordingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req.Clone(req.Context()))
	r.mu.Unlock()

	next := r.Next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(req)
}

// Requests returns the captured requests in order.
func (r *RecordingRoundTripper) Requests() []*http.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*http.Request(nil), r.requests...)
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
