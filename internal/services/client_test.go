package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/session"
	"github.com/desertthunder/mvx/internal/shared"
	tu "github.com/desertthunder/mvx/internal/testing"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func quietLogger() ClientOption {
	return WithLogger(shared.NewLogger(&bytes.Buffer{}))
}

func writeProblem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.Problem{Title: http.StatusText(status), Status: status, Detail: detail})
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	user := models.User{Email: "user@movie.com"}

	t.Run("Request stage", func(t *testing.T) {
		t.Run("attaches bearer token", func(t *testing.T) {
			var got http.Header
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Clone()
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			store := session.NewMemoryStore()
			_ = store.Set("tok", user)
			c := NewClient(server.URL, store, quietLogger())

			if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/movies/popular"}, nil); err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			if v := got.Values("Authorization"); len(v) != 1 || v[0] != "Bearer tok" {
				t.Errorf("Authorization = %v", v)
			}
			if got.Get(HeaderRequestID) == "" {
				t.Error("expected request id")
			}
			if got.Get("Accept") != "application/json" {
				t.Errorf("Accept = %q", got.Get("Accept"))
			}
		})

		t.Run("sends no header without token", func(t *testing.T) {
			var auth string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				auth = r.Header.Get("Authorization")
			}))
			defer server.Close()

			c := NewClient(server.URL, session.NewMemoryStore(), quietLogger())
			if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/"}, nil); err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			if auth != "" {
				t.Errorf("expected no Authorization, got %q", auth)
			}
		})

		t.Run("anonymous request skips token", func(t *testing.T) {
			var auth string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				auth = r.Header.Get("Authorization")
			}))
			defer server.Close()

			store := session.NewMemoryStore()
			_ = store.Set("tok", user)
			c := NewClient(server.URL, store, quietLogger())
			if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/login", Anonymous: true}, nil); err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			if auth != "" {
				t.Errorf("expected no Authorization, got %q", auth)
			}
		})

		t.Run("sets user agent and json body", func(t *testing.T) {
			var ua, ct string
			var body models.Credentials
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ua, ct = r.UserAgent(), r.Header.Get("Content-Type")
				json.NewDecoder(r.Body).Decode(&body)
			}))
			defer server.Close()

			c := NewClient(server.URL, nil, WithUserAgent("mvx/test"), quietLogger())
			creds := models.Credentials{Email: "a@b.c", Password: "x"}
			if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/", Body: creds}, nil); err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			if ua != "mvx/test" || ct != "application/json" || body != creds {
				t.Errorf("ua=%q ct=%q body=%+v", ua, ct, body)
			}
		})
	})

	t.Run("Response stage", func(t *testing.T) {
		t.Run("401 with token clears store and notifies", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeProblem(w, http.StatusUnauthorized, "token expired")
			}))
			defer server.Close()

			store := session.NewMemoryStore()
			_ = store.Set("tok", user)
			c := NewClient(server.URL, store, quietLogger())

			var notified []string
			c.OnForcedLogout(func(token string) { notified = append(notified, token) })

			err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/movies/1"}, nil)

			if !errors.Is(err, shared.ErrUnauthorized) || !errors.Is(err, shared.ErrTokenExpired) {
				t.Fatalf("expected expired unauthorized error, got %v", err)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || !apiErr.SessionExpired || apiErr.Detail() != "token expired" {
				t.Errorf("unexpected APIError %+v", apiErr)
			}
			if _, ok := store.Token(); ok {
				t.Error("token should be cleared")
			}
			if len(notified) != 1 || notified[0] != "tok" {
				t.Errorf("notified = %v", notified)
			}
		})

		t.Run("401 without token has no side effect", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer server.Close()

			c := NewClient(server.URL, session.NewMemoryStore(), quietLogger())
			notified := 0
			c.OnForcedLogout(func(string) { notified++ })

			err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/movies/favorites"}, nil)
			if !errors.Is(err, shared.ErrUnauthorized) || errors.Is(err, shared.ErrTokenExpired) {
				t.Errorf("unexpected error %v", err)
			}
			if notified != 0 {
				t.Errorf("notified %d times", notified)
			}
		})

		t.Run("401 for a stale token keeps newer session", func(t *testing.T) {
			store := session.NewMemoryStore()
			_ = store.Set("old", user)

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// a newer login lands while this request is in flight
				_ = store.Set("new", user)
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer server.Close()

			c := NewClient(server.URL, store, quietLogger())
			err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/"}, nil)
			if !errors.Is(err, shared.ErrTokenExpired) {
				t.Fatalf("expected ErrTokenExpired, got %v", err)
			}
			if tok, _ := store.Token(); tok != "new" {
				t.Errorf("expected newer token to survive, got %q", tok)
			}
		})

		t.Run("maps statuses to sentinels", func(t *testing.T) {
			tc := []struct {
				status int
				want   error
			}{
				{http.StatusBadRequest, shared.ErrBadRequest},
				{http.StatusForbidden, shared.ErrClient},
				{http.StatusNotFound, shared.ErrNotFound},
				{http.StatusConflict, shared.ErrConflict},
				{http.StatusUnprocessableEntity, shared.ErrUnprocessable},
				{http.StatusInternalServerError, shared.ErrServer},
				{http.StatusServiceUnavailable, shared.ErrServiceUnavailable},
			}

			for _, tt := range tc {
				t.Run(http.StatusText(tt.status), func(t *testing.T) {
					hc := &http.Client{Transport: tu.NewMockRoundTripper(tu.JSONResponse(tt.status, `{"detail":"nope"}`), nil)}
					c := NewClient("http://catalog.test", session.NewMemoryStore(), WithHTTPClient(hc), quietLogger())

					err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/x"}, nil)
					if !errors.Is(err, tt.want) || !errors.Is(err, shared.ErrAPIRequest) {
						t.Errorf("expected %v, got %v", tt.want, err)
					}
				})
			}
		})

		t.Run("decodes body", func(t *testing.T) {
			hc := &http.Client{Transport: tu.NewMockRoundTripper(tu.JSONResponse(http.StatusOK, `{"id":550,"title":"Fight Club"}`), nil)}
			c := NewClient("http://catalog.test", nil, WithHTTPClient(hc), quietLogger())

			var m models.Movie
			if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/movies/550"}, &m); err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			if m.ID != 550 || m.Title != "Fight Club" {
				t.Errorf("decoded %+v", m)
			}
		})

		t.Run("invalid json", func(t *testing.T) {
			hc := &http.Client{Transport: tu.NewMockRoundTripper(tu.JSONResponse(http.StatusOK, `{`), nil)}
			c := NewClient("http://catalog.test", nil, WithHTTPClient(hc), quietLogger())

			var m models.Movie
			if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/"}, &m); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("body read failure", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
			hc := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
			c := NewClient("http://catalog.test", nil, WithHTTPClient(hc), quietLogger())

			if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/"}, nil); !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork, got %v", err)
			}
		})

		t.Run("transport failure", func(t *testing.T) {
			hc := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
			store := session.NewMemoryStore()
			_ = store.Set("tok", user)
			c := NewClient("http://catalog.test", store, WithHTTPClient(hc), quietLogger())

			if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/"}, nil); !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork, got %v", err)
			}
			if _, ok := store.Token(); !ok {
				t.Error("network failure must not clear the session")
			}
		})

		t.Run("cancelled context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			defer server.Close()

			cctx, cancel := context.WithCancel(ctx)
			cancel()

			c := NewClient(server.URL, nil, quietLogger())
			err := c.Do(cctx, Request{Method: http.MethodGet, Path: "/"}, nil)
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		})
	})

	t.Run("OnForcedLogout unregister", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		store := session.NewMemoryStore()
		_ = store.Set("tok", user)
		c := NewClient(server.URL, store, quietLogger())

		called := false
		unregister := c.OnForcedLogout(func(string) { called = true })
		unregister()
		unregister()

		_ = c.Do(ctx, Request{Method: http.MethodGet, Path: "/"}, nil)
		if called {
			t.Error("unregistered subscriber was called")
		}
	})

	t.Run("Rate limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		c := NewClient(server.URL, nil, WithRateLimit(0.001), quietLogger())
		if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/"}, nil); err != nil {
			t.Fatalf("first request should use the burst: %v", err)
		}

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := c.Do(cctx, Request{Method: http.MethodGet, Path: "/"}, nil); !errors.Is(err, shared.ErrNetwork) {
			t.Errorf("expected limiter wait to fail, got %v", err)
		}
	})

	t.Run("Tracing", func(t *testing.T) {
		recorder := tracetest.NewSpanRecorder()
		provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		store := session.NewMemoryStore()
		_ = store.Set("tok", user)
		c := NewClient(server.URL, store, WithTracer(provider.Tracer("client-test")), quietLogger())
		_ = c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/movies/1"}, nil)

		spans := recorder.Ended()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if spans[0].Name() != "HTTP GET" {
			t.Errorf("span name = %q", spans[0].Name())
		}

		attrs := map[attribute.Key]attribute.Value{}
		for _, kv := range spans[0].Attributes() {
			attrs[kv.Key] = kv.Value
		}
		if attrs["url.path"].AsString() != "/api/movies/1" {
			t.Errorf("url.path = %v", attrs["url.path"])
		}
		if attrs["http.response.status_code"].AsInt64() != http.StatusUnauthorized {
			t.Errorf("status = %v", attrs["http.response.status_code"])
		}
		if !attrs["mvx.session.expired"].AsBool() {
			t.Error("expected session expired attribute")
		}
	})
}

// TestForcedLogoutAcrossEndpoints drives a real Manager through the pipeline: whichever endpoint answers 401,
// the store is cleared and the manager becomes anonymous.
func TestForcedLogoutAcrossEndpoints(t *testing.T) {
	ctx := context.Background()

	calls := []struct {
		name string
		call func(*Catalog) error
	}{
		{"popular", func(c *Catalog) error { _, err := c.Popular(ctx, 1); return err }},
		{"movie", func(c *Catalog) error { _, err := c.Movie(ctx, 550); return err }},
		{"favorites", func(c *Catalog) error { _, err := c.Favorites(ctx, 0, 10); return err }},
		{"add favorite", func(c *Catalog) error { return c.AddFavorite(ctx, 550) }},
		{"watch later", func(c *Catalog) error { return c.AddWatchLater(ctx, 550) }},
	}

	for _, tc := range calls {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/auth/login" {
					json.NewEncoder(w).Encode(models.TokenResponse{Token: "tok"})
					return
				}
				writeProblem(w, http.StatusUnauthorized, "expired")
			}))
			defer server.Close()

			store := session.NewMemoryStore()
			client := NewClient(server.URL, store, quietLogger())
			catalog := NewCatalog(client)
			manager := session.NewManager(store, catalog, client, shared.NewLogger(&bytes.Buffer{}))
			defer manager.Close()

			if err := manager.Login(ctx, "user@movie.com", "123456"); err != nil {
				t.Fatalf("Login() error = %v", err)
			}

			var mu sync.Mutex
			var seen []session.Snapshot
			manager.Subscribe(func(s session.Snapshot) {
				mu.Lock()
				seen = append(seen, s)
				mu.Unlock()
			})

			if err := tc.call(catalog); !errors.Is(err, shared.ErrTokenExpired) {
				t.Fatalf("expected ErrTokenExpired, got %v", err)
			}
			if manager.IsAuthenticated() {
				t.Error("manager should be anonymous")
			}
			if _, ok := store.Get(); ok {
				t.Error("store should be empty")
			}
			if len(seen) != 1 || seen[0].Authenticated() {
				t.Errorf("subscriber saw %v", seen)
			}
		})
	}
}

// brokenClearStore cannot delete anything.
type brokenClearStore struct {
	*session.MemoryStore
}

func (b *brokenClearStore) Clear() error {
	return errors.New("disk gone")
}

func TestSessionAndPipelineAgree(t *testing.T) {
	ctx := context.Background()
	user := models.User{Email: "user@movie.com"}

	t.Run("401 after another process replaced the token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeProblem(w, http.StatusUnauthorized, "expired")
		}))
		defer server.Close()

		store := session.NewMemoryStore()
		_ = store.Set("first", user)
		client := NewClient(server.URL, store, quietLogger())
		manager := session.NewManager(store, NewCatalog(client), client, shared.NewLogger(&bytes.Buffer{}))
		defer manager.Close()

		_ = store.Set("second", models.User{Email: "other@movie.com"})

		if _, err := NewCatalog(client).Popular(ctx, 1); !errors.Is(err, shared.ErrTokenExpired) {
			t.Fatalf("expected ErrTokenExpired, got %v", err)
		}
		if _, ok := store.Get(); ok {
			t.Error("store should be empty")
		}
		if manager.IsAuthenticated() {
			t.Error("manager should be anonymous")
		}
	})

	t.Run("logout that cannot clear storage stops sending the token", func(t *testing.T) {
		rec := &tu.RecordingRoundTripper{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(models.MoviePage{Page: 1, TotalPages: 1})
		}))
		defer server.Close()

		store := session.NewGuardedStore(&brokenClearStore{MemoryStore: session.NewMemoryStore()})
		_ = store.Set("tok", user)
		client := NewClient(server.URL, store, WithHTTPClient(&http.Client{Transport: rec}), quietLogger())
		catalog := NewCatalog(client)
		manager := session.NewManager(store, catalog, client, shared.NewLogger(&bytes.Buffer{}))
		defer manager.Close()

		if err := manager.Logout(); err == nil {
			t.Fatal("expected the storage error")
		}
		if manager.IsAuthenticated() {
			t.Error("manager should be anonymous")
		}

		if _, err := catalog.Popular(ctx, 1); err != nil {
			t.Fatalf("Popular() error = %v", err)
		}
		reqs := rec.Requests()
		if got := reqs[len(reqs)-1].Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q after logout", got)
		}
	})
}
