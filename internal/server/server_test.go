package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/services"
	"github.com/desertthunder/mvx/internal/session"
	"github.com/desertthunder/mvx/internal/shared"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s, err := New(shared.ServerConfig{TokenTTL: time.Hour, SigningKey: "test-key"}, shared.NewLogger(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func do(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, url, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	return v
}

func TestServer(t *testing.T) {
	s, ts := newTestServer(t)
	token, err := s.Tokens().Issue(DemoEmail)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	t.Run("Login", func(t *testing.T) {
		t.Run("valid credentials", func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/auth/login", "", models.Credentials{Email: DemoEmail, Password: DemoPassword})
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			tr := decode[models.TokenResponse](t, resp)
			if tr.Token == "" || tr.Type != "Bearer" || tr.ExpiresIn != 3600 {
				t.Errorf("unexpected response %+v", tr)
			}
			if email, err := s.Tokens().Verify(tr.Token); err != nil || email != DemoEmail {
				t.Errorf("Verify() = %q, %v", email, err)
			}
		})

		t.Run("wrong password", func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/auth/login", "", models.Credentials{Email: DemoEmail, Password: "nope"})
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			p := decode[models.Problem](t, resp)
			if p.Status != 401 || p.Instance != "/auth/login" || p.Type != "about:blank" {
				t.Errorf("unexpected problem %+v", p)
			}
		})

		t.Run("missing fields", func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/auth/login", "", models.Credentials{Email: DemoEmail})
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d", resp.StatusCode)
			}
		})
	})

	t.Run("Popular pages", func(t *testing.T) {
		for _, page := range []int{1, 2, 3} {
			resp := do(t, http.MethodGet, ts.URL+"/api/movies/popular?page="+strconv.Itoa(page), "", nil)
			mp := decode[models.MoviePage](t, resp)
			if mp.Page != page {
				t.Errorf("page %d: got page %d", page, mp.Page)
			}
			if mp.TotalPages != 3 {
				t.Errorf("TotalPages = %d", mp.TotalPages)
			}
		}

		resp := do(t, http.MethodGet, ts.URL+"/api/movies/popular?page=9", "", nil)
		if mp := decode[models.MoviePage](t, resp); len(mp.Movies) != 0 || mp.Page != 9 {
			t.Errorf("out of range page: %+v", mp)
		}

		if resp := do(t, http.MethodGet, ts.URL+"/api/movies/popular?page=501", "", nil); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("page 501 status = %d", resp.StatusCode)
		}
	})

	t.Run("Search", func(t *testing.T) {
		resp := do(t, http.MethodGet, ts.URL+"/api/movies/search?query=rings&page=1", "", nil)
		mp := decode[models.MoviePage](t, resp)
		if mp.TotalResults != 3 {
			t.Errorf("TotalResults = %d", mp.TotalResults)
		}

		if resp := do(t, http.MethodGet, ts.URL+"/api/movies/search?query=", "", nil); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("empty query status = %d", resp.StatusCode)
		}
	})

	t.Run("Movie", func(t *testing.T) {
		if resp := do(t, http.MethodGet, ts.URL+"/api/movies/999999", "", nil); resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d", resp.StatusCode)
		}

		resp := do(t, http.MethodGet, ts.URL+"/api/movies/550/credits", "", nil)
		c := decode[models.Credits](t, resp)
		if c.MovieID != 550 || len(c.Directors()) != 1 {
			t.Errorf("unexpected credits %+v", c)
		}
	})

	t.Run("Protected routes", func(t *testing.T) {
		paths := []struct{ method, path string }{
			{http.MethodGet, "/api/movies/favorites"},
			{http.MethodPost, "/api/movies/550/favorite"},
			{http.MethodDelete, "/api/movies/550/favorite"},
			{http.MethodPost, "/api/movies/550/watch-later"},
		}
		for _, p := range paths {
			if resp := do(t, p.method, ts.URL+p.path, "", nil); resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("%s %s without token: status = %d", p.method, p.path, resp.StatusCode)
			}
			if resp := do(t, p.method, ts.URL+p.path, "garbage", nil); resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("%s %s with bad token: status = %d", p.method, p.path, resp.StatusCode)
			}
		}
	})

	t.Run("Optional auth ignores bad token", func(t *testing.T) {
		resp := do(t, http.MethodGet, ts.URL+"/api/movies/550", "garbage", nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})

	t.Run("Favorites flow", func(t *testing.T) {
		if resp := do(t, http.MethodPost, ts.URL+"/api/movies/550/favorite", token, nil); resp.StatusCode != http.StatusCreated {
			t.Fatalf("add status = %d", resp.StatusCode)
		}
		if resp := do(t, http.MethodPost, ts.URL+"/api/movies/550/favorite", token, nil); resp.StatusCode != http.StatusConflict {
			t.Errorf("duplicate status = %d", resp.StatusCode)
		}

		m := decode[models.Movie](t, do(t, http.MethodGet, ts.URL+"/api/movies/550", token, nil))
		if !m.Favorite {
			t.Error("expected favorite flag for authenticated user")
		}
		m = decode[models.Movie](t, do(t, http.MethodGet, ts.URL+"/api/movies/550", "", nil))
		if m.Favorite {
			t.Error("anonymous user should not see flags")
		}

		fp := decode[models.FavoritesPage](t, do(t, http.MethodGet, ts.URL+"/api/movies/favorites?page=0&size=10", token, nil))
		if fp.TotalElements != 1 || fp.Content[0].ID != 550 || !fp.First || !fp.Last {
			t.Errorf("unexpected favorites %+v", fp)
		}

		resp := do(t, http.MethodGet, ts.URL+"/api/movies/favorites?page="+strconv.Itoa(math.MaxInt)+"&size=10", token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("huge page status = %d", resp.StatusCode)
		}
		if fp := decode[models.FavoritesPage](t, resp); len(fp.Content) != 0 {
			t.Errorf("huge page returned %d movies", len(fp.Content))
		}

		if resp := do(t, http.MethodDelete, ts.URL+"/api/movies/550/favorite", token, nil); resp.StatusCode != http.StatusNoContent {
			t.Errorf("remove status = %d", resp.StatusCode)
		}
		if resp := do(t, http.MethodDelete, ts.URL+"/api/movies/550/favorite", token, nil); resp.StatusCode != http.StatusNotFound {
			t.Errorf("second remove status = %d", resp.StatusCode)
		}
	})

	t.Run("Unknown route", func(t *testing.T) {
		resp := do(t, http.MethodGet, ts.URL+"/nope", "", nil)
		if resp.StatusCode != http.StatusNotFound || !strings.Contains(resp.Header.Get("Content-Type"), "problem+json") {
			t.Errorf("status = %d, content type = %q", resp.StatusCode, resp.Header.Get("Content-Type"))
		}
		if resp := do(t, http.MethodPut, ts.URL+"/api/movies/550", "", nil); resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("PUT status = %d", resp.StatusCode)
		}
	})
}

func TestCatalogLimits(t *testing.T) {
	data := NewCatalog(SeedMovies(), nil)
	movies := SeedMovies()

	for i := range MaxFavorites {
		if err := data.AddFavorite(DemoEmail, movies[i].ID); err != nil {
			t.Fatalf("AddFavorite(%d) error = %v", i, err)
		}
	}

	err := data.AddFavorite(DemoEmail, movies[MaxFavorites].ID)
	if !errors.Is(err, shared.ErrUnprocessable) {
		t.Errorf("expected ErrUnprocessable, got %v", err)
	}

	fp, _ := data.Favorites(DemoEmail, 1, 10)
	if fp.Number != 1 || len(fp.Content) != 10 || fp.TotalPages != 2 || !fp.Last || fp.First {
		t.Errorf("unexpected page %+v", fp)
	}
	if fp.Content[9].ID != movies[0].ID {
		t.Error("favorites should be most recent first")
	}

	for _, page := range []int{2, math.MaxInt / 10, math.MaxInt} {
		fp, err := data.Favorites(DemoEmail, page, 100)
		if err != nil || len(fp.Content) != 0 || !fp.Last {
			t.Errorf("Favorites(page=%d) = %+v, %v", page, fp, err)
		}
	}

	if _, err := data.Favorites(DemoEmail, -1, 10); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer([]byte("k"), time.Minute)

	t.Run("expired", func(t *testing.T) {
		token, _ := issuer.Issue(DemoEmail)
		issuer.SetClock(func() time.Time { return time.Now().Add(2 * time.Minute) })
		defer issuer.SetClock(time.Now)

		if _, err := issuer.Verify(token); err == nil {
			t.Error("expected expired token to fail")
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		token, _ := NewTokenIssuer([]byte("other"), time.Minute).Issue(DemoEmail)
		if _, err := issuer.Verify(token); err == nil {
			t.Error("expected signature failure")
		}
	})

	t.Run("default ttl", func(t *testing.T) {
		if ttl := NewTokenIssuer([]byte("k"), 0).TTL(); ttl != time.Hour {
			t.Errorf("TTL() = %v", ttl)
		}
	})
}

func TestRecoverer(t *testing.T) {
	router := NewRouter()
	router.Use(Recoverer(shared.NewLogger(&bytes.Buffer{})))
	router.Handle(http.MethodGet, "/boom", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRequestLoggerEchoesRequestID(t *testing.T) {
	var logs bytes.Buffer
	router := NewRouter()
	router.Use(RequestLogger(shared.NewLogger(&logs)))
	router.Handle(http.MethodGet, "/ok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") != "abc" {
		t.Error("expected request id echoed")
	}
	if !strings.Contains(logs.String(), "418") {
		t.Errorf("expected status in log, got %q", logs.String())
	}
}

// TestClientAgainstServer exercises the session and pipeline packages end to end.
func TestClientAgainstServer(t *testing.T) {
	s, ts := newTestServer(t)
	ctx := context.Background()
	quiet := shared.NewLogger(&bytes.Buffer{})

	store := session.NewMemoryStore()
	client := services.NewClient(ts.URL, store, services.WithLogger(quiet))
	catalog := services.NewCatalog(client)
	manager := session.NewManager(store, catalog, client, quiet)
	defer manager.Close()

	t.Run("login and logout", func(t *testing.T) {
		if err := manager.Login(ctx, "user@movie.com", "wrong"); !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		if err := manager.Login(ctx, "user@movie.com", "123456"); err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if u, ok := manager.User(); !ok || u.Email != "user@movie.com" {
			t.Errorf("User() = %+v, %v", u, ok)
		}
		if claims, ok := manager.Claims(); !ok || claims.Subject != DemoEmail {
			t.Errorf("Claims() = %+v, %v", claims, ok)
		}

		if err := catalog.AddFavorite(ctx, 680); err != nil {
			t.Fatalf("AddFavorite() error = %v", err)
		}
		m, err := catalog.Movie(ctx, 680)
		if err != nil || !m.Favorite {
			t.Errorf("Movie() = %+v, %v", m, err)
		}

		if err := manager.Logout(); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}
		if _, ok := store.Token(); ok {
			t.Error("token remains after logout")
		}
		if _, err := catalog.Favorites(ctx, 0, 10); !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("expired token forces logout", func(t *testing.T) {
		if err := manager.Login(ctx, "user@movie.com", "123456"); err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		s.Tokens().SetClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
		defer s.Tokens().SetClock(time.Now)

		_, err := catalog.Favorites(ctx, 0, 10)
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Fatalf("expected ErrTokenExpired, got %v", err)
		}
		if manager.IsAuthenticated() {
			t.Error("manager should be anonymous")
		}
		if _, ok := store.Get(); ok {
			t.Error("store should be empty")
		}
	})
}
