package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
)

// Catalog implements [CatalogService] over a [Client]. It never retries or caches.
type Catalog struct {
	client *Client
}

// NewCatalog creates a [Catalog] sending every call through client.
func NewCatalog(client *Client) *Catalog {
	return &Catalog{client: client}
}

// Client returns the pipeline the catalog sends through.
func (c *Catalog) Client() *Client {
	return c.client
}

// Search calls GET /api/movies/search. page is 1-indexed.
func (c *Catalog) Search(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is empty", shared.ErrInvalidInput)
	}
	if err := validatePage(page, 1); err != nil {
		return nil, err
	}

	var result models.MoviePage
	q := url.Values{"query": {query}, "page": {strconv.Itoa(page)}}
	if err := c.client.Do(ctx, Request{Method: http.MethodGet, Path: "/api/movies/search", Query: q}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Popular calls GET /api/movies/popular. page is 1-indexed.
func (c *Catalog) Popular(ctx context.Context, page int) (*models.MoviePage, error) {
	if err := validatePage(page, 1); err != nil {
		return nil, err
	}

	var result models.MoviePage
	q := url.Values{"page": {strconv.Itoa(page)}}
	if err := c.client.Do(ctx, Request{Method: http.MethodGet, Path: "/api/movies/popular", Query: q}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Movie calls GET /api/movies/{id}.
func (c *Catalog) Movie(ctx context.Context, id int64) (*models.Movie, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	var movie models.Movie
	if err := c.client.Do(ctx, Request{Method: http.MethodGet, Path: moviePath(id)}, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// Credits calls GET /api/movies/{id}/credits.
func (c *Catalog) Credits(ctx context.Context, id int64) (*models.Credits, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	var credits models.Credits
	if err := c.client.Do(ctx, Request{Method: http.MethodGet, Path: moviePath(id) + "/credits"}, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

// AddFavorite calls POST /api/movies/{id}/favorite.
func (c *Catalog) AddFavorite(ctx context.Context, id int64) error {
	return c.mutate(ctx, http.MethodPost, id, "/favorite")
}

// RemoveFavorite calls DELETE /api/movies/{id}/favorite.
func (c *Catalog) RemoveFavorite(ctx context.Context, id int64) error {
	return c.mutate(ctx, http.MethodDelete, id, "/favorite")
}

// AddWatchLater calls POST /api/movies/{id}/watch-later.
func (c *Catalog) AddWatchLater(ctx context.Context, id int64) error {
	return c.mutate(ctx, http.MethodPost, id, "/watch-later")
}

// Favorites calls GET /api/movies/favorites. page is 0-indexed.
func (c *Catalog) Favorites(ctx context.Context, page, size int) (*models.FavoritesPage, error) {
	if err := validatePage(page, 0); err != nil {
		return nil, err
	}
	if size < 1 {
		return nil, fmt.Errorf("%w: page size must be positive, got %d", shared.ErrInvalidInput, size)
	}

	var result models.FavoritesPage
	q := url.Values{"page": {strconv.Itoa(page)}, "size": {strconv.Itoa(size)}}
	if err := c.client.Do(ctx, Request{Method: http.MethodGet, Path: "/api/movies/favorites", Query: q}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login calls POST /auth/login. The request never carries a stored token.
func (c *Catalog) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	creds := models.Credentials{Email: email, Password: password}
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	var resp models.TokenResponse
	r := Request{Method: http.MethodPost, Path: "/auth/login", Body: creds, Anonymous: true}
	if err := c.client.Do(ctx, r, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Catalog) mutate(ctx context.Context, method string, id int64, suffix string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return c.client.Do(ctx, Request{Method: method, Path: moviePath(id) + suffix}, nil)
}

func moviePath(id int64) string {
	return "/api/movies/" + strconv.FormatInt(id, 10)
}

func validateID(id int64) error {
	if id < 1 {
		return fmt.Errorf("%w: movie id must be positive, got %d", shared.ErrInvalidInput, id)
	}
	return nil
}

func validatePage(page, first int) error {
	if page < first {
		return fmt.Errorf("%w: page must be at least %d, got %d", shared.ErrInvalidInput, first, page)
	}
	return nil
}
