// package services defines interface CatalogService for interacting with the movie catalog API
package services

import (
	"context"

	"github.com/desertthunder/mvx/internal/models"
)

// CatalogService defines the catalog operations the views depend on. [Catalog] is the HTTP implementation.
type CatalogService interface {
	// Search returns a 1-indexed page of movies matching query.
	Search(ctx context.Context, query string, page int) (*models.MoviePage, error)

	// Popular returns a 1-indexed page of popular movies.
	Popular(ctx context.Context, page int) (*models.MoviePage, error)

	// Movie retrieves a movie by ID, with the current user's flags when authenticated.
	Movie(ctx context.Context, id int64) (*models.Movie, error)

	// Credits retrieves the cast and crew of a movie.
	Credits(ctx context.Context, id int64) (*models.Credits, error)

	// AddFavorite marks a movie as favorite. Requires authentication.
	AddFavorite(ctx context.Context, id int64) error

	// RemoveFavorite unmarks a favorite. Requires authentication.
	RemoveFavorite(ctx context.Context, id int64) error

	// Favorites returns a 0-indexed page of the user's favorites. Requires authentication.
	Favorites(ctx context.Context, page, size int) (*models.FavoritesPage, error)

	// AddWatchLater adds a movie to the watch-later list. Requires authentication.
	AddWatchLater(ctx context.Context, id int64) error

	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)
}

var _ CatalogService = (*Catalog)(nil)
