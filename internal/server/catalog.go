package server

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
)

const (
	// MaxFavorites is the per-user favorites limit.
	MaxFavorites = 20
	// ResultsPerPage is the page size of search and popular listings.
	ResultsPerPage = 20
	// MaxPage is the highest page search and popular will serve.
	MaxPage = 500
)

// Catalog is the in-memory movie data with per-user favorites and watch-later lists.
type Catalog struct {
	mu         sync.RWMutex
	movies     []models.Movie // by popularity, descending
	byID       map[int64]models.Movie
	credits    map[int64]models.Credits
	favorites  map[string][]int64 // most recent first
	watchLater map[string][]int64
}

// NewCatalog indexes movies and credits.
func NewCatalog(movies []models.Movie, credits []models.Credits) *Catalog {
	c := &Catalog{
		movies:     slices.Clone(movies),
		byID:       make(map[int64]models.Movie, len(movies)),
		credits:    make(map[int64]models.Credits, len(credits)),
		favorites:  map[string][]int64{},
		watchLater: map[string][]int64{},
	}
	slices.SortStableFunc(c.movies, func(a, b models.Movie) int {
		switch {
		case a.Popularity > b.Popularity:
			return -1
		case a.Popularity < b.Popularity:
			return 1
		}
		return 0
	})
	for _, m := range c.movies {
		c.byID[m.ID] = m
	}
	for _, cr := range credits {
		c.credits[cr.MovieID] = cr
	}
	return c
}

// Popular returns a 1-indexed page of movies by popularity.
func (c *Catalog) Popular(user string, page int) (models.MoviePage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paginate(user, c.movies, page)
}

// Search matches query against titles and overviews, case-insensitively.
func (c *Catalog) Search(user, query string, page int) (models.MoviePage, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return models.MoviePage{}, fmt.Errorf("%w: query must not be empty", shared.ErrInvalidInput)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var matches []models.Movie
	for _, m := range c.movies {
		if strings.Contains(strings.ToLower(m.Title), query) || strings.Contains(strings.ToLower(m.Overview), query) {
			matches = append(matches, m)
		}
	}
	return c.paginate(user, matches, page)
}

// Movie returns a movie with user's flags applied.
func (c *Catalog) Movie(user string, id int64) (models.Movie, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.byID[id]
	if !ok {
		return models.Movie{}, movieNotFound(id)
	}
	return c.withFlags(user, m), nil
}

// Credits returns the cast and crew of a movie. Movies without recorded credits get empty lists.
func (c *Catalog) Credits(id int64) (models.Credits, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.byID[id]; !ok {
		return models.Credits{}, movieNotFound(id)
	}
	cr, ok := c.credits[id]
	if !ok {
		return models.Credits{MovieID: id, Cast: []models.CastMember{}, Crew: []models.CrewMember{}}, nil
	}
	return cr, nil
}

// AddFavorite records id as user's newest favorite.
func (c *Catalog) AddFavorite(user string, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[id]; !ok {
		return movieNotFound(id)
	}
	favs := c.favorites[user]
	if slices.Contains(favs, id) {
		return fmt.Errorf("%w: movie %d is already in favorites", shared.ErrConflict, id)
	}
	if len(favs) >= MaxFavorites {
		return fmt.Errorf("%w: favorites limit of %d reached", shared.ErrUnprocessable, MaxFavorites)
	}
	c.favorites[user] = append([]int64{id}, favs...)
	return nil
}

// RemoveFavorite removes id from user's favorites.
func (c *Catalog) RemoveFavorite(user string, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	favs := c.favorites[user]
	i := slices.Index(favs, id)
	if i < 0 {
		return fmt.Errorf("%w: movie %d is not in favorites", shared.ErrNotFound, id)
	}
	c.favorites[user] = slices.Delete(slices.Clone(favs), i, i+1)
	return nil
}

// AddWatchLater adds id to user's watch-later list. Adding twice is a no-op.
func (c *Catalog) AddWatchLater(user string, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[id]; !ok {
		return movieNotFound(id)
	}
	if !slices.Contains(c.watchLater[user], id) {
		c.watchLater[user] = append(c.watchLater[user], id)
	}
	return nil
}

// Favorites returns a 0-indexed page of user's favorites.
func (c *Catalog) Favorites(user string, page, size int) (models.FavoritesPage, error) {
	if page < 0 || size < 1 || size > 100 {
		return models.FavoritesPage{}, fmt.Errorf("%w: page must be >= 0 and size between 1 and 100", shared.ErrInvalidInput)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	favs := c.favorites[user]
	total := len(favs)
	totalPages := (total + size - 1) / size

	// Pages past the end are empty; checking page first keeps page*size from overflowing.
	content := []models.Movie{}
	if page < totalPages {
		for i := page * size; i < min(total, (page+1)*size); i++ {
			content = append(content, c.withFlags(user, c.byID[favs[i]]))
		}
	}

	return models.FavoritesPage{
		Content:       content,
		Number:        page,
		Size:          size,
		TotalElements: int64(total),
		TotalPages:    totalPages,
		First:         page == 0,
		Last:          page >= totalPages-1,
	}, nil
}

func (c *Catalog) paginate(user string, movies []models.Movie, page int) (models.MoviePage, error) {
	if page < 1 || page > MaxPage {
		return models.MoviePage{}, fmt.Errorf("%w: page must be between 1 and %d", shared.ErrInvalidInput, MaxPage)
	}

	total := len(movies)
	result := models.MoviePage{
		Movies:       []models.Movie{},
		Page:         page,
		TotalPages:   (total + ResultsPerPage - 1) / ResultsPerPage,
		TotalResults: int64(total),
	}
	for i := (page - 1) * ResultsPerPage; i < total && i < page*ResultsPerPage; i++ {
		result.Movies = append(result.Movies, c.withFlags(user, movies[i]))
	}
	return result, nil
}

// withFlags must be called with c.mu held.
func (c *Catalog) withFlags(user string, m models.Movie) models.Movie {
	if user == "" {
		return m
	}
	m.Favorite = slices.Contains(c.favorites[user], m.ID)
	m.WatchLater = slices.Contains(c.watchLater[user], m.ID)
	return m
}

func movieNotFound(id int64) error {
	return fmt.Errorf("%w: movie with id %d", shared.ErrNotFound, id)
}
