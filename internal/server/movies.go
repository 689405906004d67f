package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/gorilla/mux"
)

// MoviesHandler serves the /api/movies endpoints.
type MoviesHandler struct {
	data   *Catalog
	tokens *TokenIssuer
	logger *log.Logger
}

func NewMoviesHandler(data *Catalog, tokens *TokenIssuer, logger *log.Logger) *MoviesHandler {
	return &MoviesHandler{data: data, tokens: tokens, logger: logger}
}

// Routes registers static paths before /{id} so "search", "popular" and "favorites" never parse as ids.
func (h *MoviesHandler) Routes() []Route {
	optional := []Middleware{OptionalAuth(h.tokens)}
	required := []Middleware{RequireAuth(h.tokens)}

	return []Route{
		{Method: http.MethodGet, Path: "/api/movies/search", Handler: h.search, Middleware: optional},
		{Method: http.MethodGet, Path: "/api/movies/popular", Handler: h.popular, Middleware: optional},
		{Method: http.MethodGet, Path: "/api/movies/favorites", Handler: h.favorites, Middleware: required},
		{Method: http.MethodGet, Path: "/api/movies/{id:[0-9]+}", Handler: h.movie, Middleware: optional},
		{Method: http.MethodGet, Path: "/api/movies/{id:[0-9]+}/credits", Handler: h.credits, Middleware: optional},
		{Method: http.MethodPost, Path: "/api/movies/{id:[0-9]+}/favorite", Handler: h.addFavorite, Middleware: required},
		{Method: http.MethodDelete, Path: "/api/movies/{id:[0-9]+}/favorite", Handler: h.removeFavorite, Middleware: required},
		{Method: http.MethodPost, Path: "/api/movies/{id:[0-9]+}/watch-later", Handler: h.addWatchLater, Middleware: required},
	}
}

func (h *MoviesHandler) search(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page", 1)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, _ := UserFromContext(r.Context())
	result, err := h.data.Search(user, r.URL.Query().Get("query"), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MoviesHandler) popular(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page", 1)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, _ := UserFromContext(r.Context())
	result, err := h.data.Popular(user, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MoviesHandler) movie(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, _ := UserFromContext(r.Context())
	m, err := h.data.Movie(user, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MoviesHandler) credits(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.data.Credits(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *MoviesHandler) favorites(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	size, err := intParam(r, "size", 10)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, _ := UserFromContext(r.Context())
	result, err := h.data.Favorites(user, page, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MoviesHandler) addFavorite(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.StatusCreated, h.data.AddFavorite)
}

func (h *MoviesHandler) removeFavorite(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.StatusNoContent, h.data.RemoveFavorite)
}

func (h *MoviesHandler) addWatchLater(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.StatusCreated, h.data.AddWatchLater)
}

func (h *MoviesHandler) mutate(w http.ResponseWriter, r *http.Request, status int, fn func(string, int64) error) {
	id, err := movieID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, _ := UserFromContext(r.Context())
	if err := fn(user, id); err != nil {
		h.logger.Debug("mutation rejected", "path", r.URL.Path, "error", err)
		writeError(w, r, err)
		return
	}
	w.WriteHeader(status)
}

func movieID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid movie id", shared.ErrInvalidInput)
	}
	return id, nil
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", shared.ErrInvalidInput, name)
	}
	return v, nil
}
