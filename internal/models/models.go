// package models defines the data model for the movie catalog client
package models

import (
	"fmt"
	"strings"
)

// User is the cached display projection of the authenticated identity.
type User struct {
	Email string `json:"email"`
}

// Session pairs a bearer token with the user record it was issued for.
type Session struct {
	Token string
	User  User
}

// Valid reports whether both halves of the session are present.
func (s Session) Valid() bool {
	return s.Token != "" && s.User.Email != ""
}

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both fields are filled in.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// TokenResponse is returned by POST /auth/login.
type TokenResponse struct {
	Token     string `json:"token"`
	Type      string `json:"type,omitempty"`
	ExpiresIn int64  `json:"expiresIn,omitempty"` // seconds
}

// Movie is a read-only, server-owned catalog entry.
//
// Favorite and WatchLater reflect the current user's relationship as last reported by the server.
type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview,omitempty"`
	PosterPath   string  `json:"posterPath,omitempty"`
	BackdropPath string  `json:"backdropPath,omitempty"`
	ReleaseDate  string  `json:"releaseDate,omitempty"`
	VoteAverage  float64 `json:"voteAverage"`
	VoteCount    int     `json:"voteCount"`
	Popularity   float64 `json:"popularity,omitempty"`
	Favorite     bool    `json:"favorite"`
	WatchLater   bool    `json:"watchLater"`
}

// Year returns the release year or an empty string.
func (m Movie) Year() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}
	return m.ReleaseDate[:4]
}

// MoviePage is a 1-indexed page of search or popular results.
type MoviePage struct {
	Movies       []Movie `json:"movies"`
	Page         int     `json:"page"`
	TotalPages   int     `json:"totalPages"`
	TotalResults int64   `json:"totalResults"`
}

// FavoritesPage is a 0-indexed page of the user's favorites.
type FavoritesPage struct {
	Content       []Movie `json:"content"`
	Number        int     `json:"number"`
	Size          int     `json:"size"`
	TotalElements int64   `json:"totalElements"`
	TotalPages    int     `json:"totalPages"`
	First         bool    `json:"first"`
	Last          bool    `json:"last"`
}

// CastMember is an actor credited on a movie.
type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	ProfilePath string `json:"profilePath,omitempty"`
}

// CrewMember is a crew member credited on a movie.
type CrewMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job,omitempty"`
	Department  string `json:"department,omitempty"`
	ProfilePath string `json:"profilePath,omitempty"`
}

// Credits holds the cast and crew of a movie.
type Credits struct {
	MovieID int64        `json:"movieId"`
	Cast    []CastMember `json:"cast"`
	Crew    []CrewMember `json:"crew"`
}

// Directors returns the names of crew members whose job is Director.
func (c Credits) Directors() []string {
	var names []string
	for _, m := range c.Crew {
		if m.Job == "Director" {
			names = append(names, m.Name)
		}
	}
	return names
}

// Problem is an RFC 7807 error body.
type Problem struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}
