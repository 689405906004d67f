// Package models defines the wire and domain types shared by the mvx client, views and development server.
//
// The package contains two categories of types:
//
// 1. Catalog DTOs, owned by the server and never edited locally:
//   - [Movie] : catalog entry with the user's favorite/watch-later flags
//   - [MoviePage] : 1-indexed search and popular results
//   - [FavoritesPage] : 0-indexed favorites listing
//   - [Credits] : cast and crew
//   - [Problem] : RFC 7807 error body
//
// 2. Session types, owned by the persisted session store:
//   - [Session] : bearer token with its [User] record
//   - [Credentials] and [TokenResponse] : login request and response
package models
