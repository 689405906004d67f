// Package server provides an in-memory implementation of the movie catalog REST API for local development and
// tests.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [MuxRouter] implementation uses gorilla/mux so routes can carry path variables and method matching.
// Unmatched paths and methods answer with RFC 7807 problem details.
//
// # Handler Interface
//
// Handlers implement [Handler] and return their [Route] list. Each route may carry its own middleware,
// which is how endpoints choose between [RequireAuth] and [OptionalAuth].
//
// # Authentication
//
// POST /auth/login checks the seeded account (user@movie.com / 123456, bcrypt hashed) and returns an HS256
// token from [TokenIssuer]. Protected routes answer 401 for a missing, invalid or expired token. Routes with
// optional auth treat such a token as anonymous and omit the favorite and watch-later flags.
//
// # Catalog Rules
//
//   - search and popular are 1-indexed, 20 results per page, pages above 500 are rejected
//   - favorites are 0-indexed and most recent first
//   - at most [MaxFavorites] favorites per user (422), adding one twice is a conflict (409)
package server
