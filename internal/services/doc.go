// Package services implements the HTTP pipeline and the typed client for the movie catalog API.
//
// # Client Pipeline
//
// Every outbound call goes through [Client.Do]:
//  1. wait on the optional rate limiter (catalog.requests_per_second)
//  2. attach Authorization: Bearer <token> when the store holds a token and the request is not anonymous
//  3. tag the request with X-Request-ID and open an OpenTelemetry span
//  4. decode 2xx JSON into the caller's value
//
// A 401 answering a token-bearing request clears that token from the store (compare-and-clear, so a newer
// session survives) and calls every function registered with [Client.OnForcedLogout]. A 401 without a token
// has no side effect. Login is sent anonymously, so bad credentials never end an existing session.
//
// # Catalog
//
// [Catalog] implements [CatalogService] with one method per REST operation. Arguments are validated before any
// request is sent; mutations return nothing and callers refetch.
//
// # Error Handling
//
// Non-2xx responses are returned as [*APIError], which matches the status sentinels from the shared package:
//   - [shared.ErrUnauthorized] : 401, plus [shared.ErrTokenExpired] when a token was attached
//   - [shared.ErrNotFound], [shared.ErrConflict], [shared.ErrUnprocessable] : 404, 409, 422
//   - [shared.ErrServiceUnavailable] : 503
//   - [shared.ErrClient], [shared.ErrServer] : other 4xx and 5xx
//
// Transport failures wrap [shared.ErrNetwork]. [Describe] turns any of these into a message for the views.
package services
