// Package session owns client-side authentication state.
//
// # Store
//
// A [Store] keeps the bearer token and the user record ({email}) as a pair. [SQLiteStore] writes them to the
// kv table so a session survives restarts; [MemoryStore] is used for tests and --ephemeral runs.
// Read failures, a half-written pair or a corrupt user record all read as "no session".
//
// # Manager
//
// [Manager] is the single owner of the Anonymous/Authenticated state:
//   - the initial state is loaded synchronously from the store
//   - [Manager.Login] and [Manager.Logout] write the store, then transition
//   - forced logouts arrive from the HTTP pipeline through [LogoutNotifier]
//
// Consumers read a [Snapshot] value and may [Manager.Subscribe] to transitions. A forced logout for a token
// that is no longer current is ignored, so an in-flight response cannot end a newer session.
package session
