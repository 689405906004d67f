// Package repositories implements SQLite persistence for client-side state.
//
// The only entity the client owns is its session, stored as two rows of the kv table:
//   - token : the bearer credential
//   - user : the JSON user record
//
// [KeyValueRepository] writes and deletes related keys in one transaction, and [KeyValueRepository.DeleteIf]
// gives callers a compare-and-delete so a stale credential cannot remove a newer one.
package repositories
