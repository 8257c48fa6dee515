// Package session keeps per-conversation chat history in memory with idle
// expiry. Each mutation refreshes the session's idle clock; a session that
// goes quiet past its TTL is swept and behaves as if it never existed.
package session
