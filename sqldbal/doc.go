// Package sqldbal provides a uniform, thin abstraction over three
// heterogeneous SQL client libraries: an embedded file-based engine
// (SQLite), a MySQL-family network client, and a PostgreSQL network
// client. It exposes one handle-oriented API for connection
// management, direct execution, prepared statements with positional
// placeholders, row iteration, typed column extraction, and
// transactions, under a single status-code discipline shared across
// all three backends.
//
// The package never pools connections: every Connection wraps exactly
// one live backend session, opened synchronously and closed
// explicitly by the caller. There is no reconnection, no query
// rewriting, and no async I/O — every exported method blocks until
// the backend responds.
package sqldbal
