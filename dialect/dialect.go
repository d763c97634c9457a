// Package dialect provides the backend-identity constants for the three
// data-source kinds of spec.md §3 (Sql, Document, Http) and the minimal
// Driver/Tx/ExecQuerier interfaces carried over from the teacher's dialect
// package. Only the SQL Execution Adapter (dialect/sql) implements Driver;
// the Document and Http adapters use their own interfaces
// (document.Adapter, httpds.HTTPClient).
package dialect

import "context"

// Dialect name constants. The SQL dialect ones are carried over verbatim
// from the teacher so that dialect/sql can keep using the same string
// switch idiom it was built with.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Document = "document"
	HTTP     = "http"
)

// Driver is implemented by the SQL Execution Adapter (dialect/sql's Driver
// and its Stats/Debug wrappers): it knows how to run a backend-native
// operation and decode the result. The Document and HTTP notes on Exec and
// Query below describe the shape of the interface only; no Document or
// HTTP type in this repository implements it.
type Driver interface {
	// Exec runs a backend-native mutation. args and v are backend-specific:
	// for SQL, args is []any binds and v is *sql.Result or nil; for
	// Document, args is a bson document and v is nil; HTTP never calls Exec.
	Exec(ctx context.Context, query string, args, v any) error
	// Query runs a backend-native read. args and v are backend-specific:
	// for SQL, args is []any binds and v is *Rows; for Document, args is a
	// filter document and v is *[]bson-like-document; for HTTP, query is
	// the request descriptor and v is the decoded JSON destination.
	Query(ctx context.Context, query string, args, v any) error
	// Close releases the underlying connection/client.
	Close() error
	// Dialect reports the backend identity (one of the constants above).
	Dialect() string
}

// Tx extends Driver with transaction control. Only the SQL backends
// implement it; spec.md §1 excludes cross-source transactionality, so Tx is
// never required by the resolver or compilers — it exists for a caller
// that wants single-backend transactional semantics around a sequence of
// operations on one SQL data source.
type Tx interface {
	Driver
	Commit() error
	Rollback() error
}

// ExecQuerier is implemented by both Driver and Tx.
type ExecQuerier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}
