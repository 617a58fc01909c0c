package storage

import "context"

// Provider is the minimal query/exec contract the generator writes artifacts
// through. Operations are named strings (for example "generator.write") so
// disk, memory, and remote backends can share one interface.
type Provider interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	Transaction(ctx context.Context, fn func(tx Transaction) error) error
}

// Rows iterates query results.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

// Result reports the effect of an Exec call.
type Result interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}

// Transaction groups operations that should be applied together.
type Transaction interface {
	Provider
	Commit() error
	Rollback() error
}

// Operation names understood by artifact sinks.
const (
	OpEnsureDir = "generator.ensure_dir"
	OpWrite     = "generator.write"
	OpRead      = "generator.read"
	OpRemove    = "generator.remove"
	// OpClear empties a directory and keeps the directory itself.
	OpClear = "generator.clear"
)
