package noop

import (
	"context"
	"io"

	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/pkg/storage"
)

// Storage returns an interfaces.StorageProvider that accepts every operation
// and persists nothing. Writes drain their reader so callers observe the same
// byte counts a real sink would report.
func Storage() interfaces.StorageProvider {
	return storageAdapter{}
}

type storageAdapter struct{}

func (storageAdapter) Query(context.Context, string, ...any) (interfaces.Rows, error) {
	return nil, nil
}

func (storageAdapter) Exec(_ context.Context, query string, args ...any) (interfaces.Result, error) {
	if query != storage.OpWrite || len(args) < 2 {
		return result{}, nil
	}
	reader, ok := args[1].(io.Reader)
	if !ok || reader == nil {
		return result{}, nil
	}
	n, err := io.Copy(io.Discard, reader)
	return result{bytes: n}, err
}

func (s storageAdapter) Transaction(_ context.Context, fn func(interfaces.Transaction) error) error {
	if fn == nil {
		return nil
	}
	return fn(txAdapter{storageAdapter: s})
}

type txAdapter struct {
	storageAdapter
}

func (txAdapter) Commit() error   { return nil }
func (txAdapter) Rollback() error { return nil }

type result struct {
	bytes int64
}

func (result) RowsAffected() (int64, error)   { return 0, nil }
func (r result) LastInsertId() (int64, error) { return r.bytes, nil }
