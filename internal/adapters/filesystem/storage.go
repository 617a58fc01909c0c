// Package filesystem writes generator artifacts to the local disk.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/pkg/storage"
)

// ErrOutsideRoot reports a path that resolves outside the storage root.
var ErrOutsideRoot = errors.New("filesystem: path escapes storage root")

// Storage implements interfaces.StorageProvider on top of os. Every path,
// relative or absolute, must resolve inside root.
type Storage struct {
	root    string
	written atomic.Int64
}

var _ interfaces.StorageProvider = (*Storage)(nil)

// NewStorage returns a provider rooted at root. An empty root means the
// working directory.
func NewStorage(root string) *Storage {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}
	root = filepath.Clean(root)
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Storage{root: root}
}

// Root reports the directory relative paths resolve against.
func (s *Storage) Root() string {
	return s.root
}

// BytesWritten reports the total bytes copied by write operations.
func (s *Storage) BytesWritten() int64 {
	return s.written.Load()
}

func (s *Storage) Query(ctx context.Context, query string, args ...any) (interfaces.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if query != storage.OpRead || len(args) == 0 {
		return nil, nil
	}
	target, err := s.resolve(args[0])
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fileRows{data: data}, nil
}

func (s *Storage) Exec(ctx context.Context, query string, args ...any) (interfaces.Result, error) {
	if err := ctx.Err(); err != nil {
		return result{}, err
	}
	switch query {
	case storage.OpEnsureDir:
		if len(args) == 0 {
			return result{}, fmt.Errorf("filesystem: ensure_dir requires path")
		}
		target, err := s.resolve(args[0])
		if err != nil {
			return result{}, err
		}
		return result{}, os.MkdirAll(target, 0o755)
	case storage.OpWrite:
		if len(args) < 2 {
			return result{}, fmt.Errorf("filesystem: write requires path and reader")
		}
		target, err := s.resolve(args[0])
		if err != nil {
			return result{}, err
		}
		reader, ok := args[1].(io.Reader)
		if !ok || reader == nil {
			return result{}, fmt.Errorf("filesystem: write expects io.Reader content, got %T", args[1])
		}
		return s.write(target, reader)
	case storage.OpRemove:
		if len(args) == 0 {
			return result{}, fmt.Errorf("filesystem: remove requires path")
		}
		target, err := s.resolve(args[0])
		if err != nil {
			return result{}, err
		}
		if target == s.root {
			return result{}, fmt.Errorf("filesystem: refusing to remove the storage root %q", target)
		}
		err = os.RemoveAll(target)
		if errors.Is(err, os.ErrNotExist) {
			return result{}, nil
		}
		return result{rows: 1}, err
	case storage.OpClear:
		if len(args) == 0 {
			return result{}, fmt.Errorf("filesystem: clear requires path")
		}
		target, err := s.resolve(args[0])
		if err != nil {
			return result{}, err
		}
		return s.clear(target)
	default:
		return result{}, fmt.Errorf("filesystem: unsupported operation %q", query)
	}
}

func (s *Storage) Transaction(ctx context.Context, fn func(tx interfaces.Transaction) error) error {
	if fn == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&storageTx{storage: s})
}

func (s *Storage) write(target string, reader io.Reader) (interfaces.Result, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return result{}, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return result{}, err
	}
	n, copyErr := io.Copy(tmp, reader)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmp.Name())
		return result{}, errors.Join(copyErr, closeErr)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return result{}, err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return result{}, err
	}
	s.written.Add(n)
	return result{rows: 1, bytes: n}, nil
}

// clear removes the entries of dir and keeps dir itself. A missing directory
// is already clear.
func (s *Storage) clear(dir string) (interfaces.Result, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return result{}, nil
	}
	if err != nil {
		return result{}, err
	}
	var removed int64
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return result{rows: removed}, err
		}
		removed++
	}
	return result{rows: removed}, nil
}

func (s *Storage) resolve(arg any) (string, error) {
	rel, ok := arg.(string)
	if !ok {
		return "", fmt.Errorf("filesystem: path must be a string, got %T", arg)
	}
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return s.root, nil
	}
	target := filepath.FromSlash(rel)
	if !filepath.IsAbs(target) {
		target = filepath.Join(s.root, target)
	}
	target = filepath.Clean(target)
	if !within(s.root, target) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rel)
	}
	return target, nil
}

// within reports whether target is root or sits below it.
func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

type storageTx struct {
	storage *Storage
}

func (tx *storageTx) Query(ctx context.Context, query string, args ...any) (interfaces.Rows, error) {
	return tx.storage.Query(ctx, query, args...)
}

func (tx *storageTx) Exec(ctx context.Context, query string, args ...any) (interfaces.Result, error) {
	return tx.storage.Exec(ctx, query, args...)
}

func (tx *storageTx) Transaction(context.Context, func(interfaces.Transaction) error) error {
	return errors.New("filesystem: nested transactions not supported")
}

func (tx *storageTx) Commit() error {
	return nil
}

func (tx *storageTx) Rollback() error {
	return nil
}

type result struct {
	rows  int64
	bytes int64
}

func (r result) RowsAffected() (int64, error) { return r.rows, nil }
func (r result) LastInsertId() (int64, error) { return r.bytes, nil }

type fileRows struct {
	data []byte
	read bool
}

func (r *fileRows) Next() bool {
	if r.read {
		return false
	}
	r.read = true
	return true
}

func (r *fileRows) Scan(dest ...any) error {
	if len(dest) == 0 {
		return fmt.Errorf("filesystem: scan requires destination")
	}
	switch target := dest[0].(type) {
	case *[]byte:
		*target = append((*target)[:0], r.data...)
	case *string:
		*target = string(r.data)
	default:
		return fmt.Errorf("filesystem: unsupported scan destination %T", dest[0])
	}
	return nil
}

func (r *fileRows) Close() error {
	return nil
}
