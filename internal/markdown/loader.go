package markdown

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// LoaderConfig configures how source files are discovered.
type LoaderConfig struct {
	// Pattern limits discovered files to base names matching the glob.
	// An empty pattern accepts every regular file.
	Pattern string
}

// File is a raw source file read from the loader filesystem.
type File struct {
	Path     string
	Source   []byte
	ModTime  time.Time
	Checksum []byte
}

// Loader reads source files from an fs.FS. Directory listings are never
// recursive.
type Loader struct {
	fs      fs.FS
	pattern string
}

// NewLoader constructs a Loader for the provided filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) (*Loader, error) {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("markdown loader: invalid pattern %q", pattern)
	}
	return &Loader{fs: filesystem, pattern: pattern}, nil
}

// LoadFile reads a single file.
func (l *Loader) LoadFile(ctx context.Context, name string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name = cleanPath(name)
	info, err := fs.Stat(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("markdown loader %s: %w", name, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid})
	}

	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", name, err)
	}

	sum := sha256.Sum256(data)
	return &File{
		Path:     name,
		Source:   data,
		ModTime:  info.ModTime(),
		Checksum: sum[:],
	}, nil
}

// LoadDirectory reads every regular file directly inside dir, in file name
// order. Sub-directories are skipped and symlinks are resolved through the
// filesystem. The first failure aborts the listing.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir = cleanPath(dir)
	entries, err := fs.ReadDir(l.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("markdown loader list %s: %w", dir, err)
	}

	var files []*File
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		ok, err := l.matches(entry.Name())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		name := path.Join(dir, entry.Name())
		if entry.Type()&fs.ModeSymlink != 0 || !entry.Type().IsRegular() {
			info, err := fs.Stat(l.fs, name)
			if err != nil {
				return nil, fmt.Errorf("markdown loader stat %s: %w", name, err)
			}
			if !info.Mode().IsRegular() {
				continue
			}
		}

		file, err := l.LoadFile(ctx, name)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func (l *Loader) matches(name string) (bool, error) {
	if l.pattern == "" {
		return true, nil
	}
	ok, err := doublestar.Match(l.pattern, name)
	if err != nil {
		return false, fmt.Errorf("markdown loader: match %q: %w", l.pattern, err)
	}
	return ok, nil
}

func cleanPath(name string) string {
	name = path.Clean(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return "."
	}
	return name
}
