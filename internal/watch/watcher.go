// Package watch rebuilds the site when content or templates change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// DefaultDebounce is the quiet period collected before a rebuild fires.
const DefaultDebounce = 300 * time.Millisecond

// ErrNoDirectories is returned when none of the configured directories exist.
var ErrNoDirectories = errors.New("watch: no directories to watch")

// RebuildFunc receives the set of changed paths, sorted.
type RebuildFunc func(ctx context.Context, changed []string) error

// Options configures a Watcher.
type Options struct {
	// Dirs are watched recursively. Missing entries are skipped.
	Dirs []string
	// Ignore holds doublestar patterns matched against slash separated paths.
	Ignore   []string
	Debounce time.Duration
	Logger   interfaces.Logger
}

// Watcher batches filesystem events and hands them to a RebuildFunc.
type Watcher struct {
	opts    Options
	rebuild RebuildFunc
	logger  interfaces.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	fire    chan struct{}
}

// New validates options and returns a Watcher. Nothing is watched until Run.
func New(opts Options, rebuild RebuildFunc) (*Watcher, error) {
	if rebuild == nil {
		return nil, errors.New("watch: rebuild function required")
	}
	for _, pattern := range opts.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("watch: invalid ignore pattern %q", pattern)
		}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Watcher{
		opts:    opts,
		rebuild: rebuild,
		logger:  logger,
		pending: map[string]struct{}{},
		fire:    make(chan struct{}, 1),
	}, nil
}

// Run blocks until ctx is done. Rebuild errors are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer fsw.Close()

	watched := 0
	for _, root := range w.opts.Dirs {
		if strings.TrimSpace(root) == "" {
			continue
		}
		dirs, err := w.walkDirs(root)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				w.logger.Warn("watch.dir.missing", "dir", root)
				continue
			}
			return fmt.Errorf("watch: %w", err)
		}
		for _, dir := range dirs {
			if err := fsw.Add(dir); err != nil {
				w.logger.Warn("watch.dir.add_failed", "dir", dir, "error", err)
				continue
			}
			watched++
		}
	}
	if watched == 0 {
		return ErrNoDirectories
	}
	w.logger.Info("watch.start", "directories", watched, "debounce_ms", w.opts.Debounce.Milliseconds())

	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch.stop")
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(fsw, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch.error", "error", err)
		case <-w.fire:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handle(fsw *fsnotify.Watcher, event fsnotify.Event) {
	if w.ignored(event.Name) {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			dirs, err := w.walkDirs(event.Name)
			if err == nil {
				for _, dir := range dirs {
					if err := fsw.Add(dir); err != nil {
						w.logger.Warn("watch.dir.add_failed", "dir", dir, "error", err)
					}
				}
			}
		}
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
		return
	}
	w.logger.Debug("watch.event", "path", event.Name, "op", event.Op.String())

	w.mu.Lock()
	w.pending[event.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
	w.mu.Unlock()
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = map[string]struct{}{}
	w.mu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	start := time.Now()
	w.logger.Info("watch.rebuild.start", "changed", len(paths))
	if err := w.rebuild(ctx, paths); err != nil {
		w.logger.Error("watch.rebuild.failed", "error", err)
		return
	}
	w.logger.Info("watch.rebuild.complete", "duration_ms", time.Since(start).Milliseconds())
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) walkDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || w.ignored(path)) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}

func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return true
	}
	slashed := filepath.ToSlash(filepath.Clean(path))
	for _, pattern := range w.opts.Ignore {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return true
		}
	}
	return false
}
