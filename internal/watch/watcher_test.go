package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWatcherRebuildsOnChange(t *testing.T) {
	root := t.TempDir()
	posts := filepath.Join(root, "posts")
	if err := os.MkdirAll(posts, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	calls := make(chan []string, 4)
	w, err := New(Options{Dirs: []string{root}, Debounce: 50 * time.Millisecond}, func(ctx context.Context, changed []string) error {
		calls <- changed
		return nil
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// give the watcher time to register directories
	time.Sleep(100 * time.Millisecond)

	target := filepath.Join(posts, "hello.md")
	if err := os.WriteFile(target, []byte("title: Hello\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case changed := <-calls:
		found := false
		for _, p := range changed {
			if p == target {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected %s in changed set, got %v", target, changed)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("expected rebuild to fire")
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	root := t.TempDir()

	var mu sync.Mutex
	rebuilds := 0
	w, err := New(Options{Dirs: []string{root}, Debounce: 200 * time.Millisecond}, func(ctx context.Context, changed []string) error {
		mu.Lock()
		rebuilds++
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		name := filepath.Join(root, "burst.md")
		if err := os.WriteFile(name, []byte{byte('a' + i)}, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	time.Sleep(800 * time.Millisecond)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if rebuilds != 1 {
		t.Fatalf("expected a single rebuild, got %d", rebuilds)
	}
}

func TestWatcherIgnoresPatterns(t *testing.T) {
	w, err := New(Options{Ignore: []string{"**/dist/**", "**/*.swp"}}, func(context.Context, []string) error { return nil })
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	cases := map[string]bool{
		"site/dist/index.html": true,
		"site/posts/a.md.swp":  true,
		"site/posts/.hidden":   true,
		"site/posts/a.md~":     true,
		"site/posts/a.md":      false,
	}
	for path, want := range cases {
		if got := w.ignored(filepath.FromSlash(path)); got != want {
			t.Errorf("ignored(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWatcherRequiresExistingDirectory(t *testing.T) {
	w, err := New(Options{Dirs: []string{filepath.Join(t.TempDir(), "missing")}}, func(context.Context, []string) error { return nil })
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := w.Run(context.Background()); !errors.Is(err, ErrNoDirectories) {
		t.Fatalf("expected ErrNoDirectories, got %v", err)
	}
}

func TestNewValidatesInput(t *testing.T) {
	if _, err := New(Options{}, nil); err == nil {
		t.Fatal("expected error for nil rebuild")
	}
	if _, err := New(Options{Ignore: []string{"[unclosed"}}, func(context.Context, []string) error { return nil }); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}
