package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-blog/internal/adapters/noop"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

type nopProvider struct{}

func (nopProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }

func TestBuildModuleWiresGenerator(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Site.CanonicalOrigin = "https://example.com/"

	module, err := BuildModule(Options{
		Config:         cfg,
		LoggerProvider: nopProvider{},
		ContentFS: fstest.MapFS{
			"posts/hello.md": {Data: []byte("---\ntitle: Hello\nauthor: Ada\ndate: 2024.1.2\n---\nbody\n")},
			"talks/deck.md":  {Data: []byte("---\ntitle: Deck\nauthor: Ada\ndate: 2024.2.3\n---\none\n+++\ntwo\n")},
		},
		Storage: noop.Storage(),
		Now:     func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	if module.Build == nil || module.Check == nil {
		t.Fatal("expected command handlers")
	}

	result, err := module.Generator.Check(context.Background(), generator.CheckOptions{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Posts != 1 || result.Talks != 1 {
		t.Fatalf("expected one post and one talk, got %+v", result)
	}

	build, err := module.Generator.Build(context.Background(), generator.BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if build.Documents != 2 {
		t.Fatalf("expected 2 documents, got %d", build.Documents)
	}
}

func TestBuildModuleValidatesConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.OutputDir = ""

	_, err := BuildModule(Options{Config: cfg, LoggerProvider: nopProvider{}})
	if !errors.Is(err, runtimeconfig.ErrOutputDirRequired) {
		t.Fatalf("expected ErrOutputDirRequired, got %v", err)
	}
}

func TestBuildModuleCleanStaysInsideOutputDir(t *testing.T) {
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	outputDir := filepath.Join(root, "public")
	post := filepath.Join(contentDir, "posts", "hello.md")
	writeFile(t, post, "---\ntitle: Hello\nauthor: Ada\ndate: 2024.1.2\n---\nbody\n")
	writeFile(t, filepath.Join(outputDir, "leftover.html"), "old")
	writeFile(t, filepath.Join(root, "keep.txt"), "keep")

	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Dir = contentDir
	cfg.Content.TalksDir = ""
	cfg.Generator.OutputDir = outputDir
	module, err := BuildModule(Options{Config: cfg, LoggerProvider: nopProvider{}})
	if err != nil {
		t.Fatalf("build module: %v", err)
	}

	if _, err := module.Generator.Build(context.Background(), generator.BuildOptions{Clean: true}); err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "leftover.html")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected leftover output to be cleaned, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "posts", "hello.html")); err != nil {
		t.Fatalf("expected rendered post: %v", err)
	}
	for _, path := range []string{post, filepath.Join(root, "keep.txt")} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to survive a clean build: %v", path, err)
		}
	}
}

func TestBuildModuleRejectsOutputOverContent(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.OutputDir = cfg.Content.Dir

	_, err := BuildModule(Options{Config: cfg, LoggerProvider: nopProvider{}})
	if !errors.Is(err, runtimeconfig.ErrOutputDirOverlaps) {
		t.Fatalf("expected ErrOutputDirOverlaps, got %v", err)
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestNewLoggerProviderRejectsUnknownFormat(t *testing.T) {
	if _, err := NewLoggerProvider(runtimeconfig.LoggingConfig{Format: "xml"}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}
