package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	helloPost = "---\ntitle: Hello World\nauthor: Ada\ndate: 2023.8.29\ntags: go, web\n---\nHello **there**.\n"
	draftPost = "---\ntitle: Work In Progress\nauthor: Ada\nstatus: draft\n---\nNot yet.\n"
)

type nopProvider struct{}

func (nopProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }

func fixedNow() time.Time { return time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC) }

func writeSite(t *testing.T, posts map[string]string) (string, string) {
	t.Helper()
	root := t.TempDir()
	postsDir := filepath.Join(root, "content", "posts")
	if err := os.MkdirAll(postsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for name, body := range posts {
		if err := os.WriteFile(filepath.Join(postsDir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	config := strings.Join([]string{
		"content:",
		"  dir: " + filepath.Join(root, "content"),
		"  pattern: \"*.md\"",
		"generator:",
		"  output_dir: " + filepath.Join(root, "dist"),
		"  generate_robots: true",
		"site:",
		"  title: Test Blog",
		"  author: Ada",
		"  canonical_origin: https://example.com/",
		"logging:",
		"  level: debug",
	}, "\n") + "\n"
	cfgPath := filepath.Join(root, "blog.yaml")
	if err := os.WriteFile(cfgPath, []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return root, cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(Options{
		Out:            &out,
		Err:            &out,
		LoggerProvider: nopProvider{},
		Now:            fixedNow,
	})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBuildWritesSite(t *testing.T) {
	root, cfgPath := writeSite(t, map[string]string{"hello.md": helloPost})

	out, err := run(t, "build", "--config", cfgPath)
	if err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}
	for _, rel := range []string{"index.html", "posts/hello.html", "feed.xml", "sitemap.xml", "robots.txt", "tags/go.html"} {
		if _, err := os.Stat(filepath.Join(root, "dist", rel)); err != nil {
			t.Errorf("expected %s to be written: %v", rel, err)
		}
	}
	if !strings.Contains(out, "Build complete") {
		t.Fatalf("expected summary in output, got %q", out)
	}
}

func TestBuildOutputFlagOverridesConfig(t *testing.T) {
	root, cfgPath := writeSite(t, map[string]string{"hello.md": helloPost})
	output := filepath.Join(root, "public")

	if out, err := run(t, "build", "--config", cfgPath, "--output", output); err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(output, "index.html")); err != nil {
		t.Fatalf("expected index in flag output dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "dist")); !os.IsNotExist(err) {
		t.Fatalf("expected config output dir to stay untouched, got %v", err)
	}
}

func TestBuildCleanRejectsUnsafeOutputDirs(t *testing.T) {
	root, cfgPath := writeSite(t, map[string]string{"hello.md": helloPost})
	post := filepath.Join(root, "content", "posts", "hello.md")

	for _, output := range []string{"..", filepath.Join(root, "content"), root} {
		if _, err := run(t, "build", "--config", cfgPath, "--clean", "--output", output); err == nil {
			t.Fatalf("expected --clean with output %q to be rejected", output)
		}
	}
	if _, err := os.Stat(post); err != nil {
		t.Fatalf("expected source post to survive: %v", err)
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Fatalf("expected config to survive: %v", err)
	}
}

func TestBuildCleanRemovesLeftovers(t *testing.T) {
	root, cfgPath := writeSite(t, map[string]string{"hello.md": helloPost})
	leftover := filepath.Join(root, "dist", "stale.html")
	if err := os.MkdirAll(filepath.Dir(leftover), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(leftover, []byte("old"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if out, err := run(t, "build", "--config", cfgPath, "--clean"); err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}
	if _, err := os.Stat(leftover); !os.IsNotExist(err) {
		t.Fatalf("expected leftover to be removed, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "dist", "index.html")); err != nil {
		t.Fatalf("expected index after clean build: %v", err)
	}
}

func TestBuildDryRunWritesNothing(t *testing.T) {
	root, cfgPath := writeSite(t, map[string]string{"hello.md": helloPost})

	out, err := run(t, "build", "--config", cfgPath, "--dry-run")
	if err != nil {
		t.Fatalf("dry run: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(root, "dist")); !os.IsNotExist(err) {
		t.Fatalf("expected no output dir, got %v", err)
	}
	if !strings.Contains(out, "nothing written") {
		t.Fatalf("expected dry run summary, got %q", out)
	}
}

func TestBuildRejectsCleanDryRun(t *testing.T) {
	_, cfgPath := writeSite(t, map[string]string{"hello.md": helloPost})

	if _, err := run(t, "build", "--config", cfgPath, "--dry-run", "--clean"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestBuildPublishRejectsDatelessPost(t *testing.T) {
	_, cfgPath := writeSite(t, map[string]string{
		"hello.md":   helloPost,
		"undated.md": "---\ntitle: Undated\nauthor: Ada\n---\nbody\n",
	})

	if _, err := run(t, "build", "--config", cfgPath); err != nil {
		t.Fatalf("draft build should accept undated posts: %v", err)
	}
	if _, err := run(t, "build", "--config", cfgPath, "--publish"); err == nil {
		t.Fatal("expected publish build to fail on an undated post")
	}
}

func TestCheckReportsCounts(t *testing.T) {
	_, cfgPath := writeSite(t, map[string]string{
		"hello.md": helloPost,
		"draft.md": draftPost,
	})

	out, err := run(t, "check", "--config", cfgPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Content OK") {
		t.Fatalf("expected check summary, got %q", out)
	}

	out, err = run(t, "check", "--config", cfgPath, "--publish")
	if err != nil {
		t.Fatalf("check publish: %v\n%s", err, out)
	}
	if !strings.Contains(out, "(publish)") {
		t.Fatalf("expected publish marker, got %q", out)
	}
}

func TestCheckFailsOnMalformedContent(t *testing.T) {
	_, cfgPath := writeSite(t, map[string]string{
		"bad.md": "---\ntitle: Bad\nauthor: Ada\ndate: 2023-01-01\n---\nbody\n",
	})

	if _, err := run(t, "check", "--config", cfgPath); err == nil {
		t.Fatal("expected invalid date error")
	}
}

func TestConfigSchemaRejectsUnknownKeys(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "blog.yaml")
	if err := os.WriteFile(cfgPath, []byte("generator:\n  output: dist\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := run(t, "check", "--config", cfgPath)
	if err == nil {
		t.Fatal("expected schema error")
	}
	if !strings.Contains(err.Error(), runtimeconfig.ErrConfigDocumentInvalid.Error()) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestMissingExplicitConfigFails(t *testing.T) {
	if _, err := run(t, "check", "--config", filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected missing config error")
	}
}

func TestOutputIgnore(t *testing.T) {
	if got := outputIgnore("."); got != nil {
		t.Fatalf("expected no patterns for working dir, got %v", got)
	}
	got := outputIgnore("site/dist/")
	if len(got) != 2 || got[0] != "site/dist" || got[1] != "site/dist/**" {
		t.Fatalf("unexpected patterns %v", got)
	}
}
