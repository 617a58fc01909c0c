package templates_test

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-blog/internal/templates"
)

type redirectView struct {
	From string
	To   string
}

func TestRenderer_RendersEmbeddedDefaults(t *testing.T) {
	renderer := templates.NewRenderer(nil)

	out, err := renderer.Render(templates.Redirect, redirectView{From: "/old.html", To: "https://example.com/new.html"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, `<meta http-equiv="refresh" content="0; url=https://example.com/new.html">`) {
		t.Fatalf("expected refresh meta, got %q", out)
	}
}

func TestRenderer_WritesToProvidedWriter(t *testing.T) {
	renderer := templates.NewRenderer(nil)

	var buf bytes.Buffer
	out, err := renderer.RenderTemplate(templates.Redirect, redirectView{To: "/new.html"}, &buf)
	if err != nil {
		t.Fatalf("RenderTemplate: %v", err)
	}
	if out != "" || !strings.Contains(buf.String(), "/new.html") {
		t.Fatalf("expected output in writer only, got %q / %q", out, buf.String())
	}
}

func TestRenderer_Overrides(t *testing.T) {
	overrides := fstest.MapFS{
		"redirect.html": {Data: []byte(`moved to {{.To}}`)},
		"extra.tmpl":    {Data: []byte(`extra {{safeHTML .}}`)},
		"notes.txt":     {Data: []byte(`ignored`)},
	}
	renderer := templates.NewRenderer(overrides)

	out, err := renderer.Render(templates.Redirect, redirectView{To: "/x.html"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "moved to /x.html" {
		t.Fatalf("expected override, got %q", out)
	}

	out, err = renderer.Render("extra.tmpl", "<b>bold</b>")
	if err != nil {
		t.Fatalf("Render extra: %v", err)
	}
	if out != "extra <b>bold</b>" {
		t.Fatalf("unexpected extra output %q", out)
	}
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	renderer := templates.NewRenderer(nil)
	if _, err := renderer.Render("missing.html", nil); err == nil {
		t.Fatalf("expected error for unknown template")
	}
}

func TestRenderer_BrokenOverride(t *testing.T) {
	renderer := templates.NewRenderer(fstest.MapFS{"post.html": {Data: []byte(`{{ .Title `)}})
	if _, err := renderer.Render(templates.Post, nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestRenderer_RenderString(t *testing.T) {
	renderer := templates.NewRenderer(nil)
	out, err := renderer.RenderString(`{{join . ", "}}`, []string{"a", "b"})
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if out != "a, b" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestDefaults_ContainsEveryPage(t *testing.T) {
	for _, name := range []string{templates.Post, templates.Talk, templates.Index, templates.Tag, templates.Redirect} {
		if _, err := templates.Defaults().Open(name); err != nil {
			t.Fatalf("missing default template %s: %v", name, err)
		}
	}
}
