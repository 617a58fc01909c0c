package runtimeconfig_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-blog/internal/runtimeconfig"
)

func TestValidateDocument_Accepts(t *testing.T) {
	doc := map[string]any{
		"content":   map[string]any{"dir": "content", "posts_dir": "posts"},
		"generator": map[string]any{"output_dir": "dist", "workers": 4, "render_timeout": "30s"},
		"site": map[string]any{
			"title":            "Blog",
			"canonical_origin": "https://example.com",
			"external_links": []any{
				map[string]any{
					"title":         "Elsewhere",
					"author":        "Ada",
					"date":          "2023.5.2",
					"canonical_url": "https://elsewhere.example/post",
				},
			},
			"redirects": []map[string]string{{"from": "/a.html", "to": "/b.html"}},
		},
		"logging": map[string]any{"level": "debug", "format": "json"},
	}
	if err := runtimeconfig.ValidateDocument(doc); err != nil {
		t.Fatalf("ValidateDocument: %v", err)
	}
}

func TestValidateDocument_Rejects(t *testing.T) {
	doc := map[string]any{
		"generator": map[string]any{"workers": -1, "unknown": true},
		"site": map[string]any{
			"external_links": []any{map[string]any{"title": "x", "author": "y", "date": "2023-05-02", "canonical_url": "u"}},
		},
		"logging": map[string]any{"format": "xml"},
		"themes":  map[string]any{},
	}

	err := runtimeconfig.ValidateDocument(doc)
	if !errors.Is(err, runtimeconfig.ErrConfigDocumentInvalid) {
		t.Fatalf("expected ErrConfigDocumentInvalid, got %v", err)
	}
	var docErr *runtimeconfig.DocumentError
	if !errors.As(err, &docErr) || len(docErr.Issues) < 4 {
		t.Fatalf("expected several issues, got %#v", docErr)
	}
	if !strings.Contains(err.Error(), "/logging/format") {
		t.Fatalf("expected issue location in message, got %q", err.Error())
	}
}
