package site_test

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-blog/internal/blog"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/internal/site"
)

func fixedNow() time.Time {
	return time.Date(2024, time.March, 5, 14, 7, 42, 0, time.FixedZone("CET", 3600))
}

func TestNew(t *testing.T) {
	cfg := runtimeconfig.SiteConfig{
		Title:           "Kayla",
		Subtitle:        "notes",
		CanonicalOrigin: "https://example.com/blog",
		ExternalLinks: []map[string]any{{
			"title":         "Elsewhere",
			"author":        "Ada",
			"date":          "2023.5.2",
			"tags":          "a, b",
			"canonical_url": "https://other.example/post",
		}},
		Redirects: []runtimeconfig.RedirectConfig{{From: "/posts/old.html", To: "/posts/new.html"}},
	}

	s, err := site.New(cfg, site.Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	meta := s.Metadata()
	if meta.Updated != "2024-03-05T13:07:00.000Z" {
		t.Fatalf("unexpected updated stamp %q", meta.Updated)
	}
	if meta.OGTitle != "Kayla" {
		t.Fatalf("og title should default to title, got %q", meta.OGTitle)
	}
	if meta.CanonicalOrigin != "https://example.com/blog/" {
		t.Fatalf("unexpected origin %q", meta.CanonicalOrigin)
	}

	links := s.ExternalLinks()
	if len(links) != 1 || links[0].Path != "https://other.example/post" {
		t.Fatalf("unexpected links %#v", links)
	}
	if len(links[0].Metadata.Tags) != 2 {
		t.Fatalf("expected tags to be split, got %#v", links[0].Metadata.Tags)
	}
	links[0].Path = "mutated"
	if s.ExternalLinks()[0].Path == "mutated" {
		t.Fatalf("ExternalLinks must return a copy")
	}

	if redirects := s.Redirects(); len(redirects) != 1 || redirects[0].OutputPath() != "posts/old.html" {
		t.Fatalf("unexpected redirects %#v", redirects)
	}
}

func TestCanonicalURL(t *testing.T) {
	s, err := site.New(runtimeconfig.SiteConfig{Title: "x", CanonicalOrigin: "https://example.com"}, site.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cases := map[string]string{
		"posts/a.html":          "https://example.com/posts/a.html",
		"/posts/a.html":         "https://example.com/posts/a.html",
		"":                      "https://example.com/",
		"https://other.example": "https://other.example",
	}
	for in, want := range cases {
		if got := s.CanonicalURL(in); got != want {
			t.Errorf("CanonicalURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNew_ExternalLinkRequiresDate(t *testing.T) {
	cfg := runtimeconfig.SiteConfig{
		Title:           "x",
		CanonicalOrigin: "https://example.com",
		ExternalLinks:   []map[string]any{{"title": "t", "author": "a", "canonical_url": "https://o.example"}},
	}
	_, err := site.New(cfg, site.Options{})
	var blogErr *blog.Error
	if !errors.As(err, &blogErr) || blogErr.Field != "date" {
		t.Fatalf("expected missing date error, got %v", err)
	}
	if blogErr.Path != "site.external_links[0]" {
		t.Fatalf("unexpected path %q", blogErr.Path)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := site.New(runtimeconfig.SiteConfig{}, site.Options{}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestRedirectOutputPath(t *testing.T) {
	cases := map[string]string{
		"/old.html":     "old.html",
		"/section/":     "section/index.html",
		"/section":      "section/index.html",
		"/../etc/x.htm": "etc/x.htm",
	}
	for from, want := range cases {
		if got := (site.Redirect{From: from}).OutputPath(); got != want {
			t.Errorf("OutputPath(%q) = %q, want %q", from, got, want)
		}
	}
}
