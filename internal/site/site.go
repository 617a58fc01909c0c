// Package site holds the immutable, site wide configuration shared by a build:
// presentation metadata, the canonical origin, external links and redirects.
package site

import (
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/blog"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
)

// UpdatedLayout formats the build timestamp exposed to templates.
const UpdatedLayout = "2006-01-02T15:04:00.000Z"

// Options tune how a Site is built.
type Options struct {
	// Now defaults to time.Now.
	Now func() time.Time
	// Decode is used for external link metadata.
	Decode blog.DecodeOptions
}

// Metadata is the template view of the site.
type Metadata struct {
	Title           string
	Subtitle        string
	Author          string
	Language        string
	Favicon         string
	Thumbnail       string
	OGTitle         string
	OGImage         string
	CanonicalOrigin string
	Updated         string
}

// Redirect maps an old path to a new location.
type Redirect struct {
	From string
	To   string
}

// OutputPath returns the file written for the redirect source.
func (r Redirect) OutputPath() string {
	name := strings.TrimPrefix(path.Clean("/"+r.From), "/")
	if name == "" || strings.HasSuffix(r.From, "/") || path.Ext(name) == "" {
		return path.Join(name, "index.html")
	}
	return name
}

// Site is safe for concurrent reads; accessors return copies.
type Site struct {
	meta      Metadata
	origin    *url.URL
	updated   time.Time
	externals []blog.ExternalLink
	redirects []Redirect
}

// New validates cfg and decodes its external links.
func New(cfg runtimeconfig.SiteConfig, opts Options) (*Site, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("site: %w", err)
	}

	origin, err := url.Parse(strings.TrimSpace(cfg.CanonicalOrigin))
	if err != nil {
		return nil, fmt.Errorf("site: canonical origin: %w", err)
	}
	if !strings.HasSuffix(origin.Path, "/") {
		origin.Path += "/"
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	updated := now().UTC()

	externals := make([]blog.ExternalLink, 0, len(cfg.ExternalLinks))
	for idx, raw := range cfg.ExternalLinks {
		decode := opts.Decode
		decode.Path = fmt.Sprintf("site.external_links[%d]", idx)
		link, err := blog.NewExternalLink(raw, decode)
		if err != nil {
			return nil, err
		}
		externals = append(externals, link)
	}

	redirects := make([]Redirect, 0, len(cfg.Redirects))
	for _, redirect := range cfg.Redirects {
		redirects = append(redirects, Redirect{
			From: strings.TrimSpace(redirect.From),
			To:   strings.TrimSpace(redirect.To),
		})
	}

	ogTitle := cfg.OGTitle
	if ogTitle == "" {
		ogTitle = cfg.Title
	}

	return &Site{
		meta: Metadata{
			Title:           cfg.Title,
			Subtitle:        cfg.Subtitle,
			Author:          cfg.Author,
			Language:        cfg.Language,
			Favicon:         cfg.Favicon,
			Thumbnail:       cfg.Thumbnail,
			OGTitle:         ogTitle,
			OGImage:         cfg.OGImage,
			CanonicalOrigin: origin.String(),
			Updated:         updated.Format(UpdatedLayout),
		},
		origin:    origin,
		updated:   updated,
		externals: externals,
		redirects: redirects,
	}, nil
}

// Metadata returns the template view.
func (s *Site) Metadata() Metadata {
	return s.meta
}

// Updated returns the build time captured when the site was created.
func (s *Site) Updated() time.Time {
	return s.updated
}

// CanonicalOrigin returns the origin with a trailing slash.
func (s *Site) CanonicalOrigin() string {
	return s.origin.String()
}

// CanonicalURL joins p under the canonical origin. Absolute URLs are
// returned unchanged.
func (s *Site) CanonicalURL(p string) string {
	if parsed, err := url.Parse(p); err == nil && parsed.IsAbs() {
		return p
	}
	ref := &url.URL{Path: strings.TrimPrefix(p, "/")}
	return s.origin.ResolveReference(ref).String()
}

// ExternalLinks returns the configured external links.
func (s *Site) ExternalLinks() []blog.ExternalLink {
	return slices.Clone(s.externals)
}

// Redirects returns the redirect table.
func (s *Site) Redirects() []Redirect {
	return slices.Clone(s.redirects)
}
