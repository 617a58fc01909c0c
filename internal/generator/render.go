package generator

import (
	"github.com/goliatone/go-blog/internal/blog"
	"github.com/goliatone/go-blog/internal/site"
)

// TagLink points at a generated tag page.
type TagLink struct {
	Name string
	URL  string
}

// DocumentView is the data passed to the post and talk templates.
type DocumentView struct {
	Site         site.Metadata
	Kind         blog.Kind
	Path         string
	CanonicalURL string
	Title        string
	Author       string
	Summary      string
	AccentColor  string
	Status       blog.Status
	Date         *blog.Date
	Cover        *blog.Cover
	// Content is the whole body; for talks the sections joined in order.
	Content  string
	Sections []string
	Tags     []TagLink
}

// EntryView is one index entry as listed on the index and tag pages.
type EntryView struct {
	Kind    blog.Kind
	URL     string
	Title   string
	Author  string
	Date    *blog.Date
	Summary string
	Tags    []TagLink
}

// IndexView is the data passed to the index template.
type IndexView struct {
	Site    site.Metadata
	Entries []EntryView
}

// TagView is the data passed to the tag template.
type TagView struct {
	Site    site.Metadata
	Tag     TagLink
	Title   string
	Entries []EntryView
}

// RedirectView is the data passed to the redirect template.
type RedirectView struct {
	From string
	To   string
}

func (s *service) documentView(doc *blog.Document, tags *tagIndex) DocumentView {
	meta := doc.Metadata
	view := DocumentView{
		Site:         s.deps.Site.Metadata(),
		Kind:         doc.Kind,
		Path:         doc.Path,
		CanonicalURL: s.deps.Site.CanonicalURL(doc.Path),
		Title:        meta.Title,
		Author:       meta.Author,
		Summary:      meta.Summary,
		AccentColor:  meta.AccentColor,
		Status:       meta.Status,
		Date:         meta.Date,
		Cover:        meta.Cover,
		Content:      doc.HTML(),
		Sections:     append([]string(nil), doc.Content...),
		Tags:         tags.links(meta.Tags),
	}
	if view.Author == "" {
		view.Author = view.Site.Author
	}
	return view
}

func (s *service) entryViews(entries []blog.IndexEntry, tags *tagIndex) []EntryView {
	views := make([]EntryView, 0, len(entries))
	for _, entry := range entries {
		meta := entry.EntryMetadata()
		views = append(views, EntryView{
			Kind:    entry.EntryKind(),
			URL:     s.deps.Site.CanonicalURL(entry.EntryLink()),
			Title:   entry.EntryTitle(),
			Author:  meta.Author,
			Date:    meta.Date,
			Summary: meta.Summary,
			Tags:    tags.links(meta.Tags),
		})
	}
	return views
}
