package generator

import (
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-blog/internal/blog"
	"github.com/goliatone/go-slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const tagsDir = "tags"

type tagPage struct {
	Slug    string
	Name    string
	Title   string
	Path    string
	URL     string
	Entries []blog.IndexEntry
}

// tagIndex groups index entries by tag slug. Tags that normalize to the same
// slug share a page named after the first spelling seen.
type tagIndex struct {
	pages   map[string]*tagPage
	bySlug  []string
	aliases map[string]string
	skipped []string
	urlFor  func(string) string
}

func buildTagIndex(entries []blog.IndexEntry, lang string, urlFor func(string) string) *tagIndex {
	idx := &tagIndex{
		pages:   map[string]*tagPage{},
		aliases: map[string]string{},
		urlFor:  urlFor,
	}
	caser := cases.Title(languageTag(lang))
	for _, entry := range entries {
		seen := map[string]struct{}{}
		for _, tag := range blog.Tags(entry) {
			key := idx.slugFor(tag)
			if key == "" {
				idx.skipped = append(idx.skipped, tag)
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			page, ok := idx.pages[key]
			if !ok {
				rel := path.Join(tagsDir, key+".html")
				page = &tagPage{
					Slug:  key,
					Name:  strings.TrimSpace(tag),
					Title: caser.String(strings.TrimSpace(tag)),
					Path:  rel,
					URL:   urlFor(rel),
				}
				idx.pages[key] = page
				idx.bySlug = append(idx.bySlug, key)
			}
			page.Entries = append(page.Entries, entry)
		}
	}
	sort.Strings(idx.bySlug)
	return idx
}

func (idx *tagIndex) slugFor(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	if cached, ok := idx.aliases[tag]; ok {
		return cached
	}
	normalized, err := slug.Normalize(tag)
	if err != nil {
		normalized = ""
	}
	idx.aliases[tag] = normalized
	return normalized
}

// links maps document tags to tag page links. Tags without a page are kept
// with an empty URL so templates can still print them.
func (idx *tagIndex) links(tags []string) []TagLink {
	out := make([]TagLink, 0, len(tags))
	for _, tag := range tags {
		name := strings.TrimSpace(tag)
		if name == "" {
			continue
		}
		link := TagLink{Name: name}
		if idx != nil {
			if page, ok := idx.pages[idx.slugFor(name)]; ok {
				link.URL = page.URL
			}
		}
		out = append(out, link)
	}
	return out
}

func (idx *tagIndex) ordered() []*tagPage {
	if idx == nil {
		return nil
	}
	out := make([]*tagPage, 0, len(idx.bySlug))
	for _, key := range idx.bySlug {
		out = append(out, idx.pages[key])
	}
	return out
}

func languageTag(lang string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return language.English
	}
	return tag
}
