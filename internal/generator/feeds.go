package generator

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/blog"
	"github.com/goliatone/go-blog/internal/identity"
	"github.com/goliatone/go-blog/internal/site"
)

const (
	defaultFeedLimit = 100
	rssFileName      = "feed.xml"
	atomFileName     = "feed.atom.xml"
)

type feedItem struct {
	Title       string
	Author      string
	Summary     string
	Link        string
	GUID        string
	Categories  []string
	PublishedAt time.Time
}

type feedDocument struct {
	Site    site.Metadata
	ID      string
	SelfRSS string
	Self    string
	Updated time.Time
	Items   []feedItem
}

func (s *service) buildFeedDocument(entries []blog.IndexEntry) feedDocument {
	limit := s.cfg.FeedLimit
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	updated := s.deps.Site.Updated()
	doc := feedDocument{
		Site:    s.deps.Site.Metadata(),
		ID:      identity.URN(identity.FeedUUID(s.deps.Site.CanonicalOrigin())),
		SelfRSS: s.deps.Site.CanonicalURL(rssFileName),
		Self:    s.deps.Site.CanonicalURL(atomFileName),
		Updated: updated,
	}
	for _, entry := range entries {
		if len(doc.Items) >= limit {
			break
		}
		meta := entry.EntryMetadata()
		link := s.deps.Site.CanonicalURL(entry.EntryLink())
		published := updated
		if date, ok := entry.EntryDate(); ok {
			published = date.Time()
		}
		author := meta.Author
		if author == "" {
			author = doc.Site.Author
		}
		doc.Items = append(doc.Items, feedItem{
			Title:       entry.EntryTitle(),
			Author:      author,
			Summary:     normalizeWhitespace(meta.Summary),
			Link:        link,
			GUID:        identity.URN(identity.EntryUUID(link)),
			Categories:  blog.Tags(entry),
			PublishedAt: published,
		})
	}
	return doc
}

func (s *service) writeFeeds(ctx context.Context, sink *artifactSink, entries []blog.IndexEntry) (int, error) {
	doc := s.buildFeedDocument(entries)
	generatedAt := doc.Updated.UTC().Format(time.RFC3339)

	rss := buildRSSFeed(doc)
	if err := sink.put(ctx, rssFileName, categoryFeed, "application/rss+xml", []byte(rss), map[string]string{
		"feed_type":    "rss",
		"generated_at": generatedAt,
		"items":        fmt.Sprint(len(doc.Items)),
	}); err != nil {
		return 0, err
	}

	atom := buildAtomFeed(doc)
	if err := sink.put(ctx, atomFileName, categoryFeed, "application/atom+xml", []byte(atom), map[string]string{
		"feed_type":    "atom",
		"generated_at": generatedAt,
		"items":        fmt.Sprint(len(doc.Items)),
	}); err != nil {
		return 1, err
	}
	return 2, nil
}

func buildRSSFeed(doc feedDocument) string {
	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">` + "\n")
	builder.WriteString("  <channel>\n")
	builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(doc.Site.Title)))
	builder.WriteString(fmt.Sprintf("    <link>%s</link>\n", escapeXML(doc.Site.CanonicalOrigin)))
	builder.WriteString(fmt.Sprintf("    <description>%s</description>\n", escapeXML(feedDescription(doc.Site))))
	if doc.Site.Language != "" {
		builder.WriteString(fmt.Sprintf("    <language>%s</language>\n", escapeXML(doc.Site.Language)))
	}
	builder.WriteString(fmt.Sprintf("    <lastBuildDate>%s</lastBuildDate>\n", doc.Updated.UTC().Format(time.RFC1123Z)))
	builder.WriteString(fmt.Sprintf(`    <atom:link href="%s" rel="self" type="application/rss+xml" />`+"\n", escapeXMLAttr(doc.SelfRSS)))
	for _, item := range doc.Items {
		builder.WriteString("    <item>\n")
		builder.WriteString(fmt.Sprintf("      <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf("      <link>%s</link>\n", escapeXML(item.Link)))
		builder.WriteString(fmt.Sprintf(`      <guid isPermaLink="false">%s</guid>`+"\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("      <pubDate>%s</pubDate>\n", item.PublishedAt.UTC().Format(time.RFC1123Z)))
		for _, category := range item.Categories {
			builder.WriteString(fmt.Sprintf("      <category>%s</category>\n", escapeXML(category)))
		}
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("      <description>%s</description>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("    </item>\n")
	}
	builder.WriteString("  </channel>\n")
	builder.WriteString(`</rss>` + "\n")
	return builder.String()
}

func buildAtomFeed(doc feedDocument) string {
	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	if doc.Site.Language != "" {
		builder.WriteString(fmt.Sprintf(`<feed xmlns="http://www.w3.org/2005/Atom" xml:lang="%s">`+"\n", escapeXMLAttr(doc.Site.Language)))
	} else {
		builder.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom">` + "\n")
	}
	builder.WriteString(fmt.Sprintf("  <id>%s</id>\n", escapeXML(doc.ID)))
	builder.WriteString(fmt.Sprintf("  <title>%s</title>\n", escapeXML(doc.Site.Title)))
	if doc.Site.Subtitle != "" {
		builder.WriteString(fmt.Sprintf("  <subtitle>%s</subtitle>\n", escapeXML(doc.Site.Subtitle)))
	}
	builder.WriteString(fmt.Sprintf("  <updated>%s</updated>\n", doc.Updated.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf(`  <link rel="alternate" href="%s" />`+"\n", escapeXMLAttr(doc.Site.CanonicalOrigin)))
	builder.WriteString(fmt.Sprintf(`  <link rel="self" href="%s" />`+"\n", escapeXMLAttr(doc.Self)))
	if doc.Site.Author != "" {
		builder.WriteString(fmt.Sprintf("  <author><name>%s</name></author>\n", escapeXML(doc.Site.Author)))
	}
	for _, item := range doc.Items {
		builder.WriteString("  <entry>\n")
		builder.WriteString(fmt.Sprintf("    <id>%s</id>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf(`    <link href="%s" />`+"\n", escapeXMLAttr(item.Link)))
		builder.WriteString(fmt.Sprintf("    <updated>%s</updated>\n", item.PublishedAt.UTC().Format(time.RFC3339)))
		builder.WriteString(fmt.Sprintf("    <published>%s</published>\n", item.PublishedAt.UTC().Format(time.RFC3339)))
		if item.Author != "" {
			builder.WriteString(fmt.Sprintf("    <author><name>%s</name></author>\n", escapeXML(item.Author)))
		}
		for _, category := range item.Categories {
			builder.WriteString(fmt.Sprintf(`    <category term="%s" />`+"\n", escapeXMLAttr(category)))
		}
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf(`    <summary type="html">%s</summary>`+"\n", escapeXML(item.Summary)))
		}
		builder.WriteString("  </entry>\n")
	}
	builder.WriteString(`</feed>` + "\n")
	return builder.String()
}

func feedDescription(meta site.Metadata) string {
	if desc := strings.TrimSpace(meta.Subtitle); desc != "" {
		return desc
	}
	return "Latest updates"
}

func normalizeWhitespace(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	return strings.Join(strings.Fields(input), " ")
}

func escapeXML(value string) string {
	return html.EscapeString(value)
}

func escapeXMLAttr(value string) string {
	return html.EscapeString(value)
}
