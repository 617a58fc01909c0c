package blog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Status is the lifecycle state of a document. It is fixed per source file
// for the duration of a build.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusTest      Status = "test"
	StatusPublished Status = "published"
	StatusUnlisted  Status = "unlisted"
)

// ParseStatus matches value case-insensitively against the known statuses.
// An empty value yields StatusPublished.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case "", StatusPublished:
		return StatusPublished, nil
	case StatusDraft:
		return StatusDraft, nil
	case StatusTest:
		return StatusTest, nil
	case StatusUnlisted:
		return StatusUnlisted, nil
	default:
		return "", fmt.Errorf("unknown status %q", value)
	}
}

// Publishable reports whether documents with this status survive publish mode.
func (s Status) Publishable() bool {
	return s == StatusPublished || s == StatusUnlisted
}

// Listed reports whether documents with this status appear in navigation.
func (s Status) Listed() bool {
	return s != StatusUnlisted
}

// Cover is either a plain image URL or a set of image attributes.
type Cover struct {
	URL        string
	Attributes map[string]string
}

// Src returns the image URL, taken from the "src" or "url" attribute when the
// cover was given as a mapping.
func (c Cover) Src() string {
	if c.URL != "" {
		return c.URL
	}
	if src := c.Attributes["src"]; src != "" {
		return src
	}
	return c.Attributes["url"]
}

func (c Cover) MarshalJSON() ([]byte, error) {
	if c.Attributes != nil {
		return json.Marshal(c.Attributes)
	}
	return json.Marshal(c.URL)
}

// Metadata is the decoded frontmatter of a document or external link.
type Metadata struct {
	Title        string
	Author       string
	Date         *Date
	Summary      string
	Tags         []string
	Cover        *Cover
	AccentColor  string
	Status       Status
	CanonicalURL string
	Link         string
}

// SortDate returns the date and whether it was present.
func (m Metadata) SortDate() (Date, bool) {
	if m.Date == nil {
		return Date{}, false
	}
	return *m.Date, true
}

// MarshalJSON emits both the display and timestamp forms of the date.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"title":  m.Title,
		"author": m.Author,
		"tags":   nonNilTags(m.Tags),
		"status": m.Status,
	}
	if m.Date != nil {
		out["date"] = m.Date.Display()
		out["date_timestamp"] = m.Date.Timestamp()
	}
	if m.Summary != "" {
		out["summary"] = m.Summary
	}
	if m.Cover != nil {
		out["cover"] = m.Cover
	}
	if m.AccentColor != "" {
		out["accent_color"] = m.AccentColor
	}
	if m.CanonicalURL != "" {
		out["canonical_url"] = m.CanonicalURL
	}
	if m.Link != "" {
		out["link"] = m.Link
	}
	return json.Marshal(out)
}

// DecodeOptions controls metadata decoding.
type DecodeOptions struct {
	// Path identifies the source in error messages.
	Path string
	// RenderSummary passes the summary through Parser.
	RenderSummary bool
	// Parser renders Markdown summaries and bodies.
	Parser interfaces.MarkdownParser
}

// DecodeMetadata decodes a frontmatter block. A nil block decodes as an empty
// mapping, which fails on the first required field.
func DecodeMetadata(block *markdown.Block, opts DecodeOptions) (Metadata, error) {
	raw, err := markdown.DecodeBlock(block)
	if err != nil {
		return Metadata{}, &Error{Kind: ErrMalformedFrontmatter, Path: opts.Path, Err: err}
	}
	return DecodeMetadataMap(raw, opts)
}

// DecodeMetadataMap applies field coercions to an already decoded mapping.
// Keys are matched case-insensitively and unknown keys are ignored.
func DecodeMetadataMap(raw map[string]any, opts DecodeOptions) (Metadata, error) {
	fields := make(map[string]any, len(raw))
	for key, value := range raw {
		folded := strings.ToLower(strings.TrimSpace(key))
		if _, dup := fields[folded]; dup {
			return Metadata{}, &Error{Kind: ErrMalformedFrontmatter, Path: opts.Path, Field: folded, Err: fmt.Errorf("duplicate key %q", folded)}
		}
		fields[folded] = normalizeValue(value)
	}

	var meta Metadata
	var err error

	if meta.Title, err = requiredString(fields, "title", opts.Path); err != nil {
		return Metadata{}, err
	}
	if meta.Author, err = requiredString(fields, "author", opts.Path); err != nil {
		return Metadata{}, err
	}

	if value, ok := fields["date"]; ok {
		literal, isString := value.(string)
		if !isString {
			return Metadata{}, &Error{Kind: ErrInvalidDate, Path: opts.Path, Field: "date", Value: fmt.Sprint(value)}
		}
		date, parseErr := ParseDate(literal)
		if parseErr != nil {
			return Metadata{}, &Error{Kind: ErrInvalidDate, Path: opts.Path, Field: "date", Value: literal, Err: parseErr}
		}
		meta.Date = &date
	}

	if meta.Summary, err = optionalString(fields, "summary", opts.Path); err != nil {
		return Metadata{}, err
	}
	if meta.Summary != "" && opts.RenderSummary {
		if opts.Parser == nil {
			return Metadata{}, &Error{Kind: ErrMalformedFrontmatter, Path: opts.Path, Field: "summary", Err: fmt.Errorf("no markdown parser configured")}
		}
		html, renderErr := opts.Parser.Parse([]byte(meta.Summary))
		if renderErr != nil {
			return Metadata{}, &Error{Kind: ErrMalformedFrontmatter, Path: opts.Path, Field: "summary", Err: renderErr}
		}
		meta.Summary = string(html)
	}

	if meta.Tags, err = decodeTags(fields["tags"], opts.Path); err != nil {
		return Metadata{}, err
	}

	if meta.Cover, err = decodeCover(fields["cover"], opts.Path); err != nil {
		return Metadata{}, err
	}

	if meta.AccentColor, err = optionalString(fields, "accent_color", opts.Path); err != nil {
		return Metadata{}, err
	}
	if meta.CanonicalURL, err = optionalString(fields, "canonical_url", opts.Path); err != nil {
		return Metadata{}, err
	}
	if meta.Link, err = optionalString(fields, "link", opts.Path); err != nil {
		return Metadata{}, err
	}

	statusValue, err := optionalString(fields, "status", opts.Path)
	if err != nil {
		return Metadata{}, err
	}
	status, statusErr := ParseStatus(statusValue)
	if statusErr != nil {
		return Metadata{}, &Error{Kind: ErrInvalidStatus, Path: opts.Path, Field: "status", Value: statusValue}
	}
	meta.Status = status

	return meta, nil
}

// SplitTags splits a comma separated literal. Each tag is trimmed and order is
// kept; empty tags between commas are preserved.
func SplitTags(literal string) []string {
	parts := strings.Split(literal, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tags = append(tags, strings.TrimSpace(part))
	}
	return tags
}

func decodeTags(value any, path string) ([]string, error) {
	switch typed := value.(type) {
	case nil:
		return []string{}, nil
	case string:
		return SplitTags(typed), nil
	case []string:
		tags := make([]string, 0, len(typed))
		for _, tag := range typed {
			tags = append(tags, strings.TrimSpace(tag))
		}
		return tags, nil
	default:
		return nil, &Error{Kind: ErrMalformedFrontmatter, Path: path, Field: "tags", Err: fmt.Errorf("expected a comma separated string or a list, got %T", value)}
	}
}

func decodeCover(value any, path string) (*Cover, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case string:
		return &Cover{URL: strings.TrimSpace(typed)}, nil
	case map[string]string:
		attrs := make(map[string]string, len(typed))
		for key, attr := range typed {
			attrs[strings.ToLower(key)] = attr
		}
		return &Cover{Attributes: attrs}, nil
	default:
		return nil, &Error{Kind: ErrMalformedFrontmatter, Path: path, Field: "cover", Err: fmt.Errorf("expected a URL or a mapping, got %T", value)}
	}
}

func requiredString(fields map[string]any, key, path string) (string, error) {
	value, err := optionalString(fields, key, path)
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", &Error{Kind: ErrMissingRequiredField, Path: path, Field: key}
	}
	return value, nil
}

func optionalString(fields map[string]any, key, path string) (string, error) {
	value, ok := fields[key]
	if !ok || value == nil {
		return "", nil
	}
	text, ok := value.(string)
	if !ok {
		return "", &Error{Kind: ErrMalformedFrontmatter, Path: path, Field: key, Err: fmt.Errorf("expected a string, got %T", value)}
	}
	return strings.TrimSpace(text), nil
}

// normalizeValue converts loosely typed values, such as those produced by
// configuration decoders, into the shapes produced by markdown.DecodeBlock.
func normalizeValue(value any) any {
	switch typed := value.(type) {
	case []any:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprint(item))
		}
		return items
	case map[string]any:
		attrs := make(map[string]string, len(typed))
		for key, item := range typed {
			attrs[key] = fmt.Sprint(item)
		}
		return attrs
	case map[any]any:
		attrs := make(map[string]string, len(typed))
		for key, item := range typed {
			attrs[fmt.Sprint(key)] = fmt.Sprint(item)
		}
		return attrs
	default:
		return value
	}
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
