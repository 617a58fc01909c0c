package blog

import (
	"encoding/json"
	"errors"
	"path"
	"strings"
	"sync"

	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

var (
	parserOnce   sync.Once
	sharedParser *markdown.GoldmarkParser
)

// Kind identifies the content kind of a document or index entry.
type Kind string

const (
	KindPost     Kind = "post"
	KindTalk     Kind = "talk"
	KindExternal Kind = "external"
)

func (k Kind) rank() int {
	switch k {
	case KindPost:
		return 0
	case KindTalk:
		return 1
	default:
		return 2
	}
}

// TalkSectionDelimiter separates talk sections in the body.
const TalkSectionDelimiter = "+++"

// Document is a post or talk built from one source file.
type Document struct {
	Kind     Kind
	Path     string
	Source   string
	Metadata Metadata
	Content  []string

	strippedRoot string
}

// NewDocument splits raw, decodes its metadata and renders the body. Posts
// render to a single HTML block; talks render one block per section.
func NewDocument(kind Kind, source string, raw []byte, opts DecodeOptions) (*Document, error) {
	source = path.Clean(strings.ReplaceAll(source, "\\", "/"))
	if opts.Path == "" {
		opts.Path = source
	}
	if opts.Parser == nil {
		opts.Parser = defaultParser()
	}

	parts, err := markdown.Split(string(raw))
	if err != nil {
		if errors.Is(err, markdown.ErrUnterminatedFrontmatter) {
			return nil, &Error{Kind: ErrMalformedFrontmatter, Path: opts.Path, Err: err}
		}
		return nil, err
	}

	meta, err := DecodeMetadata(parts.Frontmatter, opts)
	if err != nil {
		return nil, err
	}

	sections := []string{parts.Body}
	if kind == KindTalk {
		sections = SplitSections(parts.Body)
	}

	content := make([]string, 0, len(sections))
	for _, section := range sections {
		html, err := opts.Parser.Parse([]byte(section))
		if err != nil {
			return nil, &Error{Kind: ErrMalformedFrontmatter, Path: opts.Path, Err: err}
		}
		content = append(content, string(html))
	}

	return &Document{
		Kind:     kind,
		Path:     HTMLPath(source),
		Source:   source,
		Metadata: meta,
		Content:  content,
	}, nil
}

// HTMLPath rewrites the extension of name to ".html".
func HTMLPath(name string) string {
	return strings.TrimSuffix(name, path.Ext(name)) + ".html"
}

// SplitSections splits a body on lines equal to TalkSectionDelimiter.
func SplitSections(body string) []string {
	var sections []string
	var current strings.Builder
	for _, line := range strings.SplitAfter(body, "\n") {
		if strings.TrimSuffix(line, "\n") == TalkSectionDelimiter {
			sections = append(sections, current.String())
			current.Reset()
			continue
		}
		current.WriteString(line)
	}
	return append(sections, current.String())
}

// StripRoot removes root from the front of Path. Calling it again with the
// same root is a no-op.
func (d *Document) StripRoot(root string) {
	root = strings.Trim(path.Clean(strings.ReplaceAll(root, "\\", "/")), "/")
	if d == nil || root == "" || root == "." || d.strippedRoot == root {
		return
	}
	if rest, ok := strings.CutPrefix(d.Path, root+"/"); ok {
		d.Path = rest
		d.strippedRoot = root
	}
}

// HTML returns the rendered content joined in order.
func (d *Document) HTML() string {
	if d == nil {
		return ""
	}
	return strings.Join(d.Content, "")
}

// SortDate returns the document date and whether it was present.
func (d *Document) SortDate() (Date, bool) {
	return d.Metadata.SortDate()
}

// Title returns the metadata title.
func (d *Document) Title() string {
	return d.Metadata.Title
}

// Status returns the metadata status.
func (d *Document) Status() Status {
	return d.Metadata.Status
}

// MarshalJSON encodes posts with a single content string and talks with a
// list of sections.
func (d *Document) MarshalJSON() ([]byte, error) {
	var content any = d.HTML()
	if d.Kind == KindTalk {
		content = d.Content
	}
	return json.Marshal(struct {
		Path     string   `json:"path"`
		Metadata Metadata `json:"metadata"`
		Content  any      `json:"content"`
	}{d.Path, d.Metadata, content})
}

func defaultParser() *markdown.GoldmarkParser {
	parserOnce.Do(func() {
		sharedParser = markdown.NewGoldmarkParser(interfaces.ParseOptions{})
	})
	return sharedParser
}
