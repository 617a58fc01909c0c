package interfaces

// MarkdownParser renders document bodies and summaries to HTML. One parser
// serves a whole build, so implementations must be reusable and safe for
// concurrent use.
type MarkdownParser interface {
	Parse(markdown []byte) ([]byte, error)
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions selects goldmark extensions and HTML output behaviour. The
// field names match the markdown section of the config file.
type ParseOptions struct {
	// Extensions names the enabled extensions (gfm, table, linkify, footnote
	// and so on). Empty means the default set.
	Extensions []string
	// Sanitize and SafeMode both drop raw HTML from the output.
	Sanitize  bool
	HardWraps bool
	SafeMode  bool
}
