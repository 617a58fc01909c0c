package markdown

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrUnterminatedFrontmatter is returned when a document opens a frontmatter
// block but never closes it.
var ErrUnterminatedFrontmatter = errors.New("markdown: unterminated frontmatter block")

const byteOrderMark = "\ufeff"

// Block is the metadata source found between two delimiter lines.
type Block struct {
	// Delimiter is the opening delimiter line, for example "---" or "+++".
	Delimiter string
	// Source holds every line of the block, each terminated by "\n".
	Source string
}

// Parts is the result of splitting a raw document.
type Parts struct {
	// Frontmatter is nil when the document has no leading block.
	Frontmatter *Block
	// Body holds the remaining lines, each terminated by a single "\n".
	Body string
}

// HasFrontmatter reports whether the document started with a metadata block.
func (p Parts) HasFrontmatter() bool {
	return p.Frontmatter != nil
}

// Split separates an optional leading frontmatter block from the document body.
//
// A leading byte order mark and leading blank lines are skipped. When the first remaining line is a delimiter
// line, the lines up to the next delimiter line form the block and everything
// after the closing delimiter is the body, even if it contains more
// delimiter-like lines. A block that is never closed is an error.
func Split(raw string) (Parts, error) {
	lines := splitLines(strings.TrimPrefix(raw, byteOrderMark))

	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	lines = lines[start:]

	if len(lines) == 0 || !IsDelimiter(lines[0]) {
		return Parts{Body: joinLines(lines)}, nil
	}

	opening := lines[0]
	for i := 1; i < len(lines); i++ {
		if !IsDelimiter(lines[i]) {
			continue
		}
		return Parts{
			Frontmatter: &Block{
				Delimiter: opening,
				Source:    joinLines(lines[1:i]),
			},
			Body: joinLines(lines[i+1:]),
		}, nil
	}

	return Parts{}, ErrUnterminatedFrontmatter
}

// IsDelimiter reports whether line is at least three characters long and made
// of one repeated non-whitespace character.
func IsDelimiter(line string) bool {
	if utf8.RuneCountInString(line) < 3 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(line)
	if first == utf8.RuneError || unicode.IsSpace(first) {
		return false
	}
	for _, r := range line {
		if r != first {
			return false
		}
	}
	return true
}

func splitLines(raw string) []string {
	if raw == "" {
		return nil
	}
	lines := strings.Split(raw, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	var builder strings.Builder
	for _, line := range lines {
		builder.WriteString(line)
		builder.WriteByte('\n')
	}
	return builder.String()
}
