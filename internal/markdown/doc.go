// Package markdown turns raw text documents into their parts: the optional
// frontmatter block, the decoded metadata mapping, and the rendered HTML body.
// It also provides the non-recursive directory loader used by collections.
package markdown
