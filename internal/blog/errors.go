package blog

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every *Error matches exactly one of these through errors.Is.
var (
	ErrMalformedFrontmatter      = errors.New("malformed frontmatter")
	ErrMissingRequiredField      = errors.New("missing required field")
	ErrInvalidDate               = errors.New("invalid date")
	ErrInvalidStatus             = errors.New("invalid status")
	ErrPublishInvariantViolation = errors.New("publish invariant violation")
	ErrFilesystem                = errors.New("filesystem error")
)

var errorCodes = map[error]string{
	ErrMalformedFrontmatter:      "BLOG_MALFORMED_FRONTMATTER",
	ErrMissingRequiredField:      "BLOG_MISSING_REQUIRED_FIELD",
	ErrInvalidDate:               "BLOG_INVALID_DATE",
	ErrInvalidStatus:             "BLOG_INVALID_STATUS",
	ErrPublishInvariantViolation: "BLOG_PUBLISH_INVARIANT_VIOLATION",
	ErrFilesystem:                "BLOG_FILESYSTEM",
}

// Error describes a document or collection failure. Path is the source file
// (or directory) when known; Field and Value identify the offending metadata.
type Error struct {
	Kind  error
	Path  string
	Field string
	Value string
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("blog error")
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " %q", e.Field)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " (value %q)", e.Value)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e == nil {
		return nil
	}
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Code returns a stable text code for the error kind.
func (e *Error) Code() string {
	if e == nil {
		return ""
	}
	if code, ok := errorCodes[e.Kind]; ok {
		return code
	}
	return "BLOG_ERROR"
}

// ErrorCode returns the text code of the first *Error in err's chain.
func ErrorCode(err error) (string, bool) {
	var target *Error
	if !errors.As(err, &target) {
		return "", false
	}
	return target.Code(), true
}

func withPath(err error, path string) error {
	var target *Error
	if errors.As(err, &target) && target.Path == "" {
		clone := *target
		clone.Path = path
		return &clone
	}
	return err
}
