package blog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExternalLink is a configured index entry pointing at content hosted
// elsewhere. It has no body and its date is mandatory.
type ExternalLink struct {
	CanonicalURL string
	Path         string
	Metadata     Metadata
}

// NewExternalLink decodes a configured link. canonical_url is required; path
// defaults to it.
func NewExternalLink(raw map[string]any, opts DecodeOptions) (ExternalLink, error) {
	if opts.Path == "" {
		opts.Path = "external_links"
	}
	meta, err := DecodeMetadataMap(raw, opts)
	if err != nil {
		return ExternalLink{}, err
	}
	if meta.Date == nil {
		return ExternalLink{}, &Error{Kind: ErrMissingRequiredField, Path: opts.Path, Field: "date"}
	}

	canonical := strings.TrimSpace(meta.CanonicalURL)
	if canonical == "" {
		return ExternalLink{}, &Error{Kind: ErrMissingRequiredField, Path: opts.Path, Field: "canonical_url"}
	}
	linkPath := canonical
	if value, ok := raw["path"]; ok {
		text, isString := value.(string)
		if !isString {
			return ExternalLink{}, &Error{Kind: ErrMalformedFrontmatter, Path: opts.Path, Field: "path", Err: fmt.Errorf("expected a string, got %T", value)}
		}
		if strings.TrimSpace(text) != "" {
			linkPath = strings.TrimSpace(text)
		}
	}

	return ExternalLink{
		CanonicalURL: canonical,
		Path:         linkPath,
		Metadata:     meta,
	}, nil
}

// SortDate returns the link date.
func (l ExternalLink) SortDate() (Date, bool) {
	return l.Metadata.SortDate()
}

// MarshalJSON flattens the metadata next to the link fields.
func (l ExternalLink) MarshalJSON() ([]byte, error) {
	encoded, err := json.Marshal(l.Metadata)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, err
	}
	out["canonical_url"] = l.CanonicalURL
	out["path"] = l.Path
	return json.Marshal(out)
}
