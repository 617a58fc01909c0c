package markdown

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrMalformedBlock is returned when a frontmatter block cannot be decoded
// into a key/value mapping.
var ErrMalformedBlock = errors.New("markdown: malformed frontmatter block")

// Format identifies how a frontmatter block is encoded.
type Format string

const (
	// FormatYAML is used for blocks opened with "---".
	FormatYAML Format = "yaml"
	// FormatTOML is used for blocks opened with "+++".
	FormatTOML Format = "toml"
	// FormatLines is the plain "key: value" encoding used by any other delimiter.
	FormatLines Format = "lines"
)

// Format reports the encoding implied by the block delimiter.
func (b *Block) Format() Format {
	if b == nil {
		return FormatLines
	}
	first := []rune(b.Delimiter)
	if len(first) == 0 {
		return FormatLines
	}
	switch first[0] {
	case '-':
		return FormatYAML
	case '+':
		return FormatTOML
	default:
		return FormatLines
	}
}

// DecodeBlock decodes a frontmatter block into a mapping of lowercase keys to
// raw values. Values are one of string, []string or map[string]string; scalar
// values keep their literal text. A nil block decodes to an empty mapping.
func DecodeBlock(block *Block) (map[string]any, error) {
	if block == nil {
		return map[string]any{}, nil
	}

	switch block.Format() {
	case FormatTOML:
		return decodeTOML(block.Source)
	case FormatYAML:
		return decodeYAML(block.Source)
	default:
		return decodeLines(block.Source)
	}
}

func decodeYAML(source string) (map[string]any, error) {
	out := map[string]any{}
	if strings.TrimSpace(source) == "" {
		return out, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(source), &doc); err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", ErrMalformedBlock, err)
	}

	root := resolveAlias(&doc)
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return out, nil
		}
		root = resolveAlias(root.Content[0])
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: yaml: expected a mapping at line %d", ErrMalformedBlock, root.Line)
	}

	seen := map[string]struct{}{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := strings.ToLower(strings.TrimSpace(root.Content[i].Value))
		if key == "" {
			continue
		}
		if err := claimKey(seen, key); err != nil {
			return nil, fmt.Errorf("%w: yaml: line %d: %v", ErrMalformedBlock, root.Content[i].Line, err)
		}
		value, ok, err := yamlValue(resolveAlias(root.Content[i+1]))
		if err != nil {
			return nil, fmt.Errorf("%w: yaml: key %q: %v", ErrMalformedBlock, key, err)
		}
		if !ok {
			delete(out, key)
			continue
		}
		out[key] = value
	}
	return out, nil
}

func yamlValue(node *yaml.Node) (any, bool, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return nil, false, nil
		}
		return node.Value, true, nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, child := range node.Content {
			text, err := yamlText(resolveAlias(child))
			if err != nil {
				return nil, false, err
			}
			items = append(items, text)
		}
		return items, true, nil
	case yaml.MappingNode:
		attrs := make(map[string]string, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			text, err := yamlText(resolveAlias(node.Content[i+1]))
			if err != nil {
				return nil, false, err
			}
			attrs[node.Content[i].Value] = text
		}
		return attrs, true, nil
	default:
		return nil, false, fmt.Errorf("unsupported node kind %d", node.Kind)
	}
}

func yamlText(node *yaml.Node) (string, error) {
	if node.Kind == yaml.ScalarNode {
		if node.ShortTag() == "!!null" {
			return "", nil
		}
		return node.Value, nil
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func decodeTOML(source string) (map[string]any, error) {
	raw := map[string]any{}
	if _, err := toml.Decode(source, &raw); err != nil {
		return nil, fmt.Errorf("%w: toml: %v", ErrMalformedBlock, err)
	}

	out := make(map[string]any, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for key, value := range raw {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if err := claimKey(seen, key); err != nil {
			return nil, fmt.Errorf("%w: toml: %v", ErrMalformedBlock, err)
		}
		switch typed := value.(type) {
		case []any:
			items := make([]string, 0, len(typed))
			for _, item := range typed {
				items = append(items, tomlText(item))
			}
			out[key] = items
		case []map[string]any:
			items := make([]string, 0, len(typed))
			for _, item := range typed {
				items = append(items, tomlText(item))
			}
			out[key] = items
		case map[string]any:
			attrs := make(map[string]string, len(typed))
			for attr, item := range typed {
				attrs[attr] = tomlText(item)
			}
			out[key] = attrs
		default:
			out[key] = tomlText(typed)
		}
	}
	return out, nil
}

func tomlText(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	case time.Time:
		return typed.Format(time.RFC3339)
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, key+"="+tomlText(typed[key]))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(typed)
	}
}

func decodeLines(source string) (map[string]any, error) {
	out := map[string]any{}
	for idx, line := range strings.Split(source, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: expected key: value", ErrMalformedBlock, idx+1)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return nil, fmt.Errorf("%w: line %d: empty key", ErrMalformedBlock, idx+1)
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("%w: line %d: duplicate key %q", ErrMalformedBlock, idx+1, key)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

// claimKey records a lowercased key, failing when a key differing only in
// case was already seen.
func claimKey(seen map[string]struct{}, key string) error {
	if _, dup := seen[key]; dup {
		return fmt.Errorf("duplicate key %q", key)
	}
	seen[key] = struct{}{}
	return nil
}
