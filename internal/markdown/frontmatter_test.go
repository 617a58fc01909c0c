package markdown

import (
	"errors"
	"reflect"
	"testing"
)

func TestDecodeBlock_YAML(t *testing.T) {
	parts, err := Split(string(readFixture(t, "testdata/basic.md")))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	raw, err := DecodeBlock(parts.Frontmatter)
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}

	if raw["title"] != "Sample Document" {
		t.Fatalf("unexpected title %#v", raw["title"])
	}
	if raw["date"] != "2023.8.29" {
		t.Fatalf("date literal should be kept verbatim, got %#v", raw["date"])
	}
	if raw["tags"] != "go, parsing" {
		t.Fatalf("unexpected tags %#v", raw["tags"])
	}
	cover, ok := raw["cover"].(map[string]string)
	if !ok {
		t.Fatalf("expected cover attribute map, got %T", raw["cover"])
	}
	if cover["src"] != "/img/cover.png" || cover["alt"] != "A cover" {
		t.Fatalf("unexpected cover %#v", cover)
	}
}

func TestDecodeBlock_YAMLDetails(t *testing.T) {
	block := &Block{Delimiter: "---", Source: "Title: Upper\nsummary:\nbase: &base hello\nalias: *base\nlist:\n  - a\n  - b\n"}
	raw, err := DecodeBlock(block)
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	if raw["title"] != "Upper" {
		t.Fatalf("keys should be lowercased, got %#v", raw)
	}
	if _, ok := raw["summary"]; ok {
		t.Fatalf("null values should be absent, got %#v", raw["summary"])
	}
	if raw["alias"] != "hello" {
		t.Fatalf("aliases should resolve, got %#v", raw["alias"])
	}
	if !reflect.DeepEqual(raw["list"], []string{"a", "b"}) {
		t.Fatalf("unexpected list %#v", raw["list"])
	}
}

func TestDecodeBlock_TOML(t *testing.T) {
	parts, err := Split(string(readFixture(t, "testdata/talk.toml.md")))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if parts.Frontmatter.Format() != FormatTOML {
		t.Fatalf("expected toml format, got %s", parts.Frontmatter.Format())
	}

	raw, err := DecodeBlock(parts.Frontmatter)
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	if raw["title"] != "Talk" || raw["date"] != "2023.6.15" {
		t.Fatalf("unexpected scalars %#v", raw)
	}
	if !reflect.DeepEqual(raw["tags"], []string{"slides", "go"}) {
		t.Fatalf("unexpected tags %#v", raw["tags"])
	}
	if !reflect.DeepEqual(raw["cover"], map[string]string{"src": "/img/talk.png"}) {
		t.Fatalf("unexpected cover %#v", raw["cover"])
	}
	if parts.Body != "# Slide one\n+++\n# Slide two\n" {
		t.Fatalf("unexpected body %q", parts.Body)
	}
}

func TestDecodeBlock_Lines(t *testing.T) {
	block := &Block{Delimiter: "===", Source: "Title: Hello: World\n\nAUTHOR:  Ada \n"}
	raw, err := DecodeBlock(block)
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	want := map[string]any{"title": "Hello: World", "author": "Ada"}
	if !reflect.DeepEqual(raw, want) {
		t.Fatalf("unexpected mapping %#v", raw)
	}
}

func TestDecodeBlock_Malformed(t *testing.T) {
	cases := map[string]*Block{
		"yaml syntax":          {Delimiter: "---", Source: "title: [unclosed\n"},
		"yaml list":            {Delimiter: "---", Source: "- a\n- b\n"},
		"yaml scalar":          {Delimiter: "---", Source: "just text\n"},
		"toml syntax":          {Delimiter: "+++", Source: "title = \n"},
		"lines no sep":         {Delimiter: "===", Source: "title\n"},
		"yaml case duplicate":  {Delimiter: "---", Source: "title: First\nTitle: Second\n"},
		"yaml exact duplicate": {Delimiter: "---", Source: "title: First\ntitle: Second\n"},
		"toml case duplicate":  {Delimiter: "+++", Source: "title = \"First\"\nTitle = \"Second\"\n"},
		"lines duplicate":      {Delimiter: "===", Source: "title: First\nTITLE: Second\n"},
	}
	for name, block := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeBlock(block); !errors.Is(err, ErrMalformedBlock) {
				t.Fatalf("expected ErrMalformedBlock, got %v", err)
			}
		})
	}
}

func TestDecodeBlock_NilAndEmpty(t *testing.T) {
	for _, block := range []*Block{nil, {Delimiter: "---"}, {Delimiter: "+++"}} {
		raw, err := DecodeBlock(block)
		if err != nil {
			t.Fatalf("DecodeBlock(%#v): %v", block, err)
		}
		if len(raw) != 0 {
			t.Fatalf("expected empty mapping, got %#v", raw)
		}
	}
}
