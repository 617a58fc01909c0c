// Package templates renders site pages with html/template. Default templates
// are embedded; a directory may override any of them by file name.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Template names used by the generator.
const (
	Post     = "post.html"
	Talk     = "talk.html"
	Index    = "index.html"
	Tag      = "tag.html"
	Redirect = "redirect.html"
)

//go:embed defaults/*.html
var defaults embed.FS

// Defaults returns the embedded template set.
func Defaults() fs.FS {
	sub, err := fs.Sub(defaults, "defaults")
	if err != nil {
		panic(err)
	}
	return sub
}

// Renderer implements interfaces.TemplateRenderer. Templates are parsed once,
// on first use.
type Renderer struct {
	overrides fs.FS

	once sync.Once
	tpl  *template.Template
	err  error
}

var _ interfaces.TemplateRenderer = (*Renderer)(nil)

// NewRenderer returns a renderer over the embedded defaults. When overrides is
// non-nil, its top level *.html and *.tmpl files replace or extend them.
func NewRenderer(overrides fs.FS) *Renderer {
	return &Renderer{overrides: overrides}
}

// Render executes the named template.
func (r *Renderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return r.RenderTemplate(name, data, out...)
}

// RenderTemplate executes the named template, writing to out[0] when given
// and returning the output otherwise.
func (r *Renderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	tpl, err := r.templates()
	if err != nil {
		return "", err
	}
	if tpl.Lookup(name) == nil {
		return "", fmt.Errorf("template %q not found", name)
	}
	return execute(out, func(w io.Writer) error {
		return tpl.ExecuteTemplate(w, name, data)
	})
}

// RenderString parses and executes an inline template.
func (r *Renderer) RenderString(content string, data any, out ...io.Writer) (string, error) {
	tpl, err := template.New("inline").Funcs(funcs()).Parse(content)
	if err != nil {
		return "", err
	}
	return execute(out, func(w io.Writer) error {
		return tpl.Execute(w, data)
	})
}

func (r *Renderer) templates() (*template.Template, error) {
	r.once.Do(func() {
		tpl := template.New("site").Funcs(funcs())
		tpl, err := parseDir(tpl, Defaults())
		if err != nil {
			r.err = fmt.Errorf("templates: parse defaults: %w", err)
			return
		}
		if r.overrides != nil {
			if tpl, err = parseDir(tpl, r.overrides); err != nil {
				r.err = fmt.Errorf("templates: parse overrides: %w", err)
				return
			}
		}
		r.tpl = tpl
	})
	return r.tpl, r.err
}

func parseDir(tpl *template.Template, fsys fs.FS) (*template.Template, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".tmpl")) {
			continue
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		if _, err := tpl.New(name).Parse(string(data)); err != nil {
			return nil, err
		}
	}
	return tpl, nil
}

func execute(out []io.Writer, run func(io.Writer) error) (string, error) {
	if len(out) > 0 && out[0] != nil {
		return "", run(out[0])
	}
	var buffer bytes.Buffer
	if err := run(&buffer); err != nil {
		return "", err
	}
	return buffer.String(), nil
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"safeHTML": toHTML,
		"join":     strings.Join,
		"add":      func(a, b int) int { return a + b },
	}
}

func toHTML(value any) template.HTML {
	switch v := value.(type) {
	case nil:
		return ""
	case template.HTML:
		return v
	case string:
		return template.HTML(v)
	default:
		return template.HTML(fmt.Sprint(v))
	}
}
