package interfaces

import (
	"io"
)

// TemplateRenderer turns a named template and a data value into text. The
// generator treats implementations as opaque.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
}
