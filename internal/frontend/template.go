package frontend

import (
	"fmt"
	"html/template"

	"github.com/gin-gonic/gin"
)

// Renderer serves the embedded server-rendered pages.
type Renderer struct {
	tmpl *template.Template
}

var templateFuncs = template.FuncMap{
	"min": func(a, b int) int {
		if a < b {
			return a
		}
		return b
	},
	"max": func(a, b int) int {
		if a > b {
			return a
		}
		return b
	},
}

// NewRenderer parses the embedded page templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("pages").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// HTML renders a named page template into the response.
func (r *Renderer) HTML(c *gin.Context, status int, name string, data any) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := r.tmpl.ExecuteTemplate(c.Writer, name, data); err != nil {
		// Headers are already written; the best we can do is log through the
		// gin error chain.
		_ = c.Error(fmt.Errorf("failed to render %s: %w", name, err))
	}
}

// WantsHTML reports whether the client asked for a rendered page rather than
// the JSON representation.
func WantsHTML(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML
}
