package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
)

// Renderer loads the site templates once and renders them by name.
type Renderer struct {
	templates *template.Template
	logger    *slog.Logger
}

// templateFuncs are helpers shared by all page templates.
var templateFuncs = template.FuncMap{
	"inr": func(v float64) string {
		if v == float64(int64(v)) {
			return fmt.Sprintf("₹%d", int64(v))
		}
		return fmt.Sprintf("₹%.2f", v)
	},
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	},
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

// NewRenderer parses every template under web/templates.
func NewRenderer(logger *slog.Logger) *Renderer {
	tmpl := template.Must(template.New("").Funcs(templateFuncs).ParseGlob("web/templates/*.html"))
	return &Renderer{templates: tmpl, logger: logger}
}

// Render executes the named template. Failures after headers are written can
// only be logged.
func (rd *Renderer) Render(w http.ResponseWriter, name string, data any) {
	if err := rd.templates.ExecuteTemplate(w, name, data); err != nil {
		rd.logger.Error("render template", "template", name, "error", err)
	}
}
