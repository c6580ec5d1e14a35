// Package render turns a composed sheet document into a standalone HTML page
// whose print stylesheet keeps atomic blocks unbroken across columns and
// pages.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/mind-engage/mindengage-sheets/internal/sheet"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTmpl = template.Must(template.New("sheet.html.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/sheet.html.tmpl"))

var funcs = template.FuncMap{
	"marks":      func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	"rich":       func(s string) template.HTML { return template.HTML(Sanitize(s)) },
	"isLead":     func(b sheet.Block) bool { return b.Kind == sheet.BlockLead },
	"blockClass": blockClass,
	"textClass":  textClass,
	"label":      label,
}

const DefaultColumns = 2

type Renderer struct {
	columns   int
	watermark string
}

type Option func(*Renderer)

// WithColumns sets the number of print columns.
func WithColumns(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.columns = n
		}
	}
}

// WithWatermark sets the text stamped behind printed pages. Previews never
// carry it.
func WithWatermark(text string) Option { return func(r *Renderer) { r.watermark = text } }

func New(opts ...Option) *Renderer {
	r := &Renderer{columns: DefaultColumns}
	for _, o := range opts {
		o(r)
	}
	return r
}

type page struct {
	Doc       sheet.Document
	Lang      string
	CSS       template.CSS
	Watermark string
}

// Render writes doc as an HTML page. print selects the export variant, which
// adds the watermark.
func (r *Renderer) Render(w io.Writer, doc sheet.Document, print bool) error {
	p := page{
		Doc:  doc,
		Lang: string(doc.Preferences.Language),
		CSS:  template.CSS(stylesheet(r.columns)),
	}
	if p.Lang == "" {
		p.Lang = string(sheet.LangPrimary)
	}
	if print {
		p.Watermark = r.watermark
	}
	if err := pageTmpl.Execute(w, p); err != nil {
		return fmt.Errorf("render sheet: %w", err)
	}
	return nil
}

// Preview renders the on-screen variant.
func (r *Renderer) Preview(doc sheet.Document) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, doc, false); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Print renders the export variant.
func (r *Renderer) Print(doc sheet.Document) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, doc, true); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func blockClass(b sheet.Block) string {
	c := "block block-" + string(b.Kind) + " role-" + string(b.Role)
	if b.Atomic {
		c += " atomic"
	}
	return c
}

func textClass(b sheet.Block) string {
	switch b.Role {
	case sheet.RoleAnswer:
		return "answer-text"
	case sheet.RoleExplanation:
		return "explanation-text"
	}
	return "question-text"
}

func label(b sheet.Block) string {
	switch b.Role {
	case sheet.RoleAnswer:
		return "Answer:"
	case sheet.RoleExplanation:
		return "Explanation:"
	}
	return ""
}
