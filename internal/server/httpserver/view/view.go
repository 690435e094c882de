package view

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io"
	texttemplate "text/template"

	"github.com/yndnr/sessionlab-go/internal/core/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const templateGlob = "templates/*.tmpl"

// Page templates.
const (
	PageLogin     = "login.tmpl"
	PageDashboard = "dashboard.tmpl"
	PageSearch    = "search.tmpl"
	PageCollector = "collector.tmpl"
)

// Page is the data passed to every template.
type Page struct {
	// App is shown in the title, e.g. "Hardened App".
	App string
	// Name is the page name shown in the title, e.g. "Login".
	Name string
	// Variant is shown in the login heading, e.g. "Hardened".
	Variant  string
	Hardened bool

	Error       string
	Username    string
	DisplayName string
	Query       string

	CollectorURL string
	Payloads     []Payload
	Captures     []*domain.Capture
}

// Payload is an example attack string listed by the collector.
type Payload struct {
	Name  string
	Value string
}

// Title returns "<Name> - <App>".
func (p *Page) Title() string {
	if p.Name == "" {
		return p.App
	}
	return p.Name + " - " + p.App
}

// Renderer executes a page template.
type Renderer interface {
	Render(w io.Writer, page string, data *Page) error
	Escapes() bool
}

type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

type renderer struct {
	tmpl    executor
	escapes bool
}

// NewRaw parses the templates with text/template. Values are not escaped.
func NewRaw() (Renderer, error) {
	t, err := texttemplate.ParseFS(templateFS, templateGlob)
	if err != nil {
		return nil, fmt.Errorf("view: parse templates: %w", err)
	}
	return &renderer{tmpl: t}, nil
}

// NewEscaped parses the templates with html/template.
func NewEscaped() (Renderer, error) {
	t, err := htmltemplate.ParseFS(templateFS, templateGlob)
	if err != nil {
		return nil, fmt.Errorf("view: parse templates: %w", err)
	}
	return &renderer{tmpl: t, escapes: true}, nil
}

// Render executes page into a buffer first so that a template error never
// leaves a half-written response.
func (r *renderer) Render(w io.Writer, page string, data *Page) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, page, data); err != nil {
		return fmt.Errorf("view: render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *renderer) Escapes() bool {
	return r.escapes
}
