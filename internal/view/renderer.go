// Package view renders the admin panel's HTML pages.
package view

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/askelund/adminpanel/internal/constants"
)

// Renderer turns a template name and data into an HTML response. Handlers
// depend on this interface so hosts can swap in their own template engine.
type Renderer interface {
	Render(w http.ResponseWriter, name string, data any) error
}

// PageData is the payload every template receives.
type PageData struct {
	Title string
	User  any
	Flash any
	Data  any
}

// TemplateRenderer renders html/template files from a directory. Templates
// are parsed once at startup; a missing template is a render error, not a
// startup failure, so hosts can ship a subset of pages.
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer parses all .html templates under dir.
func NewTemplateRenderer(dir string) (*TemplateRenderer, error) {
	pattern := filepath.Join(dir, "*.html")
	templates, err := template.ParseGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates from %s: %w", dir, err)
	}

	log.Info().Str("dir", dir).Msg("Templates loaded")
	return &TemplateRenderer{templates: templates}, nil
}

// Render writes the named template to the response.
func (r *TemplateRenderer) Render(w http.ResponseWriter, name string, data any) error {
	tmpl := r.templates.Lookup(name)
	if tmpl == nil {
		return fmt.Errorf("template %q not found", name)
	}

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeHTML)
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render %q: %w", name, err)
	}
	return nil
}
