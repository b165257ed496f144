package main

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"profile-frames/templates"
)

// compileTemplates parses every page and fragment template into one set
func compileTemplates() (*template.Template, error) {
	tmpl := template.New("site").Funcs(templates.Funcs())
	sources := []string{
		templates.GetBaseTemplates(),
		templates.GetProfileTemplate(),
		templates.GetFramesTemplates(),
		templates.GetFragmentTemplates(),
	}
	for _, src := range sources {
		if _, err := tmpl.Parse(src); err != nil {
			return nil, fmt.Errorf("parse templates: %w", err)
		}
	}
	return tmpl, nil
}

// renderHTML executes a named template into a buffer first so a template error
// still produces a clean 500.
func (s *Server) renderHTML(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		LoggerFromContext(r.Context()).Error("failed to render template", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
