package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed *.html
var templateFS embed.FS

// Set holds the board's parsed page templates, one isolated template
// per page file so block names cannot collide.
type Set struct {
	pages map[string]*template.Template
}

// Load parses the embedded page templates
func Load() (*Set, error) {
	entries, err := templateFS.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		tmpl, err := template.ParseFS(templateFS, name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %q: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Set{pages: pages}, nil
}

// Execute renders the named page template
func (s *Set) Execute(w io.Writer, pageName string, data interface{}) error {
	tmpl, ok := s.pages[pageName]
	if !ok {
		return fmt.Errorf("template %q not found", pageName)
	}
	return tmpl.Execute(w, data)
}
