package templates

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"text/template"
)

// Names of the built-in report templates
const (
	PackageTemplate = "package"
	TypeTemplate    = "type"
	SummaryTemplate = "summary"
)

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	mu        sync.RWMutex
	templates map[string]string
	parsed    *template.Template
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerReportTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.Get(name)
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

// Register adds or replaces a template. The template is checked before it
// is stored.
func (tr *TemplateRegistry) Register(name, text string) error {
	if _, err := template.New(name).Funcs(funcMap).Parse(text); err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.templates[name] = text
	tr.parsed = nil
	return nil
}

// Names lists the registered templates
func (tr *TemplateRegistry) Names() []string {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// set parses every registered template into one set so templates can
// invoke each other.
func (tr *TemplateRegistry) set() (*template.Template, error) {
	tr.mu.RLock()
	parsed := tr.parsed
	tr.mu.RUnlock()
	if parsed != nil {
		return parsed, nil
	}

	tr.mu.Lock()
	defer tr.mu.Unlock()
	root := template.New("").Funcs(funcMap)
	for name, text := range tr.templates {
		if _, err := root.New(name).Parse(text); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
	}
	tr.parsed = root
	return root, nil
}

var funcMap = template.FuncMap{
	"join":  strings.Join,
	"short": shortName,
}

// registerReportTemplates registers the templates of `smog inspect`
func (tr *TemplateRegistry) registerReportTemplates() {
	tr.templates[PackageTemplate] = `{{.Path}} -> {{.File}}
{{range .Types}}{{template "type" .}}{{end}}`

	tr.templates[TypeTemplate] = `  {{short .Contract}} => {{.Type}} ({{.Constructor}})
    target:      {{.Target}}
    description: {{printf "%q" .Description}}
{{if .Properties}}    properties:  {{join .Properties ", "}}
{{end}}{{range .Methods}}    {{printf "%-12s" .Kind}} {{.Name}}: {{.Body}}
{{end}}`

	tr.templates[SummaryTemplate] = `{{.Types}} matcher type(s) in {{.Packages}} package(s)
`
}

// shortName strips the package path of a qualified name
func shortName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
