package templates

import (
	"bytes"
	"fmt"
	"io"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/toyz/smog/internal/models"
)

// Output formats of a report
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// PackageReport describes the matcher types planned for one package
type PackageReport struct {
	Path  string                 `yaml:"package"`
	File  string                 `yaml:"file"`
	Types []models.GeneratedType `yaml:"types"`
}

// Report is the output of `smog inspect`
type Report struct {
	Packages []PackageReport `yaml:"packages"`
}

// TypeCount returns the number of types across all packages
func (r *Report) TypeCount() int {
	n := 0
	for _, p := range r.Packages {
		n += len(p.Types)
	}
	return n
}

// Renderer writes reports in one of the supported formats
type Renderer struct {
	registry *TemplateRegistry
}

// NewRenderer creates a renderer over registry. A nil registry uses the
// built-in templates.
func NewRenderer(registry *TemplateRegistry) *Renderer {
	if registry == nil {
		registry = NewTemplateRegistry()
	}
	return &Renderer{registry: registry}
}

// Render writes report to w in format
func (r *Renderer) Render(w io.Writer, format string, report *Report) error {
	switch format {
	case "", FormatText:
		return r.renderText(w, report)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q (want %s or %s)", format, FormatText, FormatYAML)
	}
}

func (r *Renderer) renderText(w io.Writer, report *Report) error {
	set, err := r.registry.set()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	for i, pkg := range report.Packages {
		if i > 0 {
			buf.WriteByte('\n')
		}
		if err := set.ExecuteTemplate(&buf, PackageTemplate, pkg); err != nil {
			return fmt.Errorf("failed to execute template %s: %w", PackageTemplate, err)
		}
	}
	summary := struct{ Types, Packages int }{report.TypeCount(), len(report.Packages)}
	if len(report.Packages) > 0 {
		buf.WriteByte('\n')
	}
	if err := set.ExecuteTemplate(&buf, SummaryTemplate, summary); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", SummaryTemplate, err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// ExecuteTemplate executes a single template string against data
func ExecuteTemplate(name, templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Funcs(funcMap).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
