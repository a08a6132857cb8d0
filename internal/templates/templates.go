// Package templates provides embedded TOML prompt templates with user override support.
// Templates are loaded with resolution order:
// 1. User override: templatesDir/{name}.toml
// 2. Embedded default: internal/templates/{name}.toml
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/pelletier/go-toml/v2"
)

//go:embed *.toml
var fs embed.FS

// TemplateType defines the type of template
type TemplateType string

const (
	// TemplateTypeNarration is a persona plus a task prompt used to narrate a stage result
	TemplateTypeNarration TemplateType = "narration"
)

// Template represents a loaded template
type Template struct {
	Type           TemplateType `toml:"type"`
	Role           string       `toml:"role"`
	Goal           string       `toml:"goal"`
	Backstory      string       `toml:"backstory"`
	Prompt         string       `toml:"prompt"` // text/template body, executed against the stage data
	ExpectedOutput string       `toml:"expected_output"`
	Temperature    float32      `toml:"temperature"`
}

// NarrationName returns the template name used for a pipeline stage.
func NarrationName(stage string) string {
	return "narrate_" + stage
}

// GetTemplate loads a template by name with resolution order:
// 1. User override: templatesDir/{name}.toml
// 2. Embedded default: internal/templates/{name}.toml
func GetTemplate(name string, templatesDir string) (*Template, error) {
	if templatesDir != "" {
		userPath := filepath.Join(templatesDir, name+".toml")
		if data, err := os.ReadFile(userPath); err == nil {
			return parseTemplate(data)
		}
	}

	data, err := fs.ReadFile(name + ".toml")
	if err != nil {
		return nil, fmt.Errorf("template '%s' not found (checked user override and embedded)", name)
	}
	return parseTemplate(data)
}

// ListEmbeddedTemplates returns names of all embedded templates
func ListEmbeddedTemplates() ([]string, error) {
	entries, err := fs.ReadDir(".")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".toml") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".toml"))
		}
	}
	return names, nil
}

// SystemInstruction joins role, goal and backstory into the persona text.
func (t *Template) SystemInstruction() string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(t.Role))
	if goal := strings.TrimSpace(t.Goal); goal != "" {
		sb.WriteString("\nObjetivo: ")
		sb.WriteString(goal)
	}
	if backstory := strings.TrimSpace(t.Backstory); backstory != "" {
		sb.WriteString("\n\n")
		sb.WriteString(backstory)
	}
	return sb.String()
}

// Render executes the prompt against data and appends the expected output line.
func (t *Template) Render(data any) (string, error) {
	tmpl, err := template.New("prompt").Option("missingkey=zero").Parse(t.Prompt)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}

	out := strings.TrimSpace(buf.String())
	if expected := strings.TrimSpace(t.ExpectedOutput); expected != "" {
		out += "\n\nResultado esperado: " + expected
	}
	return out, nil
}

func parseTemplate(data []byte) (*Template, error) {
	var t Template
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	if t.Type != TemplateTypeNarration {
		return nil, fmt.Errorf("unsupported template type '%s'", t.Type)
	}
	if strings.TrimSpace(t.Prompt) == "" {
		return nil, fmt.Errorf("template prompt is empty")
	}
	return &t, nil
}
