// Package export persists pipeline results as report files.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/interfaces"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

// Supported formats.
const (
	FormatText     = "txt"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "md"
	FormatHTML     = "html"
	FormatPDF      = "pdf"
)

// Formats lists every supported format.
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatMarkdown, FormatHTML, FormatPDF}

// errorFormats are the formats an error result can be written in.
var errorFormats = map[string]bool{FormatText: true, FormatJSON: true, FormatYAML: true}

// Service implements interfaces.ReportExporter
type Service struct {
	dir     string
	reports interfaces.ReportAssembler
	pdf     interfaces.PDFService
	logger  arbor.ILogger
	now     func() time.Time
}

var _ interfaces.ReportExporter = (*Service)(nil)

// NewService creates an exporter writing into dir.
func NewService(dir string, reports interfaces.ReportAssembler, pdf interfaces.PDFService, logger arbor.ILogger) *Service {
	if dir == "" {
		dir = "."
	}
	return &Service{dir: dir, reports: reports, pdf: pdf, logger: logger, now: time.Now}
}

// FileName returns relatorio_<location>_<period>.<ext>. Path separators,
// whitespace and ".." in either part become underscores.
func FileName(location, period, ext string) string {
	return fmt.Sprintf("relatorio_%s_%s.%s", safeName(location), safeName(period), ext)
}

func safeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ', '\t':
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
	return strings.ReplaceAll(s, "..", "_")
}

// ParseFormats splits a comma separated list, lowercases and deduplicates it,
// and rejects unknown formats.
func ParseFormats(list string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, f := range strings.Split(list, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		if !isFormat(f) {
			return nil, fmt.Errorf("unsupported report format '%s' (supported: %s)", f, strings.Join(Formats, ", "))
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}

func isFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// Export writes result in each format and returns the written paths.
// It stops at the first failure; files already written are kept.
func (s *Service) Export(result *models.PipelineResult, formats ...string) ([]string, error) {
	if result == nil {
		return nil, fmt.Errorf("no pipeline result to export")
	}

	var paths []string
	for _, format := range formats {
		data, err := s.render(result, format)
		if err != nil {
			return paths, fmt.Errorf("failed to render %s report: %w", format, err)
		}

		path, err := s.write(FileName(result.Location.Name, result.Period.String(), format), data)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	s.logger.Info().
		Str("run_id", result.RunID).
		Strs("files", paths).
		Msg("Report exported")
	return paths, nil
}

// ExportError writes a failed run in the text, json and yaml formats.
// Other requested formats are skipped.
func (s *Service) ExportError(location, period string, runErr error, formats ...string) ([]string, error) {
	e := models.AsError(runErr)
	if e == nil {
		e = models.NewError(models.ErrFatal, "", "erro desconhecido")
	}
	payload := map[string]any{
		"location": location,
		"period":   period,
		"error":    e,
	}

	var paths []string
	for _, format := range formats {
		if !errorFormats[format] {
			s.logger.Debug().Str("format", format).Msg("Format not available for error results, skipping")
			continue
		}

		var data []byte
		var err error
		switch format {
		case FormatText:
			data = []byte(fmt.Sprintf("%s\nLocalização: %s\nPeríodo: %s\nData de geração: %s\n\nErro (%s): %s\n",
				reportHeading, location, period, s.now().Format(time.RFC1123), e.Kind, e.Error()))
		case FormatJSON:
			data, err = json.MarshalIndent(payload, "", "  ")
		case FormatYAML:
			data, err = toYAML(payload)
		}
		if err != nil {
			return paths, fmt.Errorf("failed to render %s error report: %w", format, err)
		}

		path, err := s.write(FileName(location, period, format), data)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

const reportHeading = "Relatório de Inteligência de Mercado Pix"

func (s *Service) render(result *models.PipelineResult, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(result, "", "  ")
	case FormatYAML:
		return toYAML(result)
	case FormatText:
		return []byte(s.text(result)), nil
	case FormatMarkdown:
		if result.Report == nil {
			return nil, fmt.Errorf("result has no report")
		}
		return []byte(s.markdown(result)), nil
	case FormatHTML:
		if result.Report == nil {
			return nil, fmt.Errorf("result has no report")
		}
		html, err := s.reports.RenderHTML(result.Report)
		return []byte(html), err
	case FormatPDF:
		if result.Report == nil {
			return nil, fmt.Errorf("result has no report")
		}
		return s.pdf.ConvertMarkdownToPDF(s.markdown(result), result.Report.Title)
	default:
		return nil, fmt.Errorf("unsupported report format '%s'", format)
	}
}

// text is the plain report: a short header, then the markdown body.
func (s *Service) text(result *models.PipelineResult) string {
	var sb strings.Builder
	sb.WriteString(reportHeading + "\n")
	sb.WriteString(fmt.Sprintf("%s: %s\n", locationLabel(result.Location.Kind), result.Location.Name))
	sb.WriteString(fmt.Sprintf("Período: %s\n", result.Period))
	sb.WriteString(fmt.Sprintf("Data de geração: %s\n\n", s.now().Format(time.RFC1123)))

	for _, line := range stageIssues(result) {
		sb.WriteString(line + "\n")
	}

	if result.Report == nil {
		sb.WriteString("\nRelatório indisponível.\n")
		return sb.String()
	}
	sb.WriteString("\n")
	sb.WriteString(s.markdown(result))
	return sb.String()
}

// markdown renders the report followed by any narrator commentary.
func (s *Service) markdown(result *models.PipelineResult) string {
	md := s.reports.RenderMarkdown(result.Report)
	if len(result.Commentary) == 0 {
		return md
	}

	var sb strings.Builder
	sb.WriteString(md)
	sb.WriteString("## Comentários\n\n")
	stages := make([]string, 0, len(result.Commentary))
	for stage := range result.Commentary {
		stages = append(stages, string(stage))
	}
	sort.Strings(stages)
	for _, stage := range stages {
		sb.WriteString(fmt.Sprintf("### %s\n\n%s\n\n", stage, result.Commentary[models.StageName(stage)]))
	}
	return sb.String()
}

func stageIssues(result *models.PipelineResult) []string {
	var lines []string
	if result.PixError != nil {
		lines = append(lines, fmt.Sprintf("Aviso (dados Pix): %s", result.PixError.Message))
	}
	if result.AnalysisError != nil {
		lines = append(lines, fmt.Sprintf("Aviso (análise): %s", result.AnalysisError.Message))
	}
	return lines
}

func locationLabel(kind models.LocationKind) string {
	if kind == models.LocationState {
		return "Estado"
	}
	return "Município"
}

func (s *Service) write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", s.dir, err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// toYAML goes through the JSON encoding so decimals, periods and the
// average-ticket sentinel keep their JSON text form.
func toYAML(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return yaml.Marshal(generic)
}
