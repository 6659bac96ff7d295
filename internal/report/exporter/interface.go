// Package exporter renders an export payload into downloadable files with
// pluggable exporters.
package exporter

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/pkg/errors"
	"github.com/verustcode/adreport/pkg/logger"
)

// ExportFormat represents the export format type
type ExportFormat string

const (
	// ExportFormatMarkdown represents Markdown format
	ExportFormatMarkdown ExportFormat = "markdown"
	// ExportFormatJSON represents JSON format
	ExportFormatJSON ExportFormat = "json"
	// ExportFormatHTML represents HTML format
	ExportFormatHTML ExportFormat = "html"
	// ExportFormatPDF represents PDF format
	ExportFormatPDF ExportFormat = "pdf"
	// ExportFormatXLSX represents an Excel workbook of the structured data
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ParseFormat parses a format name. "md" is accepted for markdown.
func ParseFormat(s string) (ExportFormat, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "md":
		return ExportFormatMarkdown, nil
	case ExportFormatMarkdown, ExportFormatJSON, ExportFormatHTML, ExportFormatPDF, ExportFormatXLSX:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeExportFormat, "unsupported export format: "+s)
}

// ReportExporter defines the interface for report exporters
type ReportExporter interface {
	// Export renders the payload to file content
	Export(ctx context.Context, doc *model.ExportPayload) ([]byte, error)
	// Name returns the human-readable name of the exporter (e.g., "Markdown", "HTML")
	Name() string
	// FileExtension returns the file extension for this format (e.g., ".md", ".html")
	FileExtension() string
	// ContentType returns the MIME type of the produced file
	ContentType() string
}

// ExportManager manages all registered exporters
type ExportManager struct {
	exporters map[ExportFormat]ReportExporter
	mu        sync.RWMutex
}

// NewExportManager creates a new export manager
func NewExportManager() *ExportManager {
	return &ExportManager{
		exporters: make(map[ExportFormat]ReportExporter),
	}
}

// NewDefaultExportManager registers every built-in exporter
func NewDefaultExportManager(pdf PDFOptions) *ExportManager {
	m := NewExportManager()
	m.Register(ExportFormatMarkdown, NewMarkdownExporter())
	m.Register(ExportFormatJSON, NewJSONExporter())
	m.Register(ExportFormatHTML, NewHTMLExporter())
	m.Register(ExportFormatPDF, NewPDFExporterWithOptions(pdf))
	m.Register(ExportFormatXLSX, NewXLSXExporter())
	return m
}

// Register registers an exporter for a specific format
func (m *ExportManager) Register(format ExportFormat, exporter ReportExporter) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.exporters[format] = exporter
	logger.Debug("Registered report exporter",
		zap.String("format", string(format)),
		zap.String("name", exporter.Name()),
	)
}

// Export exports a payload using the specified format
func (m *ExportManager) Export(ctx context.Context, doc *model.ExportPayload, format ExportFormat) ([]byte, error) {
	exporter, err := m.GetExporter(format)
	if err != nil {
		return nil, err
	}

	logger.Debug("Exporting report",
		zap.String(logger.FieldReportID, doc.ReportID),
		zap.String("format", string(format)),
		zap.String("exporter", exporter.Name()),
	)

	content, err := exporter.Export(ctx, doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, "failed to export report with "+exporter.Name()+" exporter", err)
	}
	return content, nil
}

// ExportToFile exports a payload to a file and returns the number of bytes written
func (m *ExportManager) ExportToFile(ctx context.Context, doc *model.ExportPayload, outputPath string, format ExportFormat) (int64, error) {
	content, err := m.Export(ctx, doc, format)
	if err != nil {
		return 0, err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return 0, errors.Wrap(errors.ErrCodeExportFailed, "failed to create output directory", err)
	}

	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return 0, errors.Wrap(errors.ErrCodeExportFailed, "failed to write file", err)
	}

	logger.Info("Report exported to file",
		zap.String(logger.FieldReportID, doc.ReportID),
		zap.String("format", string(format)),
		zap.String("path", outputPath),
		zap.String("size", formatBytes(len(content))),
	)
	return int64(len(content)), nil
}

// GenerateFilename generates a filename for the exported report
func (m *ExportManager) GenerateFilename(doc *model.ExportPayload, format ExportFormat) string {
	m.mu.RLock()
	exporter, ok := m.exporters[format]
	m.mu.RUnlock()

	baseName := sanitizeFilename(doc.Cover.Title)
	if baseName == "" {
		baseName = sanitizeFilename("rapportage-" + doc.ReportID)
	}

	if ok {
		return baseName + exporter.FileExtension()
	}

	// Fallback to format-based extension
	switch format {
	case ExportFormatMarkdown:
		return baseName + ".md"
	case ExportFormatJSON:
		return baseName + ".json"
	case ExportFormatHTML:
		return baseName + ".html"
	case ExportFormatPDF:
		return baseName + ".pdf"
	case ExportFormatXLSX:
		return baseName + ".xlsx"
	default:
		return baseName + ".txt"
	}
}

// SupportedFormats returns all registered formats, sorted
func (m *ExportManager) SupportedFormats() []ExportFormat {
	m.mu.RLock()
	defer m.mu.RUnlock()

	formats := make([]ExportFormat, 0, len(m.exporters))
	for format := range m.exporters {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// GetExporter returns the exporter for a specific format
func (m *ExportManager) GetExporter(format ExportFormat) (ReportExporter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	exporter, ok := m.exporters[format]
	if !ok {
		return nil, errors.New(errors.ErrCodeExportFormat, "no exporter registered for format: "+string(format))
	}
	return exporter, nil
}

// sanitizeFilename removes unsafe characters from filename
func sanitizeFilename(name string) string {
	// Replace unsafe characters
	unsafe := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " "}
	result := strings.TrimSpace(name)
	for _, char := range unsafe {
		result = strings.ReplaceAll(result, char, "_")
	}

	// Remove consecutive underscores
	for strings.Contains(result, "__") {
		result = strings.ReplaceAll(result, "__", "_")
	}

	result = strings.Trim(result, "_")

	// Limit length without splitting a multi-byte character
	if len(result) > 100 {
		cut := 100
		for cut > 0 && !utf8RuneStart(result[cut]) {
			cut--
		}
		result = result[:cut]
	}

	return result
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }
