package exporter

import (
	"context"
	"encoding/json"

	"github.com/verustcode/adreport/internal/model"
)

// JSONExporter exports the payload as indented JSON
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export encodes the payload as is
func (e *JSONExporter) Export(_ context.Context, doc *model.ExportPayload) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// Name returns the human-readable name of this exporter
func (e *JSONExporter) Name() string {
	return "JSON"
}

// FileExtension returns the file extension for JSON files
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// ContentType returns the MIME type for JSON files
func (e *JSONExporter) ContentType() string {
	return "application/json"
}
