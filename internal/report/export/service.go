package export

import (
	"context"
	"path/filepath"

	"github.com/verustcode/adreport/internal/backend"
	"github.com/verustcode/adreport/internal/config"
	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/internal/report/exporter"
	"github.com/verustcode/adreport/pkg/idgen"
)

// Result is a finished export: a download URL, a stored file or the bytes
type Result struct {
	URL         string `json:"url,omitempty"`
	Path        string `json:"path,omitempty"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size"`
	Data        []byte `json:"-"`
}

// Location returns where the result can be found, for audit records
func (r *Result) Location() string {
	switch {
	case r.URL != "":
		return r.URL
	case r.Path != "":
		return r.Path
	default:
		return r.Filename
	}
}

// Preview is a rendered preview: a URL to open or inline HTML
type Preview struct {
	URL  string `json:"url,omitempty"`
	HTML string `json:"html,omitempty"`
}

// Service produces export files and previews from a payload
type Service interface {
	Export(ctx context.Context, doc *model.ExportPayload, format exporter.ExportFormat) (*Result, error)
	Preview(ctx context.Context, doc *model.ExportPayload) (*Preview, error)
	// Mode names the service for audit records: backend or local
	Mode() string
}

// BackendAPI is the part of the backend client used for exports
type BackendAPI interface {
	RequestExport(ctx context.Context, reportID string, req backend.ExportRequest) (*backend.ExportResult, error)
	RequestPreview(ctx context.Context, reportID string, req backend.ExportRequest) (*backend.PreviewResult, error)
}

// BackendService delegates file production to the backend export service
type BackendService struct {
	api BackendAPI
}

// NewBackendService creates a backend export service
func NewBackendService(api BackendAPI) *BackendService {
	return &BackendService{api: api}
}

// Mode returns "backend"
func (s *BackendService) Mode() string { return config.ExportModeBackend }

// Export posts the payload and returns the URL or file the backend produced
func (s *BackendService) Export(ctx context.Context, doc *model.ExportPayload, format exporter.ExportFormat) (*Result, error) {
	res, err := s.api.RequestExport(ctx, doc.ReportID, backend.ExportRequest{
		Layout:  doc.Layout,
		Format:  string(format),
		Payload: doc,
	})
	if err != nil {
		return nil, err
	}
	return &Result{
		URL:         res.URL,
		Filename:    res.Filename,
		ContentType: res.ContentType,
		Size:        int64(len(res.Data)),
		Data:        res.Data,
	}, nil
}

// Preview posts the payload to the preview endpoint
func (s *BackendService) Preview(ctx context.Context, doc *model.ExportPayload) (*Preview, error) {
	res, err := s.api.RequestPreview(ctx, doc.ReportID, backend.ExportRequest{
		Layout:  doc.Layout,
		Payload: doc,
	})
	if err != nil {
		return nil, err
	}
	return &Preview{URL: res.URL, HTML: res.HTML}, nil
}

// LocalService produces files with the built-in exporters
type LocalService struct {
	manager   *exporter.ExportManager
	outputDir string
}

// NewLocalService creates a local export service writing below outputDir.
// An empty outputDir keeps results in memory only.
func NewLocalService(manager *exporter.ExportManager, outputDir string) *LocalService {
	return &LocalService{manager: manager, outputDir: outputDir}
}

// NewService picks the export service for the configured mode
func NewService(cfg config.ExportConfig, api BackendAPI) Service {
	if cfg.IsLocal() {
		return NewLocalService(exporter.NewDefaultExportManager(exporter.PDFOptionsFromConfig(cfg.PDF)), cfg.OutputDir)
	}
	return NewBackendService(api)
}

// Mode returns "local"
func (s *LocalService) Mode() string { return config.ExportModeLocal }

// Export renders the payload and stores it under <outputDir>/<report id>/
func (s *LocalService) Export(ctx context.Context, doc *model.ExportPayload, format exporter.ExportFormat) (*Result, error) {
	exp, err := s.manager.GetExporter(format)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Filename:    s.manager.GenerateFilename(doc, format),
		ContentType: exp.ContentType(),
	}

	if s.outputDir == "" {
		data, err := s.manager.Export(ctx, doc, format)
		if err != nil {
			return nil, err
		}
		res.Data = data
		res.Size = int64(len(data))
		return res, nil
	}

	// the export id keeps earlier files of the same report
	res.Path = filepath.Join(s.outputDir, doc.ReportID, idgen.NewExportID()+"-"+res.Filename)
	size, err := s.manager.ExportToFile(ctx, doc, res.Path, format)
	if err != nil {
		return nil, err
	}
	res.Size = size
	return res, nil
}

// Preview renders the self-contained HTML document inline
func (s *LocalService) Preview(ctx context.Context, doc *model.ExportPayload) (*Preview, error) {
	data, err := s.manager.Export(ctx, doc, exporter.ExportFormatHTML)
	if err != nil {
		return nil, err
	}
	return &Preview{HTML: string(data)}, nil
}
