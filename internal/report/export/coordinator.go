package export

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/internal/report/exporter"
	"github.com/verustcode/adreport/internal/report/render"
	"github.com/verustcode/adreport/internal/report/structured"
	"github.com/verustcode/adreport/internal/store"
	"github.com/verustcode/adreport/pkg/errors"
	"github.com/verustcode/adreport/pkg/idgen"
	"github.com/verustcode/adreport/pkg/logger"
	"github.com/verustcode/adreport/pkg/telemetry"
)

// DialogState is the open/closed state of the preview and download dialogs
type DialogState struct {
	PreviewOpen  bool `json:"preview_open"`
	DownloadOpen bool `json:"download_open"`
	InFlight     bool `json:"in_flight"`
}

// Request carries the report snapshot and view options an export is built from
type Request struct {
	Report      *model.Report
	Layout      model.Layout
	CaseContext model.CaseContext
}

// Coordinator assembles export payloads for one report view and hands them
// to the export service. At most one request runs at a time.
type Coordinator struct {
	svc      Service
	records  store.ExportRecordStore
	renderer *render.Renderer
	log      *zap.Logger

	mu      sync.Mutex
	dialogs DialogState
}

// NewCoordinator creates a coordinator. records may be nil to skip the audit trail.
func NewCoordinator(svc Service, records store.ExportRecordStore, r *render.Renderer) *Coordinator {
	if r == nil {
		r = render.New()
	}
	return &Coordinator{
		svc:      svc,
		records:  records,
		renderer: r,
		log:      logger.Named("export"),
	}
}

// Dialogs returns the current dialog state
func (c *Coordinator) Dialogs() DialogState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialogs
}

// OpenPreview marks the preview dialog open
func (c *Coordinator) OpenPreview() {
	c.mu.Lock()
	c.dialogs.PreviewOpen = true
	c.mu.Unlock()
}

// ClosePreview marks the preview dialog closed
func (c *Coordinator) ClosePreview() {
	c.mu.Lock()
	c.dialogs.PreviewOpen = false
	c.mu.Unlock()
}

// OpenDownload marks the download dialog open
func (c *Coordinator) OpenDownload() {
	c.mu.Lock()
	c.dialogs.DownloadOpen = true
	c.mu.Unlock()
}

// CloseDownload marks the download dialog closed
func (c *Coordinator) CloseDownload() {
	c.mu.Lock()
	c.dialogs.DownloadOpen = false
	c.mu.Unlock()
}

// Payload builds the export payload without contacting the export service
func (c *Coordinator) Payload(req Request) (*model.ExportPayload, error) {
	if err := ready(req.Report); err != nil {
		return nil, err
	}
	res := structured.Resolve(req.Report, req.CaseContext)
	return BuildPayload(c.renderer, req.Report, res, req.Layout, req.CaseContext), nil
}

// RequestExport builds the payload and asks the export service for a file.
// The download dialog closes once the file is ready.
func (c *Coordinator) RequestExport(ctx context.Context, req Request, format exporter.ExportFormat) (*Result, error) {
	format, err := exporter.ParseFormat(string(format))
	if err != nil {
		return nil, err
	}

	var result *Result
	err = c.run(ctx, req, model.ExportKindExport, string(format), func(ctx context.Context, doc *model.ExportPayload) (string, int64, error) {
		res, err := c.svc.Export(ctx, doc, format)
		if err != nil {
			return "", 0, err
		}
		result = res
		return res.Location(), res.Size, nil
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.dialogs.DownloadOpen = false
	c.mu.Unlock()
	return result, nil
}

// RequestPreview builds the payload and asks the export service for a preview.
// The preview dialog opens on success.
func (c *Coordinator) RequestPreview(ctx context.Context, req Request) (*Preview, error) {
	var preview *Preview
	err := c.run(ctx, req, model.ExportKindPreview, "", func(ctx context.Context, doc *model.ExportPayload) (string, int64, error) {
		p, err := c.svc.Preview(ctx, doc)
		if err != nil {
			return "", 0, err
		}
		preview = p
		return p.URL, int64(len(p.HTML)), nil
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.dialogs.PreviewOpen = true
	c.mu.Unlock()
	return preview, nil
}

// run guards the in-flight flag, records the audit row and the metrics
func (c *Coordinator) run(ctx context.Context, req Request, kind model.ExportKind, format string,
	call func(context.Context, *model.ExportPayload) (string, int64, error)) error {

	if err := ready(req.Report); err != nil {
		return err
	}

	c.mu.Lock()
	if c.dialogs.InFlight {
		c.mu.Unlock()
		return errors.New(errors.ErrCodeExportInFlight, "an export request is already in flight")
	}
	c.dialogs.InFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.dialogs.InFlight = false
		c.mu.Unlock()
	}()

	layout := req.Layout
	if !layout.IsValid() {
		layout = model.DefaultLayout
	}
	spanFormat := format
	if kind == model.ExportKindPreview {
		spanFormat = string(kind)
	}

	ctx, span := telemetry.StartSpan(ctx, "export."+string(kind),
		telemetry.WithExportAttributes(req.Report.ID, spanFormat, c.svc.Mode()))
	defer span.End()

	log := c.log.With(zap.String(logger.FieldReportID, req.Report.ID))
	start := time.Now()

	record := &model.ExportRecord{
		ID:       idgen.NewExportID(),
		ReportID: req.Report.ID,
		Kind:     kind,
		Format:   format,
		Layout:   layout,
		Mode:     c.svc.Mode(),
		Status:   model.ExportStatusPending,
	}
	if c.records != nil {
		if err := c.records.Create(record); err != nil {
			log.Warn("Failed to record export request", zap.Error(err))
		}
	}

	res := structured.Resolve(req.Report, req.CaseContext)
	doc := BuildPayload(c.renderer, req.Report, res, layout, req.CaseContext)

	location, size, err := call(ctx, doc)
	duration := time.Since(start)
	telemetry.GetMetrics().RecordExport(ctx, string(kind), format, err == nil, duration.Seconds())

	if err != nil {
		telemetry.SetSpanError(span, err)
		log.Error("Export request failed",
			zap.String("kind", string(kind)),
			zap.String("format", format),
			zap.Error(err))
		if c.records != nil {
			if merr := c.records.MarkFailed(record.ID, err.Error(), duration); merr != nil {
				log.Warn("Failed to mark export request failed", zap.Error(merr))
			}
		}
		if errors.IsAppError(err) {
			return err
		}
		return errors.Wrap(errors.ErrCodeExportFailed, "export request failed", err)
	}

	telemetry.SetSpanOK(span)
	log.Info("Export request completed",
		zap.String("kind", string(kind)),
		zap.String("format", format),
		zap.String("layout", string(layout)),
		zap.Int64("size", size),
		zap.Duration("duration", duration))
	if c.records != nil {
		if merr := c.records.MarkCompleted(record.ID, location, size, duration); merr != nil {
			log.Warn("Failed to mark export request completed", zap.Error(merr))
		}
	}
	return nil
}

// ready rejects reports that have no final content yet
func ready(report *model.Report) error {
	if report == nil {
		return errors.New(errors.ErrCodeReportNotReady, "report has not been fetched yet")
	}
	if !report.Status.HasContent() {
		return errors.New(errors.ErrCodeReportNotReady, "report is not ready for export: "+string(report.Status))
	}
	return nil
}
