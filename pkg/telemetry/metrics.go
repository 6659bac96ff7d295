// Package telemetry provides OpenTelemetry integration for the application.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/verustcode/adreport/pkg/logger"
)

const (
	// MeterName is the default meter name for the application
	MeterName = "github.com/verustcode/adreport"
)

// Metrics holds all application metrics
type Metrics struct {
	// Poll metrics
	PollsTotal        metric.Int64Counter
	PollErrors        metric.Int64Counter
	ActivePollers     metric.Int64UpDownCounter
	StatusTransitions metric.Int64Counter
	StatusRegressions metric.Int64Counter

	// Render metrics
	RendersTotal    metric.Int64Counter
	RenderFallbacks metric.Int64Counter
	RenderDuration  metric.Float64Histogram

	// Structured content metrics
	StructuredResolutions metric.Int64Counter
	SchemaViolations      metric.Int64Counter

	// Export metrics
	ExportsTotal   metric.Int64Counter
	ExportDuration metric.Float64Histogram

	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the global metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		var err error
		globalMetrics, err = initMetrics()
		if err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			// Return empty metrics to avoid nil pointer
			globalMetrics = &Metrics{}
		}
	})
	return globalMetrics
}

// initMetrics initializes all application metrics
func initMetrics() (*Metrics, error) {
	meter := otel.Meter(MeterName)
	m := &Metrics{}

	var err error

	// Poll metrics
	if m.PollsTotal, err = meter.Int64Counter(
		"adreport_polls_total",
		metric.WithDescription("Total number of report status polls"),
		metric.WithUnit("{poll}"),
	); err != nil {
		return nil, err
	}

	if m.PollErrors, err = meter.Int64Counter(
		"adreport_poll_errors_total",
		metric.WithDescription("Total number of failed report status polls"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}

	if m.ActivePollers, err = meter.Int64UpDownCounter(
		"adreport_active_pollers",
		metric.WithDescription("Number of currently running status pollers"),
		metric.WithUnit("{poller}"),
	); err != nil {
		return nil, err
	}

	if m.StatusTransitions, err = meter.Int64Counter(
		"adreport_status_transitions_total",
		metric.WithDescription("Total number of observed report status transitions"),
		metric.WithUnit("{transition}"),
	); err != nil {
		return nil, err
	}

	if m.StatusRegressions, err = meter.Int64Counter(
		"adreport_status_regressions_total",
		metric.WithDescription("Total number of fetched statuses ignored because they moved backwards"),
		metric.WithUnit("{regression}"),
	); err != nil {
		return nil, err
	}

	// Render metrics
	if m.RendersTotal, err = meter.Int64Counter(
		"adreport_renders_total",
		metric.WithDescription("Total number of section renders"),
		metric.WithUnit("{render}"),
	); err != nil {
		return nil, err
	}

	if m.RenderFallbacks, err = meter.Int64Counter(
		"adreport_render_fallbacks_total",
		metric.WithDescription("Total number of renders that used the paragraph fallback"),
		metric.WithUnit("{render}"),
	); err != nil {
		return nil, err
	}

	if m.RenderDuration, err = meter.Float64Histogram(
		"adreport_render_duration_seconds",
		metric.WithDescription("Duration of full document renders in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1),
	); err != nil {
		return nil, err
	}

	// Structured content metrics
	if m.StructuredResolutions, err = meter.Int64Counter(
		"adreport_structured_resolutions_total",
		metric.WithDescription("Total number of structured content resolutions by source"),
		metric.WithUnit("{resolution}"),
	); err != nil {
		return nil, err
	}

	if m.SchemaViolations, err = meter.Int64Counter(
		"adreport_structured_schema_violations_total",
		metric.WithDescription("Total number of backend structured payloads failing schema validation"),
		metric.WithUnit("{violation}"),
	); err != nil {
		return nil, err
	}

	// Export metrics
	if m.ExportsTotal, err = meter.Int64Counter(
		"adreport_exports_total",
		metric.WithDescription("Total number of export and preview requests"),
		metric.WithUnit("{export}"),
	); err != nil {
		return nil, err
	}

	if m.ExportDuration, err = meter.Float64Histogram(
		"adreport_export_duration_seconds",
		metric.WithDescription("Duration of export requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60),
	); err != nil {
		return nil, err
	}

	// HTTP metrics
	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"adreport_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"adreport_http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	); err != nil {
		return nil, err
	}

	logger.Info("Metrics initialized successfully")
	return m, nil
}

// RecordPollerStarted records that a status poller started
func (m *Metrics) RecordPollerStarted(ctx context.Context) {
	if m.ActivePollers != nil {
		m.ActivePollers.Add(ctx, 1)
	}
}

// RecordPollerStopped records that a status poller stopped
func (m *Metrics) RecordPollerStopped(ctx context.Context, reason string) {
	if m.ActivePollers != nil {
		m.ActivePollers.Add(ctx, -1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

// RecordPoll records a single status fetch
func (m *Metrics) RecordPoll(ctx context.Context, status string, success bool) {
	if m.PollsTotal != nil {
		m.PollsTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("status", status),
				attribute.Bool("success", success),
			),
		)
	}
	if !success && m.PollErrors != nil {
		m.PollErrors.Add(ctx, 1)
	}
}

// RecordStatusTransition records an accepted status change
func (m *Metrics) RecordStatusTransition(ctx context.Context, from, to string) {
	if m.StatusTransitions == nil {
		return
	}
	m.StatusTransitions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("from", from),
			attribute.String("to", to),
		),
	)
}

// RecordStatusRegression records a fetched status that was dropped for moving backwards
func (m *Metrics) RecordStatusRegression(ctx context.Context, current, fetched string) {
	if m.StatusRegressions == nil {
		return
	}
	m.StatusRegressions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("current", current),
			attribute.String("fetched", fetched),
		),
	)
}

// RecordRender records a section render
func (m *Metrics) RecordRender(ctx context.Context, layout, format string, fallback bool) {
	if m.RendersTotal != nil {
		m.RendersTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("layout", layout),
				attribute.String("format", format),
			),
		)
	}
	if fallback && m.RenderFallbacks != nil {
		m.RenderFallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("layout", layout)))
	}
}

// RecordDocumentRender records the duration of a full document render
func (m *Metrics) RecordDocumentRender(ctx context.Context, layout string, durationSeconds float64) {
	if m.RenderDuration == nil {
		return
	}
	m.RenderDuration.Record(ctx, durationSeconds, metric.WithAttributes(attribute.String("layout", layout)))
}

// RecordStructuredResolution records which source supplied structured content
func (m *Metrics) RecordStructuredResolution(ctx context.Context, source string) {
	if m.StructuredResolutions == nil {
		return
	}
	m.StructuredResolutions.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// RecordSchemaViolation records a backend structured payload failing validation
func (m *Metrics) RecordSchemaViolation(ctx context.Context) {
	if m.SchemaViolations != nil {
		m.SchemaViolations.Add(ctx, 1)
	}
}

// RecordExport records an export or preview request
func (m *Metrics) RecordExport(ctx context.Context, kind, format string, success bool, durationSeconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("format", format),
		attribute.Bool("success", success),
	)
	if m.ExportsTotal != nil {
		m.ExportsTotal.Add(ctx, 1, attrs)
	}
	if m.ExportDuration != nil {
		m.ExportDuration.Record(ctx, durationSeconds, attrs)
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, durationSeconds float64) {
	if m.HTTPRequestsTotal != nil {
		m.HTTPRequestsTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
				attribute.Int("status_code", statusCode),
			),
		)
	}
	if m.HTTPRequestDuration != nil {
		m.HTTPRequestDuration.Record(ctx, durationSeconds,
			metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
			),
		)
	}
}
