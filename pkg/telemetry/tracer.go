// Package telemetry provides OpenTelemetry integration for the application.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the default tracer name for the application
	TracerName = "github.com/verustcode/adreport"
)

// Tracer returns the global tracer for the application
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts a new span with the given name and returns the context and span.
// The caller is responsible for calling span.End() when the operation is complete.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// SpanFromContext returns the current span from the context.
// If no span is found, a no-op span is returned.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// SetSpanError records an error on the span and sets its status to error
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanOK sets the span status to OK
func SetSpanOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent adds an event to the span with optional attributes
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SetSpanAttributes sets attributes on the span
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
}

// Common attribute keys for consistent naming
var (
	// Report attributes
	AttrReportID     = attribute.Key("report.id")
	AttrReportStatus = attribute.Key("report.status")
	AttrSectionID    = attribute.Key("report.section_id")

	// Session attributes
	AttrSessionID = attribute.Key("session.id")

	// Render attributes
	AttrLayout       = attribute.Key("render.layout")
	AttrContentFmt   = attribute.Key("render.format")
	AttrSectionCount = attribute.Key("render.section_count")

	// Export attributes
	AttrExportFormat = attribute.Key("export.format")
	AttrExportMode   = attribute.Key("export.mode")

	// Backend attributes
	AttrBackendPath   = attribute.Key("backend.path")
	AttrBackendStatus = attribute.Key("backend.status_code")
	AttrDurationMs    = attribute.Key("duration.ms")
)

// WithReportAttributes returns span start options with report attributes
func WithReportAttributes(reportID, status string) trace.SpanStartOption {
	return trace.WithAttributes(
		AttrReportID.String(reportID),
		AttrReportStatus.String(status),
	)
}

// WithRenderAttributes returns span start options with render attributes
func WithRenderAttributes(reportID, layout string, sections int) trace.SpanStartOption {
	return trace.WithAttributes(
		AttrReportID.String(reportID),
		AttrLayout.String(layout),
		AttrSectionCount.Int(sections),
	)
}

// WithExportAttributes returns span start options with export attributes
func WithExportAttributes(reportID, format, mode string) trace.SpanStartOption {
	return trace.WithAttributes(
		AttrReportID.String(reportID),
		AttrExportFormat.String(format),
		AttrExportMode.String(mode),
	)
}
