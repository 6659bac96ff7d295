package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/verustcode/adreport/internal/model"
)

const (
	// FieldReportID is the field key for report ID in log entries
	FieldReportID = "report_id"
	// FieldSessionID is the field key for view session ID in log entries
	FieldSessionID = "session_id"
	// FieldSectionID is the field key for report section ID in log entries
	FieldSectionID = "section_id"

	// bufferSize is the number of buffered events before flushing to storage
	bufferSize = 100
	// flushInterval is the interval for periodic buffer flushing
	flushInterval = 5 * time.Second
)

// ReportEventWriter persists batches of report events.
// Keeping it an interface lets the logger stay independent of the store package.
type ReportEventWriter interface {
	WriteEvents(events []model.ReportEvent) error
}

// ReportEventHook captures log entries that carry a report_id field
// and writes them to the report event log.
type ReportEventHook struct {
	writer ReportEventWriter

	buffer []model.ReportEvent
	mu     sync.Mutex

	stopCh chan struct{}
	wg     sync.WaitGroup
	// pending tracks in-flight asynchronous writes
	pending sync.WaitGroup
}

// NewReportEventHook creates a hook and starts its background flusher.
func NewReportEventHook(writer ReportEventWriter) *ReportEventHook {
	hook := &ReportEventHook{
		writer: writer,
		buffer: make([]model.ReportEvent, 0, bufferSize),
		stopCh: make(chan struct{}),
	}

	hook.wg.Add(1)
	go hook.backgroundFlush()

	return hook
}

// eventCore wraps a zapcore.Core and forwards report-scoped entries to the hook.
type eventCore struct {
	zapcore.Core
	hook   *ReportEventHook
	fields []zapcore.Field
}

// WrapCore wraps a zapcore.Core with the hook.
func (h *ReportEventHook) WrapCore(core zapcore.Core) zapcore.Core {
	return &eventCore{Core: core, hook: h}
}

// With creates a new Core with additional context fields.
func (c *eventCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)

	return &eventCore{
		Core:   c.Core.With(fields),
		hook:   c.hook,
		fields: merged,
	}
}

// Check determines whether the supplied Entry should be logged.
func (c *eventCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}
	return ce
}

// Write writes to the wrapped core, then records the entry if it is report-scoped.
func (c *eventCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if err := c.Core.Write(entry, fields); err != nil {
		return err
	}

	all := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	all = append(all, c.fields...)
	all = append(all, fields...)

	reportID, sessionID := extractReportInfo(all)
	if reportID == "" {
		return nil
	}

	c.hook.add(model.ReportEvent{
		CreatedAt: entry.Time,
		ReportID:  reportID,
		SessionID: sessionID,
		Level:     convertLevel(entry.Level),
		Message:   entry.Message,
		Caller:    entry.Caller.String(),
		Fields:    serializeFields(all),
	})
	return nil
}

// Sync flushes buffered events and the wrapped core.
func (c *eventCore) Sync() error {
	c.hook.Flush()
	return c.Core.Sync()
}

func (h *ReportEventHook) add(event model.ReportEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buffer = append(h.buffer, event)
	if len(h.buffer) >= bufferSize {
		h.flushLocked()
	}
}

// Flush writes all buffered events to storage.
func (h *ReportEventHook) Flush() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flushLocked()
}

// flushLocked hands the buffer to the writer (must be called with lock held).
func (h *ReportEventHook) flushLocked() {
	if len(h.buffer) == 0 {
		return
	}

	events := h.buffer
	h.buffer = make([]model.ReportEvent, 0, bufferSize)

	h.pending.Add(1)
	go func(events []model.ReportEvent) {
		defer h.pending.Done()
		if err := h.writer.WriteEvents(events); err != nil {
			// stderr only, logging here would recurse into the hook
			fmt.Fprintf(os.Stderr, "Failed to write report events: %v\n", err)
		}
	}(events)
}

func (h *ReportEventHook) backgroundFlush() {
	defer h.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.Flush()
		case <-h.stopCh:
			h.Flush()
			return
		}
	}
}

// Close stops the background flusher and waits for pending writes.
func (h *ReportEventHook) Close() {
	close(h.stopCh)
	h.wg.Wait()
	h.pending.Wait()
}

func extractReportInfo(fields []zapcore.Field) (reportID, sessionID string) {
	for _, field := range fields {
		switch field.Key {
		case FieldReportID:
			if field.String != "" {
				reportID = field.String
			}
		case FieldSessionID:
			if field.String != "" {
				sessionID = field.String
			}
		}
	}
	return reportID, sessionID
}

func convertLevel(level zapcore.Level) model.LogLevel {
	switch level {
	case zapcore.DebugLevel:
		return model.LogLevelDebug
	case zapcore.InfoLevel:
		return model.LogLevelInfo
	case zapcore.WarnLevel:
		return model.LogLevelWarn
	case zapcore.ErrorLevel:
		return model.LogLevelError
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return model.LogLevelFatal
	default:
		return model.LogLevelInfo
	}
}

// serializeFields flattens zap fields into a JSON map, dropping the identification keys.
func serializeFields(fields []zapcore.Field) model.JSONMap {
	data := make(model.JSONMap)
	for _, field := range fields {
		if field.Key == FieldReportID || field.Key == FieldSessionID {
			continue
		}

		switch field.Type {
		case zapcore.StringType:
			data[field.Key] = field.String
		case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type:
			data[field.Key] = field.Integer
		case zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
			data[field.Key] = uint64(field.Integer)
		case zapcore.BoolType:
			data[field.Key] = field.Integer == 1
		case zapcore.DurationType:
			data[field.Key] = time.Duration(field.Integer).String()
		case zapcore.ErrorType:
			if err, ok := field.Interface.(error); ok && err != nil {
				data[field.Key] = err.Error()
			}
		default:
			if field.Interface != nil {
				data[field.Key] = fmt.Sprint(field.Interface)
			}
		}
	}
	return data
}
