package exporter

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/verustcode/adreport/consts"
	"github.com/verustcode/adreport/internal/config"
	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/pkg/logger"
)

// PDFOptions contains configuration for PDF generation
type PDFOptions struct {
	// Paper dimensions in inches (A4: 8.27 x 11.69)
	PaperWidth  float64
	PaperHeight float64
	Landscape   bool

	// Margins in inches
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64

	DisplayHeaderFooter bool

	// Print background colors and images
	PrintBackground bool

	// Scale of the webpage rendering (1.0 = 100%)
	Scale float64

	// Timeout for PDF generation
	Timeout time.Duration

	// ChromePath overrides the browser binary; CHROME_PATH is used when empty
	ChromePath string
}

// DefaultPDFOptions returns default PDF options for A4 paper
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PaperWidth:  8.27,
		PaperHeight: 11.69,

		MarginTop:    0.71, // ~18mm, leaves room for the header
		MarginBottom: 0.59, // ~15mm
		MarginLeft:   0.79, // ~20mm
		MarginRight:  0.79, // ~20mm

		DisplayHeaderFooter: true,
		PrintBackground:     true,
		Scale:               1.0,
		Timeout:             120 * time.Second,
	}
}

// PDFOptionsFromConfig applies the configured paper settings to the defaults
func PDFOptionsFromConfig(cfg config.PDFConfig) PDFOptions {
	opts := DefaultPDFOptions()
	if strings.EqualFold(cfg.PaperSize, "letter") {
		opts.PaperWidth, opts.PaperHeight = 8.5, 11
	}
	opts.Landscape = cfg.Landscape
	opts.PrintBackground = cfg.PrintBackground
	if cfg.Timeout > 0 {
		opts.Timeout = cfg.Timeout
	}
	opts.ChromePath = cfg.ChromePath
	return opts
}

// PDFExporter exports reports to PDF format using Chrome headless
type PDFExporter struct {
	options PDFOptions
}

// NewPDFExporter creates a new PDF exporter with default options
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{
		options: DefaultPDFOptions(),
	}
}

// NewPDFExporterWithOptions creates a new PDF exporter with custom options
func NewPDFExporterWithOptions(opts PDFOptions) *PDFExporter {
	return &PDFExporter{
		options: opts,
	}
}

// Export prints the HTML document of the payload to PDF
func (e *PDFExporter) Export(ctx context.Context, doc *model.ExportPayload) ([]byte, error) {
	startTime := time.Now()
	log := logger.WithReport(doc.ReportID)

	log.Info("[PDF Export] Starting PDF export",
		zap.Int("sections_count", len(doc.Sections)),
		zap.Duration("timeout", e.options.Timeout),
	)

	html := renderDocument(doc, true)
	headerTemplate, footerTemplate := e.generateHeaderFooter(doc)

	// Write HTML to temporary file (avoids data URL size limits)
	tmpFile, err := os.CreateTemp("", "adreport-pdf-*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.WriteString(html); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	tmpFile.Close()

	ctx, cancel := context.WithTimeout(ctx, e.options.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-software-rasterizer", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("headless", true),
	)

	chromePath := e.options.ChromePath
	if chromePath == "" {
		chromePath = os.Getenv("CHROME_PATH")
	}
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
		log.Debug("[PDF Export] Using custom Chrome path", zap.String("chrome_path", chromePath))
	}

	// The default WebSocket URL timeout of 20s is too short on slow systems
	opts = append(opts, chromedp.WSURLReadTimeout(60*time.Second))

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			log.Debug(fmt.Sprintf("[PDF Export] chromedp: "+format, args...))
		}),
	)
	defer browserCancel()

	var pdfData []byte
	chromeStartTime := time.Now()
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+tmpPath),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfData, _, err = page.PrintToPDF().
				WithPaperWidth(e.options.PaperWidth).
				WithPaperHeight(e.options.PaperHeight).
				WithLandscape(e.options.Landscape).
				WithMarginTop(e.options.MarginTop).
				WithMarginBottom(e.options.MarginBottom).
				WithMarginLeft(e.options.MarginLeft).
				WithMarginRight(e.options.MarginRight).
				WithDisplayHeaderFooter(e.options.DisplayHeaderFooter).
				WithHeaderTemplate(headerTemplate).
				WithFooterTemplate(footerTemplate).
				WithPrintBackground(e.options.PrintBackground).
				WithScale(e.options.Scale).
				WithPreferCSSPageSize(false).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		log.Error("[PDF Export] Failed to generate PDF",
			zap.Error(err),
			zap.Duration("chrome_duration", time.Since(chromeStartTime)),
			zap.Duration("total_duration", time.Since(startTime)),
		)
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	log.Info("[PDF Export] PDF export completed successfully",
		zap.String("pdf_size", formatBytes(len(pdfData))),
		zap.Duration("total_duration", time.Since(startTime)),
	)
	return pdfData, nil
}

// formatBytes converts bytes to human-readable format
func formatBytes(bytes int) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := int64(bytes) / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// Name returns the human-readable name of this exporter
func (e *PDFExporter) Name() string {
	return "PDF"
}

// FileExtension returns the file extension for PDF files
func (e *PDFExporter) FileExtension() string {
	return ".pdf"
}

// ContentType returns the MIME type for PDF files
func (e *PDFExporter) ContentType() string {
	return "application/pdf"
}

// generateHeaderFooter creates header and footer HTML templates.
// Chrome fills the pageNumber and totalPages classes.
func (e *PDFExporter) generateHeaderFooter(doc *model.ExportPayload) (header, footer string) {
	header = fmt.Sprintf(`
		<div style="width:100%%; padding:8px 20px 12px 20px; font-size:10px; font-family:system-ui,-apple-system,sans-serif; color:#616e7c; display:flex; justify-content:space-between; align-items:center;">
			<span style="display:flex; align-items:center; gap:10px;">
				%s
				<span style="font-weight:600; font-size:13px; color:#1E3A5F;">%s</span>
			</span>
			<span>%s</span>
		</div>
	`, getLogoSVG(24, 24), escapeHTML(consts.ProjectName), escapeHTML(documentTitle(doc)))

	footer = `
		<div style="width:100%; padding:0 20px; font-size:9px; font-family:system-ui,-apple-system,sans-serif; color:#616e7c; display:flex; justify-content:space-between; align-items:center;">
			<span>Vertrouwelijk</span>
			<span>Pagina <span class="pageNumber"></span> van <span class="totalPages"></span></span>
		</div>
	`
	return header, footer
}
