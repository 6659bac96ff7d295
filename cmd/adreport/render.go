package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/verustcode/adreport/internal/config"
	"github.com/verustcode/adreport/internal/database"
	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/internal/report/export"
	"github.com/verustcode/adreport/internal/report/exporter"
	"github.com/verustcode/adreport/internal/report/render"
	"github.com/verustcode/adreport/internal/report/structured"
	"github.com/verustcode/adreport/internal/store"
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render <file|->",
	Short: "Render a report record offline",
	Long: `Render a report record without contacting the backend. The argument is a
JSON file holding the report as returned by the backend, "-" for stdin, or
with --snapshot the id of a report mirrored in the local database.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringP("format", "f", string(exporter.ExportFormatHTML), "output format (markdown, html, json, pdf, xlsx)")
	renderCmd.Flags().StringP("out", "o", "", "output file (default: stdout)")
	renderCmd.Flags().String("layout", "", "report layout (default: render.default_layout)")
	renderCmd.Flags().Bool("pick", false, "choose the layout interactively")
	renderCmd.Flags().Bool("structured", true, "include structured data")
	renderCmd.Flags().Bool("snapshot", false, "read the report from the local snapshot database")
	renderCmd.Flags().String("case-title", "", "case title for the cover page")
	renderCmd.Flags().String("employee", "", "employee name for the cover page")
	renderCmd.Flags().String("employer", "", "employer name for the cover page")
	renderCmd.Flags().Bool("verbose", false, "show info logs")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	if err := initLogger(cfg, verbose); err != nil {
		return err
	}

	formatName, _ := cmd.Flags().GetString("format")
	format, err := exporter.ParseFormat(formatName)
	if err != nil {
		return err
	}

	opts, err := viewOptionsFromFlags(cmd, cfg)
	if err != nil {
		return err
	}
	opts.CaseContext = caseContextFromFlags(cmd)

	var report *model.Report
	if fromSnapshot, _ := cmd.Flags().GetBool("snapshot"); fromSnapshot {
		report, err = loadSnapshot(cfg, args[0])
	} else {
		report, err = readReportFile(args[0], cmd.InOrStdin())
	}
	if err != nil {
		return err
	}

	data, err := renderReport(cmd.Context(), cfg, report, opts.Layout, opts.Structured, opts.CaseContext, format)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d bytes)\n", out, len(data))
	return nil
}

// renderReport builds the export payload and runs the exporter for format
func renderReport(ctx context.Context, cfg *config.Config, report *model.Report, layout model.Layout, withStructured bool, cc model.CaseContext, format exporter.ExportFormat) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var res *structured.Resolution
	if withStructured {
		res = structured.Resolve(report, cc)
	}
	doc := export.BuildPayload(render.New(), report, res, layout, cc)

	manager := exporter.NewDefaultExportManager(exporter.PDFOptionsFromConfig(cfg.Export.PDF))
	return manager.Export(ctx, doc, format)
}

// readReportFile decodes a backend report record from a file or stdin
func readReportFile(path string, stdin io.Reader) (*model.Report, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var report model.Report
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode report from %s: %w", path, err)
	}
	if report.ID == "" {
		return nil, fmt.Errorf("report in %s has no id", path)
	}
	return &report, nil
}

// loadSnapshot reads the mirrored report from the snapshot database
func loadSnapshot(cfg *config.Config, reportID string) (*model.Report, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = database.DefaultDBPath
	}
	if err := database.InitWithPath(dbPath); err != nil {
		return nil, err
	}
	defer database.Close()

	return store.NewStore(database.Get()).Snapshot().LoadReport(reportID)
}

// caseContextFromFlags collects the cover page flags
func caseContextFromFlags(cmd *cobra.Command) model.CaseContext {
	var cc model.CaseContext
	cc.CaseTitle, _ = cmd.Flags().GetString("case-title")
	cc.EmployeeName, _ = cmd.Flags().GetString("employee")
	cc.EmployerName, _ = cmd.Flags().GetString("employer")
	return cc
}
