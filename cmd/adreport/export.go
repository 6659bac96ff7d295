package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/internal/report/exporter"
	"github.com/verustcode/adreport/internal/server"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <report-id>",
	Short: "Export a report once generation finishes",
	Long: `Wait for the report to finish and export it through the configured export
service. In backend mode the backend returns a download URL; in local mode
the file is written below export.output_dir or to --out.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("format", "f", string(exporter.ExportFormatPDF), "export format (markdown, html, json, pdf, xlsx)")
	exportCmd.Flags().StringP("out", "o", "", "output file for exports returned inline")
	exportCmd.Flags().String("layout", "", "report layout (default: render.default_layout)")
	exportCmd.Flags().Bool("pick", false, "choose the layout interactively")
	exportCmd.Flags().Bool("structured", false, "resolve structured records")
	exportCmd.Flags().String("case-title", "", "case title for the cover page")
	exportCmd.Flags().String("employee", "", "employee name for the cover page")
	exportCmd.Flags().String("employer", "", "employer name for the cover page")
	exportCmd.Flags().Duration("timeout", waitTimeout, "give up after this duration")
	exportCmd.Flags().Bool("verbose", false, "show info logs")
}

func runExport(cmd *cobra.Command, args []string) error {
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

	app, err := server.NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := commandContext(timeout)
	defer cancel()

	s, err := app.Manager.Open(ctx, args[0], &opts)
	if err != nil {
		return err
	}

	state, err := waitForReport(ctx, s, printStatus)
	if err != nil {
		return err
	}
	if state.Err != nil {
		return state.Err
	}
	if state.Status() == model.ReportStatusFailed {
		return fmt.Errorf("report %s failed: %s", args[0], state.Report.ErrorMessage())
	}

	res, err := s.Export(ctx, format)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	if len(res.Data) > 0 {
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = res.Filename
		}
		if err := os.WriteFile(out, res.Data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		green.Printf("✓ Exported %s (%d bytes)\n", out, res.Size)
		return nil
	}

	green.Printf("✓ Exported %s\n", res.Location())
	return nil
}
