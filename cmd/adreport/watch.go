package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/verustcode/adreport/internal/config"
	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/internal/report/poller"
	"github.com/verustcode/adreport/internal/report/session"
	"github.com/verustcode/adreport/internal/server"
)

// watchTick is how often the command samples the session state
const watchTick = 250 * time.Millisecond

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <report-id>",
	Short: "Follow a report until generation finishes",
	Long: `Poll the generation backend for a report, print every status change and
show the table of contents once the report is done. The latest report is
mirrored into the local database for offline rendering.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("layout", "", "report layout (default: render.default_layout)")
	watchCmd.Flags().Bool("pick", false, "choose the layout interactively")
	watchCmd.Flags().Bool("structured", false, "resolve structured records")
	watchCmd.Flags().Duration("timeout", waitTimeout, "give up after this duration")
	watchCmd.Flags().Bool("verbose", false, "show info logs")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	if err := initLogger(cfg, verbose); err != nil {
		return err
	}

	opts, err := viewOptionsFromFlags(cmd, cfg)
	if err != nil {
		return err
	}

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

	printView(s.View())
	return nil
}

// viewOptionsFromFlags builds the view options from --layout, --pick and --structured
func viewOptionsFromFlags(cmd *cobra.Command, cfg *config.Config) (session.ViewOptions, error) {
	opts := session.ViewOptions{
		Layout:     cfg.Render.Layout(),
		Structured: cfg.Render.StructuredContent,
	}

	if name, _ := cmd.Flags().GetString("layout"); name != "" {
		layout, err := model.ParseLayout(name)
		if err != nil {
			return opts, err
		}
		opts.Layout = layout
	}
	if pick, _ := cmd.Flags().GetBool("pick"); pick {
		layout, err := pickLayout(opts.Layout)
		if err != nil {
			return opts, err
		}
		opts.Layout = layout
	}
	if cmd.Flags().Changed("structured") {
		opts.Structured, _ = cmd.Flags().GetBool("structured")
	}
	return opts, nil
}

// pickLayout asks the user for a layout, starting at current
func pickLayout(current model.Layout) (model.Layout, error) {
	options := make([]huh.Option[model.Layout], 0, len(model.AllLayouts()))
	for _, l := range model.AllLayouts() {
		options = append(options, huh.NewOption(string(l), l))
	}

	selected := current
	err := huh.NewSelect[model.Layout]().
		Title("Report layout").
		Options(options...).
		Value(&selected).
		WithTheme(huh.ThemeCharm()).
		Run()
	if err != nil {
		return current, err
	}
	return selected, nil
}

// commandContext returns a context cancelled on SIGINT, SIGTERM or timeout
func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	return tctx, func() {
		cancel()
		stop()
	}
}

// waitForReport samples the session until polling halts.
// onStatus is called once per observed status.
func waitForReport(ctx context.Context, s *session.Session, onStatus func(model.ReportStatus, poller.State)) (poller.State, error) {
	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()

	var last model.ReportStatus
	for {
		state := s.PollState()
		if status := state.Status(); status != "" && status != last {
			last = status
			if onStatus != nil {
				onStatus(status, state)
			}
		}
		if !state.Active {
			return state, nil
		}

		select {
		case <-ctx.Done():
			return state, fmt.Errorf("stopped waiting for report %s: %w", s.ReportID(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// printStatus prints one status line
func printStatus(status model.ReportStatus, state poller.State) {
	ts := time.Now().Format("15:04:05")
	switch {
	case status == model.ReportStatusFailed:
		color.New(color.FgRed, color.Bold).Printf("%s  %-10s %s\n", ts, status, state.Report.ErrorMessage())
	case status.HasContent():
		color.New(color.FgGreen, color.Bold).Printf("%s  %-10s %d section(s)\n", ts, status, state.Report.Content.Len())
	default:
		color.New(color.FgYellow).Printf("%s  %-10s\n", ts, status)
	}
}

// printView prints the report title and table of contents
func printView(v *session.View) {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("12")).
		Padding(0, 2)
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15"))
	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	title := v.Title
	if title == "" {
		title = v.ReportID
	}
	header := titleStyle.Render(title) + "\n" +
		dimStyle.Render(fmt.Sprintf("%s · %s layout", v.Status, v.Layout))
	fmt.Println()
	fmt.Println(boxStyle.Render(header))

	if len(v.TableOfContents) == 0 {
		fmt.Println(dimStyle.Render("  No sections"))
		return
	}

	cyan := color.New(color.FgCyan)
	for _, e := range v.TableOfContents {
		cyan.Printf("  %2d. ", e.Number)
		fmt.Printf("%s %s\n", e.Title, dimStyle.Render("("+e.ID+")"))
	}

	if len(v.Violations) > 0 {
		yellow := color.New(color.FgYellow)
		yellow.Println("\n  structured data does not match the schema:")
		for _, msg := range v.Violations {
			yellow.Printf("    └─ %s\n", strings.TrimSpace(msg))
		}
	}
}
