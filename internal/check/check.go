// Package check provides interactive environment checking and initialization.
// It helps users set up their local AD Rapportage configuration properly.
package check

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/verustcode/adreport/internal/config"
)

// CheckResult represents the result of a non-interactive environment check
type CheckResult struct {
	// Success indicates whether all required checks passed
	Success bool
	// Errors contains critical errors that prevent server startup
	Errors []string
	// Warnings contains non-critical issues that don't block startup
	Warnings []string
	// Suggestions contains helpful tips for fixing issues
	Suggestions []string
}

// Checker handles environment checking and initialization
type Checker struct {
	// configPath is the configuration file to check
	configPath string
	// report collects check results for final output
	report *Report
	// confirm asks before creating missing files
	confirm func(path string) (bool, error)
}

// NewChecker creates a new environment checker for the given config file.
// An empty path uses config.DefaultConfigPath.
func NewChecker(configPath string) *Checker {
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}
	return &Checker{
		configPath: configPath,
		report:     NewReport(),
		confirm:    confirmCreate,
	}
}

// ConfigPath returns the path of the checked configuration file
func (c *Checker) ConfigPath() string {
	return c.configPath
}

// Run executes the full environment check
func (c *Checker) Run() error {
	c.printHeader()

	fmt.Println()
	printSection("Checking configuration file")
	if err := c.checkFiles(); err != nil {
		return fmt.Errorf("file check failed: %w", err)
	}

	fmt.Println()
	printSection("Validating configuration")
	cfg, err := c.validateConfigs()
	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Println()
	printSection("Checking data directories")
	if err := c.checkDataDirs(cfg); err != nil {
		return fmt.Errorf("directory check failed: %w", err)
	}

	fmt.Println()
	c.report.Print()

	return nil
}

// printHeader prints the welcome header
func (c *Checker) printHeader() {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	fmt.Println(titleStyle.Render("AD Rapportage Environment Check"))
}

// printSection prints a section header
func printSection(title string) {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15"))
	fmt.Println(style.Render(title + "..."))
}

// confirmCreate asks user to confirm file creation
func confirmCreate(path string) (bool, error) {
	var confirm bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Create %s?", path)).
		Affirmative("Yes").
		Negative("No").
		Value(&confirm).
		WithTheme(huh.ThemeCharm()).
		Run()
	if err != nil {
		return false, err
	}
	return confirm, nil
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ensureDir creates the parent directory of path if it doesn't exist
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// RunNonInteractive performs a non-interactive environment check.
// Unlike Run(), this method does not prompt for user input and does not create files.
// A missing config file is only a warning: defaults and ADR_* variables apply.
func (c *Checker) RunNonInteractive() *CheckResult {
	result := &CheckResult{
		Success:     true,
		Errors:      make([]string, 0),
		Warnings:    make([]string, 0),
		Suggestions: make([]string, 0),
	}

	if !fileExists(c.configPath) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Configuration file not found: %s (using defaults)", c.configPath))
		result.Suggestions = append(result.Suggestions,
			"Run 'adreport serve --check' to interactively create the configuration file")
	}

	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		result.Success = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid %s: %v", c.configPath, err))
		return result
	}

	if err := cfg.Validate(); err != nil {
		result.Success = false
		result.Errors = append(result.Errors, err.Error())
		result.Suggestions = append(result.Suggestions,
			fmt.Sprintf("Fix the reported fields in %s or via ADR_* environment variables", c.configPath))
		return result
	}

	result.Warnings = append(result.Warnings, credentialWarnings(cfg)...)
	result.Warnings = append(result.Warnings, exportWarnings(cfg)...)

	return result
}

// credentialWarnings reports missing backend credentials
func credentialWarnings(cfg *config.Config) []string {
	if cfg.Backend.OAuth2 == nil && cfg.Backend.Token == "" {
		return []string{"No backend credentials configured (backend.token or backend.oauth2)"}
	}
	return nil
}

// exportWarnings reports local export settings that will fail at export time
func exportWarnings(cfg *config.Config) []string {
	if !cfg.Export.IsLocal() {
		return nil
	}
	var warnings []string
	if p := cfg.Export.PDF.ChromePath; p != "" && !fileExists(p) {
		warnings = append(warnings, fmt.Sprintf("export.pdf.chrome_path %s does not exist, PDF export will fail", p))
	}
	return warnings
}

// PrintCheckResult prints the check result in a formatted way
func PrintCheckResult(result *CheckResult) {
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	if len(result.Errors) > 0 {
		fmt.Println()
		red.Println("[ERROR] Environment check failed")
		fmt.Println()
		for _, err := range result.Errors {
			red.Printf("  ✗ %s\n", err)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Println()
		yellow.Println("[WARNING] Configuration warnings:")
		fmt.Println()
		for _, warn := range result.Warnings {
			yellow.Printf("  ⚠ %s\n", warn)
		}
	}

	if len(result.Suggestions) > 0 {
		cyan.Println("\nTo fix these issues:")
		for _, suggestion := range result.Suggestions {
			fmt.Printf("  → %s\n", suggestion)
		}
	}

	fmt.Println()
}
