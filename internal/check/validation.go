package check

import (
	stderrors "errors"
	"strings"

	"github.com/fatih/color"

	"github.com/verustcode/adreport/internal/config"
	"github.com/verustcode/adreport/pkg/errors"
)

// ValidationResult represents the result of a config validation
type ValidationResult struct {
	Path     string
	Valid    bool
	Error    error
	Warnings []string
}

// validateConfigs loads and validates the configuration, returning it for later steps.
// A declined config file creation falls back to defaults.
func (c *Checker) validateConfigs() (*config.Config, error) {
	cfg, result := c.validateConfigFile()
	c.report.AddValidationResult(result)
	printValidationResult(result)

	if !result.Valid {
		return nil, result.Error
	}
	return cfg, nil
}

// validateConfigFile parses the config file and runs config.Validate
func (c *Checker) validateConfigFile() (*config.Config, ValidationResult) {
	result := ValidationResult{Path: c.configPath}

	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		result.Error = err
		return nil, result
	}

	if err := cfg.Validate(); err != nil {
		result.Error = err
		result.Warnings = validationProblems(err)
		return nil, result
	}

	result.Valid = true
	result.Warnings = append(result.Warnings, credentialWarnings(cfg)...)
	result.Warnings = append(result.Warnings, exportWarnings(cfg)...)
	return cfg, result
}

// validationProblems splits a joined validation error into one line per problem
func validationProblems(err error) []string {
	inner := err
	if appErr, ok := errors.AsAppError(err); ok && appErr.Err != nil {
		inner = appErr.Err
	}

	var joined interface{ Unwrap() []error }
	if stderrors.As(inner, &joined) {
		var lines []string
		for _, e := range joined.Unwrap() {
			lines = append(lines, e.Error())
		}
		return lines
	}
	return strings.Split(inner.Error(), "\n")
}

// printValidationResult prints a single validation result
func printValidationResult(result ValidationResult) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	if result.Valid {
		green.Printf("  ✓ %s\n", result.Path)
	} else {
		red.Printf("  ✗ %s: %v\n", result.Path, firstLine(result.Error))
	}

	for _, warning := range result.Warnings {
		yellow.Printf("    └─ %s\n", warning)
	}
}

func firstLine(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}
