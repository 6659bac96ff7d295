package check

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verustcode/adreport/internal/config"
)

func writeConfig(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(dir, "data", "adreport.db")
	cfg.Backend.Token = "secret"
	if mutate != nil {
		mutate(cfg)
	}
	path := filepath.Join(dir, "adreport.yaml")
	if err := config.Write(path, cfg); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

// TestNewChecker tests the NewChecker function
func TestNewChecker(t *testing.T) {
	checker := NewChecker("")
	if checker == nil {
		t.Fatal("NewChecker returned nil")
	}
	if checker.ConfigPath() != config.DefaultConfigPath {
		t.Errorf("Expected config path %q, got %q", config.DefaultConfigPath, checker.ConfigPath())
	}
	if checker.report == nil {
		t.Error("Report should be initialized")
	}

	if NewChecker("custom.yaml").ConfigPath() != "custom.yaml" {
		t.Error("Custom config path should be kept")
	}
}

// TestFileExists tests the fileExists function
func TestFileExists(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "test_exists.txt")
	if err := os.WriteFile(tmpFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	if !fileExists(tmpFile) {
		t.Error("fileExists should return true for existing file")
	}
	if fileExists("/non/existent/file.txt") {
		t.Error("fileExists should return false for non-existing file")
	}
}

// TestEnsureDir tests the ensureDir function
func TestEnsureDir(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "subdir")

	if err := ensureDir(filepath.Join(tmpDir, "test.txt")); err != nil {
		t.Errorf("ensureDir failed: %v", err)
	}
	if _, err := os.Stat(tmpDir); os.IsNotExist(err) {
		t.Error("Directory should have been created")
	}
}

// TestRunNonInteractive_Valid tests a valid configuration
func TestRunNonInteractive_Valid(t *testing.T) {
	path := writeConfig(t, nil)

	result := NewChecker(path).RunNonInteractive()
	if !result.Success {
		t.Fatalf("Expected success, got errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}
}

// TestRunNonInteractive_MissingFile tests that a missing config only warns
func TestRunNonInteractive_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	result := NewChecker(path).RunNonInteractive()
	if !result.Success {
		t.Fatalf("Missing config should not fail, got errors: %v", result.Errors)
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "not found") {
		t.Errorf("Expected missing file warning, got %v", result.Warnings)
	}
	if len(result.Suggestions) == 0 {
		t.Error("Expected a suggestion to run the interactive check")
	}
}

// TestRunNonInteractive_Invalid tests that validation problems fail the check
func TestRunNonInteractive_Invalid(t *testing.T) {
	path := writeConfig(t, func(cfg *config.Config) {
		cfg.Export.Mode = "ftp"
	})

	result := NewChecker(path).RunNonInteractive()
	if result.Success {
		t.Fatal("Expected failure for invalid export mode")
	}
	if !strings.Contains(strings.Join(result.Errors, "\n"), "export.mode") {
		t.Errorf("Expected export.mode error, got %v", result.Errors)
	}
}

// TestRunNonInteractive_ParseError tests a malformed YAML file
func TestRunNonInteractive_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	result := NewChecker(path).RunNonInteractive()
	if result.Success {
		t.Fatal("Expected failure for malformed YAML")
	}
}

// TestRunNonInteractive_Warnings tests credential and export warnings
func TestRunNonInteractive_Warnings(t *testing.T) {
	path := writeConfig(t, func(cfg *config.Config) {
		cfg.Backend.Token = ""
		cfg.Export.Mode = config.ExportModeLocal
		cfg.Export.OutputDir = "exports"
		cfg.Export.PDF.ChromePath = "/non/existent/chrome"
	})

	result := NewChecker(path).RunNonInteractive()
	if !result.Success {
		t.Fatalf("Warnings should not fail the check: %v", result.Errors)
	}
	if len(result.Warnings) != 2 {
		t.Errorf("Expected 2 warnings, got %v", result.Warnings)
	}
}

// TestPrintCheckResult tests that printing does not panic
func TestPrintCheckResult(t *testing.T) {
	PrintCheckResult(&CheckResult{
		Errors:      []string{"error"},
		Warnings:    []string{"warning"},
		Suggestions: []string{"suggestion"},
	})
}
