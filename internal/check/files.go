package check

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/verustcode/adreport/internal/config"
	"github.com/verustcode/adreport/internal/database"
)

// FileCheckResult represents the result of a file or directory check
type FileCheckResult struct {
	Path        string
	Exists      bool
	Created     bool
	Description string
	Error       error
}

// checkFiles checks the configuration file and offers to create it from defaults
func (c *Checker) checkFiles() error {
	result := c.checkConfigFile()
	c.report.AddFileResult(result)
	return result.Error
}

// checkConfigFile checks the config file and prompts for creation if missing
func (c *Checker) checkConfigFile() FileCheckResult {
	result := FileCheckResult{
		Path:        c.configPath,
		Description: "Configuration file (server, backend, render, export)",
	}

	if fileExists(c.configPath) {
		result.Exists = true
		printFileStatus(c.configPath, true, false)
		return result
	}

	printFileStatus(c.configPath, false, false)

	confirm, err := c.confirm(c.configPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to get user confirmation: %w", err)
		return result
	}
	if !confirm {
		return result
	}

	if err := ensureDir(c.configPath); err != nil {
		result.Error = err
		return result
	}
	if err := config.Write(c.configPath, config.Default()); err != nil {
		result.Error = fmt.Errorf("failed to create file %s: %w", c.configPath, err)
		return result
	}

	result.Created = true
	printFileCreated(c.configPath)
	return result
}

// checkDataDirs ensures the database directory and local export directory exist
func (c *Checker) checkDataDirs(cfg *config.Config) error {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = database.DefaultDBPath
	}
	result := checkDir(filepath.Dir(dbPath), "Snapshot database directory")
	c.report.AddFileResult(result)
	if result.Error != nil {
		return result.Error
	}

	if cfg.Export.IsLocal() && cfg.Export.OutputDir != "" {
		result := checkDir(cfg.Export.OutputDir, "Local export directory")
		c.report.AddFileResult(result)
		if result.Error != nil {
			return result.Error
		}
	}
	return nil
}

// checkDir creates a missing directory without prompting
func checkDir(dir, description string) FileCheckResult {
	result := FileCheckResult{Path: dir, Description: description}
	if fileExists(dir) {
		result.Exists = true
		printFileStatus(dir, true, false)
		return result
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		result.Error = fmt.Errorf("failed to create directory %s: %w", dir, err)
		return result
	}
	result.Created = true
	printFileStatus(dir, false, true)
	return result
}

// printFileStatus prints the status of a file check
func printFileStatus(path string, exists bool, created bool) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	if exists {
		green.Printf("  ✓ %s\n", path)
	} else if created {
		green.Printf("  ✓ %s (created)\n", path)
	} else {
		yellow.Printf("  ⚠ %s does not exist\n", path)
	}
}

// printFileCreated prints a message when a file is created
func printFileCreated(path string) {
	green := color.New(color.FgGreen)
	green.Printf("  ✓ Created %s\n", path)
}
