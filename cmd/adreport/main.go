// Package main is the entry point for the AD Rapportage application.
// AD Rapportage follows reports produced by the generation backend and
// renders, previews and exports them.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/verustcode/adreport/consts"
	"github.com/verustcode/adreport/internal/config"
	"github.com/verustcode/adreport/pkg/logger"
)

// Build information - set via ldflags during build
// These variables are linked to consts package for global access
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// init synchronizes build info to consts package for global access
func init() {
	consts.Version = Version
	consts.BuildTime = BuildTime
	consts.GitCommit = GitCommit
}

var (
	// configPath holds the path to the configuration file
	configPath string
	// envFile holds the dotenv file loaded before the configuration
	envFile string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "adreport",
	Short: "AD Rapportage - report viewer and export service",
	Long: `AD Rapportage follows reports produced by the generation backend until they
are done, renders them in one of the report layouts and exports them as
PDF, HTML, Markdown, JSON or an Excel workbook of the structured data.`,
	SilenceUsage: true,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", consts.ProjectName, Version)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		fmt.Printf("  Git Commit: %s\n", GitCommit)
	},
}

func init() {
	// Disable auto-generated completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default: "+config.DefaultConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the dotenv file and the configuration.
// A missing config file falls back to defaults with ADR_* overrides.
func loadConfig() (*config.Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	path := configPath
	if path == "" {
		path = config.DefaultConfigPath
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFile loads variables from a dotenv file without overriding the environment
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// initLogger initializes logging for one-shot commands.
// Only warnings and errors are shown unless --verbose is set.
func initLogger(cfg *config.Config, verbose bool) error {
	logCfg := cfg.Logging
	if !verbose {
		logCfg.Level = "warn"
	}
	if err := logger.Init(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// waitTimeout is the default limit for commands that wait for a report
const waitTimeout = 30 * time.Minute
