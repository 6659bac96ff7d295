package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verustcode/adreport/consts"
	"github.com/verustcode/adreport/internal/check"
	"github.com/verustcode/adreport/internal/server"
	"github.com/verustcode/adreport/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the AD Rapportage server",
	Long: `Start the HTTP server that opens report sessions, renders views and
coordinates exports.

On first run, use --check flag to interactively set up your environment:
  adreport serve --check

This will guide you through:
  - Creating the configuration file from defaults
  - Validating the configuration
  - Creating the database and export directories

After initial setup, simply run:
  adreport serve`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "server host (overrides config)")
	serveCmd.Flags().Int("port", 0, "server port (overrides config)")
	serveCmd.Flags().Bool("debug", false, "enable debug mode")
	serveCmd.Flags().Bool("check", false, "run interactive environment check before starting server")
}

// runServe starts the AD Rapportage server
func runServe(cmd *cobra.Command, args []string) {
	if err := loadEnvFile(envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	checker := check.NewChecker(configPath)
	if interactive, _ := cmd.Flags().GetBool("check"); interactive {
		if err := checker.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Environment check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("\n✓ Environment check completed successfully")
	} else {
		result := checker.RunNonInteractive()
		if !result.Success {
			check.PrintCheckResult(result)
			os.Exit(1)
		}
		if len(result.Warnings) > 0 {
			for _, warn := range result.Warnings {
				fmt.Fprintf(os.Stderr, "[WARNING] %s\n", warn)
			}
			fmt.Fprintln(os.Stderr)
		}
	}

	consts.SetStartedAt(time.Now())

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Server.Debug = true
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "text"
	}

	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting "+consts.ProjectName,
		zap.String("version", Version),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("export_mode", cfg.Export.Mode),
	)

	app, err := server.NewApp(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer app.Close()

	resumeCtx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout)
	res := app.Resume(resumeCtx)
	cancel()
	if res.Total > 0 {
		logger.Info("Resumed unfinished reports",
			zap.Int("total", res.Total),
			zap.Int("resumed", res.Resumed),
			zap.Int("stale", res.Stale),
			zap.Int("failed", res.Failed),
		)
	}

	srv := server.New(cfg, app.Manager, app.Store)
	srv.SetupRoutes()

	if err := srv.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	logger.Info(consts.ProjectName+" server is running",
		zap.String("address", cfg.Server.Address()),
	)

	port := cfg.Server.Port
	logger.Info(fmt.Sprintf("  Local:   http://localhost:%d/api/v1", port))
	if lanIP := getLocalIP(); lanIP != "" {
		logger.Info(fmt.Sprintf("  Network: http://%s:%d/api/v1", lanIP, port))
	}

	srv.WaitForShutdown()

	logger.Info(consts.ProjectName + " stopped")
}

// getLocalIP returns the first non-loopback IPv4 address
func getLocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}
	return ""
}
