package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// envVarPattern matches ${VAR_NAME} and ${VAR_NAME:-default}
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values.
// Only the braced form is expanded so literal $ signs in secrets survive.
func expandEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]

		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]

		if value := os.Getenv(varName); value != "" {
			return value
		}
		if len(parts) > 1 {
			return parts[1]
		}
		return ""
	})
}

// applyEnvOverrides applies ADR_* environment variable overrides
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if v := os.Getenv("ADR_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("ADR_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ADR_SERVER_DEBUG"); v != "" {
		cfg.Server.Debug = parseBool(v)
	}

	// Backend overrides
	if v := os.Getenv("ADR_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("ADR_BACKEND_TOKEN"); v != "" {
		cfg.Backend.Token = v
	}
	if v := os.Getenv("ADR_BACKEND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Backend.Timeout = d
		}
	}

	// Poller and render overrides
	if v := os.Getenv("ADR_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Poller.Interval = d
		}
	}
	if v := os.Getenv("ADR_DEFAULT_LAYOUT"); v != "" {
		cfg.Render.DefaultLayout = v
	}
	if v := os.Getenv("ADR_STRUCTURED_CONTENT"); v != "" {
		cfg.Render.StructuredContent = parseBool(v)
	}

	// Export overrides
	if v := os.Getenv("ADR_EXPORT_MODE"); v != "" {
		cfg.Export.Mode = v
	}
	if v := os.Getenv("ADR_EXPORT_DIR"); v != "" {
		cfg.Export.OutputDir = v
	}
	if v := os.Getenv("ADR_CHROME_PATH"); v != "" {
		cfg.Export.PDF.ChromePath = v
	}

	// Database overrides
	if v := os.Getenv("ADR_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Logging overrides
	if v := os.Getenv("ADR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ADR_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("ADR_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}

	// Telemetry overrides
	if v := os.Getenv("ADR_TELEMETRY_ENABLED"); v != "" {
		cfg.Telemetry.Enabled = parseBool(v)
	}
	if v := os.Getenv("ADR_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.OTLP.Enabled = true
		cfg.Telemetry.OTLP.Endpoint = v
	}
	if v := os.Getenv("ADR_PROMETHEUS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Telemetry.Prometheus.Enabled = true
			cfg.Telemetry.Prometheus.Port = port
		}
	}
}

// parseBool parses a boolean string value
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}
