// Package config provides configuration management for the application.
// It supports YAML configuration files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verustcode/adreport/consts"
	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/pkg/errors"
	"github.com/verustcode/adreport/pkg/logger"
	"github.com/verustcode/adreport/pkg/telemetry"
)

// Default configuration values
const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 8093
	defaultDatabasePath   = "./data/adreport.db"
	defaultExportDir      = "./exports"
	defaultOTLPEndpoint   = "localhost:4317"
	defaultPrometheusPort = 9090
	defaultPDFTimeout     = 60 * time.Second
	defaultResumeMaxAge   = 24 * time.Hour
)

// DefaultConfigPath is the default path for the configuration file
const DefaultConfigPath = "config/adreport.yaml"

// Export modes
const (
	// ExportModeBackend delegates file production to the backend export service
	ExportModeBackend = "backend"
	// ExportModeLocal produces files with the built-in exporters
	ExportModeLocal = "local"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Backend   BackendConfig    `yaml:"backend"`
	Poller    PollerConfig     `yaml:"poller"`
	Render    RenderConfig     `yaml:"render"`
	Export    ExportConfig     `yaml:"export"`
	Database  DatabaseConfig   `yaml:"database"`
	Logging   logger.Config    `yaml:"logging"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	Debug       bool     `yaml:"debug"`
	CORSOrigins []string `yaml:"cors_origins"` // Allowed CORS origins whitelist
}

// BackendConfig holds connection settings for the report generation backend
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// Token is a static bearer token; ignored when OAuth2 is configured
	Token              string        `yaml:"token"`
	OAuth2             *OAuth2Config `yaml:"oauth2,omitempty"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
}

// OAuth2Config holds client-credentials settings for the backend
type OAuth2Config struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	TokenURL     string   `yaml:"token_url"`
	Scopes       []string `yaml:"scopes"`
}

// PollerConfig holds status poller settings
type PollerConfig struct {
	Interval time.Duration `yaml:"interval"`
	// ResumeOnStart reopens sessions for mirrored reports that were still generating
	ResumeOnStart bool `yaml:"resume_on_start"`
	// ResumeMaxAge skips mirrored reports last fetched longer ago than this
	ResumeMaxAge time.Duration `yaml:"resume_max_age"`
}

// RenderConfig holds renderer defaults
type RenderConfig struct {
	DefaultLayout string `yaml:"default_layout"`
	// StructuredContent enables structured record views next to markdown
	StructuredContent bool `yaml:"structured_content"`
	// Language is the report language tag, used for HTML lang and keyword folding
	Language string `yaml:"language"`
}

// ExportConfig holds export settings
type ExportConfig struct {
	Mode      string    `yaml:"mode"` // backend or local
	OutputDir string    `yaml:"output_dir"`
	PDF       PDFConfig `yaml:"pdf"`
}

// PDFConfig holds local PDF rendering settings
type PDFConfig struct {
	PaperSize       string        `yaml:"paper_size"` // A4 or Letter
	Landscape       bool          `yaml:"landscape"`
	PrintBackground bool          `yaml:"print_background"`
	Timeout         time.Duration `yaml:"timeout"`
	ChromePath      string        `yaml:"chrome_path"`
}

// DatabaseConfig holds the snapshot mirror database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:  defaultHost,
			Port:  defaultPort,
			Debug: false,
			CORSOrigins: []string{
				"http://localhost:5173",
			},
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:8000/api",
			Timeout: consts.DefaultBackendTimeout,
		},
		Poller: PollerConfig{
			Interval:      consts.DefaultPollInterval,
			ResumeOnStart: true,
			ResumeMaxAge:  defaultResumeMaxAge,
		},
		Render: RenderConfig{
			DefaultLayout:     string(model.DefaultLayout),
			StructuredContent: true,
			Language:          "nl",
		},
		Export: ExportConfig{
			Mode:      ExportModeBackend,
			OutputDir: defaultExportDir,
			PDF: PDFConfig{
				PaperSize:       "A4",
				PrintBackground: true,
				Timeout:         defaultPDFTimeout,
			},
		},
		Database: DatabaseConfig{
			Path: defaultDatabasePath,
		},
		Logging: logger.Config{
			Level:      "info",
			Format:     "text", // Default to human-readable text format instead of JSON
			MaxSize:    100,    // Max 100MB per log file
			MaxAge:     7,      // Retain logs for 7 days
			MaxBackups: 5,      // Keep 5 backup files
		},
		Telemetry: telemetry.Config{
			Enabled:     false,
			ServiceName: consts.ServiceName,
			OTLP: telemetry.OTLPConfig{
				Enabled:  false,
				Endpoint: defaultOTLPEndpoint,
				Insecure: true,
			},
			Prometheus: telemetry.PrometheusConfig{
				Enabled: false,
				Port:    defaultPrometheusPort,
			},
		},
	}
}

// Load loads configuration from a YAML file with environment variable expansion.
// ADR_* environment variables override file values afterwards.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeConfigNotFound, "config file not found: "+path, err)
		}
		return nil, errors.Wrap(errors.ErrCodeConfigNotFound, "failed to read config", err)
	}

	expanded := expandEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigParse, "failed to parse config", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadOrDefault loads the file when it exists, otherwise returns defaults with env overrides
func LoadOrDefault(path string) (*Config, error) {
	if !Exists(path) {
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	return Load(path)
}

// Exists checks if the configuration file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Write writes the configuration to file with the usage header
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, []byte(configHeader+string(data)), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// configHeader is the comment header for generated config files
const configHeader = `# AD Rapportage configuration
#
# Environment Variable Support:
#   - Use ${VAR_NAME} or ${VAR_NAME:-default} in values to reference environment variables
#   - Or use ADR_* environment variables to override:
#     ADR_SERVER_HOST, ADR_SERVER_PORT, ADR_SERVER_DEBUG
#     ADR_BACKEND_URL, ADR_BACKEND_TOKEN, ADR_BACKEND_TIMEOUT
#     ADR_POLL_INTERVAL, ADR_DEFAULT_LAYOUT, ADR_EXPORT_MODE, ADR_EXPORT_DIR
#     ADR_DATABASE_PATH, ADR_LOG_LEVEL, ADR_LOG_FORMAT, ADR_LOG_FILE
#

`

// Address returns the server address string
func (c *ServerConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Layout returns the configured default layout, falling back to the built-in default
func (c *RenderConfig) Layout() model.Layout {
	if l, err := model.ParseLayout(c.DefaultLayout); err == nil {
		return l
	}
	return model.DefaultLayout
}

// IsLocal reports whether exports are produced locally
func (c *ExportConfig) IsLocal() bool {
	return c.Mode == ExportModeLocal
}
