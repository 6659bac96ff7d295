// Package config provides configuration management for the application.
// This file contains validation functions for configuration values.
package config

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/pkg/errors"
)

// MinPollInterval is the smallest accepted poll interval
const MinPollInterval = 100 * time.Millisecond

// Validate checks the configuration and returns every problem found.
// The result is an AppError with code ErrCodeConfigInvalid wrapping the joined problems.
func (c *Config) Validate() error {
	var problems []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}

	if err := validateBackend(&c.Backend); err != nil {
		problems = append(problems, err)
	}

	if c.Poller.Interval < MinPollInterval {
		problems = append(problems, fmt.Errorf("poller.interval must be at least %s", MinPollInterval))
	}

	if r := c.Telemetry.OTLP.SampleRatio; r < 0 || r > 1 {
		problems = append(problems, fmt.Errorf("telemetry.otlp.sample_ratio %v must be within [0, 1]", r))
	}

	if c.Render.DefaultLayout != "" {
		if _, err := model.ParseLayout(c.Render.DefaultLayout); err != nil {
			problems = append(problems, fmt.Errorf("render.default_layout: %q is not one of %v", c.Render.DefaultLayout, model.AllLayouts()))
		}
	}

	switch c.Export.Mode {
	case ExportModeBackend:
	case ExportModeLocal:
		if strings.TrimSpace(c.Export.OutputDir) == "" {
			problems = append(problems, fmt.Errorf("export.output_dir is required in local mode"))
		}
	default:
		problems = append(problems, fmt.Errorf("export.mode must be %q or %q, got %q", ExportModeBackend, ExportModeLocal, c.Export.Mode))
	}

	if strings.TrimSpace(c.Database.Path) == "" {
		problems = append(problems, fmt.Errorf("database.path is required"))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.Wrap(errors.ErrCodeConfigInvalid, "invalid configuration", stderrors.Join(problems...))
}

func validateBackend(b *BackendConfig) error {
	if strings.TrimSpace(b.BaseURL) == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	u, err := url.Parse(b.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.base_url %q must be an absolute http(s) URL", b.BaseURL)
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive")
	}
	if o := b.OAuth2; o != nil {
		if o.ClientID == "" || o.ClientSecret == "" || o.TokenURL == "" {
			return fmt.Errorf("backend.oauth2 requires client_id, client_secret and token_url")
		}
	}
	return nil
}
