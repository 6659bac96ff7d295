// Package consts defines cross-module constants used throughout the application.
package consts

import (
	"sync"
	"time"
)

// ServiceName is the application service name
const ServiceName = "adreport"

// Project information constants
const (
	// ProjectName is the display name of the project
	ProjectName = "AD Rapportage"

	// ProjectURL is the repository URL
	ProjectURL = "https://github.com/verustcode/adreport"
)

// Polling defaults
const (
	// DefaultPollInterval is the fixed interval between report status fetches
	DefaultPollInterval = 2 * time.Second

	// DefaultBackendTimeout bounds a single request against the generation backend
	DefaultBackendTimeout = 30 * time.Second
)

// Placeholder texts shown for missing values. The product language is Dutch.
const (
	// UnknownValue is rendered for structured fields the parser could not extract
	UnknownValue = "Onbekend"

	// ToBeDetermined marks placeholder values synthesized without real content
	ToBeDetermined = "[nader te bepalen]"

	// GenericFailureMessage is shown when a report failed without a backend error
	GenericFailureMessage = "Het genereren van het rapport is mislukt. Probeer het later opnieuw."

	// EmptyReportMessage is shown when a report has no sections to display
	EmptyReportMessage = "Er is nog geen rapportinhoud beschikbaar."
)

// Build information - set via ldflags during build or programmatically
var (
	// Version is the application version
	Version = "dev"

	// BuildTime is the build timestamp
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// Server runtime information
var (
	startedAt   time.Time
	startedOnce sync.Once
)

// SetStartedAt records the server start time (can only be called once)
func SetStartedAt(t time.Time) {
	startedOnce.Do(func() {
		startedAt = t
	})
}

// GetStartedAt returns the server start time
func GetStartedAt() time.Time {
	return startedAt
}

// GetUptime returns the duration since server started
func GetUptime() time.Duration {
	if startedAt.IsZero() {
		return 0
	}
	return time.Since(startedAt)
}
