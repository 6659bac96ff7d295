package consts

import (
	"sync"
	"testing"
	"time"
)

func TestServiceName(t *testing.T) {
	if ServiceName != "adreport" {
		t.Errorf("ServiceName = %q, want %q", ServiceName, "adreport")
	}
}

func TestPollDefaults(t *testing.T) {
	if DefaultPollInterval != 2*time.Second {
		t.Errorf("DefaultPollInterval = %v, want 2s", DefaultPollInterval)
	}
	if DefaultBackendTimeout <= 0 {
		t.Error("DefaultBackendTimeout should be positive")
	}
}

func TestPlaceholderTexts(t *testing.T) {
	for name, v := range map[string]string{
		"UnknownValue":          UnknownValue,
		"ToBeDetermined":        ToBeDetermined,
		"GenericFailureMessage": GenericFailureMessage,
		"EmptyReportMessage":    EmptyReportMessage,
	} {
		if v == "" {
			t.Errorf("%s should not be empty", name)
		}
	}
}

func TestSetStartedAt(t *testing.T) {
	// Reset state for testing
	startedAt = time.Time{}
	startedOnce = sync.Once{}

	now := time.Now()
	SetStartedAt(now)

	got := GetStartedAt()
	if !got.Equal(now) {
		t.Errorf("GetStartedAt() = %v, want %v", got, now)
	}

	// Second call must not change the value
	SetStartedAt(now.Add(time.Hour))
	got = GetStartedAt()
	if !got.Equal(now) {
		t.Errorf("GetStartedAt() after second call = %v, want %v", got, now)
	}
}

func TestGetUptime(t *testing.T) {
	startedAt = time.Time{}
	startedOnce = sync.Once{}

	if got := GetUptime(); got != 0 {
		t.Errorf("GetUptime() with zero start = %v, want 0", got)
	}

	SetStartedAt(time.Now().Add(-time.Minute))
	if got := GetUptime(); got < time.Minute {
		t.Errorf("GetUptime() = %v, want >= 1m", got)
	}
}
