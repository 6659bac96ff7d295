// Package store provides test utilities for database testing.
package store

import (
	"os"
	"testing"
	"time"

	"github.com/verustcode/adreport/internal/database"
	"github.com/verustcode/adreport/internal/model"
)

// SetupTestDB creates a temporary SQLite database for testing.
// It returns a Store instance and a cleanup function.
// The cleanup function should be called with defer in tests.
func SetupTestDB(t *testing.T) (Store, func()) {
	// Reset database state to allow re-initialization
	database.ResetForTesting()

	tmpFile, err := os.CreateTemp("", "adreport_test_*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()

	if err := database.InitWithPath(tmpPath); err != nil {
		os.Remove(tmpPath)
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	store := NewStore(database.Get())

	cleanup := func() {
		database.ResetForTesting()
		os.Remove(tmpPath)
		os.Remove(tmpPath + "-wal")
		os.Remove(tmpPath + "-shm")
	}

	return store, cleanup
}

// NewTestReport builds a report with two sections.
// Fields can be overridden by passing functions that modify the report.
func NewTestReport(id string, overrides ...func(*model.Report)) *model.Report {
	content := model.NewReportContent()
	content.SetText("vraagstelling", "Kan werknemer het eigen werk hervatten?")
	content.SetText("conclusie", "Werknemer is geschikt voor ander werk.")

	now := time.Now().UTC().Truncate(time.Second)
	report := &model.Report{
		ID:        id,
		Status:    model.ReportStatusGenerating,
		CaseID:    "case-1",
		Title:     "Arbeidsdeskundig rapport",
		CreatedAt: now,
		UpdatedAt: now,
		Content:   content,
	}

	for _, override := range overrides {
		override(report)
	}
	return report
}
