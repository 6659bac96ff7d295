package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/adreport/internal/config"
	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/internal/report/exporter"
)

const reportJSON = `{
  "id": "rep-1",
  "status": "completed",
  "case_id": "case-1",
  "title": "Rapportage Jansen",
  "metadata": {},
  "content": {
    "vraagstelling": "Kan werknemer het eigen werk hervatten?",
    "conclusie": "Werknemer is geschikt voor aangepast werk."
  }
}`

func TestReadReportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte(reportJSON), 0644))

	report, err := readReportFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "rep-1", report.ID)
	assert.Equal(t, model.ReportStatusCompleted, report.Status)
	assert.Equal(t, []string{"vraagstelling", "conclusie"}, report.Content.Keys())
}

func TestReadReportFile_Stdin(t *testing.T) {
	report, err := readReportFile("-", strings.NewReader(reportJSON))
	require.NoError(t, err)
	assert.Equal(t, "Rapportage Jansen", report.Title)
}

func TestReadReportFile_MissingID(t *testing.T) {
	_, err := readReportFile("-", strings.NewReader(`{"status":"completed","content":{}}`))
	assert.Error(t, err)
}

func TestRenderReport_Markdown(t *testing.T) {
	report, err := readReportFile("-", strings.NewReader(reportJSON))
	require.NoError(t, err)

	data, err := renderReport(context.Background(), config.Default(), report, model.LayoutStandard, false,
		model.CaseContext{EmployeeName: "Jan Jansen"}, exporter.ExportFormatMarkdown)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "Vraagstelling")
	assert.Contains(t, out, "Werknemer is geschikt voor aangepast werk.")
	assert.Less(t, strings.Index(out, "Vraagstelling"), strings.Index(out, "Conclusie"))
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, loadEnvFile(""))
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ADR_TEST_ENV_FILE=loaded\n"), 0644))
	t.Setenv("ADR_TEST_ENV_FILE", "")
	require.NoError(t, os.Unsetenv("ADR_TEST_ENV_FILE"))

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "loaded", os.Getenv("ADR_TEST_ENV_FILE"))
}
