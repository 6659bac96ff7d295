package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/adreport/internal/config"
	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/pkg/errors"
	"github.com/verustcode/adreport/pkg/logger"
)

func init() {
	logger.Init(logger.Config{Level: "error", Format: "text"})
}

const reportJSON = `{
  "id": "rep-1",
  "status": "generating",
  "case_id": "case-9",
  "title": "Rapport Jansen",
  "metadata": {"sections": {"advies": {"chunk_ids": ["c1"]}}},
  "content": {"advies": "Tweede spoor starten.", "vraagstelling": {"content": "Kan hij terug?"}}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*config.BackendConfig)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.BackendConfig{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second}
	for _, m := range mutate {
		m(&cfg)
	}
	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient(config.BackendConfig{BaseURL: "not a url"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigInvalid))
}

func TestFetch_DecodesReport(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/reports/rep-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reportJSON))
	})

	report, err := client.Fetch(context.Background(), "rep-1")
	require.NoError(t, err)
	assert.Equal(t, model.ReportStatusGenerating, report.Status)
	assert.Equal(t, []string{"advies", "vraagstelling"}, report.Content.Keys())
	assert.Equal(t, "Kan hij terug?", report.Content.Text("vraagstelling"))
	assert.Equal(t, []string{"c1"}, report.Metadata.Sections["advies"].ChunkIDs)
}

func TestFetch_StaticToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(reportJSON))
	}, func(c *config.BackendConfig) { c.Token = "secret-token" })

	_, err := client.Fetch(context.Background(), "rep-1")
	require.NoError(t, err)
}

func TestFetch_OAuth2ClientCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"cc-token","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/api/reports/rep-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer cc-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(reportJSON))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := NewClient(config.BackendConfig{
		BaseURL: srv.URL + "/api",
		OAuth2: &config.OAuth2Config{
			ClientID:     "adreport",
			ClientSecret: "s3cret",
			TokenURL:     srv.URL + "/token",
		},
	})
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), "rep-1")
	require.NoError(t, err)
}

func TestFetch_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		code   errors.ErrorCode
	}{
		{http.StatusNotFound, errors.ErrCodeBackendNotFound},
		{http.StatusUnauthorized, errors.ErrCodeBackendAuth},
		{http.StatusForbidden, errors.ErrCodeBackendAuth},
		{http.StatusGatewayTimeout, errors.ErrCodeBackendTimeout},
		{http.StatusInternalServerError, errors.ErrCodeBackendUnavailable},
		{http.StatusUnprocessableEntity, errors.ErrCodeBackendResponse},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"detail":"boom"}`))
			})

			_, err := client.Fetch(context.Background(), "rep-1")
			require.Error(t, err)
			appErr, ok := errors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, appErr.Code)

			details, ok := appErr.Details.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "boom", details["backend_message"])
		})
	}
}

func TestFetch_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content": [1,2]}`))
	})

	_, err := client.Fetch(context.Background(), "rep-1")
	assert.True(t, errors.HasCode(err, errors.ErrCodeBackendResponse))
}

func TestFetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewClient(config.BackendConfig{BaseURL: url})
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), "rep-1")
	assert.True(t, errors.HasCode(err, errors.ErrCodeBackendUnavailable))
}

func TestFetch_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Fetch(ctx, "rep-1")
	assert.True(t, errors.HasCode(err, errors.ErrCodeBackendTimeout))
}

func TestRegenerateSection(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/reports/rep-1/sections/advies/regenerate", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
	})

	require.NoError(t, client.RegenerateSection(context.Background(), "rep-1", "advies"))
	assert.True(t, called)
}

func TestRequestExport_URLResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/reports/rep-1/export", r.URL.Path)
		assert.Equal(t, "pdf", r.URL.Query().Get("format"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "compact", body["layout"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://files.example/rapport.pdf","filename":"rapport.pdf"}`))
	})

	res, err := client.RequestExport(context.Background(), "rep-1", ExportRequest{
		Layout: model.LayoutCompact, Format: "pdf", Payload: map[string]string{"k": "v"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://files.example/rapport.pdf", res.URL)
	assert.Equal(t, "rapport.pdf", res.Filename)
}

func TestRequestExport_FileResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="rapport.pdf"`)
		_, _ = w.Write([]byte("%PDF-1.7"))
	})

	res, err := client.RequestExport(context.Background(), "rep-1", ExportRequest{Layout: model.LayoutStandard, Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), res.Data)
	assert.Equal(t, "rapport.pdf", res.Filename)
}

func TestRequestExport_JSONWithoutURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.RequestExport(context.Background(), "rep-1", ExportRequest{Layout: model.LayoutStandard})
	assert.True(t, errors.HasCode(err, errors.ErrCodeBackendResponse))
}

func TestRequestPreview(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/reports/rep-1/preview", r.URL.Path)
		_, _ = w.Write([]byte(`{"html":"<h1>Rapport</h1>"}`))
	})

	res, err := client.RequestPreview(context.Background(), "rep-1", ExportRequest{Layout: model.LayoutModern})
	require.NoError(t, err)
	assert.Equal(t, "<h1>Rapport</h1>", res.HTML)
}
