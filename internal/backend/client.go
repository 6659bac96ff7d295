// Package backend is the HTTP client for the external report generation service.
// The API shape is owned by the backend; this package only maps it onto
// domain types and AppError codes.
package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/verustcode/adreport/consts"
	"github.com/verustcode/adreport/internal/config"
	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/pkg/errors"
	"github.com/verustcode/adreport/pkg/logger"
	"github.com/verustcode/adreport/pkg/telemetry"
)

// maxErrorBody bounds how much of a failed response body is kept for diagnostics
const maxErrorBody = 1024

// Client talks to the generation backend over HTTP + JSON
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// ExportRequest is the body sent to the export and preview endpoints
type ExportRequest struct {
	Layout  model.Layout `json:"layout"`
	Format  string       `json:"format,omitempty"`
	Payload any          `json:"payload"`
}

// ExportResult is what the export endpoint returned: a download URL or the file itself
type ExportResult struct {
	URL         string `json:"url,omitempty"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Data        []byte `json:"-"`
}

// PreviewResult is what the preview endpoint returned
type PreviewResult struct {
	URL  string `json:"url,omitempty"`
	HTML string `json:"html,omitempty"`
}

// NewClient creates a backend client from configuration.
// OAuth2 client credentials take precedence over a static token.
func NewClient(cfg config.BackendConfig) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("invalid backend base_url %q", cfg.BaseURL))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = consts.DefaultBackendTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for test backends
	}
	baseClient := &http.Client{Transport: transport, Timeout: timeout}

	var httpClient *http.Client
	switch {
	case cfg.OAuth2 != nil && cfg.OAuth2.ClientID != "":
		cc := clientcredentials.Config{
			ClientID:     cfg.OAuth2.ClientID,
			ClientSecret: cfg.OAuth2.ClientSecret,
			TokenURL:     cfg.OAuth2.TokenURL,
			Scopes:       cfg.OAuth2.Scopes,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, baseClient)
		httpClient = cc.Client(ctx)
		httpClient.Timeout = timeout
	case cfg.Token != "":
		httpClient = &http.Client{
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"}),
				Base:   transport,
			},
			Timeout: timeout,
		}
	default:
		httpClient = baseClient
	}

	return &Client{baseURL: base, http: httpClient}, nil
}

// Fetch retrieves the current report record. It is idempotent.
func (c *Client) Fetch(ctx context.Context, reportID string) (*model.Report, error) {
	ctx, span := telemetry.StartSpan(ctx, "backend.Fetch", telemetry.WithReportAttributes(reportID, ""))
	defer span.End()

	var report model.Report
	if err := c.doJSON(ctx, http.MethodGet, c.reportPath(reportID), nil, nil, &report); err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}
	if report.ID == "" {
		report.ID = reportID
	}
	telemetry.SetSpanOK(span)
	return &report, nil
}

// RegenerateSection asks the backend to regenerate one section
func (c *Client) RegenerateSection(ctx context.Context, reportID, sectionID string) error {
	ctx, span := telemetry.StartSpan(ctx, "backend.RegenerateSection", telemetry.WithReportAttributes(reportID, ""))
	defer span.End()

	path := c.reportPath(reportID, "sections", sectionID, "regenerate")
	if err := c.doJSON(ctx, http.MethodPost, path, nil, struct{}{}, nil); err != nil {
		telemetry.SetSpanError(span, err)
		return err
	}
	telemetry.SetSpanOK(span)
	return nil
}

// RequestExport asks the backend export service to produce a file
func (c *Client) RequestExport(ctx context.Context, reportID string, req ExportRequest) (*ExportResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "backend.RequestExport",
		telemetry.WithExportAttributes(reportID, req.Format, config.ExportModeBackend))
	defer span.End()

	query := url.Values{}
	if req.Format != "" {
		query.Set("format", req.Format)
	}

	resp, err := c.do(ctx, http.MethodPost, c.reportPath(reportID, "export"), query, req)
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}
	defer resp.Body.Close()

	result, err := decodeExportResult(resp)
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}
	telemetry.SetSpanOK(span)
	return result, nil
}

// RequestPreview asks the backend to produce a preview for the payload
func (c *Client) RequestPreview(ctx context.Context, reportID string, req ExportRequest) (*PreviewResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "backend.RequestPreview",
		telemetry.WithExportAttributes(reportID, "preview", config.ExportModeBackend))
	defer span.End()

	var result PreviewResult
	if err := c.doJSON(ctx, http.MethodPost, c.reportPath(reportID, "preview"), nil, req, &result); err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}
	telemetry.SetSpanOK(span)
	return &result, nil
}

func (c *Client) reportPath(reportID string, parts ...string) string {
	segs := append([]string{"reports", url.PathEscape(reportID)}, escapeAll(parts)...)
	return strings.Join(segs, "/")
}

func escapeAll(parts []string) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = url.PathEscape(p)
	}
	return out
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.ErrCodeBackendResponse, "failed to decode backend response", err)
	}
	return nil
}

// do sends the request and maps transport and status failures to AppErrors.
// The caller owns the body of a successful response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	u := c.baseURL.JoinPath(path)
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "failed to encode backend request", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create backend request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", consts.ServiceName+"/"+consts.Version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Debug("Backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, mapTransportError(err)
	}

	logger.Debug("Backend request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, mapStatusError(resp.StatusCode, path, respBody)
	}
	return resp, nil
}

func mapTransportError(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrCodeBackendTimeout, "backend request timed out", err)
	}
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) && urlErr.Timeout() {
		return errors.Wrap(errors.ErrCodeBackendTimeout, "backend request timed out", err)
	}
	return errors.Wrap(errors.ErrCodeBackendUnavailable, "backend unreachable", err)
}

func mapStatusError(status int, path string, body []byte) error {
	details := map[string]any{"status_code": status, "path": path}
	if msg := backendMessage(body); msg != "" {
		details["backend_message"] = msg
	}

	var code errors.ErrorCode
	var message string
	switch {
	case status == http.StatusNotFound:
		code, message = errors.ErrCodeBackendNotFound, "report not found at backend"
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code, message = errors.ErrCodeBackendAuth, "backend rejected credentials"
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		code, message = errors.ErrCodeBackendTimeout, "backend timed out"
	case status >= 500:
		code, message = errors.ErrCodeBackendUnavailable, fmt.Sprintf("backend returned status %d", status)
	default:
		code, message = errors.ErrCodeBackendResponse, fmt.Sprintf("backend returned status %d", status)
	}
	return errors.New(code, message).WithDetails(details)
}

// backendMessage extracts a detail/message/error field from a JSON error body,
// falling back to the raw text.
func backendMessage(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}
	var obj map[string]any
	if json.Unmarshal(body, &obj) == nil {
		for _, key := range []string{"detail", "message", "error"} {
			if s, ok := obj[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return string(body)
}

func decodeExportResult(resp *http.Response) (*ExportResult, error) {
	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)

	if mediaType == "application/json" {
		var result ExportResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, errors.Wrap(errors.ErrCodeBackendResponse, "failed to decode export response", err)
		}
		if result.URL == "" {
			return nil, errors.New(errors.ErrCodeBackendResponse, "export response carries no url")
		}
		return &result, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackendResponse, "failed to read export file", err)
	}

	result := &ExportResult{ContentType: contentType, Data: data}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		result.Filename = params["filename"]
	}
	return result, nil
}
