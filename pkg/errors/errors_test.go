package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

// TestNew tests creating a new AppError
func TestNew(t *testing.T) {
	err := New(ErrCodeValidation, "validation failed")

	if err == nil {
		t.Fatal("New() returned nil")
	}

	if err.Code != ErrCodeValidation {
		t.Errorf("Code = %s, want %s", err.Code, ErrCodeValidation)
	}

	if err.Message != "validation failed" {
		t.Errorf("Message = %s, want 'validation failed'", err.Message)
	}

	if err.Err != nil {
		t.Error("Err should be nil for New()")
	}
}

// TestWrap tests wrapping an existing error
func TestWrap(t *testing.T) {
	originalErr := errors.New("connection refused")
	err := Wrap(ErrCodeBackendUnavailable, "backend unreachable", originalErr)

	if err.Code != ErrCodeBackendUnavailable {
		t.Errorf("Code = %s, want %s", err.Code, ErrCodeBackendUnavailable)
	}

	if err.Err != originalErr {
		t.Error("Err should be the original error")
	}
}

// TestAppError_Error tests the Error method
func TestAppError_Error(t *testing.T) {
	t.Run("without underlying error", func(t *testing.T) {
		err := New(ErrCodeValidation, "invalid input")
		if got := err.Error(); got != "[E1001] invalid input" {
			t.Errorf("Error() = %s, want '[E1001] invalid input'", got)
		}
	})

	t.Run("with underlying error", func(t *testing.T) {
		err := Wrap(ErrCodePollFetch, "poll failed", errors.New("timeout"))
		if got := err.Error(); got != "[E7001] poll failed: timeout" {
			t.Errorf("Error() = %s, want '[E7001] poll failed: timeout'", got)
		}
	})
}

// TestAppError_Unwrap tests the Unwrap method
func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original")
	err := Wrap(ErrCodeInternal, "message", originalErr)

	if errors.Unwrap(err) != originalErr {
		t.Error("errors.Unwrap() should return the original error")
	}

	if New(ErrCodeValidation, "message").Unwrap() != nil {
		t.Error("Unwrap() should return nil when no underlying error")
	}
}

// TestAppError_HTTPStatus tests the HTTPStatus method
func TestAppError_HTTPStatus(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeBackendNotFound, http.StatusNotFound},
		{ErrCodeSessionMissing, http.StatusNotFound},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnknownLayout, http.StatusBadRequest},
		{ErrCodeExportFormat, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeBackendAuth, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeExportInFlight, http.StatusConflict},
		{ErrCodeReportNotReady, http.StatusConflict},
		{ErrCodeBackendTimeout, http.StatusGatewayTimeout},
		{ErrCodeBackendUnavailable, http.StatusBadGateway},
		{ErrCodePollFetch, http.StatusBadGateway},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeDBConnection, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if status := New(tt.code, "test error").HTTPStatus(); status != tt.expected {
				t.Errorf("HTTPStatus() = %d, want %d", status, tt.expected)
			}
		})
	}
}

// TestAppError_WithDetails tests the WithDetails method
func TestAppError_WithDetails(t *testing.T) {
	err := New(ErrCodeValidation, "validation error")
	result := err.WithDetails(map[string]string{"field": "layout"})

	if result != err {
		t.Error("WithDetails() should return the same error")
	}

	detailsMap, ok := err.Details.(map[string]string)
	if !ok {
		t.Fatal("Details should be map[string]string")
	}
	if detailsMap["field"] != "layout" {
		t.Errorf("Details[field] = %s, want 'layout'", detailsMap["field"])
	}
}

// TestConvenienceConstructors tests the shortcut constructors
func TestConvenienceConstructors(t *testing.T) {
	if err := ErrInternal("x", errors.New("y")); err.Code != ErrCodeInternal {
		t.Errorf("ErrInternal code = %s", err.Code)
	}
	if err := ErrValidation("x"); err.Code != ErrCodeValidation {
		t.Errorf("ErrValidation code = %s", err.Code)
	}
	if err := ErrNotFound("report"); err.Message != "report not found" {
		t.Errorf("ErrNotFound message = %s", err.Message)
	}
	if err := ErrUnauthorized("x"); err.Code != ErrCodeUnauthorized {
		t.Errorf("ErrUnauthorized code = %s", err.Code)
	}
	if err := ErrForbidden("x"); err.Code != ErrCodeForbidden {
		t.Errorf("ErrForbidden code = %s", err.Code)
	}
}

// TestAsAppError_Wrapped tests lookup through fmt.Errorf wrapping
func TestAsAppError_Wrapped(t *testing.T) {
	inner := New(ErrCodePollFetch, "poll failed")
	wrapped := fmt.Errorf("session: %w", inner)

	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("AsAppError() should find wrapped AppError")
	}
	if appErr != inner {
		t.Error("AsAppError() should return the inner error")
	}
	if !IsAppError(wrapped) {
		t.Error("IsAppError() should be true for wrapped AppError")
	}
	if !HasCode(wrapped, ErrCodePollFetch) {
		t.Error("HasCode() should match the wrapped code")
	}
	if HasCode(errors.New("plain"), ErrCodePollFetch) {
		t.Error("HasCode() should be false for plain errors")
	}
	if _, ok := AsAppError(errors.New("plain")); ok {
		t.Error("AsAppError() should fail for plain errors")
	}
}
