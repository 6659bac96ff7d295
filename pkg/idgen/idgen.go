// Package idgen provides ID generation utilities for the application.
// It encapsulates the ID generation implementation, making it easy to change
// the underlying ID generation strategy in the future.
package idgen

import (
	"github.com/rs/xid"
)

// NewID generates a new globally unique, sortable identifier.
// Returns a 20-character string using xid format.
// The generated ID is:
// - Globally unique
// - Sortable by creation time
// - URL-safe (base32 encoded)
// - 20 characters long
func NewID() string {
	return xid.New().String()
}

// NewSessionID generates a unique ID for report view sessions.
func NewSessionID() string {
	return NewID()
}

// NewExportID generates a unique ID for export and preview requests.
func NewExportID() string {
	return NewID()
}

// NewRequestID generates a unique ID for request tracking.
func NewRequestID() string {
	return NewID()
}

// IsValid reports whether s is a well-formed xid.
func IsValid(s string) bool {
	_, err := xid.FromString(s)
	return err == nil
}
