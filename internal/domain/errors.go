package domain

import (
	"fmt"
	"strings"
)

// UpstreamError is a failure reported by the integration gateway, either as
// an HTTP error status or as a nested error object inside a 200 body. The
// gateway client builds these; everything above it classifies them.
type UpstreamError struct {
	StatusCode int    // HTTP status, or nested error code when present
	Status     string // nested status string such as UNAUTHENTICATED
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gateway error %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gateway error %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the retry executor should attempt the call
// again. Client errors are final, 5xx is transient. Nested errors that
// omit a code keep the transport status (usually 200); those are final
// too when they classify as a dead connection, since retrying cannot
// resurrect a revoked credential.
func (e *UpstreamError) Retryable() bool {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return false
	}
	if e.StatusCode >= 500 {
		return true
	}
	return !e.IndicatesDisconnected()
}

// disconnectedMessagePatterns are substrings the gateway emits when the
// stored credential is gone or the backend action cannot be reached with it.
var disconnectedMessagePatterns = []string{
	"delegation denied",
	"missing credential",
	"invalid credentials",
	"action not found",
	"precondition check failed",
	"login required",
}

// IndicatesDisconnected reports whether this error means the user's
// connection is absent or revoked, as opposed to a transient fault.
func (e *UpstreamError) IndicatesDisconnected() bool {
	switch e.StatusCode {
	case 401, 403, 404:
		return true
	}
	switch e.Status {
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		return true
	}
	msg := strings.ToLower(e.Message)
	for _, pattern := range disconnectedMessagePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// IsAuthShaped reports whether the error looks like an expired or revoked
// credential specifically, used to invalidate cached status mid-dispatch.
func (e *UpstreamError) IsAuthShaped() bool {
	if e.StatusCode == 401 || e.StatusCode == 403 {
		return true
	}
	return e.Status == "UNAUTHENTICATED" || e.Status == "PERMISSION_DENIED"
}
