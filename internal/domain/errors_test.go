package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpstreamError_Retryable(t *testing.T) {
	assert.False(t, (&UpstreamError{StatusCode: 400}).Retryable())
	assert.False(t, (&UpstreamError{StatusCode: 404}).Retryable())
	assert.False(t, (&UpstreamError{StatusCode: 429}).Retryable())
	assert.True(t, (&UpstreamError{StatusCode: 500}).Retryable())
	assert.True(t, (&UpstreamError{StatusCode: 503}).Retryable())
}

func TestUpstreamError_Retryable_CodelessDisconnects(t *testing.T) {
	// Nested errors without a code keep the 200 transport status; when
	// the message or status marks a dead connection there is nothing a
	// retry can fix.
	assert.False(t, (&UpstreamError{StatusCode: 200, Message: "Delegation denied for user"}).Retryable())
	assert.False(t, (&UpstreamError{StatusCode: 200, Message: "Missing credential"}).Retryable())
	assert.False(t, (&UpstreamError{StatusCode: 200, Status: "UNAUTHENTICATED"}).Retryable())
	assert.True(t, (&UpstreamError{StatusCode: 200, Message: "backend temporarily unavailable"}).Retryable())
}

func TestUpstreamError_IndicatesDisconnected_Codes(t *testing.T) {
	for _, code := range []int{401, 403, 404} {
		assert.True(t, (&UpstreamError{StatusCode: code}).IndicatesDisconnected(), "code %d", code)
	}
	assert.False(t, (&UpstreamError{StatusCode: 500}).IndicatesDisconnected())
	assert.False(t, (&UpstreamError{StatusCode: 429}).IndicatesDisconnected())
}

func TestUpstreamError_IndicatesDisconnected_Status(t *testing.T) {
	assert.True(t, (&UpstreamError{StatusCode: 200, Status: "UNAUTHENTICATED"}).IndicatesDisconnected())
	assert.True(t, (&UpstreamError{StatusCode: 200, Status: "PERMISSION_DENIED"}).IndicatesDisconnected())
	assert.False(t, (&UpstreamError{StatusCode: 200, Status: "INTERNAL"}).IndicatesDisconnected())
}

func TestUpstreamError_IndicatesDisconnected_MessagePatterns(t *testing.T) {
	cases := []struct {
		message string
		want    bool
	}{
		{"Delegation denied for user@example.com", true},
		{"Missing credential for connector", true},
		{"Action not found: gmail.users.foo", true},
		{"Precondition check failed.", true},
		{"Login Required", true},
		{"backend temporarily unavailable", false},
	}
	for _, tc := range cases {
		err := &UpstreamError{StatusCode: 200, Message: tc.message}
		assert.Equal(t, tc.want, err.IndicatesDisconnected(), tc.message)
	}
}

func TestUpstreamError_IsAuthShaped(t *testing.T) {
	assert.True(t, (&UpstreamError{StatusCode: 401}).IsAuthShaped())
	assert.True(t, (&UpstreamError{StatusCode: 403}).IsAuthShaped())
	assert.True(t, (&UpstreamError{Status: "UNAUTHENTICATED"}).IsAuthShaped())
	// A 404 means the action or account is gone, not that the credential
	// is expired.
	assert.False(t, (&UpstreamError{StatusCode: 404}).IsAuthShaped())
}

func TestUpstreamError_Error(t *testing.T) {
	err := &UpstreamError{StatusCode: 401, Status: "UNAUTHENTICATED", Message: "missing credential"}
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "UNAUTHENTICATED")
}
