package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPayload_TopLevel(t *testing.T) {
	payload := ExtractPayload(map[string]any{"messages": []any{map[string]any{"id": "1"}}})

	m, ok := payload.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, m, "messages")
}

func TestExtractPayload_Output(t *testing.T) {
	payload := ExtractPayload(map[string]any{
		"output": map[string]any{"emailAddress": "a@example.com"},
	})

	m, ok := payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a@example.com", m["emailAddress"])
}

func TestExtractPayload_OutputBody(t *testing.T) {
	payload := ExtractPayload(map[string]any{
		"output": map[string]any{
			"body": map[string]any{"messages": []any{map[string]any{"id": "1"}}},
		},
	})

	m, ok := payload.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, m, "messages")
	assert.NotContains(t, m, "body")
}

func TestExtractPayload_Body(t *testing.T) {
	payload := ExtractPayload(map[string]any{
		"body": map[string]any{"items": []any{}},
	})

	m, ok := payload.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, m, "items")
}

func TestExtractPayload_TopLevelArray(t *testing.T) {
	payload := ExtractPayload([]any{map[string]any{"id": "1"}, map[string]any{"id": "2"}})

	list, ok := payload.([]any)
	require.True(t, ok)
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].(map[string]any)["id"])
}

func TestExtractPayload_EmptyArrayKept(t *testing.T) {
	// Zero rows is still a payload, not an empty response.
	payload := ExtractPayload([]any{})

	list, ok := payload.([]any)
	require.True(t, ok)
	assert.Empty(t, list)
}

func TestExtractPayload_OutputNonMap(t *testing.T) {
	payload := ExtractPayload(map[string]any{"output": []any{"a", "b"}})

	list, ok := payload.([]any)
	require.True(t, ok)
	assert.Len(t, list, 2)
}

func TestExtractPayload_EmptyBody(t *testing.T) {
	assert.Nil(t, ExtractPayload(map[string]any{}))
}

func TestExtractPayload_EmptyEnvelope(t *testing.T) {
	// A wrapper with nothing inside is inconclusive, not a payload.
	assert.Nil(t, ExtractPayload(map[string]any{"output": map[string]any{}}))
}

func TestErrorFromBody_HTTPStatusOnly(t *testing.T) {
	err := errorFromBody(502, map[string]any{})

	require.NotNil(t, err)
	assert.Equal(t, 502, err.StatusCode)
	assert.True(t, err.Retryable())
}

func TestErrorFromBody_NestedErrorObject(t *testing.T) {
	err := errorFromBody(200, map[string]any{
		"error": map[string]any{
			"code":    float64(401),
			"status":  "UNAUTHENTICATED",
			"message": "Request had invalid authentication credentials",
		},
	})

	require.NotNil(t, err)
	assert.Equal(t, 401, err.StatusCode)
	assert.Equal(t, "UNAUTHENTICATED", err.Status)
	assert.False(t, err.Retryable())
	assert.True(t, err.IndicatesDisconnected())
}

func TestErrorFromBody_NestedErrorString(t *testing.T) {
	err := errorFromBody(200, map[string]any{"error": "Delegation denied for user"})

	require.NotNil(t, err)
	assert.True(t, err.IndicatesDisconnected())
}

func TestErrorFromBody_CleanBody(t *testing.T) {
	assert.Nil(t, errorFromBody(200, map[string]any{"messages": []any{}}))
}
