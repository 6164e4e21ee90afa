package gateway

import "atlas-core-connect-layer/internal/domain"

// The gateway is inconsistent about where it places a response payload:
// at the top level, under "output", under "output.body", or under "body".
// The matchers below are applied in a fixed priority order and the first
// structurally valid, non-empty match wins.

type shapeMatcher struct {
	name    string
	extract func(body map[string]any) (any, bool)
}

var payloadShapes = []shapeMatcher{
	{
		// A top-level payload is one that is not itself an envelope.
		name: "top-level",
		extract: func(body map[string]any) (any, bool) {
			if _, ok := body["output"]; ok {
				return nil, false
			}
			if _, ok := body["body"]; ok {
				return nil, false
			}
			return body, len(body) > 0
		},
	},
	{
		// "output" carries the payload unless it is a {body: ...} wrapper.
		name: "output",
		extract: func(body map[string]any) (any, bool) {
			output, ok := body["output"]
			if !ok {
				return nil, false
			}
			if m, isMap := output.(map[string]any); isMap {
				if _, wrapped := m["body"]; wrapped {
					return nil, false
				}
			}
			return output, !isEmptyPayload(output)
		},
	},
	{
		name: "output.body",
		extract: func(body map[string]any) (any, bool) {
			output, ok := body["output"].(map[string]any)
			if !ok {
				return nil, false
			}
			inner, ok := output["body"]
			return inner, ok && !isEmptyPayload(inner)
		},
	},
	{
		name: "body",
		extract: func(body map[string]any) (any, bool) {
			inner, ok := body["body"]
			return inner, ok && !isEmptyPayload(inner)
		},
	},
}

// ExtractPayload unwraps a decoded gateway response body. A top-level
// array is already the payload; objects run through the shape matchers.
// It returns nil when no shape yields a payload; a bodyless success is
// inconclusive and callers must not read it as proof of anything.
func ExtractPayload(body any) any {
	switch t := body.(type) {
	case []any:
		return t
	case map[string]any:
		for _, shape := range payloadShapes {
			if payload, ok := shape.extract(t); ok {
				return payload
			}
		}
	}
	return nil
}

// isEmptyPayload reports whether a candidate carries no data at all.
// Empty slices are kept: a list action legitimately returns zero rows.
func isEmptyPayload(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(t) == 0
	case string:
		return t == ""
	default:
		return false
	}
}

// errorFromBody inspects a decoded body for the gateway's nested error
// shape ({"error": {"code": 401, "status": "...", "message": "..."}} or a
// bare string) and returns a typed error, or nil when none is present.
// httpStatus seeds the code when the nested object omits one.
func errorFromBody(httpStatus int, body map[string]any) *domain.UpstreamError {
	raw, ok := body["error"]
	if !ok {
		if httpStatus >= 400 {
			return &domain.UpstreamError{StatusCode: httpStatus, Message: stringField(body, "message")}
		}
		return nil
	}

	upstream := &domain.UpstreamError{StatusCode: httpStatus}
	switch e := raw.(type) {
	case map[string]any:
		if code, ok := e["code"].(float64); ok {
			upstream.StatusCode = int(code)
		}
		upstream.Status = stringField(e, "status")
		upstream.Message = stringField(e, "message")
	case string:
		upstream.Message = e
	}
	return upstream
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
