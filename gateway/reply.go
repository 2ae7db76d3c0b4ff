package gateway

import (
	"bytes"
	"encoding/json"
)

// replyEnvelope matches the broker RPC wire format used by the backend
// services: {"response": ..., "err": ..., "isDisposed": true}. A reply
// whose err field is set encodes an explicit backend failure.
type replyEnvelope struct {
	Response   json.RawMessage `json:"response"`
	Err        json.RawMessage `json:"err"`
	IsDisposed bool            `json:"isDisposed"`
}

// backendFailure is the shape backends use inside the envelope's err field.
// Some backends reply with a bare string instead; both are accepted.
type backendFailure struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// DecodeReply extracts the response payload from a correlated reply.
// An explicit backend failure surfaces as *BackendError. Replies that are
// not envelopes (notably raw binary documents) pass through unchanged.
func DecodeReply(data []byte) ([]byte, error) {
	if !looksLikeEnvelope(data) {
		return data, nil
	}

	var env replyEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		// Not a well-formed envelope after all; forward as-is
		return data, nil
	}

	if len(env.Err) > 0 && !bytes.Equal(env.Err, []byte("null")) {
		return nil, decodeBackendError(env.Err)
	}

	if env.Response != nil {
		return env.Response, nil
	}

	return data, nil
}

// looksLikeEnvelope is a cheap pre-check so binary payloads skip JSON parsing
func looksLikeEnvelope(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return bytes.Contains(trimmed, []byte(`"response"`)) ||
		bytes.Contains(trimmed, []byte(`"err"`))
}

// decodeBackendError turns the envelope's err field into a BackendError,
// accepting both the structured {status, message} shape and a bare string.
func decodeBackendError(raw json.RawMessage) *BackendError {
	var failure backendFailure
	if err := json.Unmarshal(raw, &failure); err == nil && failure.Message != "" {
		return &BackendError{Status: failure.Status, Message: failure.Message}
	}

	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return &BackendError{Message: msg}
	}

	return &BackendError{Message: string(raw)}
}
