package http

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/migue1angel/event-manager-gateway/errors"
	"github.com/migue1angel/event-manager-gateway/gateway"
)

// dataResponse wraps a backend reply for single-resource reads
type dataResponse struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
}

// writeJSON serializes v to the response with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeForwarded sends backend reply bytes through unchanged
func writeForwarded(w http.ResponseWriter, status int, reply []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(reply); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

// writeData sends the backend reply wrapped in a statusCode/data envelope
func writeData(w http.ResponseWriter, reply []byte) {
	writeJSON(w, http.StatusOK, dataResponse{
		StatusCode: http.StatusOK,
		Data:       reply,
	})
}

// writeRPCError sends the structured error body used by every failing route
func writeRPCError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, gateway.RPCError{
		StatusCode: status,
		Message:    message,
		ErrorName:  http.StatusText(status),
	})
}

// writeBinary streams raw backend bytes as an inline PDF attachment
func writeBinary(w http.ResponseWriter, reply []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename=ticket.pdf`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(reply); err != nil {
		slog.Error("Failed to write binary response", "error", err)
	}
}

// writeClassified propagates a dispatch failure with a status derived from
// its classification. Backend errors keep their own status, timeouts become
// 504, broker outages 503.
func writeClassified(w http.ResponseWriter, err error) {
	status := classifyStatus(err)
	writeRPCError(w, status, failureMessage(err))
}

// classifyStatus maps a dispatch error to an HTTP status code
func classifyStatus(err error) int {
	var backendErr *gateway.BackendError
	if stderrors.As(err, &backendErr) {
		if backendErr.Status >= 100 && backendErr.Status < 600 {
			return backendErr.Status
		}
		return http.StatusBadGateway
	}

	switch {
	case stderrors.Is(err, errors.ErrRequestTimeout):
		return http.StatusGatewayTimeout
	case stderrors.Is(err, errors.ErrNoResponders),
		stderrors.Is(err, errors.ErrNoConnection),
		stderrors.Is(err, errors.ErrCircuitOpen),
		stderrors.Is(err, errors.ErrShuttingDown):
		return http.StatusServiceUnavailable
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// failureMessage extracts the message to surface for a dispatch failure.
// Backend errors carry their own message; transport failures expose the
// bare cause without the internal wrapping context.
func failureMessage(err error) string {
	var backendErr *gateway.BackendError
	if stderrors.As(err, &backendErr) {
		return backendErr.Message
	}

	return errors.Cause(err).Error()
}
