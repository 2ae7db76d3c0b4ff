package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/migue1angel/event-manager-gateway/errors"
	"github.com/migue1angel/event-manager-gateway/gateway"
)

// Event bodies are backend-owned shapes the bridge treats as opaque: the
// gateway requires a well-formed JSON object and forwards it unchanged,
// leaving field validation to the backend handler.
func decodeEventBody(body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errors.WrapInvalid(errors.ErrParsingFailed, "Gateway", "decodeEventBody", "parse body")
	}
	return fields, nil
}

// handleCreateEvent forwards an event creation to the backend verbatim
func (g *Gateway) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	subject := gateway.SubjectCreateEvent

	body, err := g.readBody(r)
	if err != nil {
		g.observeValidation(subject)
		g.observe(subject, http.StatusBadRequest, start)
		writeRPCError(w, http.StatusBadRequest, failureMessage(err))
		return
	}

	if _, err := decodeEventBody(body); err != nil {
		g.logger.Debug("Create event rejected", "error", err)
		g.observeValidation(subject)
		g.observe(subject, http.StatusBadRequest, start)
		writeRPCError(w, http.StatusBadRequest, failureMessage(err))
		return
	}

	reply, err := g.dispatch(r.Context(), subject, body)
	if err != nil {
		g.logger.Error("Create event failed", "error", err)
		status := classifyStatus(err)
		g.observe(subject, status, start)
		writeClassified(w, err)
		return
	}

	g.observe(subject, http.StatusCreated, start)
	writeForwarded(w, http.StatusCreated, reply)
}

// handleFindAllEvents lists every event
func (g *Gateway) handleFindAllEvents(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	subject := gateway.SubjectFindAllEvents

	reply, err := g.dispatch(r.Context(), subject, []byte(`{}`))
	if err != nil {
		g.logger.Error("Find all events failed", "error", err)
		status := classifyStatus(err)
		g.observe(subject, status, start)
		writeClassified(w, err)
		return
	}

	g.observe(subject, http.StatusOK, start)
	writeForwarded(w, http.StatusOK, reply)
}

// handleFindOneEvent fetches a single event
func (g *Gateway) handleFindOneEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	subject := gateway.SubjectFindOneEvent
	eventID := r.PathValue("id")

	reply, err := g.dispatch(r.Context(), subject, idPayload(eventID))
	if err != nil {
		g.logger.Error("Find one event failed", "eventID", eventID, "error", err)
		status := classifyStatus(err)
		g.observe(subject, status, start)
		writeClassified(w, err)
		return
	}

	g.observe(subject, http.StatusOK, start)
	writeData(w, reply)
}

// handleUpdateEvent changes an event, embedding the path id in the payload
func (g *Gateway) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	subject := gateway.SubjectUpdateEvent
	eventID := r.PathValue("id")

	body, err := g.readBody(r)
	if err != nil {
		g.observeValidation(subject)
		g.observe(subject, http.StatusBadRequest, start)
		writeRPCError(w, http.StatusBadRequest, failureMessage(err))
		return
	}

	fields, err := decodeEventBody(body)
	if err != nil {
		g.logger.Debug("Update event rejected", "eventID", eventID, "error", err)
		g.observeValidation(subject)
		g.observe(subject, http.StatusBadRequest, start)
		writeRPCError(w, http.StatusBadRequest, failureMessage(err))
		return
	}

	idRaw, err := json.Marshal(eventID)
	if err == nil {
		fields["id"] = idRaw
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		g.observe(subject, http.StatusInternalServerError, start)
		writeRPCError(w, http.StatusInternalServerError, "Failed to update event")
		return
	}

	reply, err := g.dispatch(r.Context(), subject, payload)
	if err != nil {
		g.logger.Error("Update event failed", "eventID", eventID, "error", err)
		status := classifyStatus(err)
		g.observe(subject, status, start)
		writeClassified(w, err)
		return
	}

	g.observe(subject, http.StatusOK, start)
	writeData(w, reply)
}

// handleRemoveEvent deletes an event
func (g *Gateway) handleRemoveEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	subject := gateway.SubjectRemoveEvent
	eventID := r.PathValue("id")

	reply, err := g.dispatch(r.Context(), subject, idPayload(eventID))
	if err != nil {
		g.logger.Error("Remove event failed", "eventID", eventID, "error", err)
		status := classifyStatus(err)
		g.observe(subject, status, start)
		writeClassified(w, err)
		return
	}

	g.observe(subject, http.StatusOK, start)
	writeData(w, reply)
}
