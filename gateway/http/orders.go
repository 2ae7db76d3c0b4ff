package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/migue1angel/event-manager-gateway/gateway"
	"github.com/migue1angel/event-manager-gateway/orders"
)

// handleCreate accepts an order and forwards the backend verdict verbatim.
// The backend reply body is passed through unchanged on success, and its
// error message is surfaced with a 400 on failure.
func (g *Gateway) handleCreate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	subject := gateway.SubjectCreateOrder

	body, err := g.readBody(r)
	if err != nil {
		g.observeValidation(subject)
		g.observe(subject, http.StatusBadRequest, start)
		writeRPCError(w, http.StatusBadRequest, failureMessage(err))
		return
	}

	req, err := orders.ParseCreateOrder(body)
	if err != nil {
		g.logger.Debug("Create order rejected", "error", err)
		g.observeValidation(subject)
		g.observe(subject, http.StatusBadRequest, start)
		writeRPCError(w, http.StatusBadRequest, failureMessage(err))
		return
	}

	payload, err := req.Payload()
	if err != nil {
		g.observe(subject, http.StatusInternalServerError, start)
		writeRPCError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	reply, err := g.dispatch(r.Context(), subject, payload)
	if err != nil {
		g.logger.Error("Create order failed", "error", err)
		g.observe(subject, http.StatusBadRequest, start)
		writeRPCError(w, http.StatusBadRequest, failureMessage(err))
		return
	}

	g.observe(subject, http.StatusCreated, start)
	writeForwarded(w, http.StatusCreated, reply)
}

// handleFindAll lists every order. Failures are masked behind a generic 500
// so broker details never reach unauthenticated listing clients.
func (g *Gateway) handleFindAll(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	subject := gateway.SubjectFindAllOrders

	reply, err := g.dispatch(r.Context(), subject, []byte(`{}`))
	if err != nil {
		g.logger.Error("Find all orders failed", "error", err)
		g.observe(subject, http.StatusInternalServerError, start)
		writeRPCError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	g.observe(subject, http.StatusOK, start)
	writeForwarded(w, http.StatusOK, reply)
}

// handleFindByUser lists one owner's orders, propagating classified failures
func (g *Gateway) handleFindByUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	subject := gateway.SubjectFindOrdersByUser
	userID := r.PathValue("id")

	reply, err := g.dispatch(r.Context(), subject, idPayload(userID))
	if err != nil {
		g.logger.Error("Find orders by user failed", "userID", userID, "error", err)
		status := classifyStatus(err)
		g.observe(subject, status, start)
		writeClassified(w, err)
		return
	}

	g.observe(subject, http.StatusOK, start)
	writeForwarded(w, http.StatusOK, reply)
}

// handleFindOne fetches a single order. Any failure collapses to a uniform
// 404 so callers cannot distinguish missing orders from backend trouble.
func (g *Gateway) handleFindOne(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	subject := gateway.SubjectFindOneOrder
	orderID := r.PathValue("id")

	reply, err := g.dispatch(r.Context(), subject, idPayload(orderID))
	if err != nil {
		g.logger.Debug("Find one order failed", "orderID", orderID, "error", err)
		g.observe(subject, http.StatusNotFound, start)
		writeRPCError(w, http.StatusNotFound, notFoundMessage(orderID))
		return
	}

	g.observe(subject, http.StatusOK, start)
	writeData(w, reply)
}

// handleGenerateTickets streams the backend-rendered ticket PDF
func (g *Gateway) handleGenerateTickets(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	subject := gateway.SubjectGenerateTickets
	orderID := r.PathValue("id")

	reply, err := g.dispatch(r.Context(), subject, idPayload(orderID))
	if err != nil {
		g.logger.Error("Generate tickets failed", "orderID", orderID, "error", err)
		status := classifyStatus(err)
		g.observe(subject, status, start)
		writeClassified(w, err)
		return
	}

	g.observe(subject, http.StatusOK, start)
	writeBinary(w, reply)
}

// handleUpdate changes an order's status. Dispatch failures surface as a
// generic 400 without transport detail.
func (g *Gateway) handleUpdate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	subject := gateway.SubjectUpdateOrder
	orderID := r.PathValue("id")

	body, err := g.readBody(r)
	if err != nil {
		g.observeValidation(subject)
		g.observe(subject, http.StatusBadRequest, start)
		writeRPCError(w, http.StatusBadRequest, failureMessage(err))
		return
	}

	req, err := orders.ParseUpdateOrder(body)
	if err != nil {
		g.logger.Debug("Update order rejected", "orderID", orderID, "error", err)
		g.observeValidation(subject)
		g.observe(subject, http.StatusBadRequest, start)
		writeRPCError(w, http.StatusBadRequest, failureMessage(err))
		return
	}

	payload, err := req.Payload(orderID)
	if err != nil {
		g.observe(subject, http.StatusInternalServerError, start)
		writeRPCError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	reply, err := g.dispatch(r.Context(), subject, payload)
	if err != nil {
		g.logger.Error("Update order failed", "orderID", orderID, "error", err)
		g.observe(subject, http.StatusBadRequest, start)
		writeRPCError(w, http.StatusBadRequest, "Failed to update order")
		return
	}

	g.observe(subject, http.StatusOK, start)
	writeData(w, reply)
}

// handleRemove deletes an order. Failures collapse to the same uniform 404
// as single-order reads.
func (g *Gateway) handleRemove(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	subject := gateway.SubjectRemoveOrder
	orderID := r.PathValue("id")

	reply, err := g.dispatch(r.Context(), subject, idPayload(orderID))
	if err != nil {
		g.logger.Error("Remove order failed", "orderID", orderID, "error", err)
		g.observe(subject, http.StatusNotFound, start)
		writeRPCError(w, http.StatusNotFound, notFoundMessage(orderID))
		return
	}

	g.observe(subject, http.StatusOK, start)
	writeData(w, reply)
}

// idPayload serializes a bare resource ID as the RPC payload
func idPayload(id string) []byte {
	data, _ := orders.IDPayload(id)
	return data
}

// notFoundMessage is the uniform body for collapsed single-order failures
func notFoundMessage(orderID string) string {
	return fmt.Sprintf("Order with ID %s not found", orderID)
}
