// Package orders defines the inbound order payloads and their shape rules.
// Payloads are validated here, before any broker dispatch; the backend owns
// everything beyond shape.
package orders

import (
	"encoding/json"
	"fmt"

	"github.com/migue1angel/event-manager-gateway/errors"
)

// OrderItem is a single ticket line inside an order
type OrderItem struct {
	TicketID string  `json:"ticketId"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// CreateOrderRequest is the POST /orders body
type CreateOrderRequest struct {
	UserID string      `json:"userId"`
	Items  []OrderItem `json:"items"`
}

// UpdateOrderRequest is the PUT /orders/:id body. The order id travels as a
// separate field alongside the update so the backend receives one message.
type UpdateOrderRequest struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
}

// ParseCreateOrder validates raw against the creation schema and decodes it
func ParseCreateOrder(raw []byte) (*CreateOrderRequest, error) {
	if err := validateAgainst(createOrderSchema, raw); err != nil {
		return nil, err
	}

	var req CreateOrderRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, errors.WrapInvalid(err, "Orders", "ParseCreateOrder", "decode body")
	}
	return &req, nil
}

// ParseUpdateOrder validates raw against the update schema and decodes it
func ParseUpdateOrder(raw []byte) (*UpdateOrderRequest, error) {
	if err := validateAgainst(updateOrderSchema, raw); err != nil {
		return nil, err
	}

	var req UpdateOrderRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, errors.WrapInvalid(err, "Orders", "ParseUpdateOrder", "decode body")
	}
	return &req, nil
}

// Payload serializes the request for dispatch
func (r *CreateOrderRequest) Payload() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Orders", "Payload", "encode create order")
	}
	return data, nil
}

// IDPayload serializes a bare order id for single-resource dispatch
func IDPayload(id string) ([]byte, error) {
	data, err := json.Marshal(struct {
		ID string `json:"id"`
	}{ID: id})
	if err != nil {
		return nil, errors.WrapInvalid(err, "Orders", "IDPayload", fmt.Sprintf("encode id %s", id))
	}
	return data, nil
}

// Payload serializes the update, embedding the target order id
func (r *UpdateOrderRequest) Payload(id string) ([]byte, error) {
	r.ID = id
	data, err := json.Marshal(r)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Orders", "Payload", fmt.Sprintf("encode update for %s", id))
	}
	return data, nil
}
