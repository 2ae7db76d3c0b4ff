package gateway

import (
	"context"
	"fmt"

	"github.com/migue1angel/event-manager-gateway/errors"
)

// Subject is the fixed routing key identifying which backend handler
// processes a message. The set is closed and statically known; nothing
// builds a subject from user input.
type Subject string

// Routable subjects, one per resource action
const (
	SubjectCreateOrder      Subject = "createOrder"
	SubjectFindAllOrders    Subject = "findAllOrders"
	SubjectFindOrdersByUser Subject = "findOrdersByUser"
	SubjectFindOneOrder     Subject = "findOneOrder"
	SubjectGenerateTickets  Subject = "generateTickets"
	SubjectUpdateOrder      Subject = "updateOrder"
	SubjectRemoveOrder      Subject = "removeOrder"

	SubjectCreateEvent   Subject = "createEvent"
	SubjectFindAllEvents Subject = "findAllEvents"
	SubjectFindOneEvent  Subject = "findOneEvent"
	SubjectUpdateEvent   Subject = "updateEvent"
	SubjectRemoveEvent   Subject = "removeEvent"
)

// Subjects returns the complete routing table
func Subjects() []Subject {
	return []Subject{
		SubjectCreateOrder,
		SubjectFindAllOrders,
		SubjectFindOrdersByUser,
		SubjectFindOneOrder,
		SubjectGenerateTickets,
		SubjectUpdateOrder,
		SubjectRemoveOrder,
		SubjectCreateEvent,
		SubjectFindAllEvents,
		SubjectFindOneEvent,
		SubjectUpdateEvent,
		SubjectRemoveEvent,
	}
}

// Valid reports whether s belongs to the closed subject set
func (s Subject) Valid() bool {
	switch s {
	case SubjectCreateOrder, SubjectFindAllOrders, SubjectFindOrdersByUser,
		SubjectFindOneOrder, SubjectGenerateTickets, SubjectUpdateOrder,
		SubjectRemoveOrder,
		SubjectCreateEvent, SubjectFindAllEvents, SubjectFindOneEvent,
		SubjectUpdateEvent, SubjectRemoveEvent:
		return true
	}
	return false
}

// Requester is the transport contract the router depends on: publish a
// payload to a subject, await exactly one correlated reply. Implemented by
// natsclient.Client; handler tests substitute stubs.
type Requester interface {
	Request(ctx context.Context, subject string, data []byte) ([]byte, error)
}

// RPCError is the JSON failure body returned to HTTP clients
type RPCError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	ErrorName  string `json:"error"`
}

// BackendError is an explicit failure payload returned by a backend
// handler, as distinct from a transport failure obtaining the reply.
type BackendError struct {
	Status  int
	Message string
}

// Error implements the error interface
func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error: %s", e.Message)
}

// Config holds the gateway HTTP surface configuration
type Config struct {
	// Port is the HTTP listen port
	Port int

	// MaxRequestSize limits request body size in bytes (default: 1MB)
	MaxRequestSize int64

	// EnableCORS enables permissive CORS headers
	EnableCORS bool
}

// Validate ensures the gateway configuration is valid
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("invalid port %d", c.Port))
	}

	if c.MaxRequestSize < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"max request size cannot be negative")
	}
	if c.MaxRequestSize == 0 {
		c.MaxRequestSize = 1024 * 1024 // 1MB default
	}
	if c.MaxRequestSize > 100*1024*1024 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"max request size cannot exceed 100MB")
	}

	return nil
}
