package natsclient

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/migue1angel/event-manager-gateway/errors"
)

// Request publishes data to subject and waits for the single correlated reply.
//
// The correlation token and one-shot reply listener are managed per call by
// the connection's inbox mechanism: each call gets an independent reply
// subject, and the listener is torn down on success, timeout, and caller
// cancellation alike. Concurrent calls never interfere.
//
// Every call is bounded by the client's uniform request timeout (default 5s,
// see WithRequestTimeout). A caller context that is cancelled first releases
// the wait promptly. Request never retries; retry policy belongs to callers.
func (m *Client) Request(ctx context.Context, subject string, data []byte) ([]byte, error) {
	if m.closed.Load() {
		return nil, errors.WrapTransient(errors.ErrShuttingDown, "Client", "Request",
			"client closed")
	}

	// Fail fast while the circuit is open rather than queueing publishes
	if m.Status() == StatusCircuitOpen {
		return nil, errors.WrapTransient(ErrCircuitOpen, "Client", "Request",
			fmt.Sprintf("request to %s", subject))
	}

	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()

	if conn == nil || !conn.IsConnected() {
		return nil, errors.WrapTransient(ErrNotConnected, "Client", "Request",
			fmt.Sprintf("request to %s", subject))
	}

	reqCtx, cancel := context.WithTimeout(ctx, m.requestTimeout)
	defer cancel()

	msg, err := conn.RequestWithContext(reqCtx, subject, data)
	if err != nil {
		return nil, m.classifyRequestError(ctx, err, subject)
	}

	return msg.Data, nil
}

// classifyRequestError maps nats.go request failures onto the shared error
// taxonomy: absent replies become timeouts, connection problems become
// broker-unavailable and count against the circuit breaker.
func (m *Client) classifyRequestError(ctx context.Context, err error, subject string) error {
	action := fmt.Sprintf("await reply on %s", subject)

	switch {
	case stderrors.Is(err, nats.ErrNoResponders):
		// Backend absent; not a connection fault, so no breaker penalty
		return errors.WrapTransient(errors.ErrNoResponders, "Client", "Request", action)

	case stderrors.Is(err, nats.ErrTimeout), stderrors.Is(err, context.DeadlineExceeded):
		// Distinguish a caller abort from the uniform timeout elapsing
		if ctx.Err() != nil {
			return errors.WrapTransient(ctx.Err(), "Client", "Request", action)
		}
		return errors.WrapTransient(ErrTimeout, "Client", "Request", action)

	case stderrors.Is(err, context.Canceled):
		return errors.WrapTransient(err, "Client", "Request", action)

	case stderrors.Is(err, nats.ErrConnectionClosed), stderrors.Is(err, nats.ErrInvalidConnection):
		m.recordFailure()
		return errors.WrapTransient(ErrNotConnected, "Client", "Request", action)

	default:
		m.recordFailure()
		return errors.WrapTransient(err, "Client", "Request", action)
	}
}
