// Package natsclient provides a NATS client with circuit breaker protection,
// automatic reconnection, and request/reply support for the gateway.
//
// The package wraps the standard NATS Go client with reliability features:
// a circuit breaker that fails fast after a threshold of consecutive
// connection failures (default: 5), exponential backoff between circuit
// tests, and context propagation throughout. A single Client owns the
// long-lived connection shared by every in-flight gateway request.
//
// # Request/Reply
//
// Request publishes a payload to a subject and awaits exactly one
// correlated reply. Correlation uses per-call inbox subjects, so concurrent
// requests are fully isolated: each call's one-shot listener only ever sees
// the reply bearing its own token, and the listener is released on success,
// timeout, and cancellation paths alike. The wait is bounded by a uniform
// timeout (default 5s); there is no automatic retry.
//
// # Basic Usage
//
//	client, err := natsclient.NewClient("nats://localhost:4222",
//	    natsclient.WithName("orders-gateway"),
//	    natsclient.WithRequestTimeout(5*time.Second),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	reply, err := client.Request(ctx, "findOneOrder", payload)
//
// # Connection Lifecycle
//
// The client manages state transitions automatically:
// Disconnected → Connecting → Connected → Reconnecting → Connected, with
// CircuitOpen entered after repeated failures. Callbacks are available for
// disconnect, reconnect, and health changes.
package natsclient
