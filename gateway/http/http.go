// Package http provides the HTTP surface of the orders gateway.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/migue1angel/event-manager-gateway/errors"
	"github.com/migue1angel/event-manager-gateway/gateway"
	"github.com/migue1angel/event-manager-gateway/metric"
	"github.com/migue1angel/event-manager-gateway/natsclient"
)

// healthReporter is the optional transport facet used by the health endpoint
type healthReporter interface {
	IsHealthy() bool
}

// statusReporter adds a detailed broker snapshot to the health payload
type statusReporter interface {
	GetStatus() *natsclient.Status
}

// Gateway bridges inbound HTTP calls to broker request/reply exchanges.
// Handlers share nothing but the long-lived transport; every request is an
// independent shape → dispatch → map sequence.
type Gateway struct {
	config    gateway.Config
	transport gateway.Requester
	metrics   *metric.Metrics
	logger    *slog.Logger

	server  *http.Server
	running atomic.Bool
}

// Option configures optional gateway collaborators
type Option func(*Gateway)

// WithMetrics attaches request metrics
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(g *Gateway) {
		if registry != nil {
			g.metrics = registry.CoreMetrics()
		}
	}
}

// WithLogger sets the gateway logger
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGateway creates an HTTP gateway over the given transport
func NewGateway(config gateway.Config, transport gateway.Requester, opts ...Option) (*Gateway, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "Gateway", "NewGateway", "config validation")
	}

	if transport == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Gateway", "NewGateway",
			"transport is required")
	}

	g := &Gateway{
		config:    config,
		transport: transport,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Handler returns the gateway's route tree
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /orders", g.handleCreate)
	mux.HandleFunc("GET /orders", g.handleFindAll)
	mux.HandleFunc("GET /orders/user/{id}", g.handleFindByUser)
	mux.HandleFunc("GET /orders/generate-tickets/{id}", g.handleGenerateTickets)
	mux.HandleFunc("GET /orders/{id}", g.handleFindOne)
	mux.HandleFunc("PUT /orders/{id}", g.handleUpdate)
	mux.HandleFunc("DELETE /orders/{id}", g.handleRemove)

	mux.HandleFunc("POST /events", g.handleCreateEvent)
	mux.HandleFunc("GET /events", g.handleFindAllEvents)
	mux.HandleFunc("GET /events/{id}", g.handleFindOneEvent)
	mux.HandleFunc("PUT /events/{id}", g.handleUpdateEvent)
	mux.HandleFunc("DELETE /events/{id}", g.handleRemoveEvent)

	mux.HandleFunc("GET /healthz", g.handleHealth)

	var handler http.Handler = mux
	handler = g.withRequestID(handler)
	if g.config.EnableCORS {
		handler = g.withCORS(handler)
	}

	return handler
}

// Start begins serving on the configured port
func (g *Gateway) Start(_ context.Context) error {
	if !g.running.CompareAndSwap(false, true) {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "Gateway", "Start",
			"gateway already running")
	}

	g.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", g.config.Port),
		Handler:           g.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.logger.Info("Gateway listening", "port", g.config.Port)

	go func() {
		if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			g.logger.Error("Gateway server failed", "error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the gateway, letting in-flight requests complete
func (g *Gateway) Stop(ctx context.Context) error {
	if !g.running.CompareAndSwap(true, false) {
		return nil
	}

	if g.server == nil {
		return nil
	}

	return g.server.Shutdown(ctx)
}

// withRequestID propagates or generates X-Request-ID for log correlation
func (g *Gateway) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := getOrGenerateRequestID(r)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}

// withCORS applies permissive CORS headers and short-circuits preflights
func (g *Gateway) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getOrGenerateRequestID extracts request ID from headers or generates a new one
// for tracing across the gateway and backend services
func getOrGenerateRequestID(r *http.Request) string {
	if reqID := r.Header.Get("X-Request-ID"); reqID != "" {
		return reqID
	}

	// 16 hex characters (8 random bytes)
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp-based ID if random generation fails
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// readBody reads the request body within the configured size limit
func (g *Gateway) readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()

	// Limit + 1 to detect oversize rather than silently truncate
	bodyReader := io.LimitReader(r.Body, g.config.MaxRequestSize+1)
	body, err := io.ReadAll(bodyReader)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Gateway", "readBody", "read request body")
	}

	if int64(len(body)) > g.config.MaxRequestSize {
		oversize := fmt.Errorf("request body exceeds maximum size of %d bytes", g.config.MaxRequestSize)
		return nil, errors.WrapInvalid(oversize, "Gateway", "readBody", "size limit")
	}

	return body, nil
}

// dispatch sends the payload to the subject and decodes the correlated reply
func (g *Gateway) dispatch(ctx context.Context, subject gateway.Subject, payload []byte) ([]byte, error) {
	reply, err := g.transport.Request(ctx, string(subject), payload)
	if err != nil {
		return nil, err
	}
	return gateway.DecodeReply(reply)
}

// observe records request metrics for one completed call
func (g *Gateway) observe(subject gateway.Subject, status int, start time.Time) {
	if g.metrics == nil {
		return
	}
	g.metrics.RequestsTotal.WithLabelValues(string(subject), fmt.Sprintf("%d", status)).Inc()
	g.metrics.RequestDuration.WithLabelValues(string(subject)).Observe(time.Since(start).Seconds())
}

// observeValidation records a request rejected before dispatch
func (g *Gateway) observeValidation(subject gateway.Subject) {
	if g.metrics == nil {
		return
	}
	g.metrics.ValidationErrors.WithLabelValues(string(subject)).Inc()
}

// handleHealth reports gateway and broker connection state
func (g *Gateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	natsHealthy := true
	if reporter, ok := g.transport.(healthReporter); ok {
		natsHealthy = reporter.IsHealthy()
	}

	payload := map[string]any{
		"status": map[bool]string{true: "ok", false: "degraded"}[natsHealthy],
		"nats":   natsHealthy,
	}

	if reporter, ok := g.transport.(statusReporter); ok {
		snapshot := reporter.GetStatus()
		payload["broker_status"] = snapshot.Status.String()
		payload["broker_failures"] = snapshot.FailureCount
		if snapshot.RTT > 0 {
			payload["broker_rtt_ms"] = snapshot.RTT.Milliseconds()
		}
	}

	status := http.StatusOK
	if !natsHealthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, payload)
}
