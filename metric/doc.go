// Package metric provides Prometheus metrics for the gateway: HTTP request
// counters and durations per action, payload validation rejections, and
// NATS connection health gauges. A standalone metrics server exposes the
// registry on its own port, separate from the gateway surface.
package metric
