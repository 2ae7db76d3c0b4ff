// Package gateway defines the bridging contract between inbound HTTP calls
// and broker request/reply exchanges: the closed subject routing table, the
// transport Requester interface, the reply envelope decoding that separates
// backend failures from transport failures, and the RPC error body shape.
//
// The HTTP surface itself lives in the http subpackage.
package gateway
