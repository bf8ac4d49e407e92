// Package client talks to the identity server.
//
// Client is the transport-agnostic contract. HTTPClient speaks the JSON API
// and GRPCClient the gRPC endpoint. Both map server failures onto the
// sentinel errors in errors.go so callers can match them with errors.Is.
// The server's message is kept in the wrapped error text.
package client
