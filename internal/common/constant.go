// Package common contains shared constants and sentinel errors used across
// gophtasks components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// RequestIDHeaderName carries a per-call correlation id that shows up in
// server logs.
const RequestIDHeaderName = "x-request-id"
