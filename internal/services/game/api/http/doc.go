// Package httpapi exposes the game service as a JSON API.
//
// The gateway in front of this service authenticates users. It either
// forwards the user id in the X-Jinrou-User-ID header, which this package
// trusts, or, when caller tokens are configured, a signed bearer token.
// Failures are written as google.rpc.Status JSON, with the HTTP status the
// gRPC gateway would pick for the same code.
package httpapi
