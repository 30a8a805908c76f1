// Package server provides the HTTP API for Polaris: the decision endpoint
// agents call before side-effecting actions, the bundle lifecycle endpoints
// operators drive rollouts with, and the simulation endpoints.
//
// Routes are registered on a net/http ServeMux with method+path patterns.
// The middleware chain is, outermost first: panic recovery, request
// logging, request-ID propagation.
//
// Lifecycle failures surface as typed activation errors; the server maps
// their reason codes onto HTTP statuses (missing approval and invalid
// percentages are 400s, unknown bundles are 404s, state conflicts like
// "already at target" are 409s) and returns the code in the JSON error
// body so clients can branch without parsing messages.
package server
