// Package api serves AnimeVerse over HTTP.
//
// The gin router exposes the recommendation parser as a stateless endpoint
// and the guided chat as a small session resource: create a session from the
// preference form, post messages (or stream them over a websocket), then
// request the final recommendations. Resetting a session starts it over with
// a new form under the same id. Sessions live in an in-memory Registry
// that expires idle entries and caps how many may exist at once. Each session
// is processed by one request at a time.
//
// # Errors
//
// Failures carry a services marker and are reported as
// {"error": kind, "message": detail} with the status from
// services.HTTPStatus. A caller that disconnects mid-turn gets 499.
//
// # Authentication
//
// When a token is configured every /api route requires
// "Authorization: Bearer <token>". /health and /metrics stay open.
package api
