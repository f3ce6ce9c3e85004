// Package services defines shared utilities consumed by the conversation
// service, the API and the external model client.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, component names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper, with HTTPStatus and Kind
//     translating them for API responses.
//
// Wrap failures with a marker so callers can classify them without string
// matching.
package services
