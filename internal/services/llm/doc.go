// Package llm provides an OpenAI-compatible chat-completions client.
//
// This package is used by:
//   - Conversation service: guide replies (streamed or single-shot) and the
//     final recommendation request
//   - CLI health command: verify the API key and model
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send a message history, receive the assistant reply.
// Client.Stream: same request with stream=true; deltas are delivered to a
// ChunkHandler as server-sent events arrive.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty replies, and network
// timeouts with exponential backoff (base 1s, max 10s, up to 3 attempts by
// default). Retry-After headers are honoured up to the max delay. Streams are
// only retried while no content has reached the handler. Context
// cancellation aborts retries immediately.
//
// # Rate Limiting
//
// WithRateLimiter attaches a golang.org/x/time/rate limiter that every
// attempt waits on, so a shared limiter bounds the request rate of a whole
// server.
package llm
