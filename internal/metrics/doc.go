// Package metrics registers the Prometheus instruments exported by AnimeVerse
// and small helpers that record model calls, parse outcomes, session counts,
// and HTTP traffic.
package metrics
