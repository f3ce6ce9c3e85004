// Package session holds the ephemeral state of one guide conversation:
// the preference form, the message history, and the stage machine that
// moves from setup through a bounded chat to the final recommendations.
//
// State is never shared between sessions and never persisted. Callers that
// touch a State from several goroutines must serialize access themselves
// (the API registry holds one mutex per session).
package session
