// Package conversation drives one AnimeVerse session against the language
// model.
//
// Service glues the pieces together: it opens a session with the guide
// persona, forwards chat turns (streamed or not) while the reply budget
// lasts, and finally requests, parses, and decorates the recommendation
// reply. Session state stays owned by the caller; the service never keeps
// per-session data of its own, so one Service serves the CLI and every API
// session alike.
package conversation
