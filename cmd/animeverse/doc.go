// Package main hosts the AnimeVerse CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the guided recommendation chat in the
// terminal, parses saved model replies, prints search links for a title,
// checks model connectivity, serves the HTTP API, and scaffolds
// configuration. It centralizes configuration resolution, logger setup, and
// model client wiring so subcommands can focus on user experience instead of
// plumbing.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
