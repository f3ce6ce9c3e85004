// Package recommend turns a model's markdown recommendation reply into
// structured records.
//
// The reply is expected to carry level-2 headings ("## Overall Theme",
// "## Top Recommendations", "## Hidden Gems", "## Where to Watch/Read").
// List sections hold one entry per blank-line separated paragraph, each
// opening with an ordinal title line followed by labelled fields:
//
//	1. Cowboy Bebop (1998)
//	Genre: Sci-Fi, Noir
//	Description: Bounty hunters in space.
//	Appeal: Great soundtrack.
//
// Parsing is total: malformed or empty input yields empty sections and
// partially filled records, never an error. Label matching is
// case-insensitive and line-oriented; when several lines match the same
// field, the last one wins.
package recommend
