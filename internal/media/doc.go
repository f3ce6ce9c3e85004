// Package media builds the presentation pieces of a recommendation card:
// placeholder cover URLs tinted by genre, search links on MyAnimeList and
// AniList, a trailer search link, and display-ready title and genre text.
//
// Every URL is derived from the record alone; nothing here performs network
// access.
package media
