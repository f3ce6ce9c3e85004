package main

import (
	"cmp"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"animeverse/internal/media"
	"animeverse/internal/recommend"
)

type linksOutput struct {
	Title  string      `json:"title"`
	Poster string      `json:"poster"`
	Links  media.Links `json:"links"`
}

func newLinksCommand() *cobra.Command {
	var genre string
	var contentType string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "links <title>",
		Short:       "Print search links and a placeholder poster for a title",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return errors.New("title is required")
			}
			payload := linksOutput{
				Title:  title,
				Poster: posterFor(title, contentType, genre),
				Links:  media.LinksFor(title),
			}
			if jsonOutput {
				return writeJSON(cmd, payload)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", media.ContentEmoji(cmp.Or(contentType, recommend.DefaultContentType)), title)
			fmt.Fprintf(out, "  MyAnimeList: %s\n", payload.Links.MyAnimeList)
			fmt.Fprintf(out, "  AniList:     %s\n", payload.Links.AniList)
			fmt.Fprintf(out, "  Trailer:     %s\n", payload.Links.Trailer)
			fmt.Fprintf(out, "  Poster:      %s\n", payload.Poster)
			return nil
		},
	}

	cmd.Flags().StringVar(&genre, "genre", "", "Genre used to pick the poster colors")
	cmd.Flags().StringVar(&contentType, "type", "", "Content type (anime, manga, movie, light novel); themes the poster")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// posterFor uses the full genre palette when no content type is given and the
// content-themed cover otherwise.
func posterFor(title, contentType, genre string) string {
	if strings.TrimSpace(contentType) == "" {
		return media.AnimePlaceholder(title, genre, "")
	}
	return media.ThemedPlaceholder(title, contentType, genre)
}
