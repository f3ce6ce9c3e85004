package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"animeverse/internal/media"
	"animeverse/internal/recommend"
)

const (
	titleColumnWidth = 28
	typeColumnWidth  = 12
	genreColumnWidth = 20
	minAboutWidth    = 30
	// Borders and padding of a five-column rounded table.
	tableChrome = 16
)

type renderOptions struct {
	colorize bool
	width    int
}

func renderRecommendations(w io.Writer, raw string, doc recommend.Document, top, gems []media.Card, opts renderOptions) {
	if opts.width <= 0 {
		opts.width = defaultTerminalWidth
	}
	if doc.Empty() {
		fmt.Fprintln(w, "No recommendation sections were found in the reply. Here it is as received:")
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.TrimSpace(raw))
		return
	}

	if doc.Theme != "" {
		writeSection(w, "Overall Theme", opts)
		fmt.Fprintln(w, wrap(media.CleanMarkup(doc.Theme), opts.width))
		fmt.Fprintln(w)
	}
	if len(top) > 0 {
		writeSection(w, "Top Recommendations", opts)
		writeCards(w, top, opts)
	}
	if len(gems) > 0 {
		writeSection(w, "Hidden Gems", opts)
		writeCards(w, gems, opts)
	}
	if doc.WhereToWatch != "" {
		writeSection(w, "Where to Watch/Read", opts)
		fmt.Fprintln(w, wrap(media.CleanMarkup(doc.WhereToWatch), opts.width))
		fmt.Fprintln(w)
	}
}

func writeSection(w io.Writer, title string, opts renderOptions) {
	for _, line := range renderSectionHeader(title, opts.colorize) {
		fmt.Fprintln(w, line)
	}
}

func writeCards(w io.Writer, cards []media.Card, opts renderOptions) {
	aboutWidth := max(opts.width-tableChrome-titleColumnWidth-typeColumnWidth-genreColumnWidth-3, minAboutWidth)
	columns := []tableColumn{
		{Header: "#", Align: alignRight},
		{Header: "Title", WidthMax: titleColumnWidth},
		{Header: "Type", WidthMax: typeColumnWidth},
		{Header: "Genre", WidthMax: genreColumnWidth},
		{Header: "About", WidthMax: aboutWidth},
	}
	rows := make([][]string, 0, len(cards))
	for i, card := range cards {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			card.DisplayTitle,
			card.Emoji + " " + media.CleanMarkup(card.ContentType),
			card.DisplayGenre,
			aboutText(card),
		})
	}
	fmt.Fprintln(w, renderTable(columns, rows))

	for i, card := range cards {
		fmt.Fprintf(w, "  %d. %s\n", i+1, card.DisplayTitle)
		fmt.Fprintf(w, "     MyAnimeList: %s\n", card.Links.MyAnimeList)
		fmt.Fprintf(w, "     AniList:     %s\n", card.Links.AniList)
		fmt.Fprintf(w, "     Trailer:     %s\n", card.Links.Trailer)
		fmt.Fprintf(w, "     Poster:      %s\n", card.Image)
	}
	fmt.Fprintln(w)
}

func aboutText(card media.Card) string {
	about := media.CleanMarkup(card.Description)
	if card.Appeal != "" {
		appeal := "Why you'll enjoy it: " + media.CleanMarkup(card.Appeal)
		if about == "" {
			return appeal
		}
		about += "\n\n" + appeal
	}
	return about
}

func wrap(s string, width int) string {
	return text.WrapSoft(s, width)
}
