package media

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"animeverse/internal/recommend"
)

// Card is a record decorated for display.
type Card struct {
	recommend.Record
	DisplayTitle string `json:"display_title"`
	DisplayGenre string `json:"display_genre,omitempty"`
	Emoji        string `json:"emoji"`
	Image        string `json:"image"`
	Links        Links  `json:"links"`
}

// NewCard decorates a parsed record.
func NewCard(rec recommend.Record) Card {
	title := CleanMarkup(rec.Title)
	return Card{
		Record:       rec,
		DisplayTitle: DisplayTitle(title, CleanMarkup(rec.Year)),
		DisplayGenre: DisplayGenre(rec.Genre),
		Emoji:        ContentEmoji(CleanMarkup(rec.ContentType)),
		Image:        ThemedPlaceholder(title, CleanMarkup(rec.ContentType), rec.Genre),
		Links:        LinksFor(title),
	}
}

// Cards decorates every record in order.
func Cards(records []recommend.Record) []Card {
	out := make([]Card, 0, len(records))
	for _, rec := range records {
		out = append(out, NewCard(rec))
	}
	return out
}

// DisplayTitle renders "Title (Year)", or just the title when no year is known.
func DisplayTitle(title, year string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}
	if year = strings.TrimSpace(year); year != "" {
		return title + " (" + year + ")"
	}
	return title
}

// DisplayGenre title-cases a genre label for display.
func DisplayGenre(genre string) string {
	genre = strings.TrimSpace(CleanMarkup(genre))
	if genre == "" {
		return ""
	}
	return cases.Title(language.Und).String(genre)
}

var markupReplacer = strings.NewReplacer("**", "", "__", "", "`", "")

// CleanMarkup strips markdown emphasis the model sometimes wraps around
// titles and labels.
func CleanMarkup(s string) string {
	return strings.TrimSpace(markupReplacer.Replace(s))
}
