package recommend_test

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"animeverse/internal/recommend"
)

const sampleReply = `## Overall Theme
You love stylish space adventures with a melancholy streak.

## Top Recommendations
1. Cowboy Bebop (1998)
Genre: Sci-Fi, Noir
Description: Bounty hunters in space.
Appeal: Great soundtrack.

2. One Piece - pirates
Type: Manga
Description: A rubber pirate chases the ultimate treasure.
Why they'll love it: Found family on the high seas.

3. Naruto
A ninja coming-of-age story.

## Hidden Gems
1. Planetes (2003)
Genre: Sci-Fi
Description: Space debris collectors.

2. Haibane Renmei (2002)
Genre: Slice of Life
Content type: Anime
Description: Quiet mysteries in a walled town.

## Where to Watch/Read
Crunchyroll and your local library.`

func TestParseSampleReply(t *testing.T) {
	doc := recommend.Parse(sampleReply)

	if doc.Theme != "You love stylish space adventures with a melancholy streak." {
		t.Fatalf("unexpected theme %q", doc.Theme)
	}
	if len(doc.Top) != 3 {
		t.Fatalf("expected 3 top records, got %d", len(doc.Top))
	}
	if len(doc.HiddenGems) != 2 {
		t.Fatalf("expected 2 hidden gems, got %d", len(doc.HiddenGems))
	}
	if doc.WhereToWatch != "Crunchyroll and your local library." {
		t.Fatalf("unexpected where to watch %q", doc.WhereToWatch)
	}

	want := recommend.Record{
		Title:       "Cowboy Bebop",
		Year:        "1998",
		Genre:       "Sci-Fi, Noir",
		ContentType: "anime",
		Description: "Bounty hunters in space.",
		Appeal:      "Great soundtrack.",
	}
	if doc.Top[0] != want {
		t.Fatalf("unexpected first record %+v", doc.Top[0])
	}

	onePiece := doc.Top[1]
	if onePiece.Title != "One Piece" || onePiece.HasYear() {
		t.Fatalf("unexpected one piece title %+v", onePiece)
	}
	if onePiece.ContentType != "Manga" {
		t.Fatalf("expected content type from label, got %q", onePiece.ContentType)
	}
	if onePiece.Appeal != "Found family on the high seas." {
		t.Fatalf("unexpected appeal %q", onePiece.Appeal)
	}

	if doc.Top[2].Description != "A ninja coming-of-age story." {
		t.Fatalf("expected fallback description, got %q", doc.Top[2].Description)
	}
	if got := doc.HiddenGems[1].ContentType; got != "Anime" {
		t.Fatalf("expected content type label to win, got %q", got)
	}
	if doc.RecordCount() != 5 {
		t.Fatalf("expected 5 records, got %d", doc.RecordCount())
	}
}

func TestParseWithoutHeadings(t *testing.T) {
	for _, input := range []string{"", "   ", "just some chatter\n\nwith paragraphs", "# Top Recommendations\n1. Lain"} {
		doc := recommend.Parse(input)
		if !doc.Empty() {
			t.Fatalf("expected empty document for %q, got %+v", input, doc)
		}
		if doc.Top != nil || doc.HiddenGems != nil {
			t.Fatalf("expected absent lists for %q", input)
		}
	}
}

func TestParseTopRecordCountMatchesParagraphs(t *testing.T) {
	for n := 0; n <= 5; n++ {
		var paragraphs []string
		for i := 1; i <= n; i++ {
			paragraphs = append(paragraphs, fmt.Sprintf("%d. Title %d (20%02d)\nGenre: Drama", i, i, i))
		}
		text := "## Top Recommendations\n" + strings.Join(paragraphs, "\n\n")
		doc := recommend.Parse(text)
		if len(doc.Top) != n {
			t.Fatalf("n=%d: expected %d records, got %d", n, n, len(doc.Top))
		}
		for i, rec := range doc.Top {
			if rec.Title != fmt.Sprintf("Title %d", i+1) {
				t.Fatalf("n=%d: record %d out of order: %q", n, i, rec.Title)
			}
		}
	}
}

func TestParseRecordFallbackDescription(t *testing.T) {
	rec := recommend.ParseRecord("1. Naruto\nA ninja coming-of-age story.", recommend.TopOrdinals)
	if rec.Title != "Naruto" {
		t.Fatalf("unexpected title %q", rec.Title)
	}
	if rec.Description != "A ninja coming-of-age story." {
		t.Fatalf("unexpected description %q", rec.Description)
	}
	if rec.Genre != "" || rec.Appeal != "" || rec.Year != "" {
		t.Fatalf("expected absent optional fields, got %+v", rec)
	}
	if rec.ContentType != recommend.DefaultContentType {
		t.Fatalf("expected default content type, got %q", rec.ContentType)
	}
}

func TestParseRecordFallbackSkipsLabelsAndOrdinals(t *testing.T) {
	paragraph := strings.Join([]string{
		"1. Mushishi (2005)",
		"Genre: Supernatural",
		"A wandering healer studies strange lifeforms.",
		"2. stray ordinal line",
		"Why you'll love it: Calm and beautiful.",
		"Each episode stands alone.",
	}, "\n")
	rec := recommend.ParseRecord(paragraph, recommend.TopOrdinals)
	want := "A wandering healer studies strange lifeforms. Each episode stands alone."
	if rec.Description != want {
		t.Fatalf("unexpected description %q", rec.Description)
	}
	if rec.Appeal != "Calm and beautiful." {
		t.Fatalf("unexpected appeal %q", rec.Appeal)
	}
}

func TestParseRecordTitleVariants(t *testing.T) {
	tests := []struct {
		line      string
		wantTitle string
		wantYear  string
	}{
		{"2. One Piece - pirates", "One Piece", ""},
		{"1. Cowboy Bebop (1998)", "Cowboy Bebop", "1998"},
		{"3. Monster (2004) - a psychological thriller", "Monster", "2004"},
		{"4. Berserk (1997-1998)", "Berserk", "1997-1998"},
		{"5. Steins;Gate", "Steins;Gate", ""},
		{"1. Odd (Title", "Odd (Title", ""},
	}
	for _, tc := range tests {
		rec := recommend.ParseRecord(tc.line, recommend.TopOrdinals)
		if rec.Title != tc.wantTitle || rec.Year != tc.wantYear {
			t.Fatalf("%q: got title %q year %q", tc.line, rec.Title, rec.Year)
		}
	}
}

func TestParseRecordOrdinalRangePerSection(t *testing.T) {
	rec := recommend.ParseRecord("4. Texhnolyze (2003)\nGenre: Cyberpunk", recommend.HiddenGemsOrdinals)
	if rec.Title != "" {
		t.Fatalf("expected no title outside the hidden gems range, got %q", rec.Title)
	}
	if rec.Genre != "Cyberpunk" {
		t.Fatalf("unexpected genre %q", rec.Genre)
	}

	rec = recommend.ParseRecord("4. Texhnolyze (2003)", recommend.TopOrdinals)
	if rec.Title != "Texhnolyze" || rec.Year != "2003" {
		t.Fatalf("unexpected top record %+v", rec)
	}
}

func TestParseRecordLabelsAreCaseInsensitive(t *testing.T) {
	paragraph := "1. Frieren\nGENRE: Fantasy\nDESCRIPTION: An elf outlives her party.\nWHY THEY'LL LOVE IT: Gentle pacing."
	rec := recommend.ParseRecord(paragraph, recommend.TopOrdinals)
	if rec.Genre != "Fantasy" || rec.Description != "An elf outlives her party." || rec.Appeal != "Gentle pacing." {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestParseRecordLastMatchWins(t *testing.T) {
	paragraph := "1. Mob Psycho 100\nGenre: Action\nGenre: Comedy"
	rec := recommend.ParseRecord(paragraph, recommend.TopOrdinals)
	if rec.Genre != "Comedy" {
		t.Fatalf("expected last genre line to win, got %q", rec.Genre)
	}
}

func TestParseRecordGenreNeedsColon(t *testing.T) {
	paragraph := "1. Paprika\nA genre-defining dream thriller."
	rec := recommend.ParseRecord(paragraph, recommend.TopOrdinals)
	if rec.Genre != "" {
		t.Fatalf("expected no genre without a colon, got %q", rec.Genre)
	}
	if rec.Description != "A genre-defining dream thriller." {
		t.Fatalf("unexpected description %q", rec.Description)
	}
}

func TestParseRecordWithoutTitleLine(t *testing.T) {
	rec := recommend.ParseRecord("Some loose commentary\nmore words", recommend.TopOrdinals)
	if rec.Title != "" {
		t.Fatalf("expected empty title, got %q", rec.Title)
	}
	if rec.Description != "more words" {
		t.Fatalf("unexpected description %q", rec.Description)
	}
}

func TestParseSkipsBlankParagraphs(t *testing.T) {
	text := "## Top Recommendations\n1. A\n\n   \n\n\n\n2. B\n\n \t \n\n3. C"
	doc := recommend.Parse(text)
	if len(doc.Top) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(doc.Top), doc.Top)
	}
	for i, want := range []string{"A", "B", "C"} {
		if doc.Top[i].Title != want {
			t.Fatalf("record %d: got %q want %q", i, doc.Top[i].Title, want)
		}
	}
}

func TestParseHandlesCRLF(t *testing.T) {
	text := strings.ReplaceAll(sampleReply, "\n", "\r\n")
	doc := recommend.Parse(text)
	if len(doc.Top) != 3 || len(doc.HiddenGems) != 2 {
		t.Fatalf("unexpected counts top=%d gems=%d", len(doc.Top), len(doc.HiddenGems))
	}
	if doc.Top[0].Year != "1998" {
		t.Fatalf("unexpected year %q", doc.Top[0].Year)
	}
}

func TestHiddenGemsReentryIsIdempotent(t *testing.T) {
	section, ok := recommend.ExtractSection(sampleReply, recommend.HeadingHiddenGems)
	if !ok {
		t.Fatal("expected hidden gems section")
	}
	direct := recommend.ParseHiddenGems(section)
	if !reflect.DeepEqual(direct, recommend.Parse(sampleReply).HiddenGems) {
		t.Fatalf("re-entry mismatch: %+v", direct)
	}
}

func TestExtractSectionStopsAtNextHeading(t *testing.T) {
	text := "intro\n## Overall Theme\n  cozy vibes  \n### aside\n## Top Recommendations\n1. K-On!"
	theme, ok := recommend.ExtractSection(text, recommend.HeadingTheme)
	if !ok || theme != "cozy vibes" {
		t.Fatalf("unexpected theme %q (%v)", theme, ok)
	}
	if _, ok := recommend.ExtractSection(text, recommend.HeadingHiddenGems); ok {
		t.Fatal("expected hidden gems to be absent")
	}
}

func TestExtractSectionUsesFirstOccurrence(t *testing.T) {
	text := "## Hidden Gems\n1. First\n\n## Hidden Gems\n1. Second"
	doc := recommend.Parse(text)
	if len(doc.HiddenGems) != 1 || doc.HiddenGems[0].Title != "First" {
		t.Fatalf("expected first occurrence, got %+v", doc.HiddenGems)
	}
}

func TestEveryParagraphYieldsARecord(t *testing.T) {
	doc := recommend.Parse("## Top Recommendations\n???\n\n!!!")
	if len(doc.Top) != 2 {
		t.Fatalf("expected 2 records, got %d", len(doc.Top))
	}
	for _, rec := range doc.Top {
		if rec.ContentType != recommend.DefaultContentType {
			t.Fatalf("expected default content type, got %q", rec.ContentType)
		}
	}
}
