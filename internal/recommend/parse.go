package recommend

import (
	"strconv"
	"strings"
)

// Labels that keep a line out of the fallback description.
var fallbackSkipLabels = []string{
	"genre:",
	"type:",
	"content type:",
	"appeal:",
	"why they'll love it:",
	"why you'll love it:",
}

var appealLabels = []string{
	"appeal:",
	"why they'll love it:",
	"why you'll love it:",
}

// Parse extracts every known section from a recommendation reply.
func Parse(text string) Document {
	var doc Document
	if theme, ok := ExtractSection(text, HeadingTheme); ok {
		doc.Theme = theme
	}
	if top, ok := ExtractSection(text, HeadingTop); ok {
		doc.Top = ParseEntries(top, TopOrdinals)
	}
	if gems, ok := ExtractSection(text, HeadingHiddenGems); ok {
		doc.HiddenGems = ParseEntries(gems, HiddenGemsOrdinals)
	}
	if where, ok := ExtractSection(text, HeadingWhereToWatch); ok {
		doc.WhereToWatch = where
	}
	return doc
}

// ParseTopRecommendations parses the body of the top recommendations section.
func ParseTopRecommendations(section string) []Record {
	return ParseEntries(section, TopOrdinals)
}

// ParseHiddenGems parses the body of the hidden gems section.
func ParseHiddenGems(section string) []Record {
	return ParseEntries(section, HiddenGemsOrdinals)
}

// ParseEntries turns each non-blank paragraph of a list section into one
// record. maxOrdinal bounds the "N. " markers treated as title lines.
func ParseEntries(section string, maxOrdinal int) []Record {
	paragraphs := Paragraphs(section)
	records := make([]Record, 0, len(paragraphs))
	for _, p := range paragraphs {
		records = append(records, ParseRecord(p, maxOrdinal))
	}
	return records
}

// ParseRecord extracts the fields of a single entry paragraph.
func ParseRecord(paragraph string, maxOrdinal int) Record {
	rec := Record{ContentType: DefaultContentType}
	markers := ordinalMarkers(maxOrdinal)

	lines := splitLines(paragraph)
	describedByLabel := false
	for _, line := range lines {
		lower := strings.ToLower(line)

		if rest, ok := cutOrdinal(line, markers); ok {
			rec.Title, rec.Year = splitTitle(rest)
		}
		if strings.Contains(lower, "genre") && strings.Contains(line, ":") {
			rec.Genre = afterColon(line)
		}
		if strings.Contains(lower, "type:") {
			rec.ContentType = afterColon(line)
		}
		if strings.Contains(lower, "description:") {
			rec.Description = afterColon(line)
			describedByLabel = true
		}
		if containsAny(lower, appealLabels) {
			rec.Appeal = afterColon(line)
		}
	}

	if !describedByLabel && len(lines) > 1 {
		rec.Description = fallbackDescription(lines[1:], markers)
	}
	return rec
}

// fallbackDescription joins the unlabelled lines of an entry.
func fallbackDescription(lines []string, markers []string) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if hasAnyPrefix(lower, fallbackSkipLabels) {
			continue
		}
		if hasAnyPrefix(line, markers) {
			continue
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}

// splitTitle separates "Name (Token) - tagline" into name and token.
func splitTitle(rest string) (string, string) {
	if idx := strings.Index(rest, " - "); idx >= 0 {
		rest = rest[:idx]
	}
	rest = strings.TrimSpace(rest)
	open := strings.Index(rest, " (")
	if open < 0 || !strings.Contains(rest, ")") {
		return rest, ""
	}
	title := strings.TrimSpace(rest[:open])
	inner := rest[open+2:]
	if next := strings.Index(inner, " ("); next >= 0 {
		inner = inner[:next]
	}
	if closeIdx := strings.Index(inner, ")"); closeIdx >= 0 {
		inner = inner[:closeIdx]
	}
	return title, strings.TrimSpace(inner)
}

func cutOrdinal(line string, markers []string) (string, bool) {
	for _, marker := range markers {
		if rest, ok := strings.CutPrefix(line, marker); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

func ordinalMarkers(maxOrdinal int) []string {
	if maxOrdinal <= 0 {
		return nil
	}
	markers := make([]string, 0, maxOrdinal)
	for i := 1; i <= maxOrdinal; i++ {
		markers = append(markers, strconv.Itoa(i)+". ")
	}
	return markers
}

func splitLines(paragraph string) []string {
	raw := strings.Split(strings.TrimSpace(normalizeNewlines(paragraph)), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		lines = append(lines, strings.TrimSpace(line))
	}
	return lines
}

func afterColon(line string) string {
	_, value, _ := strings.Cut(line, ":")
	return strings.TrimSpace(value)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
