package recommend

import "strings"

// Section headings recognised in a recommendation reply.
const (
	HeadingTheme        = "## Overall Theme"
	HeadingTop          = "## Top Recommendations"
	HeadingHiddenGems   = "## Hidden Gems"
	HeadingWhereToWatch = "## Where to Watch/Read"
)

// Ordinal ranges for the list sections.
const (
	TopOrdinals        = 5
	HiddenGemsOrdinals = 3
)

const headingMarker = "##"

// ExtractSection returns the trimmed body of the first occurrence of heading,
// running to the next level-2 heading marker or the end of text. The boolean
// is false when the heading does not appear.
func ExtractSection(text, heading string) (string, bool) {
	text = normalizeNewlines(text)
	start := strings.Index(text, heading)
	if start < 0 {
		return "", false
	}
	body := text[start+len(heading):]
	if end := strings.Index(body, headingMarker); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body), true
}

// Paragraphs splits a section body on blank lines, dropping paragraphs that
// hold only whitespace.
func Paragraphs(section string) []string {
	section = normalizeNewlines(section)
	raw := strings.Split(section, "\n\n")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func normalizeNewlines(text string) string {
	if !strings.Contains(text, "\r") {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
