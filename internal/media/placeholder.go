package media

import "strings"

const (
	placeholderBaseURL = "https://via.placeholder.com/"
	defaultDimensions  = "300x450"
	defaultColors      = "3357FF/FFFFFF"
)

// genreColors maps a lowercase genre to "background/text" hex colors.
var genreColors = map[string]string{
	"action":        "FF5733/FFFFFF",
	"adventure":     "FF9900/FFFFFF",
	"romance":       "FF9EF0/000000",
	"comedy":        "FFEC33/000000",
	"horror":        "300030/FF0000",
	"fantasy":       "33A1FF/FFFFFF",
	"sci-fi":        "33FFB8/000000",
	"slice of life": "B8FF33/000000",
	"sports":        "FF3352/FFFFFF",
	"mecha":         "8F8F8F/FFFF00",
	"isekai":        "9E33FF/FFFFFF",
	"mystery":       "000066/FFFFFF",
	"psychological": "660066/FFFFFF",
	"drama":         "006666/FFFFFF",
	"supernatural":  "663300/FFFFFF",
}

// themedGenres is the reduced palette used by themed card covers.
var themedGenres = map[string]bool{
	"action":  true,
	"romance": true,
	"comedy":  true,
	"horror":  true,
	"fantasy": true,
}

type contentTheme struct {
	emoji      string
	dimensions string
}

var contentThemes = map[string]contentTheme{
	"manga":       {emoji: "📚", dimensions: "350x500"},
	"movie":       {emoji: "🎬", dimensions: "300x450"},
	"light novel": {emoji: "📘", dimensions: "250x400"},
	"anime":       {emoji: "📺", dimensions: "300x450"},
}

var fallbackTheme = contentTheme{emoji: "✨", dimensions: defaultDimensions}

// AnimePlaceholder returns a cover URL colored by genre. Empty dimensions
// default to 300x450.
func AnimePlaceholder(title, genre, dimensions string) string {
	if strings.TrimSpace(dimensions) == "" {
		dimensions = defaultDimensions
	}
	colors := lookupColors(genre, func(string) bool { return true })
	return placeholderBaseURL + dimensions + "/" + colors + "?text=" + Quote(title)
}

// ThemedPlaceholder returns a cover URL whose emoji and size follow the
// content type and whose colors follow the reduced genre palette.
func ThemedPlaceholder(title, contentType, genre string) string {
	theme, ok := contentThemes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		theme = fallbackTheme
	}
	colors := lookupColors(genre, func(g string) bool { return themedGenres[g] })
	return placeholderBaseURL + theme.dimensions + "/" + colors + "?text=" + theme.emoji + "+" + Quote(title)
}

// ContentEmoji returns the emoji shown for a content type.
func ContentEmoji(contentType string) string {
	if theme, ok := contentThemes[strings.ToLower(strings.TrimSpace(contentType))]; ok {
		return theme.emoji
	}
	return fallbackTheme.emoji
}

// lookupColors matches the whole genre first, then its first listed genre
// ("Sci-Fi, Noir" colors as sci-fi).
func lookupColors(genre string, allowed func(string) bool) string {
	key := strings.ToLower(strings.TrimSpace(CleanMarkup(genre)))
	if key == "" {
		return defaultColors
	}
	candidates := []string{key}
	if first, _, found := strings.Cut(key, ","); found {
		candidates = append(candidates, strings.TrimSpace(first))
	} else if first, _, found := strings.Cut(key, "/"); found {
		candidates = append(candidates, strings.TrimSpace(first))
	}
	for _, candidate := range candidates {
		if colors, ok := genreColors[candidate]; ok && allowed(candidate) {
			return colors
		}
	}
	return defaultColors
}
