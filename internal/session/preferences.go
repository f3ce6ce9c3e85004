package session

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"animeverse/internal/services"
)

// Form field limits, counted in characters.
const (
	MaxNicknameChars       = 40
	MaxFavoriteTitlesChars = 200
	MaxFavoriteGenresChars = 200
)

// Choice lists offered by the preference form. The first entry is the default.
var (
	ExperienceLevels = []string{"Beginner", "Intermediate", "Veteran Weeb"}
	ContentTypes     = []string{"Both anime and manga", "Anime only", "Manga only", "Light novels", "Movies"}
	ContentLengths   = []string{
		"No preference",
		"Short (1-12 episodes/1-3 volumes)",
		"Medium (12-24 episodes/3-10 volumes)",
		"Long (24+ episodes/10+ volumes)",
		"Completed series only",
	}
)

// Preferences captures the answers to the setup form.
type Preferences struct {
	Nickname       string `json:"nickname"`
	FavoriteTitles string `json:"favorite_titles"`
	FavoriteGenres string `json:"favorite_genres"`
	Experience     string `json:"experience"`
	ContentType    string `json:"content_type"`
	Length         string `json:"length"`
}

// DefaultPreferences returns an empty form with the default choices selected.
func DefaultPreferences() Preferences {
	return Preferences{
		Experience:  ExperienceLevels[0],
		ContentType: ContentTypes[0],
		Length:      ContentLengths[0],
	}
}

// Normalize trims free-text fields and fills empty choices with defaults.
func (p Preferences) Normalize() Preferences {
	defaults := DefaultPreferences()
	p.Nickname = strings.TrimSpace(p.Nickname)
	p.FavoriteTitles = strings.TrimSpace(p.FavoriteTitles)
	p.FavoriteGenres = strings.TrimSpace(p.FavoriteGenres)
	p.Experience = strings.TrimSpace(p.Experience)
	p.ContentType = strings.TrimSpace(p.ContentType)
	p.Length = strings.TrimSpace(p.Length)
	if p.Experience == "" {
		p.Experience = defaults.Experience
	}
	if p.ContentType == "" {
		p.ContentType = defaults.ContentType
	}
	if p.Length == "" {
		p.Length = defaults.Length
	}
	return p
}

// Validate checks field lengths and that every choice is one the form offers.
func (p Preferences) Validate() error {
	var problems []string
	checkLen := func(name, value string, limit int) {
		if n := utf8.RuneCountInString(value); n > limit {
			problems = append(problems, fmt.Sprintf("%s exceeds %d characters (%d)", name, limit, n))
		}
	}
	checkChoice := func(name, value string, options []string) {
		if !slices.Contains(options, value) {
			problems = append(problems, fmt.Sprintf("%s %q is not one of %s", name, value, strings.Join(options, ", ")))
		}
	}
	checkLen("nickname", p.Nickname, MaxNicknameChars)
	checkLen("favorite titles", p.FavoriteTitles, MaxFavoriteTitlesChars)
	checkLen("favorite genres", p.FavoriteGenres, MaxFavoriteGenresChars)
	checkChoice("experience", p.Experience, ExperienceLevels)
	checkChoice("content type", p.ContentType, ContentTypes)
	checkChoice("length", p.Length, ContentLengths)
	if len(problems) == 0 {
		return nil
	}
	return services.Wrap(services.ErrValidation, "session", "preferences", strings.Join(problems, "; "), nil)
}

// DisplayName returns the nickname or a friendly fallback.
func (p Preferences) DisplayName() string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return "friend"
}
