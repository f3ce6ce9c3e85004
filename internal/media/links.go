package media

import "strings"

const (
	myAnimeListSearchURL = "https://myanimelist.net/search/all?q="
	aniListSearchURL     = "https://anilist.co/search/anime?search="
	youTubeSearchURL     = "https://www.youtube.com/results?search_query="
)

// Links are the external search links shown on a card.
type Links struct {
	MyAnimeList string `json:"myanimelist"`
	AniList     string `json:"anilist"`
	Trailer     string `json:"trailer"`
}

// LinksFor builds search links for a title.
func LinksFor(title string) Links {
	return Links{
		MyAnimeList: myAnimeListSearchURL + Quote(title),
		AniList:     aniListSearchURL + Quote(title),
		Trailer:     youTubeSearchURL + Quote(title+" official trailer"),
	}
}

const upperHex = "0123456789ABCDEF"

// Quote percent-encodes every byte except ASCII letters, digits, "_.-~" and
// "/". Spaces become %20, never "+".
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '_', c == '.', c == '-', c == '~', c == '/':
		return true
	default:
		return false
	}
}
