// Package prompt builds the messages sent to the model: the guide persona
// for the chat phase and the structured recommendation request.
package prompt

import (
	"fmt"
	"strings"

	"animeverse/internal/recommend"
	"animeverse/internal/services/llm"
	"animeverse/internal/session"
)

// RecommendationSystemPrompt asks for the markdown layout the recommend
// package parses.
var RecommendationSystemPrompt = fmt.Sprintf(`You are an anime and manga recommendation specialist.
Based on the conversation, provide a personalized list of recommendations.
For each recommendation include:
- title: Full title of the anime/manga
- year: Release year (if known)
- genre: Primary genre (e.g., action, romance, fantasy)
- content_type: Either "anime", "manga", "movie", or "light novel"
- description: Brief description (1-2 sentences)
- appeal: Why they'll love it based on their preferences

Start each recommendation with its number, for example "1. Title (Year)", put each
field on its own line as "Label: value", and leave a blank line between recommendations.

Organize your response under these headings, in this order:

%s
[Brief description of what you think the user will enjoy]

%s
[List %d recommendations with complete details for each]

%s
[List %d lesser-known recommendations with complete details for each]

%s
[General information about legal platforms for anime/manga]`,
	recommend.HeadingTheme,
	recommend.HeadingTop, recommend.TopOrdinals,
	recommend.HeadingHiddenGems, recommend.HiddenGemsOrdinals,
	recommend.HeadingWhereToWatch,
)

const recommendationRequestPrefix = "Here's my conversation with AnimeVerse Guide. Please provide personalized recommendations based on this: "

// GuideSystemPrompt renders the persona used for the chat phase.
func GuideSystemPrompt(p session.Preferences) string {
	var b strings.Builder
	b.WriteString("You are AnimeVerse Guide, an enthusiastic and knowledgeable anime and manga recommendation assistant. ")
	fmt.Fprintf(&b, "You're helping %s find new anime and manga to enjoy. ", p.DisplayName())
	fmt.Fprintf(&b, "They enjoy %s and prefer genres like %s. ", orUnspecified(p.FavoriteTitles), orUnspecified(p.FavoriteGenres))
	fmt.Fprintf(&b, "Their experience level is %s, they're looking for %s, and prefer %s content. ", p.Experience, p.ContentType, p.Length)
	b.WriteString("Engage in a friendly conversation about anime and manga, using occasional Japanese terms (with translations) ")
	b.WriteString("and references to popular anime. Ask about their preferences to provide personalized recommendations. ")
	b.WriteString("Be enthusiastic but not overwhelming. Provide specific recommendations with brief descriptions. ")
	b.WriteString("Avoid any inappropriate or adult-only content in your recommendations.")
	return b.String()
}

// FormatTranscript renders the history as "role: content" lines.
func FormatTranscript(messages []llm.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		lines = append(lines, msg.Role+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

// RecommendationUserPrompt wraps the transcript in the recommendation request.
func RecommendationUserPrompt(transcript string) string {
	return recommendationRequestPrefix + transcript
}

// RecommendationMessages builds the two-message recommendation request for
// a chat history.
func RecommendationMessages(history []llm.Message) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: RecommendationSystemPrompt},
		{Role: llm.RoleUser, Content: RecommendationUserPrompt(FormatTranscript(history))},
	}
}

func orUnspecified(value string) string {
	if strings.TrimSpace(value) == "" {
		return "a bit of everything"
	}
	return value
}
