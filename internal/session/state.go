package session

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"animeverse/internal/recommend"
	"animeverse/internal/services"
	"animeverse/internal/services/llm"
)

// Stage is the position of a session in its lifecycle.
type Stage string

const (
	StageSetup           Stage = "setup"
	StageChatting        Stage = "chatting"
	StageChatComplete    Stage = "chat_complete"
	StageRecommendations Stage = "recommendations"
)

// Default conversation limits.
const (
	DefaultMaxUserMessages     = 5
	DefaultMaxAssistantReplies = 4
	DefaultMaxMessageChars     = 1000
)

// Limits bounds the chat phase. Zero fields fall back to the defaults.
type Limits struct {
	MaxUserMessages     int
	MaxAssistantReplies int
	MaxMessageChars     int
}

func (l Limits) withDefaults() Limits {
	if l.MaxUserMessages <= 0 {
		l.MaxUserMessages = DefaultMaxUserMessages
	}
	if l.MaxAssistantReplies <= 0 {
		l.MaxAssistantReplies = DefaultMaxAssistantReplies
	}
	l.MaxAssistantReplies = min(l.MaxAssistantReplies, l.MaxUserMessages)
	if l.MaxMessageChars <= 0 {
		l.MaxMessageChars = DefaultMaxMessageChars
	}
	return l
}

// State is the complete ephemeral state of one session.
type State struct {
	ID          string
	Preferences Preferences
	Stage       Stage
	CreatedAt   time.Time
	UpdatedAt   time.Time

	limits           Limits
	messages         []llm.Message
	userMessageCount int
	document         *recommend.Document
	now              func() time.Time
}

// NewID returns a fresh random session identifier.
func NewID() string {
	return uuid.NewString()
}

// NewState creates a session in the setup stage. An empty id is replaced
// with a generated one.
func NewState(id string, limits Limits) *State {
	if strings.TrimSpace(id) == "" {
		id = NewID()
	}
	s := &State{
		ID:          id,
		Preferences: DefaultPreferences(),
		Stage:       StageSetup,
		limits:      limits.withDefaults(),
		now:         time.Now,
	}
	s.CreatedAt = s.now()
	s.UpdatedAt = s.CreatedAt
	return s
}

// Limits returns the effective chat limits.
func (s *State) Limits() Limits {
	return s.limits
}

// CompleteSetup stores the preferences, installs the system prompt and opens
// the chat.
func (s *State) CompleteSetup(prefs Preferences, systemPrompt string) error {
	if s.Stage != StageSetup {
		return s.stageError("complete setup", StageSetup)
	}
	prefs = prefs.Normalize()
	if err := prefs.Validate(); err != nil {
		return err
	}
	s.Preferences = prefs
	s.messages = []llm.Message{{Role: llm.RoleSystem, Content: systemPrompt}}
	s.Stage = StageChatting
	s.touch()
	return nil
}

// AddUserMessage records a user turn. wantsReply reports whether the guide
// should answer it: only the first MaxAssistantReplies turns get a reply.
// Reaching MaxUserMessages closes the chat.
func (s *State) AddUserMessage(text string) (wantsReply bool, err error) {
	if s.Stage != StageChatting {
		return false, s.stageError("add message", StageChatting)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return false, services.Wrap(services.ErrValidation, "session", "add message", "message is empty", nil)
	}
	if n := utf8.RuneCountInString(text); n > s.limits.MaxMessageChars {
		return false, services.Wrap(services.ErrValidation, "session", "add message",
			fmt.Sprintf("message exceeds %d characters (%d)", s.limits.MaxMessageChars, n), nil)
	}
	wantsReply = s.userMessageCount < s.limits.MaxAssistantReplies
	s.messages = append(s.messages, llm.Message{Role: llm.RoleUser, Content: text})
	s.userMessageCount++
	if s.userMessageCount >= s.limits.MaxUserMessages {
		s.Stage = StageChatComplete
	}
	s.touch()
	return wantsReply, nil
}

// AddAssistantMessage records a guide reply.
func (s *State) AddAssistantMessage(text string) {
	s.messages = append(s.messages, llm.Message{Role: llm.RoleAssistant, Content: text})
	s.touch()
}

// MarkRecommendations stores the parsed recommendations and closes the session.
func (s *State) MarkRecommendations(doc recommend.Document) error {
	if s.Stage != StageChatComplete {
		return s.stageError("show recommendations", StageChatComplete)
	}
	s.document = &doc
	s.Stage = StageRecommendations
	s.touch()
	return nil
}

// Reset starts fresh: default preferences, empty history, same identifier.
func (s *State) Reset() {
	s.Preferences = DefaultPreferences()
	s.Stage = StageSetup
	s.messages = nil
	s.userMessageCount = 0
	s.document = nil
	s.touch()
}

// Messages returns a copy of the full history, system prompt included.
func (s *State) Messages() []llm.Message {
	out := make([]llm.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// VisibleMessages returns the history without system messages.
func (s *State) VisibleMessages() []llm.Message {
	out := make([]llm.Message, 0, len(s.messages))
	for _, msg := range s.messages {
		if msg.Role == llm.RoleSystem {
			continue
		}
		out = append(out, msg)
	}
	return out
}

// UserMessageCount returns how many user turns have been recorded.
func (s *State) UserMessageCount() int {
	return s.userMessageCount
}

// RemainingUserMessages returns how many user turns are still allowed.
func (s *State) RemainingUserMessages() int {
	return max(0, s.limits.MaxUserMessages-s.userMessageCount)
}

// ChatComplete reports whether the chat phase is over.
func (s *State) ChatComplete() bool {
	return s.Stage == StageChatComplete || s.Stage == StageRecommendations
}

// RecommendationsShown reports whether recommendations have been produced.
func (s *State) RecommendationsShown() bool {
	return s.Stage == StageRecommendations
}

// Document returns the parsed recommendations, if any.
func (s *State) Document() (recommend.Document, bool) {
	if s.document == nil {
		return recommend.Document{}, false
	}
	return *s.document, true
}

// Snapshot is a read-only view of a session for rendering and JSON output.
type Snapshot struct {
	ID                    string              `json:"id"`
	Stage                 Stage               `json:"stage"`
	Preferences           Preferences         `json:"preferences"`
	Messages              []llm.Message       `json:"messages"`
	UserMessageCount      int                 `json:"user_message_count"`
	RemainingUserMessages int                 `json:"remaining_user_messages"`
	ChatComplete          bool                `json:"chat_complete"`
	RecommendationsShown  bool                `json:"recommendations_shown"`
	Document              *recommend.Document `json:"recommendations,omitempty"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

// Snapshot captures the visible state of the session.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		ID:                    s.ID,
		Stage:                 s.Stage,
		Preferences:           s.Preferences,
		Messages:              s.VisibleMessages(),
		UserMessageCount:      s.userMessageCount,
		RemainingUserMessages: s.RemainingUserMessages(),
		ChatComplete:          s.ChatComplete(),
		RecommendationsShown:  s.RecommendationsShown(),
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
	if s.document != nil {
		doc := *s.document
		snap.Document = &doc
	}
	return snap
}

func (s *State) touch() {
	s.UpdatedAt = s.now()
}

func (s *State) stageError(op string, want Stage) error {
	return services.Wrap(services.ErrConflict, "session", op,
		fmt.Sprintf("session is in stage %q, expected %q", s.Stage, want), nil)
}
