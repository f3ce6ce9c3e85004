package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"animeverse/internal/recommend"
	"animeverse/internal/services"
	"animeverse/internal/services/llm"
)

func newChattingState(t *testing.T) *State {
	t.Helper()
	s := NewState("sess-1", Limits{})
	if err := s.CompleteSetup(Preferences{Nickname: "Rei"}, "system prompt"); err != nil {
		t.Fatalf("CompleteSetup: %v", err)
	}
	return s
}

func TestNewStateGeneratesID(t *testing.T) {
	s := NewState("", Limits{})
	if s.ID == "" {
		t.Fatal("expected generated id")
	}
	if s.Stage != StageSetup {
		t.Fatalf("unexpected stage %s", s.Stage)
	}
	if s.Preferences != DefaultPreferences() {
		t.Fatalf("expected default preferences, got %+v", s.Preferences)
	}
	limits := s.Limits()
	if limits.MaxUserMessages != 5 || limits.MaxAssistantReplies != 4 || limits.MaxMessageChars != 1000 {
		t.Fatalf("unexpected default limits %+v", limits)
	}
}

func TestCompleteSetupInstallsSystemPrompt(t *testing.T) {
	s := newChattingState(t)
	if s.Stage != StageChatting {
		t.Fatalf("unexpected stage %s", s.Stage)
	}
	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].Role != llm.RoleSystem || msgs[0].Content != "system prompt" {
		t.Fatalf("unexpected history %+v", msgs)
	}
	if len(s.VisibleMessages()) != 0 {
		t.Fatal("system prompt must not be visible")
	}
	if s.Preferences.Experience != "Beginner" {
		t.Fatalf("expected normalized preferences, got %+v", s.Preferences)
	}
	if err := s.CompleteSetup(Preferences{}, "again"); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict on second setup, got %v", err)
	}
}

func TestCompleteSetupRejectsInvalidPreferences(t *testing.T) {
	s := NewState("x", Limits{})
	err := s.CompleteSetup(Preferences{Nickname: strings.Repeat("a", 41)}, "prompt")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if s.Stage != StageSetup {
		t.Fatalf("stage should not advance, got %s", s.Stage)
	}
}

func TestChatAllowsFiveMessagesAndFourReplies(t *testing.T) {
	s := newChattingState(t)
	var replies int
	for i := 1; i <= 5; i++ {
		wantsReply, err := s.AddUserMessage("message")
		if err != nil {
			t.Fatalf("message %d: %v", i, err)
		}
		if wantsReply {
			replies++
			s.AddAssistantMessage("reply")
		}
		if i < 5 && s.ChatComplete() {
			t.Fatalf("chat closed early after %d messages", i)
		}
	}
	if replies != 4 {
		t.Fatalf("expected 4 replies, got %d", replies)
	}
	if !s.ChatComplete() || s.Stage != StageChatComplete {
		t.Fatalf("expected chat complete, got %s", s.Stage)
	}
	if s.RemainingUserMessages() != 0 {
		t.Fatalf("expected no remaining messages, got %d", s.RemainingUserMessages())
	}
	if _, err := s.AddUserMessage("one more"); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict after chat complete, got %v", err)
	}
	if got := len(s.VisibleMessages()); got != 9 {
		t.Fatalf("expected 9 visible messages, got %d", got)
	}
}

func TestAddUserMessageValidation(t *testing.T) {
	s := newChattingState(t)
	if _, err := s.AddUserMessage("   "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for blank message, got %v", err)
	}
	if _, err := s.AddUserMessage(strings.Repeat("x", 1001)); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for long message, got %v", err)
	}
	if s.UserMessageCount() != 0 {
		t.Fatalf("rejected messages must not count, got %d", s.UserMessageCount())
	}
	if _, err := s.AddUserMessage(strings.Repeat("語", 1000)); err != nil {
		t.Fatalf("1000 characters should be accepted: %v", err)
	}
}

func TestAddUserMessageBeforeSetup(t *testing.T) {
	s := NewState("x", Limits{})
	if _, err := s.AddUserMessage("hello"); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCustomLimits(t *testing.T) {
	s := NewState("x", Limits{MaxUserMessages: 2, MaxAssistantReplies: 9, MaxMessageChars: 10})
	if got := s.Limits().MaxAssistantReplies; got != 2 {
		t.Fatalf("replies must not exceed user messages, got %d", got)
	}
	if err := s.CompleteSetup(Preferences{}, "p"); err != nil {
		t.Fatalf("CompleteSetup: %v", err)
	}
	if _, err := s.AddUserMessage("01234567890"); err == nil {
		t.Fatal("expected length error")
	}
	for i := 0; i < 2; i++ {
		if _, err := s.AddUserMessage("hi"); err != nil {
			t.Fatalf("AddUserMessage: %v", err)
		}
	}
	if !s.ChatComplete() {
		t.Fatal("expected chat complete after 2 messages")
	}
}

func TestMarkRecommendationsAndReset(t *testing.T) {
	s := newChattingState(t)
	doc := recommend.Document{Theme: "cozy"}
	if err := s.MarkRecommendations(doc); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict before chat complete, got %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := s.AddUserMessage("hi"); err != nil {
			t.Fatalf("AddUserMessage: %v", err)
		}
	}
	if err := s.MarkRecommendations(doc); err != nil {
		t.Fatalf("MarkRecommendations: %v", err)
	}
	if !s.RecommendationsShown() {
		t.Fatal("expected recommendations shown")
	}
	got, ok := s.Document()
	if !ok || got.Theme != "cozy" {
		t.Fatalf("unexpected document %+v %v", got, ok)
	}
	snap := s.Snapshot()
	if snap.Document == nil || !snap.RecommendationsShown || snap.Stage != StageRecommendations {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	s.Reset()
	if s.Stage != StageSetup || s.UserMessageCount() != 0 || len(s.Messages()) != 0 {
		t.Fatalf("reset did not clear state: %+v", s.Snapshot())
	}
	if _, ok := s.Document(); ok {
		t.Fatal("expected document cleared")
	}
	if s.ID != "sess-1" {
		t.Fatalf("reset must keep the id, got %q", s.ID)
	}
}

func TestTouchUpdatesTimestamp(t *testing.T) {
	s := NewState("x", Limits{})
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	if err := s.CompleteSetup(Preferences{}, "p"); err != nil {
		t.Fatalf("CompleteSetup: %v", err)
	}
	if !s.UpdatedAt.Equal(base) {
		t.Fatalf("expected UpdatedAt %s, got %s", base, s.UpdatedAt)
	}
}
