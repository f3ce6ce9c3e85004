package api

import (
	"animeverse/internal/conversation"
	"animeverse/internal/media"
	"animeverse/internal/recommend"
	"animeverse/internal/session"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// ParseRequest carries a raw recommendation reply.
type ParseRequest struct {
	Text string `json:"text"`
}

// ParseResponse is the structured form of a reply plus display cards.
type ParseResponse struct {
	Document recommend.Document `json:"document"`
	Empty    bool               `json:"empty"`
	Top      []media.Card       `json:"top_cards"`
	Gems     []media.Card       `json:"hidden_gem_cards"`
}

// MessageRequest is one user chat turn.
type MessageRequest struct {
	Content string `json:"content"`
}

// MessageResponse reports the guide reply for a turn. Replied is false for
// the final turn, which is recorded without an answer.
type MessageResponse struct {
	Reply   string           `json:"reply,omitempty"`
	Replied bool             `json:"replied"`
	Session session.Snapshot `json:"session"`
}

// RecommendationsResponse is the final result of a session.
type RecommendationsResponse struct {
	conversation.Result
	Empty   bool             `json:"empty"`
	Session session.Snapshot `json:"session"`
}

// Websocket event types.
const (
	EventMessage = "message"
	EventPing    = "ping"
	EventPong    = "pong"
	EventChunk   = "chunk"
	EventReply   = "reply"
	EventDone    = "done"
	EventError   = "error"
)

// ClientEvent is a frame sent by a websocket client.
type ClientEvent struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// ServerEvent is a frame sent to a websocket client. Chunk frames carry only
// Content; reply and done frames carry the session snapshot.
type ServerEvent struct {
	Type    string            `json:"type"`
	Content string            `json:"content,omitempty"`
	Error   string            `json:"error,omitempty"`
	Message string            `json:"message,omitempty"`
	Session *session.Snapshot `json:"session,omitempty"`
}
