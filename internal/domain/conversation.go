package domain

import (
	"encoding/json"
	"time"
)

// Conversation represents a multi-turn advisory conversation owned by a farmer
type Conversation struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Title          string    `json:"title"`
	Crop           string    `json:"crop,omitempty"`
	Location       string    `json:"location,omitempty"`
	Language       string    `json:"language,omitempty"`
	TurnCount      int       `json:"turn_count"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// Message represents a single turn in a conversation. Immutable once created.
type Message struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	Role           string         `json:"role"` // user, assistant
	Content        string         `json:"content"`
	Metadata       *ReplyMetadata `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatContext carries the optional per-request farming context
type ChatContext struct {
	Crop     string `json:"crop,omitempty"`
	Location string `json:"location,omitempty"`
	Language string `json:"language,omitempty"`
}

// ChatRequest is the request to send a chat message
type ChatRequest struct {
	ConversationID string       `json:"conversation_id,omitempty"`
	Message        string       `json:"message" binding:"required"`
	Context        *ChatContext `json:"context,omitempty"`
}

// StreamEvent is one event in the server-push chat stream
type StreamEvent struct {
	Type              string        `json:"type"` // conversation_id, chunk, metadata, done, error
	ConversationID    string        `json:"conversationId,omitempty"`
	Content           string        `json:"content,omitempty"`
	LikelyCauses      []LikelyCause `json:"likelyCauses,omitempty"`
	Actions           []string      `json:"actions,omitempty"`
	Warnings          []string      `json:"warnings,omitempty"`
	FollowUpQuestions []string      `json:"followUpQuestions,omitempty"`
	Error             string        `json:"error,omitempty"`
}

// MarshalJSON keeps the per-type wire shapes apart: a metadata event always
// carries its four list fields as arrays, even when empty, while the other
// event types omit the fields they do not use.
func (e StreamEvent) MarshalJSON() ([]byte, error) {
	if e.Type != EventMetadata {
		type plain StreamEvent
		return json.Marshal(plain(e))
	}

	wire := struct {
		Type              string        `json:"type"`
		LikelyCauses      []LikelyCause `json:"likelyCauses"`
		Actions           []string      `json:"actions"`
		Warnings          []string      `json:"warnings"`
		FollowUpQuestions []string      `json:"followUpQuestions"`
	}{
		Type:              e.Type,
		LikelyCauses:      e.LikelyCauses,
		Actions:           e.Actions,
		Warnings:          e.Warnings,
		FollowUpQuestions: e.FollowUpQuestions,
	}
	if wire.LikelyCauses == nil {
		wire.LikelyCauses = []LikelyCause{}
	}
	if wire.Actions == nil {
		wire.Actions = []string{}
	}
	if wire.Warnings == nil {
		wire.Warnings = []string{}
	}
	if wire.FollowUpQuestions == nil {
		wire.FollowUpQuestions = []string{}
	}
	return json.Marshal(wire)
}

// StreamEvent types
const (
	EventConversationID = "conversation_id"
	EventChunk          = "chunk"
	EventMetadata       = "metadata"
	EventDone           = "done"
	EventError          = "error"
)
