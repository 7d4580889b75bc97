package types

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeUser MessageType = "user"
	MessageTypeBot  MessageType = "bot"
)

// ChatSession is one conversational thread tied to a booking. A booking may
// own several overlapping sessions; webhook replays for an existing booking
// always open a fresh one.
type ChatSession struct {
	ID            int64     `json:"-"`
	SessionID     uuid.UUID `json:"session_id"`
	BookingRef    int64     `json:"-"`
	GuestLanguage string    `json:"language"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ChatMessage is append-only; conversation order is timestamp order within a
// session.
type ChatMessage struct {
	ID         int64          `json:"id"`
	SessionRef int64          `json:"-"`
	Type       MessageType    `json:"message_type"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// SessionSummary is the admin/booking listing shape for a session.
type SessionSummary struct {
	SessionID    uuid.UUID `json:"session_id"`
	Language     string    `json:"language"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// BotResponse is what the orchestrator produces for one guest turn.
type BotResponse struct {
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type CreateSessionRequest struct {
	BookingID string `json:"booking_id"`
	Language  string `json:"language,omitempty"`
}

type SendMessageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Type      string `json:"type,omitempty"`
}

type SessionResponse struct {
	SessionID string        `json:"session_id"`
	Booking   *Booking      `json:"booking"`
	Messages  []ChatMessage `json:"messages"`
}

type MessageResponse struct {
	SessionID string        `json:"session_id"`
	Response  BotResponse   `json:"response"`
	Messages  []ChatMessage `json:"messages"`
}

type HistoryResponse struct {
	SessionID string        `json:"session_id"`
	Booking   *Booking      `json:"booking"`
	Messages  []ChatMessage `json:"messages"`
	Language  string        `json:"language"`
}

type RecommendationsResponse struct {
	SessionID       string  `json:"session_id"`
	Category        string  `json:"category"`
	Recommendations []Place `json:"recommendations"`
	Message         string  `json:"message"`
}
