package events

import (
	"time"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketOpened        EventType = "ticket_opened"
	EventDuplicateBlocked    EventType = "duplicate_blocked"
	EventCloseRequested      EventType = "close_requested"
	EventCloseCancelled      EventType = "close_cancelled"
	EventTicketArchived      EventType = "ticket_archived"
	EventMemberAdded         EventType = "member_added"
	EventMemberRemoved       EventType = "member_removed"
	EventTranscriptGenerated EventType = "transcript_generated"
)

// Event represents a domain event emitted by the ticket services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	GuildID   string      `json:"guild_id"`
	ChannelID string      `json:"channel_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketOpenedPayload payload.
type TicketOpenedPayload struct {
	TicketType domain.TicketType `json:"ticket_type"`
	Number     int               `json:"number"`
	Channel    string            `json:"channel"`
}

// DuplicateBlockedPayload payload.
type DuplicateBlockedPayload struct {
	TicketType      domain.TicketType `json:"ticket_type"`
	ExistingChannel string            `json:"existing_channel"`
}

// CloseRequestedPayload payload.
type CloseRequestedPayload struct {
	ChannelName string `json:"channel_name"`
	PromptID    string `json:"prompt_id"`
}

// TicketArchivedPayload payload.
type TicketArchivedPayload struct {
	ChannelName string `json:"channel_name"`
	OpenerID    string `json:"opener_id,omitempty"`
	Duration    string `json:"duration"`
}

// MemberChangedPayload payload for member add/remove.
type MemberChangedPayload struct {
	MemberID    string `json:"member_id"`
	ChannelName string `json:"channel_name"`
}

// TranscriptGeneratedPayload payload.
type TranscriptGeneratedPayload struct {
	ChannelName  string `json:"channel_name"`
	MessageCount int    `json:"message_count"`
	FilePath     string `json:"file_path"`
}
