package domain

import "time"

// Direction indicates whether a message was sent or received.
type Direction string

// Message directions.
const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
	DirectionDraft    Direction = "draft"
)

// IsValid returns true if the direction is recognised.
func (d Direction) IsValid() bool {
	switch d {
	case DirectionSent, DirectionReceived, DirectionDraft:
		return true
	default:
		return false
	}
}

// Message is the retrieval core's view of a message owned by the
// external message store. The core references messages by their stable
// integer identity and never duplicates them.
type Message struct {
	// ID is the stable integer identity assigned by the message store.
	ID int64

	// ThreadID groups messages into a conversation.
	ThreadID int64

	// Sender is the display name or address of the message author.
	Sender string

	// Body is the free-text content.
	Body string

	// SentAt is when the message was sent or received.
	SentAt time.Time

	// Direction records whether the message was sent or received.
	Direction Direction

	// Embedding is the serialized vector, empty when not yet embedded.
	Embedding string

	// EmbeddingVersion identifies the (model, dimension, corpus) triple
	// the stored vector was computed under. Vectors of different
	// versions are not comparable.
	EmbeddingVersion int

	// EmbeddedAt is when the stored vector was generated.
	EmbeddedAt time.Time
}

// HasEmbedding reports whether the message carries a vector for the
// given schema version.
func (m *Message) HasEmbedding(version int) bool {
	return m.Embedding != "" && m.EmbeddingVersion == version
}

// Thread is a conversation summary used by the thread-listing tool.
type Thread struct {
	// ID is the thread identity in the message store.
	ID int64

	// Title is a display label, typically the participant list.
	Title string

	// MessageCount is the number of messages in the thread.
	MessageCount int

	// LastActivity is the timestamp of the most recent message.
	LastActivity time.Time
}
