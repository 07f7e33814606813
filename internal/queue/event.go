package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventDocumentVerified    EventType = "document.verified"
	EventDocumentUnverified  EventType = "document.unverified"
	EventDocumentDeleted     EventType = "document.deleted"
	EventDocumentDiscarded   EventType = "document.discarded"
	EventAlreadyDiscarded    EventType = "document.already_discarded"
	EventDocumentUndiscarded EventType = "document.undiscarded"
	EventDraftMerged         EventType = "draft.merged"
	EventTooManyDuplicates   EventType = "document.too_many_duplicates"
	EventNotDuplicateMarked  EventType = "document.not_duplicate"
	EventSourceMerged        EventType = "source.merged"
)

// Event is an informational notification. Publishing it never affects a workflow outcome.
type Event struct {
	ID               string    `json:"id"`
	Type             EventType `json:"type"`
	ResearchEntityID uint      `json:"researchEntityId,omitempty"`
	DocumentID       uint      `json:"documentId,omitempty"`
	SourceID         uint      `json:"sourceId,omitempty"`
	RelatedIDs       []uint    `json:"relatedIds,omitempty"`
	Message          string    `json:"message,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

func NewEvent(eventType EventType) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		CreatedAt: time.Now().UTC(),
	}
}

// Publisher is the notification sink.
type Publisher interface {
	Publish(ctx context.Context, events ...*Event) error
	Close() error
}
