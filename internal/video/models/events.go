package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	OccurredAt() time.Time
}

// VideoCreated is emitted after Finalize persisted the metadata row.
type VideoCreated struct {
	eventID    uuid.UUID
	videoID    uuid.UUID
	ownerID    uuid.UUID
	externalID string
	occurredAt time.Time
}

func NewVideoCreated(videoID, ownerID uuid.UUID, externalID string, at time.Time) *VideoCreated {
	return &VideoCreated{
		eventID:    uuid.New(),
		videoID:    videoID,
		ownerID:    ownerID,
		externalID: externalID,
		occurredAt: at,
	}
}

func (e *VideoCreated) EventID() uuid.UUID     { return e.eventID }
func (e *VideoCreated) EventType() string      { return "VideoCreated" }
func (e *VideoCreated) AggregateID() uuid.UUID { return e.videoID }
func (e *VideoCreated) OccurredAt() time.Time  { return e.occurredAt }

func (e *VideoCreated) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EventID    uuid.UUID `json:"event_id"`
		VideoID    uuid.UUID `json:"video_id"`
		OwnerID    uuid.UUID `json:"owner_id"`
		ExternalID string    `json:"external_id"`
		OccurredAt time.Time `json:"occurred_at"`
	}{e.eventID, e.videoID, e.ownerID, e.externalID, e.occurredAt})
}

// VideoDeleted carries the external id so downstream consumers (the remote
// asset janitor among them) can reconcile the object store.
type VideoDeleted struct {
	eventID    uuid.UUID
	videoID    uuid.UUID
	ownerID    uuid.UUID
	externalID string
	occurredAt time.Time
}

func NewVideoDeleted(videoID, ownerID uuid.UUID, externalID string, at time.Time) *VideoDeleted {
	return &VideoDeleted{
		eventID:    uuid.New(),
		videoID:    videoID,
		ownerID:    ownerID,
		externalID: externalID,
		occurredAt: at,
	}
}

func (e *VideoDeleted) EventID() uuid.UUID     { return e.eventID }
func (e *VideoDeleted) EventType() string      { return "VideoDeleted" }
func (e *VideoDeleted) AggregateID() uuid.UUID { return e.videoID }
func (e *VideoDeleted) OccurredAt() time.Time  { return e.occurredAt }

func (e *VideoDeleted) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EventID    uuid.UUID `json:"event_id"`
		VideoID    uuid.UUID `json:"video_id"`
		OwnerID    uuid.UUID `json:"owner_id"`
		ExternalID string    `json:"external_id"`
		OccurredAt time.Time `json:"occurred_at"`
	}{e.eventID, e.videoID, e.ownerID, e.externalID, e.occurredAt})
}

type VideoVisibilityChanged struct {
	eventID    uuid.UUID
	videoID    uuid.UUID
	from       Visibility
	to         Visibility
	occurredAt time.Time
}

func NewVideoVisibilityChanged(videoID uuid.UUID, from, to Visibility, at time.Time) *VideoVisibilityChanged {
	return &VideoVisibilityChanged{
		eventID:    uuid.New(),
		videoID:    videoID,
		from:       from,
		to:         to,
		occurredAt: at,
	}
}

func (e *VideoVisibilityChanged) EventID() uuid.UUID     { return e.eventID }
func (e *VideoVisibilityChanged) EventType() string      { return "VideoVisibilityChanged" }
func (e *VideoVisibilityChanged) AggregateID() uuid.UUID { return e.videoID }
func (e *VideoVisibilityChanged) OccurredAt() time.Time  { return e.occurredAt }

func (e *VideoVisibilityChanged) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EventID    uuid.UUID  `json:"event_id"`
		VideoID    uuid.UUID  `json:"video_id"`
		From       Visibility `json:"from"`
		To         Visibility `json:"to"`
		OccurredAt time.Time  `json:"occurred_at"`
	}{e.eventID, e.videoID, e.from, e.to, e.occurredAt})
}
