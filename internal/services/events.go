package services

import (
	"github.com/rs/zerolog/log"
)

// Domain event types.
const (
	EventSpotCreated     = "spot.created"
	EventSpotUpdated     = "spot.updated"
	EventSpotDeleted     = "spot.deleted"
	EventReviewCreated   = "review.created"
	EventFavoriteAdded   = "favorite.added"
	EventFavoriteRemoved = "favorite.removed"
)

// EventPublisher delivers domain events to interested consumers.
type EventPublisher interface {
	PublishEvent(eventType string, payload map[string]interface{}) error
}

// eventSink publishes best effort. A nil publisher drops every event.
type eventSink struct {
	publisher EventPublisher
}

func (e eventSink) publish(eventType string, payload map[string]interface{}) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishEvent(eventType, payload); err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
