package availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/availability-api/internal/model"
)

// publish hands the event to the broker. Failures are logged and counted only.
func (s *Service) publish(ctx context.Context, eventType string, slot *model.AvailabilitySlot, ids ...uuid.UUID) {
	if slot != nil && len(ids) == 0 {
		ids = []uuid.UUID{slot.ID}
	}
	evt := model.SlotEvent{
		ID:         uuid.New(),
		Type:       eventType,
		SlotIDs:    ids,
		Slot:       slot,
		OccurredAt: s.now().UTC(),
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	status := "success"
	if err := s.publisher.Publish(pubCtx, eventType, evt); err != nil {
		status = "failure"
		s.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish slot event")
	}
	s.metrics.EventsPublished.WithLabelValues(eventType, status).Inc()
}
