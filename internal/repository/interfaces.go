package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/availability-api/internal/model"
)

var ErrSlotNotFound = errors.New("slot not found")

// All repository interfaces in one file
type (
	// SlotRepository is the ordered slot collection. Lists come back in insertion order.
	SlotRepository interface {
		Add(ctx context.Context, slot *model.AvailabilitySlot) error
		Update(ctx context.Context, id uuid.UUID, form model.SlotForm) (*model.AvailabilitySlot, error)
		RemoveMany(ctx context.Context, ids []uuid.UUID) (int, error)
		Get(ctx context.Context, id uuid.UUID) (*model.AvailabilitySlot, error)
		FindByDate(ctx context.Context, date string) ([]*model.AvailabilitySlot, error)
		FindByDateAndTime(ctx context.Context, date, startTime string) (*model.AvailabilitySlot, error)
		List(ctx context.Context, filter *model.SlotFilter) ([]*model.AvailabilitySlot, error)
	}

	// HealthChecker is implemented by stores that hold external connections.
	HealthChecker interface {
		Ping(ctx context.Context) error
	}
)
