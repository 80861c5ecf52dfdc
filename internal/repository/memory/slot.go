package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/availability-api/internal/model"
	"github.com/jwalitptl/availability-api/internal/repository"
)

type slotRepository struct {
	mu    sync.RWMutex
	slots []*model.AvailabilitySlot
	now   func() time.Time
}

// NewSlotRepository returns an in-process store. Seed slots keep their ids.
func NewSlotRepository(seed ...*model.AvailabilitySlot) repository.SlotRepository {
	r := &slotRepository{now: time.Now}
	for _, s := range seed {
		r.slots = append(r.slots, s.Clone())
	}
	return r
}

func (r *slotRepository) Add(ctx context.Context, slot *model.AvailabilitySlot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := r.now().UTC()
	slot.ID = model.NewSlotID()
	slot.CreatedAt = now
	slot.UpdatedAt = now
	slot.Tags = slot.Tags.Normalize()

	r.mu.Lock()
	r.slots = append(r.slots, slot.Clone())
	r.mu.Unlock()
	return nil
}

func (r *slotRepository) Update(ctx context.Context, id uuid.UUID, form model.SlotForm) (*model.AvailabilitySlot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.slots {
		if s.ID != id {
			continue
		}
		updated := s.Clone()
		updated.SlotForm = form
		updated.Tags = form.Tags.Normalize()
		updated.UpdatedAt = r.now().UTC()
		r.slots[i] = updated
		return updated.Clone(), nil
	}
	return nil, repository.ErrSlotNotFound
}

func (r *slotRepository) RemoveMany(ctx context.Context, ids []uuid.UUID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.slots[:0]
	removed := 0
	for _, s := range r.slots {
		if _, ok := set[s.ID]; ok {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	for i := len(kept); i < len(r.slots); i++ {
		r.slots[i] = nil
	}
	r.slots = kept
	return removed, nil
}

func (r *slotRepository) Get(ctx context.Context, id uuid.UUID) (*model.AvailabilitySlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.slots {
		if s.ID == id {
			return s.Clone(), nil
		}
	}
	return nil, repository.ErrSlotNotFound
}

func (r *slotRepository) FindByDate(ctx context.Context, date string) ([]*model.AvailabilitySlot, error) {
	return r.List(ctx, &model.SlotFilter{DateRange: model.DateRange{From: date, To: date}})
}

func (r *slotRepository) FindByDateAndTime(ctx context.Context, date, startTime string) (*model.AvailabilitySlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.slots {
		if s.Date == date && s.StartTime == startTime {
			return s.Clone(), nil
		}
	}
	return nil, repository.ErrSlotNotFound
}

func (r *slotRepository) List(ctx context.Context, filter *model.SlotFilter) ([]*model.AvailabilitySlot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.AvailabilitySlot, 0, len(r.slots))
	for _, s := range r.slots {
		if filter.Matches(s) {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}
