package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/availability-api/internal/model"
	"github.com/jwalitptl/availability-api/pkg/metrics"
)

type instrumentedSlotRepository struct {
	next    SlotRepository
	metrics *metrics.Metrics
}

// NewInstrumentedSlotRepository records count and latency of every store call.
func NewInstrumentedSlotRepository(next SlotRepository, m *metrics.Metrics) SlotRepository {
	return &instrumentedSlotRepository{next: next, metrics: m}
}

func (r *instrumentedSlotRepository) observe(op string, start time.Time, err error) {
	status := "success"
	switch {
	case errors.Is(err, ErrSlotNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	r.metrics.StoreOperations.WithLabelValues(op, status).Inc()
	r.metrics.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (r *instrumentedSlotRepository) Add(ctx context.Context, slot *model.AvailabilitySlot) error {
	start := time.Now()
	err := r.next.Add(ctx, slot)
	r.observe("add", start, err)
	return err
}

func (r *instrumentedSlotRepository) Update(ctx context.Context, id uuid.UUID, form model.SlotForm) (*model.AvailabilitySlot, error) {
	start := time.Now()
	slot, err := r.next.Update(ctx, id, form)
	r.observe("update", start, err)
	return slot, err
}

func (r *instrumentedSlotRepository) RemoveMany(ctx context.Context, ids []uuid.UUID) (int, error) {
	start := time.Now()
	n, err := r.next.RemoveMany(ctx, ids)
	r.observe("remove_many", start, err)
	return n, err
}

func (r *instrumentedSlotRepository) Get(ctx context.Context, id uuid.UUID) (*model.AvailabilitySlot, error) {
	start := time.Now()
	slot, err := r.next.Get(ctx, id)
	r.observe("get", start, err)
	return slot, err
}

func (r *instrumentedSlotRepository) FindByDate(ctx context.Context, date string) ([]*model.AvailabilitySlot, error) {
	start := time.Now()
	slots, err := r.next.FindByDate(ctx, date)
	r.observe("find_by_date", start, err)
	return slots, err
}

func (r *instrumentedSlotRepository) FindByDateAndTime(ctx context.Context, date, startTime string) (*model.AvailabilitySlot, error) {
	start := time.Now()
	slot, err := r.next.FindByDateAndTime(ctx, date, startTime)
	r.observe("find_by_date_and_time", start, err)
	return slot, err
}

func (r *instrumentedSlotRepository) List(ctx context.Context, filter *model.SlotFilter) ([]*model.AvailabilitySlot, error) {
	start := time.Now()
	slots, err := r.next.List(ctx, filter)
	r.observe("list", start, err)
	return slots, err
}

// Ping forwards to the wrapped store when it holds a connection.
func (r *instrumentedSlotRepository) Ping(ctx context.Context) error {
	if hc, ok := r.next.(HealthChecker); ok {
		return hc.Ping(ctx)
	}
	return nil
}
