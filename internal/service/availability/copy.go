package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/availability-api/internal/model"
	"github.com/jwalitptl/availability-api/internal/repository"
	"github.com/jwalitptl/availability-api/internal/service/calendar"
	"github.com/jwalitptl/availability-api/pkg/lock"
)

// BulkCopy duplicates the slots offsetDays later with fresh ids. Either every
// copy is stored or none is. A zero offset uses the configured default.
func (s *Service) BulkCopy(ctx context.Context, sid string, ids []uuid.UUID, offsetDays int) ([]*model.AvailabilitySlot, error) {
	ed, err := s.editor(sid)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = ed.Selection()
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		ed.SetNotice(ErrNothingSelected.Error())
		return nil, ErrNothingSelected
	}
	if offsetDays == 0 {
		offsetDays = s.cfg.CopyOffsetDays
	}

	token, err := lock.Acquire(ctx, s.locker, mutationKey, s.cfg.LockTTL)
	if err != nil {
		return nil, &StoreError{Op: "acquire calendar lock", Err: err}
	}
	defer s.unlock(ctx, token)

	forms := make([]model.SlotForm, 0, len(ids))
	var invalid []string
	for _, id := range ids {
		src, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, storeErr("load slot", err)
		}
		form, err := shiftForm(src.Form(), offsetDays)
		if err != nil {
			return nil, err
		}
		form = normalize(form)
		for _, msg := range Validate(form) {
			invalid = append(invalid, fmt.Sprintf("%s %s: %s", form.Date, form.StartTime, msg))
		}
		forms = append(forms, form)
	}
	if len(invalid) > 0 {
		s.metrics.ValidationFailures.WithLabelValues("copy").Inc()
		return nil, &ValidationError{Messages: invalid}
	}

	copies := make([]*model.AvailabilitySlot, 0, len(forms))
	for _, form := range forms {
		slot := &model.AvailabilitySlot{SlotForm: form}
		if err := s.repo.Add(ctx, slot); err != nil {
			s.rollbackCopies(ctx, copies)
			return nil, &StoreError{Op: "copy slots", Err: err}
		}
		copies = append(copies, slot)
	}

	s.metrics.SlotMutations.WithLabelValues("copy").Add(float64(len(copies)))
	s.logger.Info().Int("copied", len(copies)).Int("offset_days", offsetDays).Msg("slots copied")
	for _, slot := range copies {
		s.publish(ctx, model.EventSlotCreated, slot)
	}
	return copies, nil
}

func (s *Service) rollbackCopies(ctx context.Context, copies []*model.AvailabilitySlot) {
	if len(copies) == 0 {
		return
	}
	ids := make([]uuid.UUID, len(copies))
	for i, c := range copies {
		ids[i] = c.ID
	}
	if _, err := s.repo.RemoveMany(context.WithoutCancel(ctx), ids); err != nil && !errors.Is(err, repository.ErrSlotNotFound) {
		s.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to roll back partial copy")
	}
}

func shiftForm(form model.SlotForm, days int) (model.SlotForm, error) {
	d, err := calendar.ParseDate(form.Date)
	if err != nil {
		return form, err
	}
	form.Date = calendar.FormatDate(d.AddDate(0, 0, days))

	if form.RecurrenceEndDate != "" {
		end, err := calendar.ParseDate(form.RecurrenceEndDate)
		if err != nil {
			return form, err
		}
		form.RecurrenceEndDate = calendar.FormatDate(end.AddDate(0, 0, days))
	}
	return form, nil
}
