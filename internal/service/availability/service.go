package availability

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/availability-api/internal/model"
	"github.com/jwalitptl/availability-api/internal/repository"
	"github.com/jwalitptl/availability-api/internal/service/calendar"
	"github.com/jwalitptl/availability-api/pkg/lock"
	"github.com/jwalitptl/availability-api/pkg/messaging"
	"github.com/jwalitptl/availability-api/pkg/metrics"
)

// mutationKey serialises every store mutation of the calendar.
const mutationKey = "availability:calendar"

type Config struct {
	DefaultTimezone string
	CopyOffsetDays  int
	SessionTTL      time.Duration
	SessionCleanup  time.Duration
	LockTTL         time.Duration
}

type Service struct {
	repo      repository.SlotRepository
	calendar  *calendar.Generator
	locker    lock.Locker
	publisher messaging.Publisher
	metrics   *metrics.Metrics
	sessions  *cache.Cache
	cfg       Config
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(
	repo repository.SlotRepository,
	gen *calendar.Generator,
	locker lock.Locker,
	publisher messaging.Publisher,
	m *metrics.Metrics,
	cfg Config,
	logger zerolog.Logger,
) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.SessionCleanup <= 0 {
		cfg.SessionCleanup = 5 * time.Minute
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Second
	}
	if cfg.CopyOffsetDays == 0 {
		cfg.CopyOffsetDays = 7
	}
	if cfg.DefaultTimezone == "" {
		cfg.DefaultTimezone = localZoneName()
	}

	s := &Service{
		repo:      repo,
		calendar:  gen,
		locker:    locker,
		publisher: publisher,
		metrics:   m,
		sessions:  cache.New(cfg.SessionTTL, cfg.SessionCleanup),
		cfg:       cfg,
		logger:    logger.With().Str("service", "availability").Logger(),
		now:       time.Now,
	}
	s.sessions.OnEvicted(func(string, interface{}) {
		s.metrics.ActiveSessions.Set(float64(s.sessions.ItemCount()))
	})
	return s
}

func localZoneName() string {
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}
	if name := time.Local.String(); name != "Local" {
		return name
	}
	return "UTC"
}

// BlankForm is the form shown when adding a slot on date.
func (s *Service) BlankForm(date time.Time) model.SlotForm {
	return model.SlotForm{
		Date:            calendar.FormatDate(date),
		StartTime:       "09:00",
		EndTime:         "10:00",
		Type:            model.SlotTypeConsultation,
		Status:          model.SlotStatusAvailable,
		Duration:        60,
		Timezone:        s.cfg.DefaultTimezone,
		Recurrence:      model.RecurrenceNone,
		MaxAppointments: 1,
		Location:        model.Location{Type: model.LocationInPerson},
		Pricing:         model.Pricing{Fee: 0, Currency: model.DefaultCurrency, AcceptsInsurance: true},
		Tags:            model.Tags{},
	}
}

// Calendar renders the grid for view around focus.
func (s *Service) Calendar(ctx context.Context, view calendar.View, focus time.Time) (interface{}, error) {
	from, to := gridRange(view, focus)
	slots, err := s.repo.List(ctx, &model.SlotFilter{DateRange: model.DateRange{
		From: calendar.FormatDate(from),
		To:   calendar.FormatDate(to),
	}})
	if err != nil {
		return nil, &StoreError{Op: "load slots", Err: err}
	}
	return s.calendar.Render(view, focus, slots, calendar.Today(s.now()))
}

func gridRange(view calendar.View, focus time.Time) (time.Time, time.Time) {
	switch view {
	case calendar.ViewMonth:
		first := time.Date(focus.Year(), focus.Month(), 1, 0, 0, 0, 0, time.UTC)
		start := first.AddDate(0, 0, -int(first.Weekday()))
		return start, start.AddDate(0, 0, 41)
	case calendar.ViewWeek:
		start := calendar.WeekStart(focus)
		return start, start.AddDate(0, 0, 6)
	default:
		d := calendar.DateOf(focus)
		return d, d
	}
}

func (s *Service) Navigate(focus time.Time, view calendar.View, direction string) (time.Time, error) {
	return calendar.Navigate(focus, view, direction, s.now())
}

func (s *Service) ListSlots(ctx context.Context, filter *model.SlotFilter) ([]*model.AvailabilitySlot, error) {
	slots, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, &StoreError{Op: "list slots", Err: err}
	}
	return slots, nil
}

func (s *Service) GetSlot(ctx context.Context, id uuid.UUID) (*model.AvailabilitySlot, error) {
	slot, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storeErr("get slot", err)
	}
	return slot, nil
}

func (s *Service) Occurrences(ctx context.Context, id uuid.UUID, from, to time.Time) ([]string, error) {
	slot, err := s.GetSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	return calendar.Occurrences(slot, from, to)
}

// ValidateForm runs the form rules without touching any session.
func (s *Service) ValidateForm(form model.SlotForm) []string {
	msgs := Validate(form)
	if len(msgs) > 0 {
		s.metrics.ValidationFailures.WithLabelValues("dry_run").Inc()
	}
	return msgs
}

// OpenAdd opens a blank form on focus. An empty sid starts a new session.
func (s *Service) OpenAdd(ctx context.Context, sid string, focus time.Time) (*Session, error) {
	ed, err := s.editorOrNew(sid)
	if err != nil {
		return nil, err
	}
	if err := ed.OpenAdd(s.BlankForm(focus), s.now()); err != nil {
		return nil, err
	}
	return ed.Snapshot(), nil
}

// OpenEdit loads the slot into the form. A missing slot leaves the session
// unchanged and is reported as not found.
func (s *Service) OpenEdit(ctx context.Context, sid string, slotID uuid.UUID) (*Session, error) {
	ed, err := s.editorOrNew(sid)
	if err != nil {
		return nil, err
	}
	slot, err := s.repo.Get(ctx, slotID)
	if err != nil {
		err = storeErr("load slot", err)
		ed.SetNotice(err.Error())
		return nil, err
	}
	if err := ed.OpenEdit(slot, s.now()); err != nil {
		return nil, err
	}
	return ed.Snapshot(), nil
}

func (s *Service) GetSession(sid string) (*Session, error) {
	ed, err := s.editor(sid)
	if err != nil {
		return nil, err
	}
	return ed.Snapshot(), nil
}

// Cancel closes the form without touching the store.
func (s *Service) Cancel(sid string) (*Session, error) {
	ed, err := s.editor(sid)
	if err != nil {
		return nil, err
	}
	ed.Cancel(s.now())
	return ed.Snapshot(), nil
}

// Submit validates the form and creates or updates the slot.
func (s *Service) Submit(ctx context.Context, sid string, form model.SlotForm) (*model.AvailabilitySlot, error) {
	ed, err := s.editor(sid)
	if err != nil {
		return nil, err
	}

	form = normalize(form)
	ticket, err := ed.BeginSave(form, Validate, s.now())
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.metrics.ValidationFailures.WithLabelValues("submit").Inc()
		}
		return nil, err
	}

	slot, err := s.save(ctx, ticket.Mode, ticket.SlotID, form)
	ed.FinishSave(ticket, err, s.now())
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sid).Str("mode", string(ticket.Mode)).Msg("failed to save slot")
		return nil, err
	}
	return slot, nil
}

func (s *Service) save(ctx context.Context, mode State, id uuid.UUID, form model.SlotForm) (*model.AvailabilitySlot, error) {
	token, err := lock.Acquire(ctx, s.locker, mutationKey, s.cfg.LockTTL)
	if err != nil {
		return nil, &StoreError{Op: "acquire calendar lock", Err: err}
	}
	defer s.unlock(ctx, token)

	if mode == StateEditing {
		slot, err := s.repo.Update(ctx, id, form)
		if err != nil {
			return nil, storeErr("update slot", err)
		}
		s.metrics.SlotMutations.WithLabelValues("update").Inc()
		s.logger.Info().Str("slot_id", slot.ID.String()).Msg("slot updated")
		s.publish(ctx, model.EventSlotUpdated, slot)
		return slot, nil
	}

	slot := &model.AvailabilitySlot{SlotForm: form}
	if err := s.repo.Add(ctx, slot); err != nil {
		return nil, storeErr("create slot", err)
	}
	s.metrics.SlotMutations.WithLabelValues("create").Inc()
	s.logger.Info().Str("slot_id", slot.ID.String()).Str("date", slot.Date).Msg("slot created")
	s.publish(ctx, model.EventSlotCreated, slot)
	return slot, nil
}

func (s *Service) SetSelection(sid string, ids []uuid.UUID) (*Session, error) {
	ed, err := s.editor(sid)
	if err != nil {
		return nil, err
	}
	ed.SetSelection(ids)
	return ed.Snapshot(), nil
}

func (s *Service) Select(sid string, ids []uuid.UUID) (*Session, error) {
	ed, err := s.editor(sid)
	if err != nil {
		return nil, err
	}
	ed.Select(ids...)
	return ed.Snapshot(), nil
}

func (s *Service) Deselect(sid string, ids []uuid.UUID) (*Session, error) {
	ed, err := s.editor(sid)
	if err != nil {
		return nil, err
	}
	ed.Deselect(ids...)
	return ed.Snapshot(), nil
}

type BulkDeleteResult struct {
	Removed    int         `json:"removed"`
	RemovedIDs []uuid.UUID `json:"removed_ids"`
	MissingIDs []uuid.UUID `json:"missing_ids"`
}

// BulkDelete removes ids, or the session selection when ids is nil. Nothing
// is removed until the caller confirms.
func (s *Service) BulkDelete(ctx context.Context, sid string, ids []uuid.UUID, confirmed bool) (*BulkDeleteResult, error) {
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
	if !confirmed {
		return nil, &ConfirmationRequiredError{Count: len(ids)}
	}

	token, err := lock.Acquire(ctx, s.locker, mutationKey, s.cfg.LockTTL)
	if err != nil {
		return nil, &StoreError{Op: "acquire calendar lock", Err: err}
	}
	defer s.unlock(ctx, token)

	result := &BulkDeleteResult{RemovedIDs: []uuid.UUID{}, MissingIDs: []uuid.UUID{}}
	for _, id := range ids {
		if _, err := s.repo.Get(ctx, id); err != nil {
			if errors.Is(err, repository.ErrSlotNotFound) {
				result.MissingIDs = append(result.MissingIDs, id)
				continue
			}
			return nil, &StoreError{Op: "delete slots", Err: err}
		}
		result.RemovedIDs = append(result.RemovedIDs, id)
	}

	removed, err := s.repo.RemoveMany(ctx, result.RemovedIDs)
	if err != nil {
		return nil, &StoreError{Op: "delete slots", Err: err}
	}
	result.Removed = removed

	ed.SetSelection(nil)
	ed.SetNotice("")
	s.metrics.SlotMutations.WithLabelValues("delete").Add(float64(removed))
	s.logger.Info().Int("removed", removed).Int("missing", len(result.MissingIDs)).Msg("slots deleted")
	if removed > 0 {
		s.publish(ctx, model.EventSlotDeleted, nil, result.RemovedIDs...)
	}
	return result, nil
}

func (s *Service) unlock(ctx context.Context, token string) {
	if err := s.locker.Unlock(context.WithoutCancel(ctx), mutationKey, token); err != nil {
		s.logger.Warn().Err(err).Msg("failed to release calendar lock")
	}
}

func (s *Service) editor(sid string) (*Editor, error) {
	v, ok := s.sessions.Get(sid)
	if !ok {
		return nil, ErrSessionNotFound
	}
	ed := v.(*Editor)
	// sliding expiry
	s.sessions.SetDefault(sid, ed)
	return ed, nil
}

func (s *Service) editorOrNew(sid string) (*Editor, error) {
	if sid != "" {
		return s.editor(sid)
	}
	sid = uuid.NewString()
	ed := NewEditor(sid, s.now())
	s.sessions.SetDefault(sid, ed)
	s.metrics.ActiveSessions.Set(float64(s.sessions.ItemCount()))
	return ed, nil
}

// storeErr keeps not-found distinct from other store failures.
func storeErr(op string, err error) error {
	if errors.Is(err, repository.ErrSlotNotFound) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !containsID(out, id) {
			out = append(out, id)
		}
	}
	return out
}
