package availability

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/availability-api/internal/model"
)

type State string

const (
	StateClosed  State = "closed"
	StateAdding  State = "adding"
	StateEditing State = "editing"
	StateSaving  State = "saving"
)

// Session is a read-only snapshot of an editor.
type Session struct {
	ID        string          `json:"id"`
	State     State           `json:"state"`
	Form      *model.SlotForm `json:"form,omitempty"`
	EditingID *uuid.UUID      `json:"editing_id,omitempty"`
	Selection []uuid.UUID     `json:"selection"`
	Errors    []string        `json:"errors,omitempty"`
	Notice    string          `json:"notice,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Editor is the per-session form state machine:
//
//	closed -> adding|editing -> saving -> closed
//
// A failed save returns to the state it came from.
type Editor struct {
	mu sync.Mutex

	id        string
	state     State
	prior     State
	form      model.SlotForm
	editingID uuid.UUID
	saveSeq   uint64
	selection []uuid.UUID
	errors    []string
	notice    string
	updatedAt time.Time
}

func NewEditor(id string, now time.Time) *Editor {
	return &Editor{id: id, state: StateClosed, updatedAt: now}
}

func (e *Editor) OpenAdd(form model.SlotForm, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateSaving {
		return ErrSaveInProgress
	}
	e.state = StateAdding
	e.form = form
	e.editingID = uuid.Nil
	e.errors = nil
	e.notice = ""
	e.updatedAt = now
	return nil
}

func (e *Editor) OpenEdit(slot *model.AvailabilitySlot, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateSaving {
		return ErrSaveInProgress
	}
	e.state = StateEditing
	e.form = slot.Form()
	e.editingID = slot.ID
	e.errors = nil
	e.notice = ""
	e.updatedAt = now
	return nil
}

// SaveTicket identifies one in-flight save. Only the save that currently owns
// the editor can finish it.
type SaveTicket struct {
	Mode   State
	SlotID uuid.UUID
	seq    uint64
}

// BeginSave validates the form and, when it passes, moves to saving.
func (e *Editor) BeginSave(form model.SlotForm, validate func(model.SlotForm) []string, now time.Time) (*SaveTicket, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateSaving:
		return nil, ErrSaveInProgress
	case StateClosed:
		return nil, ErrNoOpenForm
	}

	e.form = form
	e.updatedAt = now
	if msgs := validate(form); len(msgs) > 0 {
		e.errors = msgs
		return nil, &ValidationError{Messages: msgs}
	}

	e.errors = nil
	e.prior = e.state
	e.state = StateSaving
	e.saveSeq++
	return &SaveTicket{Mode: e.prior, SlotID: e.editingID, seq: e.saveSeq}, nil
}

// FinishSave closes the form on success and restores the prior state on
// failure. A ticket from a cancelled or superseded save is ignored.
func (e *Editor) FinishSave(t *SaveTicket, err error, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t == nil || e.state != StateSaving || t.seq != e.saveSeq {
		return
	}
	e.updatedAt = now
	if err != nil {
		e.state = e.prior
		e.notice = err.Error()
		return
	}
	e.state = StateClosed
	e.form = model.SlotForm{}
	e.editingID = uuid.Nil
	e.notice = ""
}

func (e *Editor) Cancel(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = StateClosed
	e.form = model.SlotForm{}
	e.editingID = uuid.Nil
	e.errors = nil
	e.notice = ""
	e.updatedAt = now
}

func (e *Editor) SetNotice(msg string) {
	e.mu.Lock()
	e.notice = msg
	e.mu.Unlock()
}

func (e *Editor) Select(ids ...uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range ids {
		if !containsID(e.selection, id) {
			e.selection = append(e.selection, id)
		}
	}
}

func (e *Editor) Deselect(ids ...uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.selection[:0]
	for _, id := range e.selection {
		if !containsID(ids, id) {
			kept = append(kept, id)
		}
	}
	e.selection = kept
}

// SetSelection replaces the selection, dropping duplicates.
func (e *Editor) SetSelection(ids []uuid.UUID) {
	e.mu.Lock()
	e.selection = nil
	e.mu.Unlock()
	e.Select(ids...)
}

func (e *Editor) Selection() []uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]uuid.UUID{}, e.selection...)
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Editor) Snapshot() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := &Session{
		ID:        e.id,
		State:     e.state,
		Selection: append([]uuid.UUID{}, e.selection...),
		Errors:    append([]string(nil), e.errors...),
		Notice:    e.notice,
		UpdatedAt: e.updatedAt,
	}
	if e.state != StateClosed {
		form := e.form
		if e.form.Tags != nil {
			form.Tags = append(model.Tags{}, e.form.Tags...)
		}
		s.Form = &form
	}
	if e.editingID != uuid.Nil {
		id := e.editingID
		s.EditingID = &id
	}
	return s
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
