package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SlotType string

const (
	SlotTypeConsultation  SlotType = "consultation"
	SlotTypeFollowUp      SlotType = "follow-up"
	SlotTypeVideo         SlotType = "video"
	SlotTypePhone         SlotType = "phone"
	SlotTypeBilling       SlotType = "billing"
	SlotTypeDocumentation SlotType = "documentation"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
	SlotStatusBlocked   SlotStatus = "blocked"
	SlotStatusTentative SlotStatus = "tentative"
	SlotStatusBreak     SlotStatus = "break"
)

// Color returns the legend colour the calendar uses for the status.
func (s SlotStatus) Color() string {
	switch s {
	case SlotStatusAvailable:
		return "#10b981"
	case SlotStatusBooked:
		return "#3b82f6"
	case SlotStatusBlocked:
		return "#ef4444"
	case SlotStatusTentative:
		return "#f59e0b"
	default:
		return "#6b7280"
	}
}

type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

type LocationType string

const (
	LocationInPerson LocationType = "in-person"
	LocationVideo    LocationType = "video"
	LocationPhone    LocationType = "phone"
)

const (
	MinSlotDuration = 15
	MaxSlotDuration = 240

	DefaultCurrency = "USD"
)

type Location struct {
	Type    LocationType `json:"type" validate:"required,oneof=in-person video phone"`
	Address string       `json:"address"`
	Room    string       `json:"room"`
}

func (l Location) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *Location) Scan(src interface{}) error {
	return scanJSON(src, l)
}

type Pricing struct {
	Fee              float64 `json:"fee" validate:"gte=0"`
	Currency         string  `json:"currency" validate:"required,len=3"`
	AcceptsInsurance bool    `json:"accepts_insurance"`
}

func (p Pricing) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *Pricing) Scan(src interface{}) error {
	return scanJSON(src, p)
}

// Tags is a set of free-text labels kept in first-seen order.
type Tags []string

// Normalize drops empty and duplicate labels.
func (t Tags) Normalize() Tags {
	seen := make(map[string]struct{}, len(t))
	out := make(Tags, 0, len(t))
	for _, tag := range t {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func (t Tags) Contains(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t)
}

func (t *Tags) Scan(src interface{}) error {
	return scanJSON(src, t)
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
}

// SlotForm carries every user-editable field of an availability slot.
type SlotForm struct {
	Date              string     `json:"date" db:"date" validate:"required,isodate"`
	StartTime         string     `json:"start_time" db:"start_time" validate:"required,hhmm"`
	EndTime           string     `json:"end_time" db:"end_time" validate:"required,hhmm"`
	Type              SlotType   `json:"type" db:"type" validate:"required,oneof=consultation follow-up video phone billing documentation"`
	Status            SlotStatus `json:"status" db:"status" validate:"required,oneof=available booked blocked tentative break"`
	Duration          int        `json:"duration" db:"duration"`
	Timezone          string     `json:"timezone" db:"timezone"`
	Recurrence        Recurrence `json:"recurrence" db:"recurrence" validate:"required,oneof=none daily weekly monthly"`
	RecurrenceEndDate string     `json:"recurrence_end_date,omitempty" db:"recurrence_end_date" validate:"omitempty,isodate"`
	MaxAppointments   int        `json:"max_appointments" db:"max_appointments" validate:"gte=1"`
	Location          Location   `json:"location" db:"location"`
	Pricing           Pricing    `json:"pricing" db:"pricing"`
	Tags              Tags       `json:"tags" db:"tags"`
	Notes             string     `json:"notes" db:"notes"`
}

// AvailabilitySlot is one bookable or blocked time unit on a provider calendar.
type AvailabilitySlot struct {
	Base
	SlotForm
}

// NewSlotID mints a time-ordered identifier.
func NewSlotID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// Form returns a copy of the editable fields.
func (s *AvailabilitySlot) Form() SlotForm {
	f := s.SlotForm
	f.Tags = append(Tags(nil), s.Tags...)
	return f
}

// Clone returns a deep copy so callers never share tag slices with the store.
func (s *AvailabilitySlot) Clone() *AvailabilitySlot {
	c := *s
	c.SlotForm = s.Form()
	return &c
}

// SlotFilter narrows List results. Zero values match everything.
type SlotFilter struct {
	DateRange
	Statuses []SlotStatus
	Types    []SlotType
	Tag      string
}

// Matches reports whether the slot satisfies the filter.
func (f *SlotFilter) Matches(s *AvailabilitySlot) bool {
	if f == nil {
		return true
	}
	if f.From != "" && s.Date < f.From {
		return false
	}
	if f.To != "" && s.Date > f.To {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, s.Status) {
		return false
	}
	if len(f.Types) > 0 && !containsType(f.Types, s.Type) {
		return false
	}
	if f.Tag != "" && !s.Tags.Contains(f.Tag) {
		return false
	}
	return true
}

func containsStatus(list []SlotStatus, v SlotStatus) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsType(list []SlotType, v SlotType) bool {
	for _, t := range list {
		if t == v {
			return true
		}
	}
	return false
}

// SlotEvent is published after every committed mutation.
type SlotEvent struct {
	ID         uuid.UUID         `json:"id"`
	Type       string            `json:"type"`
	SlotIDs    []uuid.UUID       `json:"slot_ids"`
	Slot       *AvailabilitySlot `json:"slot,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

const (
	EventSlotCreated = "availability.slot.created"
	EventSlotUpdated = "availability.slot.updated"
	EventSlotDeleted = "availability.slot.deleted"
)
