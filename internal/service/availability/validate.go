package availability

import (
	"github.com/jwalitptl/availability-api/internal/model"
	"github.com/jwalitptl/availability-api/internal/service/calendar"
	"github.com/jwalitptl/availability-api/pkg/validator"
)

const (
	MsgStartBeforeEnd     = "Start time must be before end time"
	MsgDurationRange      = "Slot duration must be between 15 minutes and 4 hours"
	MsgRecurrenceEndDate  = "Recurring slots must include an end date"
	MsgRecurrenceEndOrder = "Recurrence end date must be on or after the slot date"
	MsgAddressRequired    = "Address is required for in-person appointments"
)

var structural = validator.New()

// Validate returns every message that applies to the form. An empty result
// means the form can be saved.
func Validate(form model.SlotForm) []string {
	errs := append([]string{}, structural.Messages(form)...)

	start, startErr := calendar.Minutes(form.StartTime)
	end, endErr := calendar.Minutes(form.EndTime)
	if startErr == nil && endErr == nil {
		if start >= end {
			errs = append(errs, MsgStartBeforeEnd)
		}
		if d := end - start; d < model.MinSlotDuration || d > model.MaxSlotDuration {
			errs = append(errs, MsgDurationRange)
		}
	}

	if form.Recurrence != model.RecurrenceNone && form.Recurrence != "" {
		switch {
		case form.RecurrenceEndDate == "":
			errs = append(errs, MsgRecurrenceEndDate)
		case validator.IsDate(form.RecurrenceEndDate) && validator.IsDate(form.Date) &&
			form.RecurrenceEndDate < form.Date:
			errs = append(errs, MsgRecurrenceEndOrder)
		}
	}

	if form.Location.Type == model.LocationInPerson && form.Location.Address == "" {
		errs = append(errs, MsgAddressRequired)
	}

	return errs
}

// normalize derives the stored duration and tidies tags.
func normalize(form model.SlotForm) model.SlotForm {
	start, startErr := calendar.Minutes(form.StartTime)
	end, endErr := calendar.Minutes(form.EndTime)
	if startErr == nil && endErr == nil {
		form.Duration = end - start
	}
	form.Tags = form.Tags.Normalize()
	if form.Recurrence == model.RecurrenceNone {
		form.RecurrenceEndDate = ""
	}
	return form
}
