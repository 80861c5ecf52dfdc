package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/availability-api/internal/model"
)

func validForm() model.SlotForm {
	return model.SlotForm{
		Date:            "2024-01-15",
		StartTime:       "09:00",
		EndTime:         "10:00",
		Type:            model.SlotTypeConsultation,
		Status:          model.SlotStatusAvailable,
		Duration:        60,
		Timezone:        "UTC",
		Recurrence:      model.RecurrenceNone,
		MaxAppointments: 1,
		Location:        model.Location{Type: model.LocationInPerson, Address: "1 Main St"},
		Pricing:         model.Pricing{Currency: "USD", AcceptsInsurance: true},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *model.SlotForm)
		want   []string
	}{
		{"valid", func(f *model.SlotForm) {}, []string{}},
		{"end before start", func(f *model.SlotForm) { f.StartTime, f.EndTime = "10:00", "09:00" },
			[]string{MsgStartBeforeEnd, MsgDurationRange}},
		{"equal times", func(f *model.SlotForm) { f.EndTime = "09:00" },
			[]string{MsgStartBeforeEnd, MsgDurationRange}},
		{"too short", func(f *model.SlotForm) { f.EndTime = "09:10" }, []string{MsgDurationRange}},
		{"exactly fifteen", func(f *model.SlotForm) { f.EndTime = "09:15" }, []string{}},
		{"exactly four hours", func(f *model.SlotForm) { f.EndTime = "13:00" }, []string{}},
		{"too long", func(f *model.SlotForm) { f.EndTime = "13:01" }, []string{MsgDurationRange}},
		{"recurring without end", func(f *model.SlotForm) { f.Recurrence = model.RecurrenceWeekly },
			[]string{MsgRecurrenceEndDate}},
		{"recurring ends before start", func(f *model.SlotForm) {
			f.Recurrence = model.RecurrenceDaily
			f.RecurrenceEndDate = "2024-01-14"
		}, []string{MsgRecurrenceEndOrder}},
		{"recurring ends same day", func(f *model.SlotForm) {
			f.Recurrence = model.RecurrenceMonthly
			f.RecurrenceEndDate = "2024-01-15"
		}, []string{}},
		{"in person without address", func(f *model.SlotForm) { f.Location.Address = "" },
			[]string{MsgAddressRequired}},
		{"video without address", func(f *model.SlotForm) { f.Location = model.Location{Type: model.LocationVideo} },
			[]string{}},
		{"all rules at once", func(f *model.SlotForm) {
			f.StartTime, f.EndTime = "10:00", "09:00"
			f.Recurrence = model.RecurrenceWeekly
			f.Location.Address = ""
		}, []string{MsgStartBeforeEnd, MsgDurationRange, MsgRecurrenceEndDate, MsgAddressRequired}},
		{"bad time format skips time rules", func(f *model.SlotForm) { f.EndTime = "25:00" },
			[]string{"end_time must be a time in HH:MM format"}},
		{"structural", func(f *model.SlotForm) {
			f.Type = "surgery"
			f.MaxAppointments = 0
			f.Pricing.Fee = -1
		}, []string{
			"type must be one of: consultation, follow-up, video, phone, billing, documentation",
			"max_appointments must be at least 1",
			"pricing.fee must be at least 0",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			assert.Equal(t, tt.want, Validate(f))
		})
	}
}

func TestNormalize(t *testing.T) {
	f := validForm()
	f.EndTime = "09:20"
	f.Duration = 999
	f.Tags = model.Tags{"x", "x", ""}
	f.RecurrenceEndDate = "2024-02-01"

	got := normalize(f)
	assert.Equal(t, 20, got.Duration)
	assert.Equal(t, model.Tags{"x"}, got.Tags)
	assert.Empty(t, got.RecurrenceEndDate)
}
