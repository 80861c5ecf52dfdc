package calendar

import (
	"time"

	"github.com/jwalitptl/availability-api/internal/model"
)

// maxOccurrences caps expansion of long daily series.
const maxOccurrences = 1000

// Occurrences lists the dates a slot recurs on within [from, to]. Monthly
// series skip months that have no such day.
func Occurrences(slot *model.AvailabilitySlot, from, to time.Time) ([]string, error) {
	start, err := ParseDate(slot.Date)
	if err != nil {
		return nil, err
	}
	from, to = DateOf(from), DateOf(to)

	end := start
	if slot.Recurrence != model.RecurrenceNone && slot.Recurrence != "" {
		if end, err = ParseDate(slot.RecurrenceEndDate); err != nil {
			return nil, err
		}
	}
	if to.Before(end) {
		end = to
	}

	out := []string{}
	for i := 0; len(out) < maxOccurrences; i++ {
		day, ok := nth(start, slot.Recurrence, i)
		if day.After(end) {
			break
		}
		if !ok || day.Before(from) {
			continue
		}
		out = append(out, FormatDate(day))
		if slot.Recurrence == model.RecurrenceNone || slot.Recurrence == "" {
			break
		}
	}
	return out, nil
}

// nth returns the i-th candidate date of the series and whether it exists.
func nth(start time.Time, rec model.Recurrence, i int) (time.Time, bool) {
	switch rec {
	case model.RecurrenceDaily:
		return start.AddDate(0, 0, i), true
	case model.RecurrenceWeekly:
		return start.AddDate(0, 0, 7*i), true
	case model.RecurrenceMonthly:
		first := time.Date(start.Year(), start.Month()+time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		if start.Day() > daysIn(first.Year(), first.Month()) {
			return first, false
		}
		return time.Date(first.Year(), first.Month(), start.Day(), 0, 0, 0, 0, time.UTC), true
	default:
		if i > 0 {
			return start.AddDate(1000, 0, 0), false
		}
		return start, true
	}
}
