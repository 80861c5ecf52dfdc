package calendar

import (
	"fmt"
	"time"

	"github.com/jwalitptl/availability-api/internal/model"
)

// FormatTime renders "14:30" as "2:30 PM". Unparseable input is returned as is.
func FormatTime(clock string) string {
	t, err := time.Parse(model.TimeLayout, clock)
	if err != nil {
		return clock
	}
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	suffix := "AM"
	if t.Hour() >= 12 {
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, t.Minute(), suffix)
}

// MonthLabel renders "January 2024".
func MonthLabel(t time.Time) string {
	return t.Format("January 2006")
}

// Minutes converts HH:MM to minutes since midnight.
func Minutes(clock string) (int, error) {
	t, err := time.Parse(model.TimeLayout, clock)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", clock)
	}
	return t.Hour()*60 + t.Minute(), nil
}
