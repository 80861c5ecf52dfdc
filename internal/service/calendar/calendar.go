package calendar

import (
	"fmt"
	"time"

	"github.com/jwalitptl/availability-api/internal/model"
)

const (
	monthCells       = 42
	monthCellPreview = 3
)

var weekdayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

type View string

const (
	ViewMonth View = "month"
	ViewWeek  View = "week"
	ViewDay   View = "day"
)

func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewMonth, ViewWeek, ViewDay:
		return View(s), nil
	default:
		return "", fmt.Errorf("unknown calendar view %q", s)
	}
}

type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// WorkingHours bounds the time axis of week and day grids, both ends inclusive.
type WorkingHours struct {
	Start int
	End   int
}

func DefaultWorkingHours() WorkingHours {
	return WorkingHours{Start: 8, End: 18}
}

// Generator builds calendar grids from a slot snapshot in insertion order.
type Generator struct {
	hours WorkingHours
}

func NewGenerator(hours WorkingHours) *Generator {
	if hours.Start == 0 && hours.End == 0 {
		hours = DefaultWorkingHours()
	}
	return &Generator{hours: hours}
}

func (g *Generator) Hours() WorkingHours {
	return g.hours
}

// Render dispatches to the grid builder for the view.
func (g *Generator) Render(view View, focus time.Time, slots []*model.AvailabilitySlot, today time.Time) (interface{}, error) {
	switch view {
	case ViewMonth:
		return g.Month(focus, slots, today), nil
	case ViewWeek:
		return g.Week(focus, slots), nil
	case ViewDay:
		return g.Day(focus, slots), nil
	default:
		return nil, fmt.Errorf("unknown calendar view %q", view)
	}
}

// Month lays out 42 cells starting on the Sunday on or before the 1st.
func (g *Generator) Month(focus time.Time, slots []*model.AvailabilitySlot, today time.Time) model.MonthGrid {
	focus = DateOf(focus)
	first := time.Date(focus.Year(), focus.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	todayKey := FormatDate(today)
	byDate := groupByDate(slots)

	grid := model.MonthGrid{
		Label:    MonthLabel(focus),
		Year:     focus.Year(),
		Month:    int(focus.Month()),
		Weekdays: append([]string(nil), weekdayNames...),
		Cells:    make([]model.MonthCell, 0, monthCells),
	}

	for i := 0; i < monthCells; i++ {
		day := start.AddDate(0, 0, i)
		key := FormatDate(day)
		daySlots := byDate[key]

		cell := model.MonthCell{
			Date:           key,
			Day:            day.Day(),
			IsCurrentMonth: day.Month() == focus.Month(),
			IsToday:        key == todayKey,
			Slots:          []*model.AvailabilitySlot{},
		}
		if len(daySlots) > monthCellPreview {
			cell.Slots = append(cell.Slots, daySlots[:monthCellPreview]...)
			cell.MoreCount = len(daySlots) - monthCellPreview
		} else {
			cell.Slots = append(cell.Slots, daySlots...)
		}
		grid.Cells = append(grid.Cells, cell)
	}

	return grid
}

// Week covers Sunday..Saturday of the focus week with one row per working hour.
func (g *Generator) Week(focus time.Time, slots []*model.AvailabilitySlot) model.WeekGrid {
	start := WeekStart(focus)
	grid := model.WeekGrid{Days: make([]string, 7)}
	for i := range grid.Days {
		grid.Days[i] = FormatDate(start.AddDate(0, 0, i))
	}

	idx := indexByCell(slots)
	for h := g.hours.Start; h <= g.hours.End; h++ {
		clock := fmt.Sprintf("%02d:00", h)
		row := model.WeekRow{Time: clock, Label: FormatTime(clock), Cells: make([]model.TimeCell, 0, 7)}
		for _, date := range grid.Days {
			row.Cells = append(row.Cells, model.TimeCell{Date: date, Time: clock, Slot: idx[cellKey{date, clock}]})
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

// Day has one cell per half hour across the working hours.
func (g *Generator) Day(focus time.Time, slots []*model.AvailabilitySlot) model.DayGrid {
	focus = DateOf(focus)
	date := FormatDate(focus)
	grid := model.DayGrid{Date: date, Label: focus.Format("Monday, January 2, 2006")}

	idx := indexByCell(slots)
	for h := g.hours.Start; h <= g.hours.End; h++ {
		for _, m := range []int{0, 30} {
			clock := fmt.Sprintf("%02d:%02d", h, m)
			grid.Cells = append(grid.Cells, model.TimeCell{Date: date, Time: clock, Slot: idx[cellKey{date, clock}]})
		}
	}
	return grid
}

// Advance moves the focus by one unit of the view. Month steps clamp the day
// to the last day of the target month.
func Advance(focus time.Time, view View, dir Direction) time.Time {
	focus = DateOf(focus)
	switch view {
	case ViewMonth:
		target := time.Date(focus.Year(), focus.Month()+time.Month(dir), 1, 0, 0, 0, 0, time.UTC)
		day := focus.Day()
		if last := daysIn(target.Year(), target.Month()); day > last {
			day = last
		}
		return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, time.UTC)
	case ViewWeek:
		return focus.AddDate(0, 0, 7*int(dir))
	default:
		return focus.AddDate(0, 0, int(dir))
	}
}

// Today truncates now to its calendar date.
func Today(now time.Time) time.Time {
	return DateOf(now)
}

// Navigate resolves a prev/next/today action into a new focus date.
func Navigate(focus time.Time, view View, direction string, now time.Time) (time.Time, error) {
	switch direction {
	case "prev":
		return Advance(focus, view, Prev), nil
	case "next":
		return Advance(focus, view, Next), nil
	case "today":
		return Today(now), nil
	default:
		return time.Time{}, fmt.Errorf("unknown direction %q", direction)
	}
}

func WeekStart(t time.Time) time.Time {
	t = DateOf(t)
	return t.AddDate(0, 0, -int(t.Weekday()))
}

// DateOf drops the clock and zone, keeping the wall-clock date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(model.DateLayout)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

type cellKey struct {
	date string
	time string
}

// indexByCell keeps the earliest slot per (date, startTime).
func indexByCell(slots []*model.AvailabilitySlot) map[cellKey]*model.AvailabilitySlot {
	idx := make(map[cellKey]*model.AvailabilitySlot, len(slots))
	for _, s := range slots {
		k := cellKey{s.Date, s.StartTime}
		if _, ok := idx[k]; !ok {
			idx[k] = s
		}
	}
	return idx
}

func groupByDate(slots []*model.AvailabilitySlot) map[string][]*model.AvailabilitySlot {
	out := make(map[string][]*model.AvailabilitySlot)
	for _, s := range slots {
		out[s.Date] = append(out[s.Date], s)
	}
	return out
}
