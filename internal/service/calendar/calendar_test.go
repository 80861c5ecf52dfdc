package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/availability-api/internal/model"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func slot(date, start, notes string) *model.AvailabilitySlot {
	return &model.AvailabilitySlot{SlotForm: model.SlotForm{
		Date:       date,
		StartTime:  start,
		EndTime:    "23:00",
		Status:     model.SlotStatusAvailable,
		Recurrence: model.RecurrenceNone,
		Notes:      notes,
	}}
}

func TestMonth_Layout(t *testing.T) {
	g := NewGenerator(DefaultWorkingHours())

	tests := []struct {
		focus     string
		firstCell string
		offset    int
	}{
		{"2024-01-15", "2023-12-31", 1},
		{"2024-09-10", "2024-09-01", 0},
		{"2024-06-30", "2024-05-26", 6},
		{"2026-02-01", "2026-02-01", 0},
	}

	for _, tt := range tests {
		t.Run(tt.focus, func(t *testing.T) {
			grid := g.Month(date(t, tt.focus), nil, date(t, "2000-01-01"))
			require.Len(t, grid.Cells, 42)
			assert.Equal(t, tt.firstCell, grid.Cells[0].Date)
			assert.Equal(t, 1, grid.Cells[tt.offset].Day)
			assert.True(t, grid.Cells[tt.offset].IsCurrentMonth)
			if tt.offset > 0 {
				assert.False(t, grid.Cells[tt.offset-1].IsCurrentMonth)
			}
		})
	}
}

func TestMonth_JanuaryExample(t *testing.T) {
	g := NewGenerator(DefaultWorkingHours())

	slots := []*model.AvailabilitySlot{
		slot("2024-01-15", "09:00", "a"),
		slot("2024-01-15", "10:00", "b"),
		slot("2024-01-15", "11:00", "c"),
		slot("2024-01-15", "12:00", "d"),
		slot("2024-01-15", "13:00", "e"),
	}
	grid := g.Month(date(t, "2024-01-15"), slots, date(t, "2024-01-15"))

	assert.Equal(t, "January 2024", grid.Label)
	assert.Equal(t, "2023-12-31", grid.Cells[0].Date)
	assert.False(t, grid.Cells[0].IsCurrentMonth)
	assert.Equal(t, "2024-01-01", grid.Cells[1].Date)

	cell := grid.Cells[15]
	assert.Equal(t, "2024-01-15", cell.Date)
	assert.True(t, cell.IsToday)
	require.Len(t, cell.Slots, 3)
	assert.Equal(t, "a", cell.Slots[0].Notes)
	assert.Equal(t, "c", cell.Slots[2].Notes)
	assert.Equal(t, 2, cell.MoreCount)

	today := 0
	for _, c := range grid.Cells {
		if c.IsToday {
			today++
		}
	}
	assert.Equal(t, 1, today)
}

func TestWeek_Grid(t *testing.T) {
	g := NewGenerator(DefaultWorkingHours())

	slots := []*model.AvailabilitySlot{
		slot("2024-01-17", "09:00", "first"),
		slot("2024-01-17", "09:00", "second"),
		slot("2024-01-17", "09:30", "half"),
	}
	grid := g.Week(date(t, "2024-01-17"), slots)

	require.Len(t, grid.Days, 7)
	assert.Equal(t, "2024-01-14", grid.Days[0])
	assert.Equal(t, "2024-01-20", grid.Days[6])
	require.Len(t, grid.Rows, 11)
	assert.Equal(t, "08:00", grid.Rows[0].Time)
	assert.Equal(t, "8:00 AM", grid.Rows[0].Label)
	assert.Equal(t, "18:00", grid.Rows[10].Time)

	filled := 0
	for _, row := range grid.Rows {
		require.Len(t, row.Cells, 7)
		for _, c := range row.Cells {
			if c.Slot != nil {
				filled++
			}
		}
	}
	assert.Equal(t, 1, filled)
	assert.Equal(t, "first", grid.Rows[1].Cells[3].Slot.Notes)
}

func TestDay_Grid(t *testing.T) {
	g := NewGenerator(DefaultWorkingHours())

	slots := []*model.AvailabilitySlot{
		slot("2024-01-15", "09:30", "half"),
		slot("2024-01-15", "09:15", "quarter"),
		slot("2024-01-16", "09:30", "other day"),
	}
	grid := g.Day(date(t, "2024-01-15"), slots)

	require.Len(t, grid.Cells, 22)
	assert.Equal(t, "08:00", grid.Cells[0].Time)
	assert.Equal(t, "18:30", grid.Cells[21].Time)
	assert.Equal(t, "Monday, January 15, 2024", grid.Label)

	filled := 0
	for _, c := range grid.Cells {
		if c.Slot != nil {
			filled++
			assert.Equal(t, "half", c.Slot.Notes)
		}
	}
	assert.Equal(t, 1, filled)
}

func TestGenerator_CustomHours(t *testing.T) {
	g := NewGenerator(WorkingHours{Start: 7, End: 19})
	assert.Len(t, g.Week(date(t, "2024-01-15"), nil).Rows, 13)
	assert.Len(t, g.Day(date(t, "2024-01-15"), nil).Cells, 26)
}

func TestRender(t *testing.T) {
	g := NewGenerator(DefaultWorkingHours())
	focus := date(t, "2024-01-15")

	out, err := g.Render(ViewMonth, focus, nil, focus)
	require.NoError(t, err)
	assert.IsType(t, model.MonthGrid{}, out)

	out, err = g.Render(ViewWeek, focus, nil, focus)
	require.NoError(t, err)
	assert.IsType(t, model.WeekGrid{}, out)

	out, err = g.Render(ViewDay, focus, nil, focus)
	require.NoError(t, err)
	assert.IsType(t, model.DayGrid{}, out)

	_, err = g.Render(View("year"), focus, nil, focus)
	assert.Error(t, err)

	_, err = ParseView("year")
	assert.Error(t, err)
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name  string
		focus string
		view  View
		dir   Direction
		want  string
	}{
		{"month next", "2024-01-15", ViewMonth, Next, "2024-02-15"},
		{"month clamps", "2024-01-31", ViewMonth, Next, "2024-02-29"},
		{"month prev year", "2024-01-10", ViewMonth, Prev, "2023-12-10"},
		{"week next", "2024-01-15", ViewWeek, Next, "2024-01-22"},
		{"week prev", "2024-01-03", ViewWeek, Prev, "2023-12-27"},
		{"day next", "2024-02-28", ViewDay, Next, "2024-02-29"},
		{"day prev", "2024-03-01", ViewDay, Prev, "2024-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(Advance(date(t, tt.focus), tt.view, tt.dir)))
		})
	}
}

func TestAdvance_TwelveMonthsFromThe31st(t *testing.T) {
	focus := date(t, "2024-01-31")
	want := []string{
		"2024-02-29", "2024-03-29", "2024-04-29", "2024-05-29", "2024-06-29", "2024-07-29",
		"2024-08-29", "2024-09-29", "2024-10-29", "2024-11-29", "2024-12-29", "2025-01-29",
	}
	for i, w := range want {
		focus = Advance(focus, ViewMonth, Next)
		assert.Equal(t, w, FormatDate(focus), "step %d", i+1)
	}
}

func TestAdvance_TwelveMonthsReturnsToSameMonth(t *testing.T) {
	for _, start := range []string{"2024-01-15", "2023-05-01", "2024-11-28"} {
		focus := date(t, start)
		for i := 0; i < 12; i++ {
			focus = Advance(focus, ViewMonth, Next)
		}
		orig := date(t, start)
		assert.Equal(t, orig.Year()+1, focus.Year())
		assert.Equal(t, orig.Month(), focus.Month())
	}
}

func TestNavigate(t *testing.T) {
	now := time.Date(2024, 3, 9, 17, 45, 0, 0, time.UTC)
	focus := date(t, "2024-01-15")

	got, err := Navigate(focus, ViewWeek, "next", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-22", FormatDate(got))

	got, err = Navigate(focus, ViewMonth, "today", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09", FormatDate(got))
	assert.Zero(t, got.Hour())

	_, err = Navigate(focus, ViewDay, "sideways", now)
	assert.Error(t, err)
}
