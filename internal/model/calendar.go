package model

// MonthCell is one of the 42 cells of a month grid.
type MonthCell struct {
	Date           string              `json:"date"`
	Day            int                 `json:"day"`
	IsCurrentMonth bool                `json:"is_current_month"`
	IsToday        bool                `json:"is_today"`
	Slots          []*AvailabilitySlot `json:"slots"`
	MoreCount      int                 `json:"more_count"`
}

type MonthGrid struct {
	Label    string      `json:"label"`
	Year     int         `json:"year"`
	Month    int         `json:"month"`
	Weekdays []string    `json:"weekdays"`
	Cells    []MonthCell `json:"cells"`
}

// TimeCell holds at most one slot starting exactly at Time.
type TimeCell struct {
	Date string            `json:"date"`
	Time string            `json:"time"`
	Slot *AvailabilitySlot `json:"slot,omitempty"`
}

type WeekRow struct {
	Time  string     `json:"time"`
	Label string     `json:"label"`
	Cells []TimeCell `json:"cells"`
}

type WeekGrid struct {
	Days []string  `json:"days"`
	Rows []WeekRow `json:"rows"`
}

type DayGrid struct {
	Date  string     `json:"date"`
	Label string     `json:"label"`
	Cells []TimeCell `json:"cells"`
}
