package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type inner struct {
	Kind string `json:"kind" validate:"required,oneof=a b"`
}

type sample struct {
	Day   string `json:"day" validate:"required,isodate"`
	At    string `json:"at" validate:"required,hhmm"`
	Count int    `json:"count" validate:"gte=1"`
	Inner inner  `json:"inner"`
}

func TestValidator_Messages(t *testing.T) {
	v := New()

	ok := sample{Day: "2024-02-29", At: "23:59", Count: 1, Inner: inner{Kind: "a"}}
	assert.NoError(t, v.Validate(ok))
	assert.Empty(t, v.Messages(ok))

	bad := sample{Day: "2023-02-29", At: "24:00", Count: 0, Inner: inner{Kind: "c"}}
	assert.Error(t, v.Validate(bad))
	assert.Equal(t, []string{
		"day must be a date in YYYY-MM-DD format",
		"at must be a time in HH:MM format",
		"count must be at least 1",
		"inner.kind must be one of: a, b",
	}, v.Messages(bad))
}

func TestIsClock(t *testing.T) {
	tests := map[string]bool{
		"00:00": true,
		"09:30": true,
		"23:59": true,
		"9:30":  false,
		"24:00": false,
		"12:60": false,
		"":      false,
	}
	for in, want := range tests {
		assert.Equal(t, want, IsClock(in), in)
	}
}

func TestIsDate(t *testing.T) {
	assert.True(t, IsDate("2024-01-31"))
	assert.False(t, IsDate("2024-1-31"))
	assert.False(t, IsDate("2024-02-30"))
}
