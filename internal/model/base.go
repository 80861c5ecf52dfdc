package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DateRange represents an inclusive date filter
type DateRange struct {
	From string `json:"from" form:"from"`
	To   string `json:"to" form:"to"`
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)
