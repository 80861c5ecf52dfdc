package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/availability-api/internal/model"
	"github.com/jwalitptl/availability-api/internal/repository"
)

const slotColumns = `
	id, to_char(date, 'YYYY-MM-DD') AS date, start_time, end_time, type, status,
	duration, timezone, recurrence,
	COALESCE(to_char(recurrence_end_date, 'YYYY-MM-DD'), '') AS recurrence_end_date,
	max_appointments, location, pricing, tags, notes, created_at, updated_at`

type slotRepository struct {
	db *sqlx.DB
}

func NewSlotRepository(db *sqlx.DB) repository.SlotRepository {
	return &slotRepository{db: db}
}

func (r *slotRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *slotRepository) Add(ctx context.Context, slot *model.AvailabilitySlot) error {
	query := `
		INSERT INTO availability_slots (
			id, date, start_time, end_time, type, status,
			duration, timezone, recurrence, recurrence_end_date,
			max_appointments, location, pricing, tags, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, '')::date, $11, $12, $13, $14, $15, $16, $17)
	`
	now := time.Now().UTC()
	slot.ID = model.NewSlotID()
	slot.CreatedAt = now
	slot.UpdatedAt = now
	slot.Tags = slot.Tags.Normalize()

	_, err := r.db.ExecContext(ctx, query,
		slot.ID,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.Type,
		slot.Status,
		slot.Duration,
		slot.Timezone,
		slot.Recurrence,
		slot.RecurrenceEndDate,
		slot.MaxAppointments,
		slot.Location,
		slot.Pricing,
		slot.Tags,
		slot.Notes,
		slot.CreatedAt,
		slot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create slot: %w", err)
	}
	return nil
}

func (r *slotRepository) Update(ctx context.Context, id uuid.UUID, form model.SlotForm) (*model.AvailabilitySlot, error) {
	query := `
		UPDATE availability_slots
		SET date = $1, start_time = $2, end_time = $3, type = $4, status = $5,
			duration = $6, timezone = $7, recurrence = $8, recurrence_end_date = NULLIF($9, '')::date,
			max_appointments = $10, location = $11, pricing = $12, tags = $13, notes = $14,
			updated_at = $15
		WHERE id = $16
	`
	form.Tags = form.Tags.Normalize()

	var updated model.AvailabilitySlot
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			form.Date,
			form.StartTime,
			form.EndTime,
			form.Type,
			form.Status,
			form.Duration,
			form.Timezone,
			form.Recurrence,
			form.RecurrenceEndDate,
			form.MaxAppointments,
			form.Location,
			form.Pricing,
			form.Tags,
			form.Notes,
			time.Now().UTC(),
			id,
		)
		if err != nil {
			return fmt.Errorf("failed to update slot: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrSlotNotFound
		}

		if err := tx.GetContext(ctx, &updated, `SELECT `+slotColumns+` FROM availability_slots WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to reload slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *slotRepository) RemoveMany(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM availability_slots WHERE id = ANY($1::uuid[])`, pq.Array(keys))
	if err != nil {
		return 0, fmt.Errorf("failed to delete slots: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rows), nil
}

func (r *slotRepository) Get(ctx context.Context, id uuid.UUID) (*model.AvailabilitySlot, error) {
	var slot model.AvailabilitySlot
	err := r.db.GetContext(ctx, &slot, `SELECT `+slotColumns+` FROM availability_slots WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return &slot, nil
}

func (r *slotRepository) FindByDate(ctx context.Context, date string) ([]*model.AvailabilitySlot, error) {
	return r.List(ctx, &model.SlotFilter{DateRange: model.DateRange{From: date, To: date}})
}

func (r *slotRepository) FindByDateAndTime(ctx context.Context, date, startTime string) (*model.AvailabilitySlot, error) {
	query := `SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE date = $1 AND start_time = $2
		ORDER BY seq ASC
		LIMIT 1
	`
	var slot model.AvailabilitySlot
	err := r.db.GetContext(ctx, &slot, query, date, startTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}
	return &slot, nil
}

func (r *slotRepository) List(ctx context.Context, filter *model.SlotFilter) ([]*model.AvailabilitySlot, error) {
	query := `SELECT ` + slotColumns + ` FROM availability_slots WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filter != nil {
		if filter.From != "" {
			query += fmt.Sprintf(" AND date >= $%d", argCount)
			args = append(args, filter.From)
			argCount++
		}
		if filter.To != "" {
			query += fmt.Sprintf(" AND date <= $%d", argCount)
			args = append(args, filter.To)
			argCount++
		}
		if len(filter.Statuses) > 0 {
			statuses := make([]string, len(filter.Statuses))
			for i, s := range filter.Statuses {
				statuses[i] = string(s)
			}
			query += fmt.Sprintf(" AND status = ANY($%d)", argCount)
			args = append(args, pq.Array(statuses))
			argCount++
		}
		if len(filter.Types) > 0 {
			types := make([]string, len(filter.Types))
			for i, t := range filter.Types {
				types[i] = string(t)
			}
			query += fmt.Sprintf(" AND type = ANY($%d)", argCount)
			args = append(args, pq.Array(types))
			argCount++
		}
		if filter.Tag != "" {
			query += fmt.Sprintf(" AND tags ? $%d", argCount)
			args = append(args, filter.Tag)
			argCount++
		}
	}

	query += " ORDER BY seq ASC"

	slots := []*model.AvailabilitySlot{}
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return slots, nil
}
