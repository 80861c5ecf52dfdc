package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/availability-api/internal/model"
	"github.com/jwalitptl/availability-api/internal/repository"
)

var slotRowColumns = []string{
	"id", "date", "start_time", "end_time", "type", "status",
	"duration", "timezone", "recurrence", "recurrence_end_date",
	"max_appointments", "location", "pricing", "tags", "notes", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (repository.SlotRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSlotRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func slotRow(rows *sqlmock.Rows, id uuid.UUID, start string) *sqlmock.Rows {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return rows.AddRow(
		id.String(), "2024-01-15", start, "10:00", "consultation", "available",
		60, "UTC", "none", "",
		1, []byte(`{"type":"video","address":"","room":""}`), []byte(`{"fee":50,"currency":"USD","accepts_insurance":true}`),
		[]byte(`["new-patient"]`), "", now, now,
	)
}

func TestSlotRepository_Add(t *testing.T) {
	repo, mock := newMockRepo(t)

	slot := &model.AvailabilitySlot{SlotForm: model.SlotForm{
		Date: "2024-01-15", StartTime: "09:00", EndTime: "10:00",
		Type: model.SlotTypeConsultation, Status: model.SlotStatusAvailable,
		Duration: 60, Recurrence: model.RecurrenceNone, MaxAppointments: 1,
		Tags: model.Tags{"a", "a"},
	}}

	mock.ExpectExec("INSERT INTO availability_slots").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Add(context.Background(), slot))
	assert.NotEqual(t, uuid.Nil, slot.ID)
	assert.Equal(t, model.Tags{"a"}, slot.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepository_AddError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO availability_slots").
		WillReturnError(errors.New("connection reset"))

	err := repo.Add(context.Background(), &model.AvailabilitySlot{})
	assert.ErrorContains(t, err, "failed to create slot")
}

func TestSlotRepository_Get(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM availability_slots WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(slotRow(sqlmock.NewRows(slotRowColumns), id, "09:00"))

	slot, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, slot.ID)
	assert.Equal(t, "2024-01-15", slot.Date)
	assert.Equal(t, model.LocationVideo, slot.Location.Type)
	assert.Equal(t, 50.0, slot.Pricing.Fee)
	assert.Equal(t, model.Tags{"new-patient"}, slot.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepository_GetNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM availability_slots").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrSlotNotFound)
}

func TestSlotRepository_FindByDateAndTimeOrdersBySeq(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery("ORDER BY seq ASC\\s+LIMIT 1").
		WithArgs("2024-01-15", "09:00").
		WillReturnRows(slotRow(sqlmock.NewRows(slotRowColumns), id, "09:00"))

	slot, err := repo.FindByDateAndTime(context.Background(), "2024-01-15", "09:00")
	require.NoError(t, err)
	assert.Equal(t, id, slot.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepository_UpdateNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE availability_slots").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), uuid.New(), model.SlotForm{})
	assert.ErrorIs(t, err, repository.ErrSlotNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepository_Update(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE availability_slots").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM availability_slots WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(slotRow(sqlmock.NewRows(slotRowColumns), id, "09:00"))
	mock.ExpectCommit()

	slot, err := repo.Update(context.Background(), id, model.SlotForm{Date: "2024-01-15"})
	require.NoError(t, err)
	assert.Equal(t, id, slot.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepository_RemoveMany(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM availability_slots WHERE id = ANY").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.RemoveMany(context.Background(), []uuid.UUID{uuid.New(), uuid.New(), uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.RemoveMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepository_ListBuildsFilter(t *testing.T) {
	repo, mock := newMockRepo(t)
	a, b := uuid.New(), uuid.New()

	rows := sqlmock.NewRows(slotRowColumns)
	slotRow(rows, a, "09:00")
	slotRow(rows, b, "09:00")

	mock.ExpectQuery("date >= \\$1 AND date <= \\$2 AND status = ANY\\(\\$3\\) AND tags \\? \\$4 ORDER BY seq ASC").
		WillReturnRows(rows)

	slots, err := repo.List(context.Background(), &model.SlotFilter{
		DateRange: model.DateRange{From: "2024-01-01", To: "2024-01-31"},
		Statuses:  []model.SlotStatus{model.SlotStatusAvailable},
		Tag:       "new-patient",
	})
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, a, slots[0].ID)
	assert.Equal(t, b, slots[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
