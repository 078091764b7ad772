package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/edigital/workdesk-backend/internal/domain/attendance"
	"github.com/edigital/workdesk-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// Legacy rows hold one punch each; the timestamp lives in punch_in_time.
const legacyColumns = `id, user_id, date, punch_in_time, latitude, longitude, ssid, note, created_at, updated_at`

type legacyAttendanceRepository struct {
	db *database.DB
}

func NewLegacyAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &legacyAttendanceRepository{db: db}
}

func scanLegacyAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.UserID, &att.Date, &att.In.Time,
		&att.Legacy.Latitude, &att.Legacy.Longitude, &att.Legacy.SSID,
		&att.Note, &att.CreatedAt, &att.UpdatedAt,
	)
	return att, err
}

// Create implements attendance.AttendanceRepository.
func (r *legacyAttendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (id, user_id, date, punch_in_time, latitude, longitude, ssid, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.ID,
		newAttendance.UserID,
		newAttendance.Date,
		newAttendance.In.Time,
		newAttendance.Legacy.Latitude,
		newAttendance.Legacy.Longitude,
		newAttendance.Legacy.SSID,
		newAttendance.Note,
	).Scan(&newAttendance.CreatedAt, &newAttendance.UpdatedAt)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetByIDForUser implements attendance.AttendanceRepository.
func (r *legacyAttendanceRepository) GetByIDForUser(ctx context.Context, id string, userID string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + legacyColumns + ` FROM attendances WHERE id = $1 AND user_id = $2`

	att, err := scanLegacyAttendance(q.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return att, nil
}

// ListByUser implements attendance.AttendanceRepository.
func (r *legacyAttendanceRepository) ListByUser(ctx context.Context, userID string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + legacyColumns + `
		FROM attendances
		WHERE user_id = $1
		ORDER BY punch_in_time DESC NULLS LAST, created_at DESC
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	return collectAttendances(rows, scanLegacyAttendance)
}

// List implements attendance.AttendanceRepository.
func (r *legacyAttendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	return listAttendances(ctx, GetQuerier(ctx, r.db), legacyColumns, scanLegacyAttendance, filter)
}
