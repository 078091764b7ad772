package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/edigital/workdesk-backend/internal/domain/attendance"
	"github.com/edigital/workdesk-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const pairedColumns = `
	id, user_id, date,
	punch_in_time, punch_in_lat, punch_in_lng, punch_in_ssid, punch_in_ip,
	punch_out_time, punch_out_lat, punch_out_lng, punch_out_ssid, punch_out_ip,
	latitude, longitude, ssid,
	note, created_at, updated_at`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.SessionRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.UserID, &att.Date,
		&att.In.Time, &att.In.Latitude, &att.In.Longitude, &att.In.SSID, &att.In.IP,
		&att.Out.Time, &att.Out.Latitude, &att.Out.Longitude, &att.Out.SSID, &att.Out.IP,
		&att.Legacy.Latitude, &att.Legacy.Longitude, &att.Legacy.SSID,
		&att.Note, &att.CreatedAt, &att.UpdatedAt,
	)
	return att, err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			id, user_id, date,
			punch_in_time, punch_in_lat, punch_in_lng, punch_in_ssid, punch_in_ip,
			punch_out_time, punch_out_lat, punch_out_lng, punch_out_ssid, punch_out_ip,
			note
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.ID,
		newAttendance.UserID,
		newAttendance.Date,
		newAttendance.In.Time,
		newAttendance.In.Latitude,
		newAttendance.In.Longitude,
		newAttendance.In.SSID,
		newAttendance.In.IP,
		newAttendance.Out.Time,
		newAttendance.Out.Latitude,
		newAttendance.Out.Longitude,
		newAttendance.Out.SSID,
		newAttendance.Out.IP,
		newAttendance.Note,
	).Scan(&newAttendance.CreatedAt, &newAttendance.UpdatedAt)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetByIDForUser implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByIDForUser(ctx context.Context, id string, userID string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + pairedColumns + `
		FROM attendances
		WHERE id = $1 AND user_id = $2
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return att, nil
}

// GetOpenSession implements attendance.SessionRepository.
func (a *attendanceRepository) GetOpenSession(ctx context.Context, userID string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + pairedColumns + `
		FROM attendances
		WHERE user_id = $1
		  AND punch_in_time IS NOT NULL
		  AND punch_out_time IS NULL
		ORDER BY punch_in_time DESC
		LIMIT 1
		FOR UPDATE
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get open session: %w", err)
	}
	return att, nil
}

// Close implements attendance.SessionRepository.
func (a *attendanceRepository) Close(ctx context.Context, att attendance.Attendance, force bool) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	guard := " AND punch_out_time IS NULL"
	if force {
		guard = ""
	}

	query := `
		UPDATE attendances
		SET punch_out_time = $2,
			punch_out_lat = $3,
			punch_out_lng = $4,
			punch_out_ssid = $5,
			punch_out_ip = $6,
			note = $7,
			updated_at = NOW()
		WHERE id = $1` + guard + `
		RETURNING ` + pairedColumns

	closed, err := scanAttendance(q.QueryRow(ctx, query,
		att.ID,
		att.Out.Time,
		att.Out.Latitude,
		att.Out.Longitude,
		att.Out.SSID,
		att.Out.IP,
		att.Note,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to close attendance: %w", err)
	}
	return closed, nil
}

// ListByUser implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByUser(ctx context.Context, userID string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + pairedColumns + `
		FROM attendances
		WHERE user_id = $1
		ORDER BY punch_in_time DESC NULLS LAST, created_at DESC
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	return collectAttendances(rows, scanAttendance)
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	return listAttendances(ctx, GetQuerier(ctx, a.db), pairedColumns, scanAttendance, filter)
}

func collectAttendances(rows pgx.Rows, scan func(pgx.Row) (attendance.Attendance, error)) ([]attendance.Attendance, error) {
	var attendances []attendance.Attendance
	for rows.Next() {
		att, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendances: %w", err)
	}
	return attendances, nil
}

func listAttendances(
	ctx context.Context,
	q database.Querier,
	columns string,
	scan func(pgx.Row) (attendance.Attendance, error),
	filter attendance.AttendanceFilter,
) ([]attendance.Attendance, int64, error) {
	// Build WHERE clause
	baseWhere := "TRUE"
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != nil && *filter.UserID != "" {
		baseWhere += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM attendances WHERE ` + baseWhere
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendances
		WHERE %s
		ORDER BY id DESC
		LIMIT $%d OFFSET $%d
	`, columns, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	attendances, err := collectAttendances(rows, scan)
	if err != nil {
		return nil, 0, err
	}
	return attendances, total, nil
}
