package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/edigital/workdesk-backend/internal/domain/user"
	"github.com/edigital/workdesk-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `id, full_name, email, role, is_active, is_blocked, failed_attendance_attempts, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.Role,
		&u.IsActive,
		&u.IsBlocked,
		&u.FailedAttendanceAttempts,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// UpdateAttendanceLock implements user.UserRepository.
func (r *userRepositoryImpl) UpdateAttendanceLock(ctx context.Context, id string, isBlocked bool, failedAttempts int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET is_blocked = $2, failed_attendance_attempts = $3, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, isBlocked, failedAttempts)
	if err != nil {
		return fmt.Errorf("failed to update attendance lock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// ListBlocked implements user.UserRepository.
func (r *userRepositoryImpl) ListBlocked(ctx context.Context, filter user.BlockedUserFilter) ([]user.User, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "is_blocked = TRUE"
	args := []interface{}{}
	argIdx := 1

	if filter.Search != nil && *filter.Search != "" {
		baseWhere += fmt.Sprintf(` AND (email ILIKE $%d ESCAPE '\' OR full_name ILIKE $%d ESCAPE '\')`, argIdx, argIdx)
		args = append(args, "%"+escapeLike(*filter.Search)+"%")
		argIdx++
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM users WHERE ` + baseWhere
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count blocked users: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY failed_attendance_attempts DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, userColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query blocked users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating users: %w", err)
	}

	return users, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
