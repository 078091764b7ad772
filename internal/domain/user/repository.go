package user

import (
	"context"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	// UpdateAttendanceLock persists the lockout flag and consecutive failure counter.
	UpdateAttendanceLock(ctx context.Context, id string, isBlocked bool, failedAttempts int) error
	ListBlocked(ctx context.Context, filter BlockedUserFilter) ([]User, int64, error)
}
