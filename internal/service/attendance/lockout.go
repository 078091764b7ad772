package attendance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edigital/workdesk-backend/internal/domain/attendance"
	"github.com/edigital/workdesk-backend/internal/domain/user"
)

// Lockout tracks consecutive admission failures and blocks users at the limit.
type Lockout struct {
	users user.UserRepository
	limit int
}

func NewLockout(users user.UserRepository, limit int) *Lockout {
	return &Lockout{users: users, limit: limit}
}

// RecordFailure counts a denied attempt and returns the client-facing
// *attendance.AdmissionDeniedError. A store failure is returned instead.
func (l *Lockout) RecordFailure(ctx context.Context, u *user.User, reason string) error {
	u.FailedAttendanceAttempts++
	if u.FailedAttendanceAttempts >= l.limit {
		u.IsBlocked = true
	}

	if err := l.users.UpdateAttendanceLock(ctx, u.ID, u.IsBlocked, u.FailedAttendanceAttempts); err != nil {
		return fmt.Errorf("failed to record failed attendance attempt: %w", err)
	}

	if u.IsBlocked {
		slog.Warn("User blocked after failed attendance attempts",
			"user_id", u.ID, "failed_attempts", u.FailedAttendanceAttempts, "reason", reason)
	} else {
		slog.Info("Attendance admission denied",
			"user_id", u.ID, "failed_attempts", u.FailedAttendanceAttempts, "reason", reason)
	}

	return &attendance.AdmissionDeniedError{
		Reason:    reason,
		Blocked:   u.IsBlocked,
		Limit:     l.limit,
		Remaining: max(0, l.limit-u.FailedAttendanceAttempts),
	}
}

// RecordSuccess resets the failure counter after an admitted punch.
func (l *Lockout) RecordSuccess(ctx context.Context, u *user.User) error {
	u.FailedAttendanceAttempts = 0
	if err := l.users.UpdateAttendanceLock(ctx, u.ID, u.IsBlocked, 0); err != nil {
		return fmt.Errorf("failed to reset failed attendance attempts: %w", err)
	}
	return nil
}

// Unblock clears the lock and counter. Calling it on an unblocked user is a no-op in effect.
func (l *Lockout) Unblock(ctx context.Context, u *user.User) error {
	u.IsBlocked = false
	u.FailedAttendanceAttempts = 0
	if err := l.users.UpdateAttendanceLock(ctx, u.ID, false, 0); err != nil {
		return fmt.Errorf("failed to unblock user: %w", err)
	}
	slog.Info("User unblocked for attendance", "user_id", u.ID)
	return nil
}
