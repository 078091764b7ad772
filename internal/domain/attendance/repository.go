package attendance

import (
	"context"
)

// AttendanceRepository defines data access methods shared by both row layouts.
type AttendanceRepository interface {
	// Create inserts a record; ID must already be set.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByIDForUser retrieves a record only if it belongs to userID
	GetByIDForUser(ctx context.Context, id string, userID string) (Attendance, error)

	// ListByUser returns every record of a user, newest punch-in first
	ListByUser(ctx context.Context, userID string) ([]Attendance, error)

	// List retrieves records with an optional user filter, ordered by id descending
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)
}

// SessionRepository is implemented by stores that keep both ends of a session on one row.
type SessionRepository interface {
	AttendanceRepository

	// GetOpenSession returns the most recently opened record without a punch-out.
	// Inside a transaction the row stays locked until commit.
	GetOpenSession(ctx context.Context, userID string) (Attendance, error)

	// Close writes the punch-out side and note of an existing record.
	// Only rows without a punch-out are touched unless force is set.
	Close(ctx context.Context, attendance Attendance, force bool) (Attendance, error)
}
