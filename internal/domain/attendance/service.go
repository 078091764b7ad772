package attendance

import (
	"context"

	"github.com/edigital/workdesk-backend/internal/domain/user"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// PunchIn runs the admission checks and opens a session
	PunchIn(ctx context.Context, req PunchRequest) (PunchInResponse, error)

	// PunchOut runs the admission checks and closes the latest open session
	PunchOut(ctx context.Context, req PunchRequest) (PunchOutResponse, error)

	// GetMyAttendance returns the caller's session history
	GetMyAttendance(ctx context.Context, filter MyAttendanceFilter) (MyAttendanceResponse, error)

	// AdminMark opens a session for any user without admission checks
	AdminMark(ctx context.Context, req AdminMarkRequest) (AdminMarkResponse, error)

	// AdminMarkOut closes a session for any user without admission checks
	AdminMarkOut(ctx context.Context, req AdminMarkOutRequest) (AdminMarkOutResponse, error)

	// ListAttendance retrieves all records with an optional user filter (admin)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	UnblockUser(ctx context.Context, userID string) (user.UnblockUserResponse, error)
	ListBlockedUsers(ctx context.Context, filter user.BlockedUserFilter) (user.ListBlockedUsersResponse, error)

	// AdmissionSettings echoes the effective admission rules
	AdmissionSettings(ctx context.Context) AdmissionSettingsResponse
}
