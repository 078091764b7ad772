package user

import (
	"github.com/edigital/workdesk-backend/internal/pkg/validator"
)

// BlockedUserFilter drives the admin listing of locked-out users.
type BlockedUserFilter struct {
	Search *string `json:"q,omitempty"` // matches email or full name, case-insensitive
	Limit  int     `json:"limit" validate:"gte=1,lte=1000"`
	Offset int     `json:"offset" validate:"gte=0"`
}

func (f *BlockedUserFilter) Validate() error {
	if f.Limit == 0 {
		f.Limit = 50 // Default limit
	}
	if errs := validator.Struct(f); errs != nil {
		return errs
	}
	return nil
}

type BlockedUserResponse struct {
	ID                       string `json:"id"`
	FullName                 string `json:"full_name"`
	Email                    string `json:"email"`
	Role                     string `json:"role"`
	FailedAttendanceAttempts int    `json:"failed_attendance_attempts"`
	IsBlocked                bool   `json:"is_blocked"`
}

type ListBlockedUsersResponse struct {
	TotalBlocked int64                 `json:"total_blocked"`
	Count        int                   `json:"count"`
	Offset       int                   `json:"offset"`
	Limit        int                   `json:"limit"`
	Users        []BlockedUserResponse `json:"users"`
}

type UnblockUserResponse struct {
	Message        string `json:"message"`
	UserID         string `json:"user_id"`
	IsBlocked      bool   `json:"is_blocked"`
	FailedAttempts int    `json:"failed_attempts"`
}
