package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	ErrAttendanceNotFound  = errors.New("attendance record not found")
	ErrUserBlocked         = errors.New("your account is blocked due to multiple failed attempts, contact admin")
	ErrAdmissionDenied     = errors.New("attendance admission denied")
	ErrUserClaimMissing    = errors.New("user_id claim is missing or invalid")
	ErrInvalidPunchOutTime = errors.New("invalid punch_out_time format, use ISO format")
)

// AdmissionDeniedError is returned when the network, location or IP checks fail.
// The failure has already been counted against the user when this is returned.
type AdmissionDeniedError struct {
	Reason    string
	Blocked   bool
	Limit     int
	Remaining int
}

func (e *AdmissionDeniedError) Error() string {
	if e.Blocked {
		return fmt.Sprintf("%s You have been blocked after %d failed attempts.", e.Reason, e.Limit)
	}
	return fmt.Sprintf("%s Attempts left: %d", e.Reason, e.Remaining)
}

func (e *AdmissionDeniedError) Unwrap() error {
	return ErrAdmissionDenied
}
