package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/edigital/workdesk-backend/internal/domain/attendance"
	"github.com/edigital/workdesk-backend/internal/domain/user"
	"github.com/edigital/workdesk-backend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Admission failures carry the remaining attempts
	var denied *attendance.AdmissionDeniedError
	if errors.As(err, &denied) {
		details := map[string]string{
			"remaining_attempts": strconv.Itoa(denied.Remaining),
			"blocked":            strconv.FormatBool(denied.Blocked),
		}
		code := "ADMISSION_DENIED"
		if denied.Blocked {
			code = "ACCOUNT_BLOCKED"
		}
		Denied(w, code, denied.Error(), details)
		return
	}

	switch {
	// User domain errors
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or missing access token")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrUserClaimMissing):
		Unauthorized(w, "Token does not identify a user")
	case errors.Is(err, attendance.ErrUserBlocked):
		Denied(w, "ACCOUNT_BLOCKED", "Your account is blocked due to multiple failed attempts. Contact admin.", nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found for given attendance_id")
	case errors.Is(err, attendance.ErrInvalidPunchOutTime):
		BadRequest(w, "Invalid punch_out_time format. Use ISO format.", nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
