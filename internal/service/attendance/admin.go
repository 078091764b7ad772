package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/edigital/workdesk-backend/internal/domain/attendance"
	"github.com/edigital/workdesk-backend/internal/domain/user"
)

// AdminMark implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) AdminMark(ctx context.Context, req attendance.AdminMarkRequest) (attendance.AdminMarkResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AdminMarkResponse{}, err
	}

	target, err := s.targetUser(ctx, req.UserID)
	if err != nil {
		return attendance.AdminMarkResponse{}, err
	}

	now := s.now()
	record, err := s.ledger.PunchIn(ctx, target.ID, attendance.PunchMark{
		Time:      &now,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		SSID:      req.SSID,
	}, noteOr(req.Note, "admin-mark"))
	if err != nil {
		return attendance.AdminMarkResponse{}, fmt.Errorf("failed to mark attendance: %w", err)
	}

	slog.Info("Attendance marked by admin", "user_id", target.ID, "attendance_id", record.ID)

	return attendance.AdminMarkResponse{
		Message:      "Marked",
		AttendanceID: record.ID,
	}, nil
}

// AdminMarkOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) AdminMarkOut(ctx context.Context, req attendance.AdminMarkOutRequest) (attendance.AdminMarkOutResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AdminMarkOutResponse{}, err
	}

	target, err := s.targetUser(ctx, req.UserID)
	if err != nil {
		return attendance.AdminMarkOutResponse{}, err
	}

	at := s.now()
	if req.PunchOutAt != nil {
		at = *req.PunchOutAt
	}

	mark := attendance.PunchMark{
		Time:      &at,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if req.SSID != nil && *req.SSID != "" {
		mark.SSID = req.SSID
	}
	if req.IP != nil && *req.IP != "" {
		mark.IP = req.IP
	}

	var targetID *string
	if req.AttendanceID != nil && *req.AttendanceID != "" {
		targetID = req.AttendanceID
	}

	var closure Closure
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		closure, err = s.ledger.PunchOut(ctx, CloseRequest{
			UserID:   target.ID,
			Mark:     mark,
			Note:     req.Note,
			TargetID: targetID,
			By:       ActorAdmin,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AdminMarkOutResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AdminMarkOutResponse{}, fmt.Errorf("failed to record admin punch-out: %w", err)
	}

	message := "Attendance updated with punch-out (admin)"
	if closure.Fallback {
		message = "Punch-out recorded as new record (admin fallback)"
	}

	slog.Info("Attendance punch-out by admin", "user_id", target.ID, "attendance_id", closure.Record.ID, "fallback", closure.Fallback)

	return attendance.AdminMarkOutResponse{
		Message:         message,
		AttendanceID:    closure.Record.ID,
		PunchInTime:     attendance.FormatTimestamp(closure.PunchIn),
		PunchOutTime:    attendance.FormatTimestamp(closure.PunchOut),
		DurationSeconds: closure.DurationSeconds(),
	}, nil
}

// ListAttendance implements attendance.AttendanceService.
// The aggregate covers only the returned page.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := s.ledger.ListRecords(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	var pageSeconds int64
	responses := make([]attendance.AttendanceRecordResponse, 0, len(records))
	for _, r := range records {
		duration := r.DurationSeconds()
		if duration != nil {
			pageSeconds += *duration
		}
		responses = append(responses, attendance.AttendanceRecordResponse{
			ID:              r.ID,
			UserID:          r.UserID,
			PunchInTime:     attendance.FormatTimestamp(r.In.Time),
			PunchOutTime:    attendance.FormatTimestamp(r.Out.Time),
			DurationSeconds: duration,
			Duration:        attendance.FormatDuration(duration),
			PunchInLat:      r.In.Latitude,
			PunchInLng:      r.In.Longitude,
			PunchOutLat:     r.Out.Latitude,
			PunchOutLng:     r.Out.Longitude,
			Latitude:        r.Legacy.Latitude,
			Longitude:       r.Legacy.Longitude,
			PunchInIP:       r.In.IP,
			PunchOutIP:      r.Out.IP,
			PunchInSSID:     r.In.SSID,
			PunchOutSSID:    r.Out.SSID,
			SSID:            r.Legacy.SSID,
			Note:            r.Note,
			CreatedAt:       *attendance.FormatTimestamp(&r.CreatedAt),
		})
	}

	return attendance.ListAttendanceResponse{
		Total:            total,
		Count:            len(responses),
		Offset:           filter.Offset,
		Limit:            filter.Limit,
		TotalWorkSeconds: pageSeconds,
		TotalWorkTime:    attendance.FormatTotal(pageSeconds),
		Records:          responses,
	}, nil
}

// UnblockUser implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UnblockUser(ctx context.Context, userID string) (user.UnblockUserResponse, error) {
	target, err := s.targetUser(ctx, userID)
	if err != nil {
		return user.UnblockUserResponse{}, err
	}

	if err := s.lockout.Unblock(ctx, &target); err != nil {
		return user.UnblockUserResponse{}, err
	}

	return user.UnblockUserResponse{
		Message:        fmt.Sprintf("User %s has been unblocked", target.Email),
		UserID:         target.ID,
		IsBlocked:      target.IsBlocked,
		FailedAttempts: target.FailedAttendanceAttempts,
	}, nil
}

// ListBlockedUsers implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListBlockedUsers(ctx context.Context, filter user.BlockedUserFilter) (user.ListBlockedUsersResponse, error) {
	if err := filter.Validate(); err != nil {
		return user.ListBlockedUsersResponse{}, err
	}

	users, total, err := s.UserRepository.ListBlocked(ctx, filter)
	if err != nil {
		return user.ListBlockedUsersResponse{}, fmt.Errorf("failed to list blocked users: %w", err)
	}

	responses := make([]user.BlockedUserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, user.BlockedUserResponse{
			ID:                       u.ID,
			FullName:                 u.FullName,
			Email:                    u.Email,
			Role:                     string(u.Role),
			FailedAttendanceAttempts: u.FailedAttendanceAttempts,
			IsBlocked:                u.IsBlocked,
		})
	}

	return user.ListBlockedUsersResponse{
		TotalBlocked: total,
		Count:        len(responses),
		Offset:       filter.Offset,
		Limit:        filter.Limit,
		Users:        responses,
	}, nil
}

func (s *AttendanceServiceImpl) targetUser(ctx context.Context, userID string) (user.User, error) {
	u, err := s.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}
