package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/edigital/workdesk-backend/internal/config"
	"github.com/edigital/workdesk-backend/internal/domain/attendance"
	"github.com/edigital/workdesk-backend/internal/domain/user"
	"github.com/edigital/workdesk-backend/internal/pkg/netcheck"
	"github.com/edigital/workdesk-backend/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
)

// Transactor runs fn in a transaction carried by the context handed to fn.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AttendanceServiceImpl struct {
	tx Transactor
	user.UserRepository
	ledger   Ledger
	gate     *Gate
	lockout  *Lockout
	settings config.AttendanceConfig
	now      func() time.Time
}

func NewAttendanceService(
	tx Transactor,
	userRepo user.UserRepository,
	ledger Ledger,
	settings config.AttendanceConfig,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:             tx,
		UserRepository: userRepo,
		ledger:         ledger,
		gate:           NewGate(settings),
		lockout:        NewLockout(userRepo, settings.AttemptLimit),
		settings:       settings,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// PunchIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) PunchIn(ctx context.Context, req attendance.PunchRequest) (attendance.PunchInResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.PunchInResponse{}, err
	}

	u, err := s.currentUser(ctx)
	if err != nil {
		return attendance.PunchInResponse{}, err
	}

	decision, err := s.admit(ctx, &u, req)
	if err != nil {
		return attendance.PunchInResponse{}, err
	}

	now := s.now()
	mark := markFrom(now, req.Latitude, req.Longitude, decision)

	var record attendance.Attendance
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.lockout.RecordSuccess(ctx, &u); err != nil {
			return err
		}
		record, err = s.ledger.PunchIn(ctx, u.ID, mark, noteOr(req.Note, "punch-in"))
		return err
	})
	if err != nil {
		return attendance.PunchInResponse{}, fmt.Errorf("failed to record punch-in: %w", err)
	}

	return attendance.PunchInResponse{
		Message:      "Attendance recorded (punch-in)",
		AttendanceID: record.ID,
		PunchInTime:  *attendance.FormatTimestamp(&now),
		ClientIP:     decision.ClientIP,
	}, nil
}

// PunchOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) PunchOut(ctx context.Context, req attendance.PunchRequest) (attendance.PunchOutResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.PunchOutResponse{}, err
	}

	u, err := s.currentUser(ctx)
	if err != nil {
		return attendance.PunchOutResponse{}, err
	}

	decision, err := s.admit(ctx, &u, req)
	if err != nil {
		return attendance.PunchOutResponse{}, err
	}

	now := s.now()
	var closure Closure
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.lockout.RecordSuccess(ctx, &u); err != nil {
			return err
		}
		closure, err = s.ledger.PunchOut(ctx, CloseRequest{
			UserID: u.ID,
			Mark:   markFrom(now, req.Latitude, req.Longitude, decision),
			Note:   req.Note,
			By:     ActorUser,
		})
		return err
	})
	if err != nil {
		return attendance.PunchOutResponse{}, fmt.Errorf("failed to record punch-out: %w", err)
	}

	message := "Punch-out updated on existing record"
	if closure.Fallback {
		message = "Punch-out recorded as new record (no open punch-in found)"
	}

	return attendance.PunchOutResponse{
		Message:         message,
		AttendanceID:    closure.Record.ID,
		PunchInTime:     attendance.FormatTimestamp(closure.PunchIn),
		PunchOutTime:    attendance.FormatTimestamp(closure.PunchOut),
		DurationSeconds: closure.DurationSeconds(),
		ClientIP:        decision.ClientIP,
	}, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) (attendance.MyAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.MyAttendanceResponse{}, err
	}

	userID, err := userIDFromContext(ctx)
	if err != nil {
		return attendance.MyAttendanceResponse{}, err
	}

	list, err := s.ledger.ListSessions(ctx, userID, filter.Limit)
	if err != nil {
		return attendance.MyAttendanceResponse{}, fmt.Errorf("failed to list attendance sessions: %w", err)
	}

	pairs := make([]attendance.SessionResponse, 0, len(list.Sessions))
	for _, session := range list.Sessions {
		pairs = append(pairs, attendance.SessionResponse{
			PunchInTime:     attendance.FormatTimestamp(session.PunchIn),
			PunchOutTime:    attendance.FormatTimestamp(session.PunchOut),
			DurationSeconds: session.DurationSeconds,
			Duration:        attendance.FormatDuration(session.DurationSeconds),
			InID:            session.InID,
			OutID:           session.OutID,
			PunchInLat:      session.PunchInLat,
			PunchOutLat:     session.PunchOutLat,
			PunchInIP:       session.PunchInIP,
			PunchOutIP:      session.PunchOutIP,
			Note:            session.Note,
		})
	}

	return attendance.MyAttendanceResponse{
		Count:            list.Count,
		TotalWorkSeconds: list.TotalWorkSeconds,
		TotalWorkTime:    attendance.FormatTotal(list.TotalWorkSeconds),
		Pairs:            pairs,
	}, nil
}

// AdmissionSettings implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) AdmissionSettings(ctx context.Context) attendance.AdmissionSettingsResponse {
	return attendance.AdmissionSettingsResponse{
		AllowedSSIDs:     s.settings.AllowedSSIDs(),
		OfficeLatitude:   s.settings.OfficeLatitude,
		OfficeLongitude:  s.settings.OfficeLongitude,
		RadiusMeters:     s.settings.RadiusMeters,
		AttemptLimit:     s.settings.AttemptLimit,
		AllowedIPs:       splitSetting(s.settings.AllowedIPs),
		AllowedRouterIPs: splitSetting(s.settings.AllowedRouterIPs),
		Schema:           string(s.settings.Schema),
	}
}

// admit rejects blocked users, then evaluates the request and counts a failure.
func (s *AttendanceServiceImpl) admit(ctx context.Context, u *user.User, req attendance.PunchRequest) (Decision, error) {
	if u.IsBlocked {
		return Decision{}, attendance.ErrUserBlocked
	}

	clientIP := req.RemoteIP
	if !validator.IsEmptyPtr(req.IP) {
		clientIP = strings.TrimSpace(*req.IP)
	}

	decision := s.gate.Evaluate(AdmissionInput{
		SSID:      netcheck.ResolveSSID(req.ClientSSID, req.Headers, req.SSID),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		ClientIP:  clientIP,
	})
	if !decision.Allowed() {
		return decision, s.lockout.RecordFailure(ctx, u, decision.Reason())
	}
	return decision, nil
}

func (s *AttendanceServiceImpl) currentUser(ctx context.Context) (user.User, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return user.User{}, err
	}

	return s.targetUser(ctx, userID)
}

func userIDFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", attendance.ErrUserClaimMissing, err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", attendance.ErrUserClaimMissing
	}
	return userID, nil
}

func markFrom(at time.Time, lat, lng *float64, decision Decision) attendance.PunchMark {
	mark := attendance.PunchMark{
		Time:      &at,
		Latitude:  lat,
		Longitude: lng,
		SSID:      decision.SSID,
	}
	if decision.ClientIP != "" {
		ip := decision.ClientIP
		mark.IP = &ip
	}
	return mark
}

func splitSetting(raw string) []string {
	values := []string{}
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
