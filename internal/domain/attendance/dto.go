package attendance

import (
	"net/http"
	"strings"
	"time"

	"github.com/edigital/workdesk-backend/internal/pkg/validator"
)

// ========================================
// PUNCH DTOs
// ========================================

// PunchRequest is the body of a self-service punch-in or punch-out.
type PunchRequest struct {
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	SSID      *string  `json:"ssid,omitempty"`
	Note      *string  `json:"note,omitempty"`
	IP        *string  `json:"ip,omitempty"` // explicit client IP, wins over headers

	ClientSSID string      `json:"-"` // X-Client-SSID as bound by the handler
	Headers    http.Header `json:"-"`
	RemoteIP   string      `json:"-"` // resolved from forwarding headers or the socket
}

func (r *PunchRequest) Validate() error {
	if errs := validator.Struct(r); errs != nil {
		return errs
	}
	return nil
}

type PunchInResponse struct {
	Message      string `json:"message"`
	AttendanceID string `json:"attendance_id"`
	PunchInTime  string `json:"punch_in_time"`
	ClientIP     string `json:"client_ip"`
}

type PunchOutResponse struct {
	Message         string  `json:"message"`
	AttendanceID    string  `json:"attendance_id"`
	PunchInTime     *string `json:"punch_in_time"`
	PunchOutTime    *string `json:"punch_out_time"`
	DurationSeconds *int64  `json:"duration_seconds"`
	ClientIP        string  `json:"client_ip"`
}

// ========================================
// HISTORY DTOs
// ========================================

type MyAttendanceFilter struct {
	Limit int `json:"limit" validate:"gte=1,lte=500"`
}

func (f *MyAttendanceFilter) Validate() error {
	if f.Limit == 0 {
		f.Limit = 50 // Default limit
	}
	if errs := validator.Struct(f); errs != nil {
		return errs
	}
	return nil
}

type SessionResponse struct {
	PunchInTime     *string  `json:"punch_in_time"`
	PunchOutTime    *string  `json:"punch_out_time"`
	DurationSeconds *int64   `json:"duration_seconds"`
	Duration        *string  `json:"duration"`
	InID            *string  `json:"in_id"`
	OutID           *string  `json:"out_id"`
	PunchInLat      *float64 `json:"punch_in_lat"`
	PunchOutLat     *float64 `json:"punch_out_lat"`
	PunchInIP       *string  `json:"punch_in_ip"`
	PunchOutIP      *string  `json:"punch_out_ip"`
	Note            *string  `json:"note"`
}

type MyAttendanceResponse struct {
	Count            int               `json:"count"`
	TotalWorkSeconds int64             `json:"total_work_seconds"`
	TotalWorkTime    string            `json:"total_work_time"`
	Pairs            []SessionResponse `json:"pairs"`
}

// ========================================
// ADMIN DTOs
// ========================================

type AdminMarkRequest struct {
	UserID    string   `json:"user_id" validate:"required"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	SSID      *string  `json:"ssid,omitempty"`
	Note      *string  `json:"note,omitempty"`
}

func (r *AdminMarkRequest) Validate() error {
	r.UserID = strings.TrimSpace(r.UserID)
	if errs := validator.Struct(r); errs != nil {
		return errs
	}
	return nil
}

type AdminMarkResponse struct {
	Message      string `json:"message"`
	AttendanceID string `json:"attendance_id"`
}

type AdminMarkOutRequest struct {
	UserID       string   `json:"user_id" validate:"required"`
	AttendanceID *string  `json:"attendance_id,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	SSID         *string  `json:"ssid,omitempty"`
	IP           *string  `json:"ip,omitempty"`
	Note         *string  `json:"note,omitempty"`
	PunchOutTime *string  `json:"punch_out_time,omitempty"`

	PunchOutAt *time.Time `json:"-"` // parsed PunchOutTime, set by Validate
}

func (r *AdminMarkOutRequest) Validate() error {
	r.UserID = strings.TrimSpace(r.UserID)
	if errs := validator.Struct(r); errs != nil {
		return errs
	}

	if !validator.IsEmptyPtr(r.PunchOutTime) {
		t, ok := validator.ParseTimestamp(*r.PunchOutTime)
		if !ok {
			return ErrInvalidPunchOutTime
		}
		r.PunchOutAt = &t
	}
	return nil
}

type AdminMarkOutResponse struct {
	Message         string  `json:"message"`
	AttendanceID    string  `json:"attendance_id"`
	PunchInTime     *string `json:"punch_in_time"`
	PunchOutTime    *string `json:"punch_out_time"`
	DurationSeconds *int64  `json:"duration_seconds"`
}

type AttendanceFilter struct {
	UserID *string `json:"user_id,omitempty"`
	Limit  int     `json:"limit" validate:"gte=1,lte=2000"`
	Offset int     `json:"offset" validate:"gte=0"`
}

func (f *AttendanceFilter) Validate() error {
	if f.Limit == 0 {
		f.Limit = 100 // Default limit
	}
	if errs := validator.Struct(f); errs != nil {
		return errs
	}
	return nil
}

// AttendanceRecordResponse exposes every stored column, including the legacy
// single-punch ones, for support staff.
type AttendanceRecordResponse struct {
	ID              string   `json:"id"`
	UserID          string   `json:"user_id"`
	PunchInTime     *string  `json:"punch_in_time"`
	PunchOutTime    *string  `json:"punch_out_time"`
	DurationSeconds *int64   `json:"duration_seconds"`
	Duration        *string  `json:"duration"`
	PunchInLat      *float64 `json:"punch_in_lat"`
	PunchInLng      *float64 `json:"punch_in_lng"`
	PunchOutLat     *float64 `json:"punch_out_lat"`
	PunchOutLng     *float64 `json:"punch_out_lng"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	PunchInIP       *string  `json:"punch_in_ip"`
	PunchOutIP      *string  `json:"punch_out_ip"`
	PunchInSSID     *string  `json:"punch_in_ssid"`
	PunchOutSSID    *string  `json:"punch_out_ssid"`
	SSID            *string  `json:"ssid"`
	Note            string   `json:"note"`
	CreatedAt       string   `json:"created_at"`
}

type ListAttendanceResponse struct {
	Total            int64                      `json:"total"`
	Count            int                        `json:"count"`
	Offset           int                        `json:"offset"`
	Limit            int                        `json:"limit"`
	TotalWorkSeconds int64                      `json:"total_work_seconds"`
	TotalWorkTime    string                     `json:"total_work_time"`
	Records          []AttendanceRecordResponse `json:"records"`
}

// AdmissionSettingsResponse echoes the effective admission rules.
type AdmissionSettingsResponse struct {
	AllowedSSIDs     []string `json:"allowed_ssids"`
	OfficeLatitude   float64  `json:"office_lat"`
	OfficeLongitude  float64  `json:"office_lng"`
	RadiusMeters     float64  `json:"allowed_radius_meters"`
	AttemptLimit     int      `json:"attempt_limit"`
	AllowedIPs       []string `json:"allowed_ips"`
	AllowedRouterIPs []string `json:"allowed_router_ips"`
	Schema           string   `json:"schema"`
}

// FormatTimestamp renders a time in RFC 3339, or nil when unset.
func FormatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
