package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/edigital/workdesk-backend/internal/domain/attendance"
	"github.com/edigital/workdesk-backend/internal/domain/user"
	"github.com/edigital/workdesk-backend/internal/handler/http/response"
	"github.com/edigital/workdesk-backend/internal/pkg/netcheck"
	"github.com/edigital/workdesk-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	PunchIn(w http.ResponseWriter, r *http.Request)
	PunchOut(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	AdminMark(w http.ResponseWriter, r *http.Request)
	AdminMarkOut(w http.ResponseWriter, r *http.Request)
	ListAttendance(w http.ResponseWriter, r *http.Request)
	UnblockUser(w http.ResponseWriter, r *http.Request)
	ListBlockedUsers(w http.ResponseWriter, r *http.Request)
	AdmissionSettings(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// PunchIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) PunchIn(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePunchRequest(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.PunchIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, result.Message, result)
}

// PunchOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) PunchOut(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePunchRequest(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.PunchOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

// decodePunchRequest binds the JSON body and the network identity of the caller.
func decodePunchRequest(w http.ResponseWriter, r *http.Request) (attendance.PunchRequest, bool) {
	var req attendance.PunchRequest

	// punch bodies are optional
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("Failed to decode punch request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return req, false
	}

	req.ClientSSID = r.Header.Get("X-Client-SSID")
	req.Headers = r.Header
	req.RemoteIP = netcheck.ClientIP(r)

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return req, false
	}
	return req, true
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	var filter attendance.MyAttendanceFilter

	limit, err := queryInt(r, "limit")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	filter.Limit = limit

	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetMyAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// AdminMark implements AttendanceHandler.
func (h *attendanceHandlerImpl) AdminMark(w http.ResponseWriter, r *http.Request) {
	var req attendance.AdminMarkRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode admin mark request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.AdminMark(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, result.Message, result)
}

// AdminMarkOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) AdminMarkOut(w http.ResponseWriter, r *http.Request) {
	var req attendance.AdminMarkOutRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode admin mark-out request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.AdminMarkOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

// ListAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListAttendance(w http.ResponseWriter, r *http.Request) {
	var filter attendance.AttendanceFilter

	if userID := r.URL.Query().Get("user_id"); userID != "" {
		filter.UserID = &userID
	}

	var err error
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		response.HandleError(w, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset"); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ListAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UnblockUser implements AttendanceHandler.
func (h *attendanceHandlerImpl) UnblockUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.BadRequest(w, "User ID is required", nil)
		return
	}

	result, err := h.attendanceService.UnblockUser(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

// ListBlockedUsers implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListBlockedUsers(w http.ResponseWriter, r *http.Request) {
	var filter user.BlockedUserFilter

	if q := r.URL.Query().Get("q"); q != "" {
		filter.Search = &q
	}

	var err error
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		response.HandleError(w, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset"); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ListBlockedUsers(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// AdmissionSettings implements AttendanceHandler.
func (h *attendanceHandlerImpl) AdmissionSettings(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.attendanceService.AdmissionSettings(r.Context()))
}

// queryInt reads an optional integer query parameter; absent means zero.
func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validator.ValidationErrors{{
			Field:   key,
			Message: key + " must be an integer",
		}}
	}
	return n, nil
}
