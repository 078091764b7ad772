package attendance

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/edigital/workdesk-backend/internal/config"
	"github.com/edigital/workdesk-backend/internal/domain/attendance"
	"github.com/edigital/workdesk-backend/internal/domain/user"
	"github.com/edigital/workdesk-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPunchIn_AdmittedCreatesOpenRecord(t *testing.T) {
	h := newHarness(t, config.SchemaPaired, staff("u-1"))
	ctx := ctxFor(t, "u-1")

	resp, err := h.svc.PunchIn(ctx, officeRequest())
	require.NoError(t, err)

	assert.Equal(t, "Attendance recorded (punch-in)", resp.Message)
	assert.Equal(t, "192.168.1.1", resp.ClientIP)
	assert.Equal(t, "2024-03-01T09:00:00Z", resp.PunchInTime)

	record := h.rows.find(t, resp.AttendanceID)
	assert.True(t, record.IsOpen())
	assert.Equal(t, "punch-in", record.Note)
	assert.Equal(t, "E DIGITAL INDIA", *record.In.SSID)
	assert.Equal(t, "192.168.1.1", *record.In.IP)
	assert.Equal(t, 0, h.users.get(t, "u-1").FailedAttendanceAttempts)
	assert.Equal(t, 1, h.tx.calls)
}

func TestPunchIn_OutsideRadiusCountsFailure(t *testing.T) {
	h := newHarness(t, config.SchemaPaired, staff("u-1"))
	ctx := ctxFor(t, "u-1")

	req := officeRequest()
	req.Latitude = ptr(officeLat + 0.0018)

	_, err := h.svc.PunchIn(ctx, req)

	var denied *attendance.AdmissionDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Contains(t, err.Error(), "location outside allowed area")
	assert.Contains(t, err.Error(), "Attempts left: 14")
	assert.Equal(t, 1, h.users.get(t, "u-1").FailedAttendanceAttempts)
	assert.Empty(t, h.rows.rows)
	assert.Zero(t, h.tx.calls)
}

func TestPunchIn_FifteenthFailureBlocks(t *testing.T) {
	u := staff("u-1")
	u.FailedAttendanceAttempts = 14
	h := newHarness(t, config.SchemaPaired, u)
	ctx := ctxFor(t, "u-1")

	req := officeRequest()
	req.SSID = ptr("Guest")

	_, err := h.svc.PunchIn(ctx, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked after 15 failed attempts")
	assert.NotContains(t, err.Error(), "Attempts left")

	stored := h.users.get(t, "u-1")
	assert.True(t, stored.IsBlocked)
	assert.Equal(t, 15, stored.FailedAttendanceAttempts)

	// blocked users are rejected without counting
	_, err = h.svc.PunchIn(ctx, officeRequest())
	assert.ErrorIs(t, err, attendance.ErrUserBlocked)
	_, err = h.svc.PunchOut(ctx, officeRequest())
	assert.ErrorIs(t, err, attendance.ErrUserBlocked)
	assert.Equal(t, 15, h.users.get(t, "u-1").FailedAttendanceAttempts)
}

func TestPunchIn_SuccessResetsCounter(t *testing.T) {
	u := staff("u-1")
	u.FailedAttendanceAttempts = 6
	h := newHarness(t, config.SchemaPaired, u)

	_, err := h.svc.PunchIn(ctxFor(t, "u-1"), officeRequest())
	require.NoError(t, err)
	assert.Equal(t, 0, h.users.get(t, "u-1").FailedAttendanceAttempts)
}

func TestPunchIn_SSIDFromHeaders(t *testing.T) {
	h := newHarness(t, config.SchemaPaired, staff("u-1"))
	ctx := ctxFor(t, "u-1")

	req := officeRequest()
	req.SSID = ptr("Guest")
	req.Headers = http.Header{}
	req.Headers.Set("X-SSID", "E DIGITAL INDIA 5g")

	resp, err := h.svc.PunchIn(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "E DIGITAL INDIA 5g", *h.rows.find(t, resp.AttendanceID).In.SSID)

	req.ClientSSID = "Guest"
	_, err = h.svc.PunchIn(ctx, req)
	assert.ErrorIs(t, err, attendance.ErrAdmissionDenied)
}

func TestPunchIn_ExplicitIPWins(t *testing.T) {
	h := newHarness(t, config.SchemaPaired, staff("u-1"))
	ctx := ctxFor(t, "u-1")

	req := officeRequest()
	req.RemoteIP = "203.0.113.9"
	req.IP = ptr(" 192.168.1.1 ")

	resp, err := h.svc.PunchIn(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.1", resp.ClientIP)

	req.IP = ptr("203.0.113.10")
	req.RemoteIP = "192.168.1.1"
	_, err = h.svc.PunchIn(ctx, req)
	assert.ErrorContains(t, err, "network IP not allowed")
}

func TestPunchIn_InvalidCoordinates(t *testing.T) {
	h := newHarness(t, config.SchemaPaired, staff("u-1"))

	req := officeRequest()
	req.Longitude = ptr(200.0)

	_, err := h.svc.PunchIn(ctxFor(t, "u-1"), req)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Zero(t, h.users.get(t, "u-1").FailedAttendanceAttempts)
}

func TestPunchIn_RequiresUserClaim(t *testing.T) {
	h := newHarness(t, config.SchemaPaired, staff("u-1"))

	_, err := h.svc.PunchIn(context.Background(), officeRequest())
	assert.Error(t, err)

	_, err = h.svc.PunchIn(ctxFor(t, "ghost"), officeRequest())
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestPunchOut_ClosesOpenRecord(t *testing.T) {
	h := newHarness(t, config.SchemaPaired, staff("u-1"))
	ctx := ctxFor(t, "u-1")

	in, err := h.svc.PunchIn(ctx, officeRequest())
	require.NoError(t, err)

	h.advance(8*time.Hour + 15*time.Minute)
	out, err := h.svc.PunchOut(ctx, officeRequest())
	require.NoError(t, err)

	assert.Equal(t, "Punch-out updated on existing record", out.Message)
	assert.Equal(t, in.AttendanceID, out.AttendanceID)
	require.NotNil(t, out.DurationSeconds)
	assert.Equal(t, int64(8*3600+15*60), *out.DurationSeconds)
	assert.Equal(t, "2024-03-01T17:15:00Z", *out.PunchOutTime)

	record := h.rows.find(t, in.AttendanceID)
	assert.False(t, record.IsOpen())
	assert.Equal(t, "punch-in | punch-out", record.Note)
	assert.Len(t, h.rows.rows, 1)
}

func TestPunchOut_ImmediateRoundTrip(t *testing.T) {
	h := newHarness(t, config.SchemaPaired, staff("u-1"))
	ctx := ctxFor(t, "u-1")

	in, err := h.svc.PunchIn(ctx, officeRequest())
	require.NoError(t, err)
	out, err := h.svc.PunchOut(ctx, officeRequest())
	require.NoError(t, err)

	assert.Equal(t, in.AttendanceID, out.AttendanceID)
	require.NotNil(t, out.DurationSeconds)
	assert.GreaterOrEqual(t, *out.DurationSeconds, int64(0))
}

func TestPunchOut_ClosesMostRecentOpen(t *testing.T) {
	h := newHarness(t, config.SchemaPaired, staff("u-1"))
	ctx := ctxFor(t, "u-1")

	_, err := h.svc.PunchIn(ctx, officeRequest())
	require.NoError(t, err)
	h.advance(time.Hour)
	second, err := h.svc.PunchIn(ctx, officeRequest())
	require.NoError(t, err)
	h.advance(time.Hour)

	out, err := h.svc.PunchOut(ctx, officeRequest())
	require.NoError(t, err)
	assert.Equal(t, second.AttendanceID, out.AttendanceID)
}

func TestPunchOut_NoOpenRecordFallsBack(t *testing.T) {
	h := newHarness(t, config.SchemaPaired, staff("u-1"))
	ctx := ctxFor(t, "u-1")

	req := officeRequest()
	req.Note = nil
	out, err := h.svc.PunchOut(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "Punch-out recorded as new record (no open punch-in found)", out.Message)
	assert.Nil(t, out.PunchInTime)
	assert.Nil(t, out.DurationSeconds)
	require.NotNil(t, out.PunchOutTime)

	record := h.rows.find(t, out.AttendanceID)
	assert.Nil(t, record.In.Time)
	assert.NotNil(t, record.Out.Time)
	assert.Equal(t, "punch-out (no open in)", record.Note)
	assert.NotNil(t, record.Date)
}

func TestPunchOut_ClosedConcurrentlyFallsBack(t *testing.T) {
	h := newHarness(t, config.SchemaPaired, staff("u-1"))
	ctx := ctxFor(t, "u-1")

	in, err := h.svc.PunchIn(ctx, officeRequest())
	require.NoError(t, err)
	h.advance(time.Hour)

	// another punch-out closes the row between lookup and update
	h.rows.beforeClose = func(a attendance.Attendance) {
		h.rows.closeOutside(a.ID, h.clock.Add(-time.Minute))
	}

	req := officeRequest()
	out, err := h.svc.PunchOut(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "Punch-out recorded as new record (no open punch-in found)", out.Message)
	assert.NotEqual(t, in.AttendanceID, out.AttendanceID)
	assert.Nil(t, out.PunchInTime)

	record := h.rows.find(t, out.AttendanceID)
	assert.Nil(t, record.In.Time)
	assert.Equal(t, "punch-out (no open in)", record.Note)
	assert.Len(t, h.rows.rows, 2)
}

func TestPairedLedger_GuardedCloseMissFallsBack(t *testing.T) {
	rows := &memAttendance{}
	ledger := NewPairedLedger(rows)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	open, err := ledger.PunchIn(ctx, "u-1", attendance.PunchMark{Time: &at}, "punch-in")
	require.NoError(t, err)

	rows.beforeClose = func(a attendance.Attendance) {
		rows.closeOutside(a.ID, at.Add(time.Hour))
	}

	outAt := at.Add(2 * time.Hour)
	closure, err := ledger.PunchOut(ctx, CloseRequest{
		UserID: "u-1",
		Mark:   attendance.PunchMark{Time: &outAt},
		By:     ActorUser,
	})
	require.NoError(t, err)

	assert.True(t, closure.Fallback)
	assert.NotEqual(t, open.ID, closure.Record.ID)
	assert.Nil(t, closure.Record.In.Time)
	assert.Equal(t, "punch-out (no open in)", closure.Record.Note)
	assert.Nil(t, closure.DurationSeconds())
}

func TestPunchOut_ExplicitNote(t *testing.T) {
	h := newHarness(t, config.SchemaPaired, staff("u-1"))
	ctx := ctxFor(t, "u-1")

	in, err := h.svc.PunchIn(ctx, officeRequest())
	require.NoError(t, err)

	req := officeRequest()
	req.Note = ptr("left for client visit")
	_, err = h.svc.PunchOut(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "left for client visit", h.rows.find(t, in.AttendanceID).Note)
}

func TestPunchOut_DeniedLeavesSessionOpen(t *testing.T) {
	h := newHarness(t, config.SchemaPaired, staff("u-1"))
	ctx := ctxFor(t, "u-1")

	in, err := h.svc.PunchIn(ctx, officeRequest())
	require.NoError(t, err)

	req := officeRequest()
	req.RemoteIP = "10.1.1.1"
	_, err = h.svc.PunchOut(ctx, req)
	assert.ErrorIs(t, err, attendance.ErrAdmissionDenied)

	assert.True(t, h.rows.find(t, in.AttendanceID).IsOpen())
	assert.Equal(t, 1, h.users.get(t, "u-1").FailedAttendanceAttempts)
}

func TestPunch_StoreErrorSurfaces(t *testing.T) {
	h := newHarness(t, config.SchemaPaired, staff("u-1"))
	h.rows.createErr = assert.AnError

	_, err := h.svc.PunchIn(ctxFor(t, "u-1"), officeRequest())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestGetMyAttendance_PageOfSessions(t *testing.T) {
	h := newHarness(t, config.SchemaPaired, staff("u-1"), staff("u-2"))
	ctx := ctxFor(t, "u-1")

	for i := 0; i < 5; i++ {
		_, err := h.svc.PunchIn(ctx, officeRequest())
		require.NoError(t, err)
		h.advance(time.Duration(i+1) * time.Hour)
		_, err = h.svc.PunchOut(ctx, officeRequest())
		require.NoError(t, err)
		h.advance(24 * time.Hour)
	}
	_, err := h.svc.PunchIn(ctxFor(t, "u-2"), officeRequest())
	require.NoError(t, err)

	resp, err := h.svc.GetMyAttendance(ctx, attendance.MyAttendanceFilter{Limit: 2})
	require.NoError(t, err)

	require.Equal(t, 2, resp.Count)
	assert.Equal(t, int64(9*3600), resp.TotalWorkSeconds)
	assert.Equal(t, "09:00:00", resp.TotalWorkTime)
	assert.Equal(t, "05:00:00", *resp.Pairs[0].Duration)
	assert.Equal(t, "04:00:00", *resp.Pairs[1].Duration)
	assert.Equal(t, resp.Pairs[0].InID, resp.Pairs[0].OutID)
	assert.Equal(t, "192.168.1.1", *resp.Pairs[0].PunchOutIP)
}

func TestGetMyAttendance_Empty(t *testing.T) {
	h := newHarness(t, config.SchemaPaired, staff("u-1"))

	resp, err := h.svc.GetMyAttendance(ctxFor(t, "u-1"), attendance.MyAttendanceFilter{})
	require.NoError(t, err)
	assert.Zero(t, resp.Count)
	assert.Equal(t, "00:00:00", resp.TotalWorkTime)
	assert.NotNil(t, resp.Pairs)

	_, err = h.svc.GetMyAttendance(ctxFor(t, "u-1"), attendance.MyAttendanceFilter{Limit: 501})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestLegacySchema_PunchFlow(t *testing.T) {
	h := newHarness(t, config.SchemaLegacy, staff("u-1"))
	ctx := ctxFor(t, "u-1")

	in, err := h.svc.PunchIn(ctx, officeRequest())
	require.NoError(t, err)
	inRow := h.rows.find(t, in.AttendanceID)
	assert.Nil(t, inRow.In.Latitude)
	assert.NotNil(t, inRow.Legacy.Latitude)
	assert.Equal(t, "E DIGITAL INDIA", *inRow.Legacy.SSID)

	h.advance(3 * time.Hour)
	out, err := h.svc.PunchOut(ctx, officeRequest())
	require.NoError(t, err)
	assert.Equal(t, "Punch-out updated on existing record", out.Message)
	assert.NotEqual(t, in.AttendanceID, out.AttendanceID)
	require.NotNil(t, out.DurationSeconds)
	assert.Equal(t, int64(3*3600), *out.DurationSeconds)
	assert.Equal(t, "punch-out", h.rows.find(t, out.AttendanceID).Note)

	h.advance(time.Hour)
	fallback, err := h.svc.PunchOut(ctx, officeRequest())
	require.NoError(t, err)
	assert.Equal(t, "Punch-out recorded as new record (no open punch-in found)", fallback.Message)

	history, err := h.svc.GetMyAttendance(ctx, attendance.MyAttendanceFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, history.Count)
	assert.Equal(t, "03:00:00", *history.Pairs[0].Duration)
	assert.Equal(t, in.AttendanceID, *history.Pairs[0].InID)
	assert.Nil(t, history.Pairs[1].PunchInTime)
	assert.Equal(t, int64(3*3600), history.TotalWorkSeconds)

	latest, err := h.svc.GetMyAttendance(ctx, attendance.MyAttendanceFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, latest.Pairs, 1)
	assert.Equal(t, 2, latest.Count)
	assert.Equal(t, int64(3*3600), latest.TotalWorkSeconds)
}

func TestLegacySchema_OutLookingNoteStaysIn(t *testing.T) {
	h := newHarness(t, config.SchemaLegacy, staff("u-1"))
	ctx := ctxFor(t, "u-1")

	req := officeRequest()
	req.Note = ptr("out")
	in, err := h.svc.PunchIn(ctx, req)
	require.NoError(t, err)

	note := h.rows.find(t, in.AttendanceID).Note
	assert.True(t, attendance.NoteMarksIn(note))
}

func TestAdmissionSettings(t *testing.T) {
	h := newHarness(t, config.SchemaPaired, staff("u-1"))

	settings := h.svc.AdmissionSettings(context.Background())
	assert.Equal(t, []string{"E DIGITAL INDIA", "E DIGITAL INDIA 5g"}, settings.AllowedSSIDs)
	assert.Equal(t, []string{"192.168.1.1"}, settings.AllowedIPs)
	assert.Empty(t, settings.AllowedRouterIPs)
	assert.Equal(t, 15, settings.AttemptLimit)
	assert.Equal(t, "paired", settings.Schema)
}
