package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edigital/workdesk-backend/internal/domain/attendance"
	"github.com/google/uuid"
)

// Actor decides the note wording of a punch-out.
type Actor int

const (
	ActorUser Actor = iota
	ActorAdmin
)

func (a Actor) closeSuffix() string {
	if a == ActorAdmin {
		return " | admin-punch-out"
	}
	return " | punch-out"
}

func (a Actor) fallbackNote() string {
	if a == ActorAdmin {
		return "admin-punch-out (no open in)"
	}
	return "punch-out (no open in)"
}

// CloseRequest describes a punch-out. TargetID skips the open-session search.
type CloseRequest struct {
	UserID   string
	Mark     attendance.PunchMark
	Note     *string
	TargetID *string
	By       Actor
}

// Closure is the result of a punch-out.
type Closure struct {
	Record   attendance.Attendance // the row written
	PunchIn  *time.Time            // nil when no open session was found
	PunchOut *time.Time
	Fallback bool // no open session, an out-only row was written
}

func (c Closure) DurationSeconds() *int64 {
	return attendance.DurationBetween(c.PunchIn, c.PunchOut)
}

// Ledger records punches and rebuilds session history for one row layout.
type Ledger interface {
	PunchIn(ctx context.Context, userID string, mark attendance.PunchMark, note string) (attendance.Attendance, error)
	PunchOut(ctx context.Context, req CloseRequest) (Closure, error)
	ListSessions(ctx context.Context, userID string, limit int) (attendance.SessionList, error)
	ListRecords(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error)
}

func newRecordID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate attendance id: %w", err)
	}
	return id.String(), nil
}

func dateOf(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return &d
}

func noteOr(note *string, fallback string) string {
	if note != nil && *note != "" {
		return *note
	}
	return fallback
}

// ========================================
// PAIRED ROWS
// ========================================

type pairedLedger struct {
	repo attendance.SessionRepository
}

// NewPairedLedger stores punch-in and punch-out on the same row.
func NewPairedLedger(repo attendance.SessionRepository) Ledger {
	return &pairedLedger{repo: repo}
}

func (l *pairedLedger) PunchIn(ctx context.Context, userID string, mark attendance.PunchMark, note string) (attendance.Attendance, error) {
	id, err := newRecordID()
	if err != nil {
		return attendance.Attendance{}, err
	}
	return l.repo.Create(ctx, attendance.Attendance{
		ID:     id,
		UserID: userID,
		Date:   dateOf(mark.Time),
		In:     mark,
		Note:   note,
	})
}

func (l *pairedLedger) PunchOut(ctx context.Context, req CloseRequest) (Closure, error) {
	var (
		target attendance.Attendance
		err    error
	)
	if req.TargetID != nil {
		target, err = l.repo.GetByIDForUser(ctx, *req.TargetID, req.UserID)
		if err != nil {
			return Closure{}, err
		}
	} else {
		target, err = l.repo.GetOpenSession(ctx, req.UserID)
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return l.fallback(ctx, req)
		}
		if err != nil {
			return Closure{}, err
		}
	}

	// SSID and IP are only written when supplied
	out := req.Mark
	if out.SSID == nil {
		out.SSID = target.Out.SSID
	}
	if out.IP == nil {
		out.IP = target.Out.IP
	}
	target.Out = out
	target.Note = noteOr(req.Note, target.Note+req.By.closeSuffix())

	closed, err := l.repo.Close(ctx, target, req.TargetID != nil)
	if errors.Is(err, attendance.ErrAttendanceNotFound) && req.TargetID == nil {
		// closed by a concurrent request between lookup and update
		return l.fallback(ctx, req)
	}
	if err != nil {
		return Closure{}, err
	}

	return Closure{Record: closed, PunchIn: closed.In.Time, PunchOut: closed.Out.Time}, nil
}

func (l *pairedLedger) fallback(ctx context.Context, req CloseRequest) (Closure, error) {
	id, err := newRecordID()
	if err != nil {
		return Closure{}, err
	}
	created, err := l.repo.Create(ctx, attendance.Attendance{
		ID:     id,
		UserID: req.UserID,
		Date:   dateOf(req.Mark.Time),
		Out:    req.Mark,
		Note:   noteOr(req.Note, req.By.fallbackNote()),
	})
	if err != nil {
		return Closure{}, err
	}
	return Closure{Record: created, PunchOut: created.Out.Time, Fallback: true}, nil
}

func (l *pairedLedger) ListSessions(ctx context.Context, userID string, limit int) (attendance.SessionList, error) {
	rows, err := l.repo.ListByUser(ctx, userID)
	if err != nil {
		return attendance.SessionList{}, err
	}
	return pairedSessions(rows, limit), nil
}

func (l *pairedLedger) ListRecords(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	return l.repo.List(ctx, filter)
}

// ========================================
// LEGACY ROWS
// ========================================

type legacyLedger struct {
	repo attendance.AttendanceRepository
}

// NewLegacyLedger stores every punch as its own row and reads the direction from the note.
// Punch-outs always append a row since a legacy row cannot hold both ends.
func NewLegacyLedger(repo attendance.AttendanceRepository) Ledger {
	return &legacyLedger{repo: repo}
}

func legacyRow(id, userID string, mark attendance.PunchMark, note string) attendance.Attendance {
	return attendance.Attendance{
		ID:     id,
		UserID: userID,
		Date:   dateOf(mark.Time),
		In:     attendance.PunchMark{Time: mark.Time},
		Legacy: attendance.LegacyColumns{
			Latitude:  mark.Latitude,
			Longitude: mark.Longitude,
			SSID:      mark.SSID,
		},
		Note: note,
	}
}

func (l *legacyLedger) PunchIn(ctx context.Context, userID string, mark attendance.PunchMark, note string) (attendance.Attendance, error) {
	id, err := newRecordID()
	if err != nil {
		return attendance.Attendance{}, err
	}
	if attendance.NoteMarksOut(note) && !attendance.NoteMarksIn(note) {
		note = "punch-in | " + note
	}
	return l.repo.Create(ctx, legacyRow(id, userID, mark, note))
}

func (l *legacyLedger) PunchOut(ctx context.Context, req CloseRequest) (Closure, error) {
	var pending *attendance.Attendance
	if req.TargetID != nil {
		target, err := l.repo.GetByIDForUser(ctx, *req.TargetID, req.UserID)
		if err != nil {
			return Closure{}, err
		}
		pending = &target
	} else {
		rows, err := l.repo.ListByUser(ctx, req.UserID)
		if err != nil {
			return Closure{}, err
		}
		pending = pendingIn(rows)
	}

	note := req.By.fallbackNote()
	if pending != nil {
		note = "punch-out"
	}
	if req.Note != nil && *req.Note != "" {
		note = note + " | " + *req.Note
	}

	id, err := newRecordID()
	if err != nil {
		return Closure{}, err
	}
	created, err := l.repo.Create(ctx, legacyRow(id, req.UserID, req.Mark, note))
	if err != nil {
		return Closure{}, err
	}

	if pending == nil {
		return Closure{Record: created, PunchOut: created.Stamp(), Fallback: true}, nil
	}
	return Closure{Record: created, PunchIn: pending.Stamp(), PunchOut: created.Stamp()}, nil
}

func (l *legacyLedger) ListSessions(ctx context.Context, userID string, limit int) (attendance.SessionList, error) {
	rows, err := l.repo.ListByUser(ctx, userID)
	if err != nil {
		return attendance.SessionList{}, err
	}
	return legacySessions(rows, limit), nil
}

func (l *legacyLedger) ListRecords(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	return l.repo.List(ctx, filter)
}
