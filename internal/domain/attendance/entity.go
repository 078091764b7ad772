package attendance

import (
	"strings"
	"time"
)

// PunchMark is one end of a work session as captured by the admission checks.
type PunchMark struct {
	Time      *time.Time
	Latitude  *float64
	Longitude *float64
	SSID      *string
	IP        *string
}

// LegacyColumns are the single-punch columns of rows written before punch-in and
// punch-out shared a row. The row's direction is carried by its note.
type LegacyColumns struct {
	Latitude  *float64
	Longitude *float64
	SSID      *string
}

type Attendance struct {
	ID     string
	UserID string
	Date   *time.Time
	In     PunchMark
	Out    PunchMark
	Legacy LegacyColumns
	Note   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpen reports whether the row has a punch-in and no punch-out yet.
func (a Attendance) IsOpen() bool {
	return a.In.Time != nil && a.Out.Time == nil
}

// DurationSeconds returns the session length, or nil when either end is missing.
func (a Attendance) DurationSeconds() *int64 {
	return DurationBetween(a.In.Time, a.Out.Time)
}

// Stamp is the single timestamp of a legacy row.
func (a Attendance) Stamp() *time.Time {
	return a.In.Time
}

// Session is one punch-in/punch-out pair as shown in attendance history.
type Session struct {
	PunchIn         *time.Time
	PunchOut        *time.Time
	DurationSeconds *int64
	InID            *string
	OutID           *string
	PunchInLat      *float64
	PunchOutLat     *float64
	PunchInIP       *string
	PunchOutIP      *string
	Note            *string
}

// SessionList is a user's history with the aggregate worked time.
type SessionList struct {
	Sessions         []Session
	Count            int // pairs before the page limit for legacy rows, page length otherwise
	TotalWorkSeconds int64
}

var (
	inNotes  = []string{"in", "punchin", "punch in"}
	outNotes = []string{"out", "punchout", "punch out"}
)

// NoteMarksIn reports whether a legacy note reads as a punch-in.
func NoteMarksIn(note string) bool {
	s := strings.ToLower(note)
	if strings.Contains(s, "punch-in") || strings.Contains(s, "in office") {
		return true
	}
	return containsExact(inNotes, strings.TrimSpace(s))
}

// NoteMarksOut reports whether a legacy note reads as a punch-out.
func NoteMarksOut(note string) bool {
	s := strings.ToLower(note)
	if strings.Contains(s, "punch-out") || strings.Contains(s, "leaving") {
		return true
	}
	return containsExact(outNotes, strings.TrimSpace(s))
}

func containsExact(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
