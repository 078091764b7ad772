package attendance

import (
	"sort"
	"time"

	"github.com/edigital/workdesk-backend/internal/domain/attendance"
)

// pairedSessions emits one session per row. Rows arrive newest first and the
// total covers only the returned page.
func pairedSessions(rows []attendance.Attendance, limit int) attendance.SessionList {
	if limit < len(rows) {
		rows = rows[:limit]
	}

	list := attendance.SessionList{Sessions: make([]attendance.Session, 0, len(rows))}
	for _, r := range rows {
		id := r.ID
		duration := r.DurationSeconds()
		if duration != nil {
			list.TotalWorkSeconds += *duration
		}

		inLat := r.In.Latitude
		if inLat == nil {
			inLat = r.Legacy.Latitude
		}

		list.Sessions = append(list.Sessions, attendance.Session{
			PunchIn:         r.In.Time,
			PunchOut:        r.Out.Time,
			DurationSeconds: duration,
			InID:            &id,
			OutID:           &id,
			PunchInLat:      inLat,
			PunchOutLat:     r.Out.Latitude,
			PunchInIP:       r.In.IP,
			PunchOutIP:      r.Out.IP,
			Note:            optionalNote(r.Note),
		})
	}
	list.Count = len(list.Sessions)
	return list
}

// legacySessions pairs single-punch rows chronologically. The total covers every
// pair and so does the count, the returned page is the newest limit pairs.
func legacySessions(rows []attendance.Attendance, limit int) attendance.SessionList {
	sessions, total, pending := walkLegacy(rows)
	if pending != nil {
		sessions = append(sessions, openSession(*pending))
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i].PunchIn, sessions[j].PunchIn
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})

	count := len(sessions)
	if limit < len(sessions) {
		sessions = sessions[:limit]
	}
	return attendance.SessionList{Sessions: sessions, Count: count, TotalWorkSeconds: total}
}

// pendingIn returns the trailing punch-in still waiting for its punch-out.
func pendingIn(rows []attendance.Attendance) *attendance.Attendance {
	_, _, pending := walkLegacy(rows)
	return pending
}

func walkLegacy(rows []attendance.Attendance) ([]attendance.Session, int64, *attendance.Attendance) {
	asc := make([]attendance.Attendance, len(rows))
	copy(asc, rows)
	sort.SliceStable(asc, func(i, j int) bool {
		return stampBefore(asc[i].Stamp(), asc[j].Stamp())
	})

	var (
		sessions []attendance.Session
		total    int64
		pending  *attendance.Attendance
	)
	for i := range asc {
		r := asc[i]
		if pending == nil {
			// unclassified notes open a session
			if attendance.NoteMarksIn(r.Note) || !attendance.NoteMarksOut(r.Note) {
				pending = &r
				continue
			}
			outID := r.ID
			sessions = append(sessions, attendance.Session{
				PunchOut: r.Stamp(),
				OutID:    &outID,
				Note:     optionalNote(r.Note),
			})
			continue
		}

		if attendance.NoteMarksOut(r.Note) {
			inID, outID := pending.ID, r.ID
			duration := attendance.DurationBetween(pending.Stamp(), r.Stamp())
			if duration != nil {
				total += *duration
			}
			note := pending.Note + " | " + r.Note
			sessions = append(sessions, attendance.Session{
				PunchIn:         pending.Stamp(),
				PunchOut:        r.Stamp(),
				DurationSeconds: duration,
				InID:            &inID,
				OutID:           &outID,
				Note:            &note,
			})
			pending = nil
			continue
		}

		// a second punch-in leaves the previous one open
		sessions = append(sessions, openSession(*pending))
		pending = &r
	}
	return sessions, total, pending
}

func openSession(r attendance.Attendance) attendance.Session {
	id := r.ID
	return attendance.Session{
		PunchIn: r.Stamp(),
		InID:    &id,
		Note:    optionalNote(r.Note),
	}
}

func stampBefore(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b != nil
	}
	return a.Before(*b)
}

func optionalNote(note string) *string {
	if note == "" {
		return nil
	}
	return &note
}
