package attendance

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/edigital/workdesk-backend/internal/config"
	"github.com/edigital/workdesk-backend/internal/domain/attendance"
	"github.com/edigital/workdesk-backend/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/require"
)

const (
	officeLat = 22.804925060054416
	officeLng = 86.203053378007
)

func ptr[T any](v T) *T { return &v }

// ========================================
// IN-MEMORY USERS
// ========================================

type memUsers struct {
	mu      sync.Mutex
	users   map[string]user.User
	updates int
}

func newMemUsers(users ...user.User) *memUsers {
	m := &memUsers{users: make(map[string]user.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (m *memUsers) UpdateAttendanceLock(ctx context.Context, id string, isBlocked bool, failedAttempts int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.IsBlocked = isBlocked
	u.FailedAttendanceAttempts = failedAttempts
	m.users[id] = u
	m.updates++
	return nil
}

func (m *memUsers) ListBlocked(ctx context.Context, filter user.BlockedUserFilter) ([]user.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var blocked []user.User
	for _, u := range m.users {
		if !u.IsBlocked {
			continue
		}
		if filter.Search != nil {
			q := strings.ToLower(*filter.Search)
			if !strings.Contains(strings.ToLower(u.Email), q) && !strings.Contains(strings.ToLower(u.FullName), q) {
				continue
			}
		}
		blocked = append(blocked, u)
	}
	sort.Slice(blocked, func(i, j int) bool {
		if blocked[i].FailedAttendanceAttempts != blocked[j].FailedAttendanceAttempts {
			return blocked[i].FailedAttendanceAttempts > blocked[j].FailedAttendanceAttempts
		}
		return blocked[i].ID > blocked[j].ID
	})
	return page(blocked, filter.Offset, filter.Limit), int64(len(blocked)), nil
}

func (m *memUsers) get(t *testing.T, id string) user.User {
	t.Helper()
	u, err := m.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

// ========================================
// IN-MEMORY ATTENDANCE
// ========================================

type memAttendance struct {
	mu        sync.Mutex
	rows      []attendance.Attendance
	createErr error
	// beforeClose runs ahead of Close, outside the lock
	beforeClose func(a attendance.Attendance)
}

func (m *memAttendance) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return attendance.Attendance{}, m.createErr
	}
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	m.rows = append(m.rows, a)
	return a, nil
}

func (m *memAttendance) GetByIDForUser(ctx context.Context, id string, userID string) (attendance.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id && r.UserID == userID {
			return r, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (m *memAttendance) ListByUser(ctx context.Context, userID string) ([]attendance.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []attendance.Attendance
	for _, r := range m.rows {
		if r.UserID == userID {
			rows = append(rows, r)
		}
	}
	// punch_in_time DESC NULLS LAST
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].In.Time, rows[j].In.Time
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
	return rows, nil
}

func (m *memAttendance) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []attendance.Attendance
	for _, r := range m.rows {
		if filter.UserID == nil || r.UserID == *filter.UserID {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID > rows[j].ID })
	return page(rows, filter.Offset, filter.Limit), int64(len(rows)), nil
}

func (m *memAttendance) GetOpenSession(ctx context.Context, userID string) (attendance.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var open *attendance.Attendance
	for i := range m.rows {
		r := m.rows[i]
		if r.UserID != userID || !r.IsOpen() {
			continue
		}
		if open == nil || r.In.Time.After(*open.In.Time) {
			open = &r
		}
	}
	if open == nil {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return *open, nil
}

func (m *memAttendance) Close(ctx context.Context, a attendance.Attendance, force bool) (attendance.Attendance, error) {
	if m.beforeClose != nil {
		m.beforeClose(a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID != a.ID {
			continue
		}
		if !force && m.rows[i].Out.Time != nil {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		m.rows[i].Out = a.Out
		m.rows[i].Note = a.Note
		m.rows[i].UpdatedAt = time.Now().UTC()
		return m.rows[i], nil
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

// closeOutside marks id as closed, as a concurrent request would.
func (m *memAttendance) closeOutside(id string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows[i].Out.Time = &at
		}
	}
}

func (m *memAttendance) find(t *testing.T, id string) attendance.Attendance {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("attendance %s not stored", id)
	return attendance.Attendance{}
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ========================================
// HARNESS
// ========================================

type passthroughTx struct {
	calls int
}

func (p *passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

func testSettings(schema config.SchemaVersion) config.AttendanceConfig {
	return config.AttendanceConfig{
		AllowedSSID:     "E DIGITAL INDIA",
		AllowedSSIDAlt:  "E DIGITAL INDIA 5g",
		OfficeLatitude:  officeLat,
		OfficeLongitude: officeLng,
		RadiusMeters:    50,
		AttemptLimit:    15,
		AllowedIPs:      "192.168.1.1",
		Schema:          schema,
	}
}

type harness struct {
	svc   *AttendanceServiceImpl
	users *memUsers
	rows  *memAttendance
	tx    *passthroughTx
	clock time.Time
}

func newHarness(t *testing.T, schema config.SchemaVersion, users ...user.User) *harness {
	t.Helper()

	h := &harness{
		users: newMemUsers(users...),
		rows:  &memAttendance{},
		tx:    &passthroughTx{},
		clock: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	var ledger Ledger
	switch schema {
	case config.SchemaPaired:
		ledger = NewPairedLedger(h.rows)
	case config.SchemaLegacy:
		ledger = NewLegacyLedger(h.rows)
	default:
		t.Fatalf("unknown schema %q", schema)
	}

	svc, ok := NewAttendanceService(h.tx, h.users, ledger, testSettings(schema)).(*AttendanceServiceImpl)
	require.True(t, ok)
	svc.now = func() time.Time { return h.clock }
	h.svc = svc
	return h
}

func (h *harness) advance(d time.Duration) {
	h.clock = h.clock.Add(d)
}

// ctxFor returns a context carrying an access token for userID.
func ctxFor(t *testing.T, userID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"user_id": userID,
		"type":    "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

// officeRequest is a punch that passes every admission check.
func officeRequest() attendance.PunchRequest {
	return attendance.PunchRequest{
		Latitude:  ptr(officeLat + 0.00009), // about 10m north
		Longitude: ptr(officeLng),
		SSID:      ptr("E DIGITAL INDIA"),
		RemoteIP:  "192.168.1.1",
	}
}

func staff(id string) user.User {
	return user.User{
		ID:       id,
		FullName: "Staff " + id,
		Email:    id + "@edigital.test",
		Role:     user.RoleStaff,
		IsActive: true,
	}
}
