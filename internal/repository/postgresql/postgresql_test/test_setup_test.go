package postgresql_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/edigital/workdesk-backend/internal/domain/user"
	"github.com/edigital/workdesk-backend/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// newTestDB connects to TEST_DATABASE_URL, applies the schema and empties the
// attendance tables. Tests are skipped when no database is configured.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, database.EnsureSchema(ctx, db))

	_, err = db.Exec(ctx, "TRUNCATE TABLE attendances, users CASCADE")
	require.NoError(t, err)

	return db
}

func insertUser(t *testing.T, db *database.DB, fullName string, role user.Role, blocked bool, failed int) string {
	t.Helper()

	id := uuid.NewString()
	_, err := db.Exec(context.Background(), `
		INSERT INTO users (id, full_name, email, role, is_blocked, failed_attendance_attempts)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, fullName, id+"@edigital.test", string(role), blocked, failed)
	require.NoError(t, err)
	return id
}

func newID(t *testing.T) string {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return id.String()
}

func ts(hour, minute int) *time.Time {
	t := time.Date(2024, 3, 1, hour, minute, 0, 0, time.UTC)
	return &t
}

func ptr[T any](v T) *T { return &v }
