package postgresql

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isInvalidText reports a malformed literal such as a non-UUID id.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
