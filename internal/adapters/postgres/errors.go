package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
)

// invalid_text_representation, raised for malformed UUIDs.
const codeInvalidText = "22P02"

// mapErr translates driver errors into domain errors. A malformed id can
// never match a row, so it reads as not found.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeInvalidText {
		return domain.ErrNotFound
	}
	return err
}
