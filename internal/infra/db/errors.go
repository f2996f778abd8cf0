package db

import (
	"errors"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/apperr"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes we translate into the shared taxonomy.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeLockNotAvailable    = "55P03"
	codeQueryCanceled       = "57014"
)

// MapError translates driver-level failures into apperr sentinels so that
// domain code never inspects pgconn directly. Unknown errors pass through.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return apperr.Conflictf("%s", pgErr.ConstraintName)
	case codeForeignKeyViolation:
		return apperr.InUsef("%s", pgErr.ConstraintName)
	case codeLockNotAvailable, codeQueryCanceled:
		return apperr.Busyf("lock wait exceeded")
	}
	return err
}
