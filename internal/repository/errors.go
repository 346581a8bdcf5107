package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/noteduco342/relay-backend/internal/apperrors"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes we react to.
const (
	pgForeignKeyViolation = "23503"
	pgQueryCanceled       = "57014"
	pgLockNotAvailable    = "55P03"
)

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate reports a unique constraint violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// Classify maps driver errors onto the store error taxonomy. Timeouts become
// ErrStoreTimeout and broken foreign keys ErrStoreCorrupted. Anything else,
// including not-found, is returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return apperrors.Wrap(apperrors.ErrStoreTimeout, err)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return apperrors.Wrap(apperrors.ErrStoreCorrupted, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return apperrors.Wrap(apperrors.ErrStoreCorrupted, err)
		case pgQueryCanceled, pgLockNotAvailable:
			return apperrors.Wrap(apperrors.ErrStoreTimeout, err)
		}
	}
	return err
}
