package repositories

import (
	"errors"
	"fmt"

	"catalog/internal/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

const msgDuplicateName = "Product with this name already exists."

// isDuplicateKey reports whether err signals a unique constraint violation.
// GORM's TranslateError covers both drivers; the pgconn check handles
// connections opened without translation.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

func errNotFound(id int64) error {
	return apperror.New(apperror.ResourceNotFound, fmt.Sprintf("Product with ID %d not found.", id))
}

// errDeleteNotFound differs from errNotFound only by the missing period.
func errDeleteNotFound(id int64) error {
	return apperror.New(apperror.ResourceNotFound, fmt.Sprintf("Product with ID %d not found", id))
}

// translateWriteError classifies a create/update failure.
func translateWriteError(op string, err error) error {
	if isDuplicateKey(err) {
		return apperror.Wrap(apperror.UniqueConstraint, msgDuplicateName, err)
	}
	return apperror.Wrap(apperror.StorageFailure, "Failed to "+op+" product", err)
}
