package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateKey is returned when a write violates a unique constraint
var ErrDuplicateKey = errors.New("duplicate key")

const pgUniqueViolation = "23505"

// DuplicateKeyError carries the name of the violated constraint
type DuplicateKeyError struct {
	Constraint string
	Err        error
}

func (e *DuplicateKeyError) Error() string {
	return "duplicate key violates unique constraint " + e.Constraint
}

func (e *DuplicateKeyError) Unwrap() error {
	return ErrDuplicateKey
}

// translateError maps driver errors onto repository errors
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &DuplicateKeyError{Err: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &DuplicateKeyError{Constraint: pgErr.ConstraintName, Err: err}
	}
	return err
}

// IsDuplicateKey reports whether err is a unique constraint violation
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// DuplicateConstraint returns the violated constraint name or empty string
func DuplicateConstraint(err error) string {
	var dup *DuplicateKeyError
	if errors.As(err, &dup) {
		return dup.Constraint
	}
	return ""
}
