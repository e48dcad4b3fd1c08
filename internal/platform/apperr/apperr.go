// Package apperr holds the error sentinels shared by the domain services.
// Services wrap these with context; the HTTP layer maps them to status codes
// with errors.Is.
package apperr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("record already exists")
	ErrValidation = errors.New("validation failed")
	ErrIneligible = errors.New("resident is not eligible")
	ErrConflict   = errors.New("conflicting state")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Validation returns an ErrValidation carrying a field-level message. The
// message alone is what clients see.
func Validation(format string, args ...any) error {
	return &messageError{msg: fmt.Sprintf(format, args...), kind: ErrValidation}
}

// Ineligible returns an ErrIneligible with a client-facing message.
func Ineligible(format string, args ...any) error {
	return &messageError{msg: fmt.Sprintf(format, args...), kind: ErrIneligible}
}

// Duplicate returns an ErrDuplicate with a client-facing message. Callers
// should keep the phrase "already exists" in the message; clients match on it.
func Duplicate(format string, args ...any) error {
	return &messageError{msg: fmt.Sprintf(format, args...), kind: ErrDuplicate}
}

// NotFound returns an ErrNotFound naming the missing entity.
func NotFound(entity string) error {
	return &messageError{msg: entity + " not found", kind: ErrNotFound}
}

// Conflict returns an ErrConflict with a client-facing message.
func Conflict(format string, args ...any) error {
	return &messageError{msg: fmt.Sprintf(format, args...), kind: ErrConflict}
}

type messageError struct {
	msg  string
	kind error
}

func (e *messageError) Error() string { return e.msg }

func (e *messageError) Unwrap() error { return e.kind }

// FromDB translates driver errors into sentinels: no rows becomes a
// NotFound for entity and a unique violation becomes a Duplicate. Other
// errors are returned unchanged.
func FromDB(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound(entity)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return Duplicate("%s already exists", entity)
	}
	return err
}

// IsUniqueViolation reports whether err is a PostgreSQL unique violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
