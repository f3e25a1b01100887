package services

import (
	"errors"
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindNotFound          ErrorKind = "notFound"
	KindForbidden         ErrorKind = "forbidden"
	KindConflict          ErrorKind = "conflict"
	KindInvalidTransition ErrorKind = "invalidTransition"
	KindPromotionInvalid  ErrorKind = "promotionInvalid"
	KindPaymentMismatch   ErrorKind = "paymentMismatch"
)

// Error is the caller-visible failure of a core operation.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind so callers can write errors.Is(err, ErrNotFound).
// An invalid transition is also a conflict.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind == t.Kind {
		return true
	}
	return e.Kind == KindInvalidTransition && t.Kind == KindConflict
}

var (
	ErrValidation        = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrForbidden         = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrConflict          = &Error{Kind: KindConflict, Message: "conflict"}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition, Message: "invalid transition"}
	ErrPromotionInvalid  = &Error{Kind: KindPromotionInvalid, Message: "promotion invalid"}
	ErrPaymentMismatch   = &Error{Kind: KindPaymentMismatch, Message: "payment mismatch"}
)

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationf(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

func notFoundf(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func forbiddenf(format string, args ...interface{}) *Error {
	return newError(KindForbidden, format, args...)
}

func conflictf(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

func invalidTransitionf(format string, args ...interface{}) *Error {
	return newError(KindInvalidTransition, format, args...)
}

func promotionInvalidf(format string, args ...interface{}) *Error {
	return newError(KindPromotionInvalid, format, args...)
}

func paymentMismatchf(format string, args ...interface{}) *Error {
	return newError(KindPaymentMismatch, format, args...)
}

// AsError extracts the typed error, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsDomainError reports whether err is a typed core failure rather than an
// infrastructure error.
func IsDomainError(err error) bool {
	_, ok := AsError(err)
	return ok
}

const (
	mysqlDuplicateEntry  = 1062
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// translateStorageError turns constraint violations into Conflict so raw driver
// errors never reach callers. Other errors pass through untouched.
func translateStorageError(err error, what string) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &Error{Kind: KindConflict, Message: what, Err: err}
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return &Error{Kind: KindConflict, Message: what, Err: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgExclusionViolation:
			return &Error{Kind: KindConflict, Message: what, Err: err}
		}
	}
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "unique constraint failed") || strings.Contains(lower, "duplicate entry") {
		return &Error{Kind: KindConflict, Message: what, Err: err}
	}
	return err
}
