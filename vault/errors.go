package vault

import (
	"errors"
	"fmt"
)

// Kind is the stable error category reported to callers.
type Kind string

const (
	KindValidation        Kind = "ValidationError"
	KindAuthorization     Kind = "AuthorizationError"
	KindNotFound          Kind = "NotFoundError"
	KindState             Kind = "StateError"
	KindInsufficientFunds Kind = "InsufficientFundsError"
	KindLedger            Kind = "LedgerError"
	KindPersistence       Kind = "PersistenceError"
	// KindInternal covers failures of local processing unrelated to storage or the ledger.
	KindInternal Kind = "InternalError"
)

// Error is returned by every vault operation that fails.
type Error struct {
	Kind    Kind
	Message string
	// InvalidMembers lists unknown identities rejected by CreateVault.
	InvalidMembers []string
	// ReconciliationRequired is set when funds moved on the ledger but the
	// execution could not be recorded.
	ReconciliationRequired bool
	Cause                  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrState) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Kind sentinels for errors.Is.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrAuthorization     = &Error{Kind: KindAuthorization}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrState             = &Error{Kind: KindState}
	ErrInsufficientFunds = &Error{Kind: KindInsufficientFunds}
	ErrLedger            = &Error{Kind: KindLedger}
	ErrPersistence       = &Error{Kind: KindPersistence}
	ErrInternal          = &Error{Kind: KindInternal}
)

// KindOf returns the kind of err, or "" when err is not a vault error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

func authorizationError(format string, args ...any) *Error {
	return newError(KindAuthorization, format, args...)
}

func notFoundError(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func stateError(format string, args ...any) *Error {
	return newError(KindState, format, args...)
}

func ledgerError(cause error, format string, args ...any) *Error {
	e := newError(KindLedger, format, args...)
	e.Cause = cause
	return e
}

func persistenceError(cause error, format string, args ...any) *Error {
	e := newError(KindPersistence, format, args...)
	e.Cause = cause
	return e
}

func internalError(cause error, format string, args ...any) *Error {
	e := newError(KindInternal, format, args...)
	e.Cause = cause
	return e
}
