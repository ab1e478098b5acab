package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures that cross the command boundary
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation_error"
	KindNotFound         ErrorKind = "not_found"
	KindDuplicateWord    ErrorKind = "duplicate_word"
	KindStoreUnavailable ErrorKind = "store_unavailable"
	KindQuery            ErrorKind = "query_error"
)

// Transport-level kinds, written by the HTTP layer only. No command
// returns them.
const (
	KindUnauthorized ErrorKind = "unauthorized"
	KindInternal     ErrorKind = "internal"
)

// Error is a classified failure with a user-facing message.
// Op and Key identify the operation and the card it concerned.
type Error struct {
	Kind    ErrorKind
	Op      string
	Key     string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels below, so errors.Is(err, ErrNotFound) works
// for any not-found error regardless of operation.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Key == "" && t.Kind == e.Kind
}

var (
	ErrValidation       = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrNotFound         = &Error{Kind: KindNotFound, Message: "word card not found"}
	ErrDuplicateWord    = &Error{Kind: KindDuplicateWord, Message: "word card already exists"}
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable, Message: "database unavailable"}
	ErrQuery            = &Error{Kind: KindQuery, Message: "query failed"}
)

// NewValidationError reports bad input caught before the store is touched
func NewValidationError(op, key, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Key: key, Message: message}
}

// NewNotFoundError reports an id-keyed mutation that matched no row
func NewNotFoundError(op string, id int64) *Error {
	return &Error{
		Kind:    KindNotFound,
		Op:      op,
		Key:     fmt.Sprint(id),
		Message: fmt.Sprintf("word card %d not found", id),
	}
}

// NewDuplicateWordError reports a uniqueness violation on word
func NewDuplicateWordError(op, word string, err error) *Error {
	return &Error{
		Kind:    KindDuplicateWord,
		Op:      op,
		Key:     word,
		Message: fmt.Sprintf("word card %q already exists", word),
		Err:     err,
	}
}

// NewStoreUnavailableError reports a failure to open or initialise the store
func NewStoreUnavailableError(op string, err error) *Error {
	return &Error{
		Kind:    KindStoreUnavailable,
		Op:      op,
		Message: fmt.Sprintf("database unavailable: %v", err),
		Err:     err,
	}
}

// NewQueryError reports any other store fault
func NewQueryError(op, key string, err error) *Error {
	msg := fmt.Sprintf("%s failed: %v", op, err)
	if key != "" {
		msg = fmt.Sprintf("%s failed for %s: %v", op, key, err)
	}
	return &Error{Kind: KindQuery, Op: op, Key: key, Message: msg, Err: err}
}

// KindOf returns the kind of err. Unclassified errors count as query errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindQuery
}
