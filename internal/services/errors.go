// internal/services/errors.go
package services

import (
	"errors"
	"time"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrNoUnits            = errors.New("invalid input: no units")
	ErrInvalidCost        = errors.New("invalid input: costs must not be negative")
	ErrInvalidSize        = errors.New("invalid input: size label is required")
	ErrInvalidQuantity    = errors.New("invalid input: quantity must not be negative")
	ErrInsufficientStock  = errors.New("not enough stock for size")
	ErrSaleNotFound       = errors.New("sale not found")
	ErrAlreadyReverted    = errors.New("this sale has already been reverted")
	ErrRevertFailed       = errors.New("error reverting sale")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrLastAdmin          = errors.New("cannot delete the last admin user")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrPasswordMismatch   = errors.New("new passwords do not match")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters long")
	ErrInvalidWindow      = errors.New("invalid date range")
)

// RevertError carries the persistence failure that aborted a revert.
type RevertError struct {
	Cause error
}

func (e *RevertError) Error() string {
	return ErrRevertFailed.Error() + ": " + e.Cause.Error()
}

func (e *RevertError) Unwrap() error {
	return e.Cause
}

func (e *RevertError) Is(target error) bool {
	return target == ErrRevertFailed
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
