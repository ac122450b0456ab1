package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrValidation         = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrNoMembers         = errors.New("no members found")
)

// Bill errors
var (
	ErrBillNotFound        = errors.New("bill not found")
	ErrBillAlreadyPaid     = errors.New("bill is already paid")
	ErrBillNotVerified     = errors.New("only verified bills can be unverified")
	ErrInvalidBillStatus   = errors.New("invalid bill status transition")
	ErrBillStatusChanged   = errors.New("bill status was changed by another request")
	ErrTransactionNotFound = errors.New("transaction not found")
)
