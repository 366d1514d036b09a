package domain

import "errors"

// Validation errors — rejected synchronously, no side effects.
var (
	ErrInvalidSelection = errors.New("invalid package or service selection")
	ErrZeroAmount       = errors.New("computed amount must be greater than zero")
	ErrNoClient         = errors.New("actor is not linked to a client")
)

// External-dependency errors.
var (
	ErrGatewayInit = errors.New("gateway rejected checkout initialization")
)

// Webhook authentication errors.
var (
	ErrMissingReference     = errors.New("event carries no transaction reference")
	ErrUnauthenticatedEvent = errors.New("event could not be authenticated")
)

// Integrity and transition errors.
var (
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrContractNotFound   = errors.New("contract not found")
	ErrNoPendingPayment   = errors.New("payment is not pending")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrDuplicateReference = errors.New("payment reference already exists")
	ErrMetadataIncomplete = errors.New("event metadata is missing required fields")
)

// Access and account errors.
var (
	ErrForbidden          = errors.New("access forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
