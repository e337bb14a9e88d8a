package card

import "errors"

// Domain error kinds. Callers branch on these with errors.Is; the HTTP layer
// maps each to a stable string code for client compatibility.
var (
	ErrCardAlreadyExists   = errors.New("card already exists")
	ErrCardNotFound        = errors.New("card not found")
	ErrInvalidCardAddress  = errors.New("invalid card address")
	ErrInvalidDailyLimit   = errors.New("invalid daily limit")
	ErrNotCardOwner        = errors.New("not card owner")
	ErrNotCardAddress      = errors.New("not card address")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrCardInactive        = errors.New("card inactive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDailyLimitExceeded  = errors.New("daily limit exceeded")
	ErrAssetNotConfigured  = errors.New("asset not configured")
)
