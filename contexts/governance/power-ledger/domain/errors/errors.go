package errors

import "errors"

var (
	ErrInvalidPowerInput   = errors.New("invalid power ledger input")
	ErrPowerRecordNotFound = errors.New("power record not found")
	ErrDelegationNotFound  = errors.New("no active delegation")
	ErrDelegationExists    = errors.New("active delegation already exists")
	ErrSelfDelegation      = errors.New("cannot delegate to self")
	ErrNoSpendablePower    = errors.New("no own power to delegate")
	ErrOracleUnavailable   = errors.New("balance oracle unavailable")
	ErrConflict            = errors.New("power ledger conflict")
)
