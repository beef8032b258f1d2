package core

import "errors"

var (
	ErrAlreadyInitialized = errors.New("locker already initialized")
	ErrNotInitialized     = errors.New("locker not initialized")
	ErrProgramMismatch    = errors.New("ledger hosts a different program")
	ErrAmountUnitMismatch = errors.New("ledger uses a different amount unit")
	ErrInvalidTag         = errors.New("invalid transaction tag")
	ErrInvalidAmount      = errors.New("invalid amount")
)
