package host

import "errors"

// Host-level failures. They abort the whole transaction and carry no
// program-specific error code.
var (
	ErrUnknownProgram               = errors.New("program not deployed")
	ErrMissingSignature             = errors.New("missing required signature")
	ErrAlreadyProcessed             = errors.New("transaction already processed")
	ErrAccountNotProvided           = errors.New("account not provided to instruction")
	ErrAccountNotSigner             = errors.New("account is not a signer")
	ErrAccountNotWritable           = errors.New("account is not writable")
	ErrAccountInUse                 = errors.New("account already in use")
	ErrAccountNotInitialized        = errors.New("account not initialized")
	ErrAccountOwnedByWrongProgram   = errors.New("account owned by a different program")
	ErrAccountDiscriminatorMismatch = errors.New("account discriminator mismatch")
	ErrAccountDataSize              = errors.New("account data size mismatch")
	ErrInsufficientFunds            = errors.New("insufficient funds")
	ErrInvalidAuthority             = errors.New("invalid program signing authority")
	ErrInvalidInstruction           = errors.New("invalid instruction data")
	ErrInvalidProgramID             = errors.New("program id mismatch")
	ErrArithmeticOverflow           = errors.New("arithmetic overflow")
)
