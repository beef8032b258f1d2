package host

import (
	"context"
	"fmt"
	"math/bits"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/illarion/solvault/internal/pda"
	"github.com/illarion/solvault/internal/storage"
)

// Context is what a program sees while it processes one instruction.
// Everything it writes goes through the surrounding storage transaction.
type Context struct {
	ctx       context.Context
	tx        *storage.Tx
	programID solana.PublicKey
	metas     []AccountMeta
	signature solana.Signature
	slot      uint64
	now       time.Time

	logs   []string
	events []storage.EventRecord
}

func (c *Context) Context() context.Context { return c.ctx }
func (c *Context) ProgramID() solana.PublicKey { return c.programID }
func (c *Context) Accounts() []AccountMeta { return c.metas }
func (c *Context) Signature() solana.Signature { return c.signature }
func (c *Context) Slot() uint64 { return c.slot }

func (c *Context) meta(key solana.PublicKey) (AccountMeta, error) {
	var found bool
	var m AccountMeta
	// The same key may appear more than once; privileges are the union.
	for _, am := range c.metas {
		if am.PublicKey.Equals(key) {
			found = true
			m.PublicKey = key
			m.IsSigner = m.IsSigner || am.IsSigner
			m.IsWritable = m.IsWritable || am.IsWritable
		}
	}
	if !found {
		return AccountMeta{}, fmt.Errorf("%w: %s", ErrAccountNotProvided, key)
	}
	return m, nil
}

// Account loads an account named by the instruction.
func (c *Context) Account(key solana.PublicKey) (*Account, error) {
	if _, err := c.meta(key); err != nil {
		return nil, err
	}
	return loadAccount(c.tx, key)
}

// RequireSigner fails unless key signed the transaction.
func (c *Context) RequireSigner(key solana.PublicKey) error {
	m, err := c.meta(key)
	if err != nil {
		return err
	}
	if !m.IsSigner {
		return fmt.Errorf("%w: %s", ErrAccountNotSigner, key)
	}
	return nil
}

// RequireWritable fails unless key is writable in this instruction.
func (c *Context) RequireWritable(key solana.PublicKey) error {
	m, err := c.meta(key)
	if err != nil {
		return err
	}
	if !m.IsWritable {
		return fmt.Errorf("%w: %s", ErrAccountNotWritable, key)
	}
	return nil
}

// CreateAccount allocates space bytes at the program-derived address
// held by authority, assigns it to owner and funds it with the rent-exempt
// minimum taken from payer. Lamports already sitting at the address count
// toward that minimum. It fails with ErrAccountInUse if the address holds
// data or is owned by a program.
func (c *Context) CreateAccount(payer solana.PublicKey, authority pda.Authority, space uint64, owner solana.PublicKey) (*Account, error) {
	if err := c.checkAuthority(authority); err != nil {
		return nil, err
	}
	address := authority.Address()

	if err := c.RequireSigner(payer); err != nil {
		return nil, err
	}
	if err := c.RequireWritable(payer); err != nil {
		return nil, err
	}
	if err := c.RequireWritable(address); err != nil {
		return nil, err
	}

	acct, err := loadAccount(c.tx, address)
	if err != nil {
		return nil, err
	}
	if len(acct.Data) > 0 || !acct.Owner.Equals(solana.SystemProgramID) {
		return nil, fmt.Errorf("%w: %s", ErrAccountInUse, address)
	}

	from, err := loadAccount(c.tx, payer)
	if err != nil {
		return nil, err
	}
	var topUp uint64
	if rent := MinimumBalance(space); acct.Lamports < rent {
		topUp = rent - acct.Lamports
	}
	if from.Lamports < topUp {
		return nil, fmt.Errorf("%w: %s has %d lamports, needs %d for rent", ErrInsufficientFunds, payer, from.Lamports, topUp)
	}

	from.Lamports -= topUp
	acct.Lamports += topUp
	acct.Owner = owner
	acct.Data = make([]byte, space)

	if err := storeAccount(c.tx, from); err != nil {
		return nil, err
	}
	if err := storeAccount(c.tx, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

// WriteData replaces the data of an account owned by the running program.
// The allocation size is fixed at creation.
func (c *Context) WriteData(key solana.PublicKey, data []byte) error {
	if err := c.RequireWritable(key); err != nil {
		return err
	}
	acct, err := loadAccount(c.tx, key)
	if err != nil {
		return err
	}
	if !acct.Owner.Equals(c.programID) {
		return fmt.Errorf("%w: %s is owned by %s", ErrAccountOwnedByWrongProgram, key, acct.Owner)
	}
	if len(data) != len(acct.Data) {
		return fmt.Errorf("%w: %s has %d bytes, got %d", ErrAccountDataSize, key, len(acct.Data), len(data))
	}
	acct.Data = append([]byte(nil), data...)
	return storeAccount(c.tx, acct)
}

// Transfer moves lamports from a signer to another account. The signer's
// own signature authorizes it.
func (c *Context) Transfer(from, to solana.PublicKey, lamports uint64) error {
	if err := c.RequireSigner(from); err != nil {
		return err
	}
	return c.transfer(from, to, lamports)
}

// TransferSigned moves lamports out of a program-derived address. The
// authority stands in for the signature no private key can produce.
func (c *Context) TransferSigned(authority pda.Authority, to solana.PublicKey, lamports uint64) error {
	if err := c.checkAuthority(authority); err != nil {
		return err
	}
	return c.transfer(authority.Address(), to, lamports)
}

func (c *Context) checkAuthority(authority pda.Authority) error {
	if !authority.Valid() {
		return ErrInvalidAuthority
	}
	if !authority.Program().Equals(c.programID) {
		return fmt.Errorf("%w: %s cannot sign for %s", ErrInvalidAuthority, c.programID, authority.Address())
	}
	return nil
}

func (c *Context) transfer(from, to solana.PublicKey, lamports uint64) error {
	if err := c.RequireWritable(from); err != nil {
		return err
	}
	if err := c.RequireWritable(to); err != nil {
		return err
	}

	src, err := loadAccount(c.tx, from)
	if err != nil {
		return err
	}
	if !src.Owner.Equals(solana.SystemProgramID) || len(src.Data) > 0 {
		return fmt.Errorf("%w: transfer source %s must be a system account", ErrAccountOwnedByWrongProgram, from)
	}
	if src.Lamports < lamports {
		return fmt.Errorf("%w: %s has %d lamports, needs %d", ErrInsufficientFunds, from, src.Lamports, lamports)
	}
	if from.Equals(to) {
		return nil
	}

	dst, err := loadAccount(c.tx, to)
	if err != nil {
		return err
	}
	sum, carry := bits.Add64(dst.Lamports, lamports, 0)
	if carry != 0 {
		return fmt.Errorf("%w: crediting %s", ErrArithmeticOverflow, to)
	}

	src.Lamports -= lamports
	dst.Lamports = sum
	if err := storeAccount(c.tx, src); err != nil {
		return err
	}
	return storeAccount(c.tx, dst)
}

// Emit records a program event. It is committed with the transaction.
func (c *Context) Emit(name string, data []byte) error {
	rec := storage.EventRecord{
		Slot:      c.slot,
		Signature: c.signature.String(),
		Program:   c.programID.String(),
		Name:      name,
		Data:      data,
		Time:      c.now,
	}
	if _, err := c.tx.AppendEvent(&rec); err != nil {
		return fmt.Errorf("failed to record event %s: %w", name, err)
	}
	c.events = append(c.events, rec)
	return nil
}

// Log appends a line to the transaction's program log.
func (c *Context) Log(format string, args ...any) {
	c.logs = append(c.logs, fmt.Sprintf(format, args...))
}
