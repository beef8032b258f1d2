package locker

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/illarion/solvault/internal/host"
	"github.com/illarion/solvault/internal/pda"
)

// LamportsPerScaledUnit is the divisor applied to FundsAddedEvent amounts
// when the program reports deposits in scaled units.
const LamportsPerScaledUnit = 10_000_000

// Options configure the program.
type Options struct {
	// DepositScale divides the amount reported in FundsAddedEvent.
	// 0 or 1 reports raw lamports.
	DepositScale uint64
}

// Program implements host.Program.
type Program struct {
	id    solana.PublicKey
	scale uint64
}

func New(id solana.PublicKey, opts Options) *Program {
	scale := opts.DepositScale
	if scale == 0 {
		scale = 1
	}
	return &Program{id: id, scale: scale}
}

func (p *Program) ID() solana.PublicKey { return p.id }

// Process dispatches on the 8-byte instruction discriminator.
func (p *Program) Process(c *host.Context, data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: missing discriminator", host.ErrInvalidInstruction)
	}
	var disc [8]byte
	copy(disc[:], data[:8])
	args := data[8:]

	switch disc {
	case initializeDiscriminator:
		return p.initialize(c)
	case addFundsDiscriminator:
		var in AddFundsArgs
		if err := bin.NewBorshDecoder(args).Decode(&in); err != nil {
			return fmt.Errorf("%w: add_funds: %v", host.ErrInvalidInstruction, err)
		}
		return p.addFunds(c, in)
	case recoverTokensDiscriminator:
		var in RecoverTokensArgs
		if err := bin.NewBorshDecoder(args).Decode(&in); err != nil {
			return fmt.Errorf("%w: recover_tokens: %v", host.ErrInvalidInstruction, err)
		}
		return p.recoverTokens(c, in)
	}
	return fmt.Errorf("%w: unknown instruction %x", host.ErrInvalidInstruction, disc)
}

func accountKeys(c *host.Context, n int) ([]solana.PublicKey, error) {
	metas := c.Accounts()
	if len(metas) < n {
		return nil, fmt.Errorf("%w: want %d accounts, got %d", host.ErrAccountNotProvided, n, len(metas))
	}
	keys := make([]solana.PublicKey, n)
	for i := range keys {
		keys[i] = metas[i].PublicKey
	}
	return keys, nil
}

func checkSystemProgram(key solana.PublicKey) error {
	if !key.Equals(solana.SystemProgramID) {
		return fmt.Errorf("%w: expected system program, got %s", host.ErrInvalidProgramID, key)
	}
	return nil
}

// uninitialized reports whether the locker address has not been allocated
// yet. It may already hold lamports sent to it before initialize.
func uninitialized(acct *host.Account) bool {
	return len(acct.Data) == 0 && acct.Owner.Equals(solana.SystemProgramID)
}

func (p *Program) isLockerAddress(key solana.PublicKey) bool {
	addr, _, err := pda.Derive(pda.LockerSeed, p.id)
	return err == nil && addr.Equals(key)
}

// loadLocker reads and type-checks a Locker account.
func (p *Program) loadLocker(c *host.Context, key solana.PublicKey) (*Locker, error) {
	acct, err := c.Account(key)
	if err != nil {
		return nil, err
	}
	if acct.Empty() || (uninitialized(acct) && p.isLockerAddress(key)) {
		return nil, fmt.Errorf("%w: %s", host.ErrAccountNotInitialized, key)
	}
	if !acct.Owner.Equals(p.id) {
		return nil, fmt.Errorf("%w: %s is owned by %s", host.ErrAccountOwnedByWrongProgram, key, acct.Owner)
	}
	return UnmarshalLocker(acct.Data)
}

// initialize accounts: locker (w), vault (w), admin (s, w), system program.
func (p *Program) initialize(c *host.Context) error {
	keys, err := accountKeys(c, 4)
	if err != nil {
		return err
	}
	lockerKey, vaultKey, admin := keys[0], keys[1], keys[2]

	if err := checkSystemProgram(keys[3]); err != nil {
		return err
	}
	if err := c.RequireSigner(admin); err != nil {
		return err
	}
	if err := c.RequireWritable(vaultKey); err != nil {
		return err
	}

	lockerAddr, lockerBump, err := pda.Derive(pda.LockerSeed, p.id)
	if err != nil {
		return err
	}
	if !lockerAddr.Equals(lockerKey) {
		return fmt.Errorf("%w: locker: expected %s, got %s", pda.ErrSeedsMismatch, lockerAddr, lockerKey)
	}
	vaultAddr, vaultBump, err := pda.Derive(pda.VaultSeed, p.id)
	if err != nil {
		return err
	}
	if !vaultAddr.Equals(vaultKey) {
		return fmt.Errorf("%w: vault: expected %s, got %s", pda.ErrSeedsMismatch, vaultAddr, vaultKey)
	}

	auth, err := pda.ProveAuthority(p.id, lockerAddr, pda.LockerSeed, lockerBump)
	if err != nil {
		return err
	}
	if _, err := c.CreateAccount(admin, auth, LockerSize, p.id); err != nil {
		return err
	}

	state := Locker{Admin: admin, Bump: lockerBump, VaultBump: vaultBump}
	data, err := state.MarshalAccount()
	if err != nil {
		return err
	}
	if err := c.WriteData(lockerKey, data); err != nil {
		return err
	}

	c.Log("Locker initialized by %s", admin)
	return nil
}

// add_funds accounts: locker, vault (w), user (s, w), system program.
func (p *Program) addFunds(c *host.Context, args AddFundsArgs) error {
	keys, err := accountKeys(c, 4)
	if err != nil {
		return err
	}
	lockerKey, vaultKey, user := keys[0], keys[1], keys[2]

	if err := checkSystemProgram(keys[3]); err != nil {
		return err
	}
	state, err := p.loadLocker(c, lockerKey)
	if err != nil {
		return err
	}
	if err := pda.Verify(pda.LockerSeed, state.Bump, p.id, lockerKey); err != nil {
		return err
	}
	if err := pda.Verify(pda.VaultSeed, state.VaultBump, p.id, vaultKey); err != nil {
		return err
	}
	if err := c.RequireSigner(user); err != nil {
		return err
	}

	if args.Amount == 0 {
		return ErrNoFundsSent
	}

	if err := c.Transfer(user, vaultKey, args.Amount); err != nil {
		return err
	}

	return p.emit(c, fundsAddedDiscriminator, FundsAddedEventName, &FundsAddedEvent{
		User:            user,
		SolAmount:       args.Amount / p.scale,
		TransactionHash: args.TransactionHash,
	})
}

// recover_tokens accounts: locker, vault (w), recipient (s, w), admin (s, w),
// system program.
func (p *Program) recoverTokens(c *host.Context, args RecoverTokensArgs) error {
	keys, err := accountKeys(c, 5)
	if err != nil {
		return err
	}
	lockerKey, vaultKey, recipient, admin := keys[0], keys[1], keys[2], keys[3]

	if err := checkSystemProgram(keys[4]); err != nil {
		return err
	}
	state, err := p.loadLocker(c, lockerKey)
	if err != nil {
		return err
	}
	if err := pda.Verify(pda.VaultSeed, state.VaultBump, p.id, vaultKey); err != nil {
		return err
	}
	if err := c.RequireSigner(recipient); err != nil {
		return err
	}
	if err := c.RequireSigner(admin); err != nil {
		return err
	}

	if !admin.Equals(state.Admin) {
		return ErrUnauthorized
	}

	auth, err := pda.ProveAuthority(p.id, vaultKey, pda.VaultSeed, state.VaultBump)
	if err != nil {
		return err
	}
	if err := c.TransferSigned(auth, recipient, args.Amount); err != nil {
		return err
	}

	return p.emit(c, tokenRecoveredDiscriminator, TokenRecoveredEventName, &TokenRecoveredEvent{
		Admin:  admin,
		Amount: args.Amount,
	})
}

func (p *Program) emit(c *host.Context, disc [8]byte, name string, ev any) error {
	data, err := encodeEvent(disc, ev)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return c.Emit(name, data)
}

// FetchLocker reads the deployed Locker state through rt.
// It returns host.ErrAccountNotInitialized before initialize has run.
func FetchLocker(ctx context.Context, rt *host.Runtime, programID solana.PublicKey) (*Locker, error) {
	lockerKey, _, err := Addresses(programID)
	if err != nil {
		return nil, err
	}
	acct, err := rt.GetAccount(ctx, lockerKey)
	if err != nil {
		return nil, err
	}
	if uninitialized(acct) {
		return nil, host.ErrAccountNotInitialized
	}
	if !acct.Owner.Equals(programID) {
		return nil, host.ErrAccountOwnedByWrongProgram
	}
	return UnmarshalLocker(acct.Data)
}
