package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/illarion/solvault/internal/config"
	"github.com/illarion/solvault/internal/git"
	"github.com/illarion/solvault/internal/host"
	"github.com/illarion/solvault/internal/locker"
	"github.com/illarion/solvault/internal/logging"
	"github.com/illarion/solvault/internal/storage"
)

// Solvault ties a ledger, the host runtime and the locker program together.
type Solvault struct {
	cfg       *config.Config
	log       logging.Logger
	programID solana.PublicKey
	store     *storage.Storage
	rt        *host.Runtime
}

// New opens (creating if needed) the ledger named by cfg.
func New(cfg *config.Config, log logging.Logger) (*Solvault, error) {
	programID, err := solana.PublicKeyFromBase58(cfg.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id %q: %w", cfg.ProgramID, err)
	}

	store, err := storage.Open(cfg.Ledger)
	if err != nil {
		return nil, err
	}

	initialized, err := store.IsInitialized()
	if err != nil {
		store.Close()
		return nil, err
	}
	if initialized {
		recorded, err := store.ProgramID()
		if err != nil {
			store.Close()
			return nil, err
		}
		if recorded != programID.String() {
			store.Close()
			return nil, fmt.Errorf("%w: %s (configured %s)", ErrProgramMismatch, recorded, programID)
		}
		unit, err := store.AmountUnit()
		if err != nil {
			store.Close()
			return nil, err
		}
		if unit != string(cfg.AmountUnit) {
			store.Close()
			return nil, fmt.Errorf("%w: ledger records %s amounts (configured %s)", ErrAmountUnitMismatch, unit, cfg.AmountUnit)
		}
	}

	scale := uint64(1)
	if cfg.AmountUnit == config.AmountScaled {
		scale = locker.LamportsPerScaledUnit
	}
	program := locker.New(programID, locker.Options{DepositScale: scale})

	return &Solvault{
		cfg:       cfg,
		log:       log,
		programID: programID,
		store:     store,
		rt:        host.New(store, log, program),
	}, nil
}

// Close releases the ledger.
func (s *Solvault) Close() error {
	return s.store.Close()
}

// ProgramID returns the locker program address.
func (s *Solvault) ProgramID() solana.PublicKey {
	return s.programID
}

// Addresses returns the locker state and vault addresses.
func (s *Solvault) Addresses() (lockerKey, vault solana.PublicKey, err error) {
	return locker.Addresses(s.programID)
}

// ensureLedger lays down the ledger buckets on first use.
func (s *Solvault) ensureLedger() error {
	err := s.store.Initialize(s.programID.String(), string(s.cfg.AmountUnit))
	if err != nil && !errors.Is(err, storage.ErrAlreadyExists) {
		return err
	}
	if err == nil {
		s.log.Info(context.Background(), "ledger created", "path", s.store.Path(), "program", s.programID)
	}
	return nil
}

// Init runs the initialize instruction with admin as the payer and the
// recorded admin.
func (s *Solvault) Init(ctx context.Context, admin solana.PrivateKey) (*host.Receipt, error) {
	if err := s.ensureLedger(); err != nil {
		return nil, err
	}
	ix, err := locker.NewInitializeInstruction(s.programID, admin.PublicKey())
	if err != nil {
		return nil, err
	}
	receipt, err := s.submit(ctx, ix, admin)
	if errors.Is(err, host.ErrAccountInUse) {
		return nil, ErrAlreadyInitialized
	}
	return receipt, err
}

// Deposit runs add_funds, moving amount lamports from user to the vault.
func (s *Solvault) Deposit(ctx context.Context, user solana.PrivateKey, amount uint64, tag [32]byte) (*host.Receipt, error) {
	ix, err := locker.NewAddFundsInstruction(s.programID, user.PublicKey(), amount, tag)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, ix, user)
}

// Recover runs recover_tokens, moving amount lamports from the vault to
// recipient. Both admin and recipient sign.
func (s *Solvault) Recover(ctx context.Context, admin, recipient solana.PrivateKey, amount uint64) (*host.Receipt, error) {
	ix, err := locker.NewRecoverTokensInstruction(s.programID, admin.PublicKey(), recipient.PublicKey(), amount)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, ix, admin, recipient)
}

func (s *Solvault) submit(ctx context.Context, ix host.Instruction, signers ...solana.PrivateKey) (*host.Receipt, error) {
	tx := host.NewTransaction(ix)
	if err := tx.Sign(signers...); err != nil {
		return nil, err
	}
	receipt, err := s.rt.Submit(ctx, tx)
	if errors.Is(err, storage.ErrNotInitialized) || errors.Is(err, host.ErrAccountNotInitialized) {
		return nil, fmt.Errorf("%w: %w", ErrNotInitialized, err)
	}
	return receipt, err
}

// Airdrop credits lamports to key, creating the ledger if needed.
func (s *Solvault) Airdrop(ctx context.Context, key solana.PublicKey, lamports uint64) error {
	if lamports == 0 {
		return fmt.Errorf("%w: airdrop of zero lamports", ErrInvalidAmount)
	}
	if err := s.ensureLedger(); err != nil {
		return err
	}
	return s.rt.Airdrop(ctx, key, lamports)
}

// Balance returns the lamports held by key.
func (s *Solvault) Balance(ctx context.Context, key solana.PublicKey) (uint64, error) {
	return s.rt.Balance(ctx, key)
}

// Status is a read-only summary of the ledger and the locker.
type Status struct {
	Ledger       string
	ProgramID    solana.PublicKey
	AmountUnit   config.AmountUnit
	Locker       solana.PublicKey
	Vault        solana.PublicKey
	Initialized  bool
	Admin        solana.PublicKey
	VaultBalance uint64
	Slot         uint64
	EventCount   int
	Modified     time.Time
	Git          *git.GitStatus
}

// Status gathers the ledger status. It needs no wallet.
func (s *Solvault) Status(ctx context.Context) (*Status, error) {
	lockerKey, vault, err := s.Addresses()
	if err != nil {
		return nil, err
	}
	st := &Status{
		Ledger:     s.store.Path(),
		ProgramID:  s.programID,
		AmountUnit: s.cfg.AmountUnit,
		Locker:     lockerKey,
		Vault:      vault,
	}

	ledgerDir := filepath.Dir(s.store.Path())
	st.Git = git.Check(ledgerDir, []string{filepath.Base(s.store.Path()), relativeTo(ledgerDir, s.cfg.KeystoreDir)})

	if ok, err := s.store.IsInitialized(); err != nil || !ok {
		return st, err
	}

	if st.Modified, err = s.store.GetModified(); err != nil {
		return nil, err
	}
	err = s.store.View(func(tx *storage.Tx) error {
		st.Slot = tx.Slot()
		return tx.ForEachEvent(0, func(*storage.EventRecord) error {
			st.EventCount++
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if st.VaultBalance, err = s.rt.Balance(ctx, vault); err != nil {
		return nil, err
	}

	state, err := locker.FetchLocker(ctx, s.rt, s.programID)
	switch {
	case errors.Is(err, host.ErrAccountNotInitialized):
	case err != nil:
		return nil, err
	default:
		st.Initialized = true
		st.Admin = state.Admin
	}
	return st, nil
}

func relativeTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}

// Event is a stored event with its payload decoded.
type Event struct {
	Seq       uint64
	Slot      uint64
	Signature string
	Name      string
	Time      time.Time
	Payload   any
}

// Events returns events with sequence >= from, decoded where the locker
// program knows the layout.
func (s *Solvault) Events(ctx context.Context, from uint64) ([]Event, error) {
	records, err := s.rt.Events(ctx, from)
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(records))
	for _, rec := range records {
		ev := Event{Seq: rec.Seq, Slot: rec.Slot, Signature: rec.Signature, Name: rec.Name, Time: rec.Time}
		payload, err := locker.DecodeEvent(rec.Data)
		if err != nil {
			s.log.Warn(ctx, "undecodable event", "seq", rec.Seq, "name", rec.Name, "error", err)
		} else {
			ev.Payload = payload
		}
		events = append(events, ev)
	}
	return events, nil
}

// Snapshot returns the JSON dump of every account.
func (s *Solvault) Snapshot(ctx context.Context) ([]byte, error) {
	snap, err := s.rt.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.JSON()
}

// Diff compares a saved snapshot against the current ledger. It returns ""
// when nothing changed.
func (s *Solvault) Diff(ctx context.Context, saved []byte) (string, error) {
	current, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return UnifiedDiff("snapshot", saved, current), nil
}

// Compact rewrites the ledger file to reclaim free pages.
func (s *Solvault) Compact() error {
	if ok, err := s.store.IsInitialized(); err != nil {
		return err
	} else if !ok {
		return storage.ErrNotInitialized
	}
	return s.store.Compact()
}
