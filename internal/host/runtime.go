package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/bits"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/illarion/solvault/internal/logging"
	"github.com/illarion/solvault/internal/storage"
)

// Program processes instructions addressed to its ID.
type Program interface {
	ID() solana.PublicKey
	Process(c *Context, data []byte) error
}

// Receipt describes a committed transaction.
type Receipt struct {
	Signature solana.Signature
	Slot      uint64
	Logs      []string
	Events    []storage.EventRecord
}

// Runtime executes transactions against a ledger.
type Runtime struct {
	store    *storage.Storage
	programs map[solana.PublicKey]Program
	log      logging.Logger
	now      func() time.Time
}

// New creates a runtime over store with the given programs deployed.
func New(store *storage.Storage, log logging.Logger, programs ...Program) *Runtime {
	r := &Runtime{
		store:    store,
		programs: make(map[solana.PublicKey]Program, len(programs)),
		log:      log.With("component", "runtime"),
		now:      time.Now,
	}
	for _, p := range programs {
		r.programs[p.ID()] = p
	}
	return r
}

// Submit verifies and executes tx. Either every effect of the instruction
// is committed and a receipt returned, or nothing is and the error says why.
func (r *Runtime) Submit(ctx context.Context, tx *Transaction) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ix := tx.Instruction
	program, ok := r.programs[ix.ProgramID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProgram, ix.ProgramID)
	}
	if err := tx.verify(); err != nil {
		r.log.Warn(ctx, "transaction rejected", "program", ix.ProgramID, "error", err)
		return nil, err
	}

	sig := tx.ID()
	var receipt *Receipt
	err := r.store.Update(func(stx *storage.Tx) error {
		seen, err := stx.GetSignature(sig.String())
		if err != nil {
			return err
		}
		if seen != nil {
			return fmt.Errorf("%w: %s in slot %d", ErrAlreadyProcessed, sig, seen.Slot)
		}

		slot, err := stx.NextSlot()
		if err != nil {
			return err
		}

		c := &Context{
			ctx:       ctx,
			tx:        stx,
			programID: ix.ProgramID,
			metas:     ix.Accounts,
			signature: sig,
			slot:      slot,
			now:       r.now(),
		}
		if err := program.Process(c, ix.Data); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		receipt = &Receipt{Signature: sig, Slot: slot, Logs: c.logs, Events: c.events}
		return stx.PutSignature(sig.String(), &storage.SignatureRecord{Slot: slot, Time: c.now, Logs: c.logs})
	})
	if err != nil {
		r.log.Warn(ctx, "transaction failed", "signature", sig, "program", ix.ProgramID, "error", err)
		return nil, err
	}

	for _, line := range receipt.Logs {
		r.log.Debug(ctx, "program log", "signature", sig, "line", line)
	}
	r.log.Info(ctx, "transaction committed", "signature", sig, "slot", receipt.Slot, "events", len(receipt.Events))
	return receipt, nil
}

// Airdrop credits lamports to an address out of thin air. It exists for
// local ledgers only.
func (r *Runtime) Airdrop(ctx context.Context, to solana.PublicKey, lamports uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if lamports == 0 {
		return errors.New("airdrop amount must be positive")
	}
	err := r.store.Update(func(stx *storage.Tx) error {
		acct, err := loadAccount(stx, to)
		if err != nil {
			return err
		}
		sum, carry := bits.Add64(acct.Lamports, lamports, 0)
		if carry != 0 {
			return ErrArithmeticOverflow
		}
		acct.Lamports = sum
		return storeAccount(stx, acct)
	})
	if err != nil {
		return err
	}
	r.log.Info(ctx, "airdrop", "to", to, "lamports", lamports)
	return nil
}

// GetAccount returns the current state of key.
func (r *Runtime) GetAccount(ctx context.Context, key solana.PublicKey) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var acct *Account
	err := r.store.View(func(stx *storage.Tx) error {
		var err error
		acct, err = loadAccount(stx, key)
		return err
	})
	return acct, err
}

// Balance returns the lamports held by key.
func (r *Runtime) Balance(ctx context.Context, key solana.PublicKey) (uint64, error) {
	acct, err := r.GetAccount(ctx, key)
	if err != nil {
		return 0, err
	}
	return acct.Lamports, nil
}

// Events returns every event with sequence >= from.
func (r *Runtime) Events(ctx context.Context, from uint64) ([]storage.EventRecord, error) {
	var events []storage.EventRecord
	err := r.store.View(func(stx *storage.Tx) error {
		return stx.ForEachEvent(from, func(rec *storage.EventRecord) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			events = append(events, *rec)
			return nil
		})
	})
	return events, err
}

// AccountState is one account in a Snapshot.
type AccountState struct {
	Address  string `json:"address"`
	Lamports uint64 `json:"lamports"`
	Owner    string `json:"owner"`
	Data     []byte `json:"data,omitempty"`
}

// Snapshot is a point-in-time dump of every account.
type Snapshot struct {
	Slot     uint64         `json:"slot"`
	Accounts []AccountState `json:"accounts"`
}

// Snapshot dumps all accounts in address order.
func (r *Runtime) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Accounts: []AccountState{}}
	err := r.store.View(func(stx *storage.Tx) error {
		snap.Slot = stx.Slot()
		return stx.ForEachAccount(func(key []byte, rec *storage.AccountRecord) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			snap.Accounts = append(snap.Accounts, AccountState{
				Address:  solana.PublicKeyFromBytes(key).String(),
				Lamports: rec.Lamports,
				Owner:    rec.Owner,
				Data:     rec.Data,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// JSON renders the snapshot with one field per line so that it diffs well.
func (s *Snapshot) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
