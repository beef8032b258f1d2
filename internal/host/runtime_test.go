package host

import (
	"context"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illarion/solvault/internal/logging"
	"github.com/illarion/solvault/internal/pda"
	"github.com/illarion/solvault/internal/storage"
)

var testSeed = []byte("test")

const (
	opTransfer = iota + 1
	opTransferThenFail
	opCreate
	opTransferSigned
	opTransferForeign
)

var errAfterTransfer = errors.New("fail after transfer")

// testProgram is a tiny program exercising each Context primitive.
type testProgram struct {
	id solana.PublicKey
}

func (p *testProgram) ID() solana.PublicKey { return p.id }

func (p *testProgram) Process(c *Context, data []byte) error {
	if len(data) < 1 {
		return ErrInvalidInstruction
	}
	accounts := c.Accounts()
	var amount uint64
	if len(data) >= 9 {
		amount = binary.LittleEndian.Uint64(data[1:9])
	}

	switch data[0] {
	case opTransfer, opTransferThenFail:
		if err := c.Transfer(accounts[0].PublicKey, accounts[1].PublicKey, amount); err != nil {
			return err
		}
		if err := c.Emit("Moved", data[1:9]); err != nil {
			return err
		}
		c.Log("moved %d", amount)
		if data[0] == opTransferThenFail {
			return errAfterTransfer
		}
		return nil
	case opCreate:
		addr, bump, err := pda.Derive(testSeed, p.id)
		if err != nil {
			return err
		}
		auth, err := pda.ProveAuthority(p.id, addr, testSeed, bump)
		if err != nil {
			return err
		}
		if _, err := c.CreateAccount(accounts[0].PublicKey, auth, 8, p.id); err != nil {
			return err
		}
		return c.WriteData(addr, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	case opTransferSigned, opTransferForeign:
		owner := p.id
		if data[0] == opTransferForeign {
			owner = solana.SystemProgramID
		}
		addr, bump, err := pda.Derive(testSeed, owner)
		if err != nil {
			return err
		}
		auth, err := pda.ProveAuthority(owner, addr, testSeed, bump)
		if err != nil {
			return err
		}
		return c.TransferSigned(auth, accounts[1].PublicKey, amount)
	}
	return ErrInvalidInstruction
}

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

func newTestRuntime(t *testing.T) (*Runtime, *testProgram) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "ledger.solvault"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	prog := &testProgram{id: newKey(t).PublicKey()}
	require.NoError(t, db.Initialize(prog.id.String(), "raw"))
	return New(db, logging.Discard(), prog), prog
}

func opData(op byte, amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = op
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}

func signed(t *testing.T, ix Instruction, keys ...solana.PrivateKey) *Transaction {
	t.Helper()
	tx := NewTransaction(ix)
	require.NoError(t, tx.Sign(keys...))
	return tx
}

func TestSubmit_TransferCommits(t *testing.T) {
	ctx := context.Background()
	rt, prog := newTestRuntime(t)
	from, to := newKey(t), newKey(t)
	require.NoError(t, rt.Airdrop(ctx, from.PublicKey(), 1000))

	tx := signed(t, Instruction{
		ProgramID: prog.id,
		Accounts:  []AccountMeta{Signer(from.PublicKey()), Writable(to.PublicKey())},
		Data:      opData(opTransfer, 400),
	}, from)

	receipt, err := rt.Submit(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.Slot)
	assert.Equal(t, []string{"moved 400"}, receipt.Logs)
	require.Len(t, receipt.Events, 1)
	assert.Equal(t, "Moved", receipt.Events[0].Name)
	assert.Equal(t, tx.ID().String(), receipt.Events[0].Signature)

	bal, err := rt.Balance(ctx, from.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint64(600), bal)
	bal, err = rt.Balance(ctx, to.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint64(400), bal)

	events, err := rt.Events(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestSubmit_FailureRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	rt, prog := newTestRuntime(t)
	from, to := newKey(t), newKey(t)
	require.NoError(t, rt.Airdrop(ctx, from.PublicKey(), 1000))

	tx := signed(t, Instruction{
		ProgramID: prog.id,
		Accounts:  []AccountMeta{Signer(from.PublicKey()), Writable(to.PublicKey())},
		Data:      opData(opTransferThenFail, 400),
	}, from)

	_, err := rt.Submit(ctx, tx)
	require.ErrorIs(t, err, errAfterTransfer)

	bal, err := rt.Balance(ctx, from.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), bal)
	bal, err = rt.Balance(ctx, to.PublicKey())
	require.NoError(t, err)
	assert.Zero(t, bal)

	events, err := rt.Events(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, events)

	// A failed transaction is not recorded, so it may be retried.
	_, err = rt.Submit(ctx, tx)
	assert.ErrorIs(t, err, errAfterTransfer)
}

func TestSubmit_ReplayRejected(t *testing.T) {
	ctx := context.Background()
	rt, prog := newTestRuntime(t)
	from, to := newKey(t), newKey(t)
	require.NoError(t, rt.Airdrop(ctx, from.PublicKey(), 1000))

	tx := signed(t, Instruction{
		ProgramID: prog.id,
		Accounts:  []AccountMeta{Signer(from.PublicKey()), Writable(to.PublicKey())},
		Data:      opData(opTransfer, 100),
	}, from)

	_, err := rt.Submit(ctx, tx)
	require.NoError(t, err)
	_, err = rt.Submit(ctx, tx)
	require.ErrorIs(t, err, ErrAlreadyProcessed)

	bal, err := rt.Balance(ctx, to.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint64(100), bal, "replay must not move funds twice")
}

func TestSubmit_SignatureChecks(t *testing.T) {
	ctx := context.Background()
	rt, prog := newTestRuntime(t)
	from, to, other := newKey(t), newKey(t), newKey(t)
	require.NoError(t, rt.Airdrop(ctx, from.PublicKey(), 1000))

	ix := Instruction{
		ProgramID: prog.id,
		Accounts:  []AccountMeta{Signer(from.PublicKey()), Writable(to.PublicKey())},
		Data:      opData(opTransfer, 100),
	}

	t.Run("unsigned", func(t *testing.T) {
		_, err := rt.Submit(ctx, NewTransaction(ix))
		assert.ErrorIs(t, err, ErrMissingSignature)
	})

	t.Run("wrong key", func(t *testing.T) {
		tx := NewTransaction(ix)
		assert.ErrorIs(t, tx.Sign(other), ErrMissingSignature)
	})

	t.Run("forged signature", func(t *testing.T) {
		tx := NewTransaction(ix)
		msg, err := tx.Message()
		require.NoError(t, err)
		sig, err := other.Sign(msg)
		require.NoError(t, err)
		tx.Signatures = []solana.Signature{sig}
		_, err = rt.Submit(ctx, tx)
		assert.ErrorIs(t, err, ErrMissingSignature)
	})

	t.Run("tampered after signing", func(t *testing.T) {
		tx := signed(t, ix, from)
		tx.Instruction.Data = opData(opTransfer, 999)
		_, err := rt.Submit(ctx, tx)
		assert.ErrorIs(t, err, ErrMissingSignature)
	})

	t.Run("source not a signer", func(t *testing.T) {
		tx := signed(t, Instruction{
			ProgramID: prog.id,
			Accounts:  []AccountMeta{Writable(from.PublicKey()), Writable(to.PublicKey()), Signer(other.PublicKey())},
			Data:      opData(opTransfer, 100),
		}, other)
		_, err := rt.Submit(ctx, tx)
		assert.ErrorIs(t, err, ErrAccountNotSigner)
	})

	bal, err := rt.Balance(ctx, from.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), bal)
}

func TestSubmit_UnknownProgram(t *testing.T) {
	rt, _ := newTestRuntime(t)
	payer := newKey(t)
	tx := signed(t, Instruction{
		ProgramID: newKey(t).PublicKey(),
		Accounts:  []AccountMeta{Signer(payer.PublicKey())},
	}, payer)

	_, err := rt.Submit(context.Background(), tx)
	assert.ErrorIs(t, err, ErrUnknownProgram)
}

func TestSubmit_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	rt, prog := newTestRuntime(t)
	from, to := newKey(t), newKey(t)
	require.NoError(t, rt.Airdrop(ctx, from.PublicKey(), 10))

	tx := signed(t, Instruction{
		ProgramID: prog.id,
		Accounts:  []AccountMeta{Signer(from.PublicKey()), Writable(to.PublicKey())},
		Data:      opData(opTransfer, 11),
	}, from)

	_, err := rt.Submit(ctx, tx)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()
	rt, prog := newTestRuntime(t)
	payer := newKey(t)
	require.NoError(t, rt.Airdrop(ctx, payer.PublicKey(), 10_000_000))

	addr, _, err := pda.Derive(testSeed, prog.id)
	require.NoError(t, err)

	create := func() error {
		tx := signed(t, Instruction{
			ProgramID: prog.id,
			Accounts:  []AccountMeta{Signer(payer.PublicKey()), Writable(addr)},
			Data:      []byte{opCreate},
		}, payer)
		_, err := rt.Submit(ctx, tx)
		return err
	}

	require.NoError(t, create())

	acct, err := rt.GetAccount(ctx, addr)
	require.NoError(t, err)
	assert.True(t, acct.Owner.Equals(prog.id))
	assert.Equal(t, MinimumBalance(8), acct.Lamports)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, acct.Data)

	bal, err := rt.Balance(ctx, payer.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000)-MinimumBalance(8), bal)

	assert.ErrorIs(t, create(), ErrAccountInUse)
}

func TestCreateAccount_PrefundedAddress(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		prefund  uint64
		wantPaid uint64
		wantHeld uint64
	}{
		{"below rent", 1_000, MinimumBalance(8) - 1_000, MinimumBalance(8)},
		{"above rent", MinimumBalance(8) + 5, 0, MinimumBalance(8) + 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, prog := newTestRuntime(t)
			payer := newKey(t)
			require.NoError(t, rt.Airdrop(ctx, payer.PublicKey(), 10_000_000))

			addr, _, err := pda.Derive(testSeed, prog.id)
			require.NoError(t, err)
			require.NoError(t, rt.Airdrop(ctx, addr, tt.prefund))

			tx := signed(t, Instruction{
				ProgramID: prog.id,
				Accounts:  []AccountMeta{Signer(payer.PublicKey()), Writable(addr)},
				Data:      []byte{opCreate},
			}, payer)
			_, err = rt.Submit(ctx, tx)
			require.NoError(t, err)

			acct, err := rt.GetAccount(ctx, addr)
			require.NoError(t, err)
			assert.True(t, acct.Owner.Equals(prog.id))
			assert.Equal(t, tt.wantHeld, acct.Lamports)

			bal, err := rt.Balance(ctx, payer.PublicKey())
			require.NoError(t, err)
			assert.Equal(t, uint64(10_000_000)-tt.wantPaid, bal)
		})
	}
}

func TestTransferSigned(t *testing.T) {
	ctx := context.Background()
	rt, prog := newTestRuntime(t)
	payer, to := newKey(t), newKey(t)

	vault, _, err := pda.Derive(testSeed, prog.id)
	require.NoError(t, err)
	require.NoError(t, rt.Airdrop(ctx, vault, 500))

	tx := signed(t, Instruction{
		ProgramID: prog.id,
		Accounts:  []AccountMeta{Writable(vault), Writable(to.PublicKey()), Signer(payer.PublicKey())},
		Data:      opData(opTransferSigned, 200),
	}, payer)
	_, err = rt.Submit(ctx, tx)
	require.NoError(t, err)

	bal, err := rt.Balance(ctx, to.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint64(200), bal)

	foreign, _, err := pda.Derive(testSeed, solana.SystemProgramID)
	require.NoError(t, err)
	tx = signed(t, Instruction{
		ProgramID: prog.id,
		Accounts:  []AccountMeta{Writable(foreign), Writable(to.PublicKey()), Signer(payer.PublicKey())},
		Data:      opData(opTransferForeign, 1),
	}, payer)
	_, err = rt.Submit(ctx, tx)
	assert.ErrorIs(t, err, ErrInvalidAuthority)
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	rt, _ := newTestRuntime(t)
	a := newKey(t).PublicKey()
	require.NoError(t, rt.Airdrop(ctx, a, 5))

	snap, err := rt.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Accounts, 1)
	assert.Equal(t, a.String(), snap.Accounts[0].Address)
	assert.Equal(t, uint64(5), snap.Accounts[0].Lamports)

	out, err := snap.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(out), a.String())
}

func TestMinimumBalance(t *testing.T) {
	assert.Equal(t, uint64(1_183_200), MinimumBalance(42))
	assert.Equal(t, uint64(890_880), MinimumBalance(0))
}
