package core

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illarion/solvault/internal/config"
	"github.com/illarion/solvault/internal/locker"
	"github.com/illarion/solvault/internal/logging"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	dir := t.TempDir()
	cfg.Ledger = filepath.Join(dir, ".solvault")
	cfg.KeystoreDir = filepath.Join(dir, ".solvault-keys")
	return cfg
}

func openVault(t *testing.T, cfg *config.Config) *Solvault {
	t.Helper()
	sv, err := New(cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { sv.Close() })
	return sv
}

func fundedKey(t *testing.T, sv *Solvault) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	require.NoError(t, sv.Airdrop(context.Background(), key.PublicKey(), 5*solana.LAMPORTS_PER_SOL))
	return key
}

func TestInitDepositRecover(t *testing.T) {
	ctx := context.Background()
	sv := openVault(t, testConfig(t))

	admin := fundedKey(t, sv)
	user := fundedKey(t, sv)

	receipt, err := sv.Init(ctx, admin)
	require.NoError(t, err)
	assert.Contains(t, receipt.Logs, "Locker initialized by "+admin.PublicKey().String())

	_, err = sv.Init(ctx, admin)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	tag, err := ParseTag("01")
	require.NoError(t, err)
	_, err = sv.Deposit(ctx, user, 1_000_000, tag)
	require.NoError(t, err)

	_, err = sv.Recover(ctx, user, admin, 1)
	assert.ErrorIs(t, err, locker.ErrUnauthorized)

	_, err = sv.Recover(ctx, admin, user, 400_000)
	require.NoError(t, err)

	st, err := sv.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Initialized)
	assert.Equal(t, admin.PublicKey(), st.Admin)
	assert.Equal(t, uint64(600_000), st.VaultBalance)
	assert.Equal(t, 2, st.EventCount)

	events, err := sv.Events(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	added, ok := events[0].Payload.(*locker.FundsAddedEvent)
	require.True(t, ok)
	assert.Equal(t, uint64(1_000_000), added.SolAmount)
	assert.Equal(t, byte(1), added.TransactionHash[31])
	recovered, ok := events[1].Payload.(*locker.TokenRecoveredEvent)
	require.True(t, ok)
	assert.Equal(t, uint64(400_000), recovered.Amount)
}

func TestDepositBeforeInit(t *testing.T) {
	ctx := context.Background()
	sv := openVault(t, testConfig(t))

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	// no ledger yet
	_, err = sv.Deposit(ctx, key, 10, [32]byte{})
	assert.ErrorIs(t, err, ErrNotInitialized)

	// ledger but no locker
	user := fundedKey(t, sv)
	_, err = sv.Deposit(ctx, user, 10, [32]byte{})
	assert.ErrorIs(t, err, ErrNotInitialized)

	st, err := sv.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Initialized)
}

func TestScaledAmountUnit(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.AmountUnit = config.AmountScaled
	sv := openVault(t, cfg)

	admin := fundedKey(t, sv)
	_, err := sv.Init(ctx, admin)
	require.NoError(t, err)

	_, err = sv.Deposit(ctx, admin, 30_000_000, [32]byte{})
	require.NoError(t, err)

	events, err := sv.Events(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(3), events[0].Payload.(*locker.FundsAddedEvent).SolAmount)
}

func TestProgramMismatch(t *testing.T) {
	cfg := testConfig(t)
	sv, err := New(cfg, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, sv.Airdrop(context.Background(), solana.SystemProgramID, 1))
	require.NoError(t, sv.Close())

	other, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	cfg.ProgramID = other.PublicKey().String()
	_, err = New(cfg, logging.Discard())
	assert.ErrorIs(t, err, ErrProgramMismatch)
}

func TestAmountUnitFixedByLedger(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	sv, err := New(cfg, logging.Discard())
	require.NoError(t, err)
	admin := fundedKey(t, sv)
	_, err = sv.Init(ctx, admin)
	require.NoError(t, err)
	_, err = sv.Deposit(ctx, admin, solana.LAMPORTS_PER_SOL, [32]byte{})
	require.NoError(t, err)
	require.NoError(t, sv.Close())

	cfg.AmountUnit = config.AmountScaled
	_, err = New(cfg, logging.Discard())
	assert.ErrorIs(t, err, ErrAmountUnitMismatch)

	cfg.AmountUnit = config.AmountRaw
	sv = openVault(t, cfg)
	st, err := sv.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, config.AmountRaw, st.AmountUnit)
	events, err := sv.Events(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, solana.LAMPORTS_PER_SOL, events[0].Payload.(*locker.FundsAddedEvent).SolAmount)
}

func TestInitAfterLockerAddressFunded(t *testing.T) {
	ctx := context.Background()
	sv := openVault(t, testConfig(t))

	admin := fundedKey(t, sv)
	lockerKey, _, err := sv.Addresses()
	require.NoError(t, err)
	require.NoError(t, sv.Airdrop(ctx, lockerKey, 1))

	st, err := sv.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Initialized)

	_, err = sv.Init(ctx, admin)
	require.NoError(t, err)

	st, err = sv.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Initialized)
	assert.Equal(t, admin.PublicKey(), st.Admin)
}

func TestSnapshotDiffCompact(t *testing.T) {
	ctx := context.Background()
	sv := openVault(t, testConfig(t))

	admin := fundedKey(t, sv)
	saved, err := sv.Snapshot(ctx)
	require.NoError(t, err)

	out, err := sv.Diff(ctx, saved)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = sv.Init(ctx, admin)
	require.NoError(t, err)

	out, err = sv.Diff(ctx, saved)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "--- a/snapshot\n+++ b/snapshot\n"))
	lockerKey, _, err := sv.Addresses()
	require.NoError(t, err)
	assert.Contains(t, out, lockerKey.String())

	require.NoError(t, sv.Compact())
	bal, err := sv.Balance(ctx, admin.PublicKey())
	require.NoError(t, err)
	assert.Less(t, bal, 5*solana.LAMPORTS_PER_SOL)
}

func TestParseTag(t *testing.T) {
	tag, err := ParseTag("")
	require.NoError(t, err)
	assert.Equal(t, [32]byte{}, tag)

	tag, err = ParseTag("0xabc")
	require.NoError(t, err)
	assert.Equal(t, byte(0x0a), tag[30])
	assert.Equal(t, byte(0xbc), tag[31])

	_, err = ParseTag("zz")
	assert.ErrorIs(t, err, ErrInvalidTag)

	_, err = ParseTag(strings.Repeat("ff", 33))
	assert.ErrorIs(t, err, ErrInvalidTag)
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("1_000")
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), v)

	_, err = ParseAmount("-1")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
