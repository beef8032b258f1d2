package pda

import (
	"errors"
	"testing"

	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"
)

var testProgram = solana.MustPublicKeyFromBase58("FVnnKN3tmbSuWcHbc8anrXZnzETHn96FdaKcJxamrfFx")

func TestDeriveIsDeterministic(t *testing.T) {
	a1, b1, err := Derive(VaultSeed, testProgram)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	a2, b2, err := Derive(VaultSeed, testProgram)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if !a1.Equals(a2) || b1 != b2 {
		t.Errorf("Derive not deterministic: %s/%d vs %s/%d", a1, b1, a2, b2)
	}

	locker, _, err := Derive(LockerSeed, testProgram)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if locker.Equals(a1) {
		t.Error("locker and vault must derive to different addresses")
	}
}

func TestDeriveIsOffCurve(t *testing.T) {
	addr, _, err := Derive(VaultSeed, testProgram)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if _, err := new(edwards25519.Point).SetBytes(addr[:]); err == nil {
		t.Error("derived address must not have a private key")
	}
}

func TestDeriveDependsOnProgram(t *testing.T) {
	other := solana.SystemProgramID
	a1, _, _ := Derive(VaultSeed, testProgram)
	a2, _, err := Derive(VaultSeed, other)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if a1.Equals(a2) {
		t.Error("different programs must derive different addresses")
	}
}

func TestVerify(t *testing.T) {
	addr, bump, err := Derive(VaultSeed, testProgram)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	if err := Verify(VaultSeed, bump, testProgram, addr); err != nil {
		t.Errorf("Verify rejected canonical address: %v", err)
	}

	locker, _, _ := Derive(LockerSeed, testProgram)
	if err := Verify(VaultSeed, bump, testProgram, locker); !errors.Is(err, ErrSeedsMismatch) {
		t.Errorf("Expected ErrSeedsMismatch for wrong address, got %v", err)
	}

	if err := Verify(VaultSeed, bump-1, testProgram, addr); !errors.Is(err, ErrSeedsMismatch) {
		t.Errorf("Expected ErrSeedsMismatch for wrong bump, got %v", err)
	}
}

func TestProveAuthority(t *testing.T) {
	addr, bump, err := Derive(VaultSeed, testProgram)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	auth, err := ProveAuthority(testProgram, addr, VaultSeed, bump)
	if err != nil {
		t.Fatalf("ProveAuthority failed: %v", err)
	}
	if !auth.Valid() {
		t.Error("authority should be valid")
	}
	if !auth.Address().Equals(addr) || !auth.Program().Equals(testProgram) {
		t.Error("authority carries wrong address or program")
	}

	if _, err := ProveAuthority(testProgram, solana.SystemProgramID, VaultSeed, bump); !errors.Is(err, ErrSeedsMismatch) {
		t.Errorf("Expected ErrSeedsMismatch, got %v", err)
	}

	var zero Authority
	if zero.Valid() {
		t.Error("zero authority must not be valid")
	}
}
