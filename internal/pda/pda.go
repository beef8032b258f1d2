package pda

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	LockerSeed = []byte("locker")
	VaultSeed  = []byte("vault")
)

var (
	ErrSeedsMismatch = errors.New("seeds constraint violated")
	ErrNoValidBump   = errors.New("unable to find a viable program address bump")
)

// Derive returns the canonical address for seed under programID together
// with the bump that produced it.
func Derive(seed []byte, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress([][]byte{seed}, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: seed %q: %v", ErrNoValidBump, seed, err)
	}
	return addr, bump, nil
}

// Create recomputes the address for seed with an explicit bump.
func Create(seed []byte, bump uint8, programID solana.PublicKey) (solana.PublicKey, error) {
	return solana.CreateProgramAddress([][]byte{seed, {bump}}, programID)
}

// Verify checks that claimed is the address produced by seed and bump.
func Verify(seed []byte, bump uint8, programID, claimed solana.PublicKey) error {
	addr, err := Create(seed, bump, programID)
	if err != nil {
		return fmt.Errorf("%w: seed %q bump %d: %v", ErrSeedsMismatch, seed, bump, err)
	}
	if !addr.Equals(claimed) {
		return fmt.Errorf("%w: seed %q: expected %s, got %s", ErrSeedsMismatch, seed, addr, claimed)
	}
	return nil
}

// Authority is the capability to move funds out of a program-derived
// address. It can only be obtained from ProveAuthority.
type Authority struct {
	program solana.PublicKey
	address solana.PublicKey
	seed    []byte
	bump    uint8
}

// ProveAuthority re-verifies that address belongs to programID under
// seed and bump and returns the signing capability for it.
func ProveAuthority(programID, address solana.PublicKey, seed []byte, bump uint8) (Authority, error) {
	if err := Verify(seed, bump, programID, address); err != nil {
		return Authority{}, err
	}
	return Authority{
		program: programID,
		address: address,
		seed:    append([]byte(nil), seed...),
		bump:    bump,
	}, nil
}

// Address is the program-derived address this authority signs for.
func (a Authority) Address() solana.PublicKey { return a.address }

// Program is the program that derived the address.
func (a Authority) Program() solana.PublicKey { return a.program }

// Valid reports whether a was produced by ProveAuthority and still
// re-derives to its address.
func (a Authority) Valid() bool {
	if a.seed == nil {
		return false
	}
	return Verify(a.seed, a.bump, a.program, a.address) == nil
}
