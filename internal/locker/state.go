package locker

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/illarion/solvault/internal/host"
)

// LockerSize is the allocation of the Locker account:
// discriminator, admin, bump, vault bump.
const LockerSize = 8 + 32 + 1 + 1

var lockerDiscriminator = discriminator("account", "Locker")

// Locker is the program's singleton state. It never changes after
// initialize.
type Locker struct {
	Admin     solana.PublicKey
	Bump      uint8
	VaultBump uint8
}

// MarshalAccount encodes l as account data, discriminator first.
func (l *Locker) MarshalAccount() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(lockerDiscriminator[:])
	if err := bin.NewBorshEncoder(&buf).Encode(l); err != nil {
		return nil, fmt.Errorf("failed to encode locker: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalLocker decodes account data written by MarshalAccount.
func UnmarshalLocker(data []byte) (*Locker, error) {
	if len(data) < 8 || !bytes.Equal(data[:8], lockerDiscriminator[:]) {
		return nil, host.ErrAccountDiscriminatorMismatch
	}
	l := &Locker{}
	if err := bin.NewBorshDecoder(data[8:]).Decode(l); err != nil {
		return nil, fmt.Errorf("failed to decode locker: %w", err)
	}
	return l, nil
}

// discriminator is the 8-byte type tag: sha256("<namespace>:<name>")[:8].
func discriminator(namespace, name string) [8]byte {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}
