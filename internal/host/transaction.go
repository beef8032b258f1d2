package host

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// AccountMeta names an account an instruction touches and how.
type AccountMeta struct {
	PublicKey  solana.PublicKey
	IsSigner   bool
	IsWritable bool
}

func ReadOnly(key solana.PublicKey) AccountMeta { return AccountMeta{PublicKey: key} }

func Writable(key solana.PublicKey) AccountMeta {
	return AccountMeta{PublicKey: key, IsWritable: true}
}

func Signer(key solana.PublicKey) AccountMeta {
	return AccountMeta{PublicKey: key, IsSigner: true, IsWritable: true}
}

// Instruction is one call into a program.
type Instruction struct {
	ProgramID solana.PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

// Transaction wraps a single instruction with its signatures. The nonce
// makes otherwise identical submissions distinct; resubmitting the same
// signed transaction is rejected as a replay.
type Transaction struct {
	Nonce       uuid.UUID
	Instruction Instruction
	Signatures  []solana.Signature
}

func NewTransaction(ix Instruction) *Transaction {
	return &Transaction{Nonce: uuid.New(), Instruction: ix}
}

type messageMeta struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool
}

type message struct {
	Nonce     [16]byte
	ProgramID solana.PublicKey
	Accounts  []messageMeta
	Data      []byte
}

// Message returns the bytes every signer signs.
func (t *Transaction) Message() ([]byte, error) {
	msg := message{
		Nonce:     [16]byte(t.Nonce),
		ProgramID: t.Instruction.ProgramID,
		Data:      t.Instruction.Data,
	}
	for _, m := range t.Instruction.Accounts {
		msg.Accounts = append(msg.Accounts, messageMeta{Key: m.PublicKey, IsSigner: m.IsSigner, IsWritable: m.IsWritable})
	}

	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode(&msg); err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return buf.Bytes(), nil
}

// Signers returns the distinct signer keys in account order.
func (t *Transaction) Signers() []solana.PublicKey {
	var signers []solana.PublicKey
	seen := make(map[solana.PublicKey]bool)
	for _, m := range t.Instruction.Accounts {
		if m.IsSigner && !seen[m.PublicKey] {
			seen[m.PublicKey] = true
			signers = append(signers, m.PublicKey)
		}
	}
	return signers
}

// Sign signs the message with the key of every required signer. Keys
// that are not required are ignored; a missing key is an error.
func (t *Transaction) Sign(keys ...solana.PrivateKey) error {
	msg, err := t.Message()
	if err != nil {
		return err
	}

	byPub := make(map[solana.PublicKey]solana.PrivateKey, len(keys))
	for _, k := range keys {
		byPub[k.PublicKey()] = k
	}

	signers := t.Signers()
	sigs := make([]solana.Signature, 0, len(signers))
	for _, pub := range signers {
		key, ok := byPub[pub]
		if !ok {
			return fmt.Errorf("%w: no key for %s", ErrMissingSignature, pub)
		}
		sig, err := key.Sign(msg)
		if err != nil {
			return fmt.Errorf("failed to sign for %s: %w", pub, err)
		}
		sigs = append(sigs, sig)
	}
	t.Signatures = sigs
	return nil
}

// ID is the transaction's first signature, which identifies it.
func (t *Transaction) ID() solana.Signature {
	if len(t.Signatures) == 0 {
		return solana.Signature{}
	}
	return t.Signatures[0]
}

func (t *Transaction) verify() error {
	signers := t.Signers()
	if len(signers) == 0 {
		return fmt.Errorf("%w: transaction has no signers", ErrMissingSignature)
	}
	if len(t.Signatures) != len(signers) {
		return fmt.Errorf("%w: want %d signatures, got %d", ErrMissingSignature, len(signers), len(t.Signatures))
	}

	msg, err := t.Message()
	if err != nil {
		return err
	}
	for i, pub := range signers {
		if !t.Signatures[i].Verify(pub, msg) {
			return fmt.Errorf("%w: bad signature for %s", ErrMissingSignature, pub)
		}
	}
	return nil
}
