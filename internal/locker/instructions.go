package locker

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/illarion/solvault/internal/host"
	"github.com/illarion/solvault/internal/pda"
)

var (
	initializeDiscriminator    = discriminator("global", "initialize")
	addFundsDiscriminator      = discriminator("global", "add_funds")
	recoverTokensDiscriminator = discriminator("global", "recover_tokens")
)

// AddFundsArgs is the add_funds payload.
type AddFundsArgs struct {
	Amount          uint64
	TransactionHash [32]byte
}

// RecoverTokensArgs is the recover_tokens payload.
type RecoverTokensArgs struct {
	Amount uint64
}

func encodeInstruction(disc [8]byte, args any) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(disc[:])
	if args != nil {
		if err := bin.NewBorshEncoder(&buf).Encode(args); err != nil {
			return nil, fmt.Errorf("failed to encode instruction: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Addresses returns the canonical locker and vault addresses of programID.
func Addresses(programID solana.PublicKey) (locker, vault solana.PublicKey, err error) {
	locker, _, err = pda.Derive(pda.LockerSeed, programID)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	vault, _, err = pda.Derive(pda.VaultSeed, programID)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	return locker, vault, nil
}

// NewInitializeInstruction builds initialize with admin as signer and payer.
func NewInitializeInstruction(programID, admin solana.PublicKey) (host.Instruction, error) {
	locker, vault, err := Addresses(programID)
	if err != nil {
		return host.Instruction{}, err
	}
	data, err := encodeInstruction(initializeDiscriminator, nil)
	if err != nil {
		return host.Instruction{}, err
	}
	return host.Instruction{
		ProgramID: programID,
		Accounts: []host.AccountMeta{
			host.Writable(locker),
			host.Writable(vault),
			host.Signer(admin),
			host.ReadOnly(solana.SystemProgramID),
		},
		Data: data,
	}, nil
}

// NewAddFundsInstruction builds add_funds depositing amount lamports from user.
func NewAddFundsInstruction(programID, user solana.PublicKey, amount uint64, tag [32]byte) (host.Instruction, error) {
	locker, vault, err := Addresses(programID)
	if err != nil {
		return host.Instruction{}, err
	}
	data, err := encodeInstruction(addFundsDiscriminator, &AddFundsArgs{Amount: amount, TransactionHash: tag})
	if err != nil {
		return host.Instruction{}, err
	}
	return host.Instruction{
		ProgramID: programID,
		Accounts: []host.AccountMeta{
			host.ReadOnly(locker),
			host.Writable(vault),
			host.Signer(user),
			host.ReadOnly(solana.SystemProgramID),
		},
		Data: data,
	}, nil
}

// NewRecoverTokensInstruction builds recover_tokens moving amount lamports
// from the vault to recipient. Both admin and recipient must sign.
func NewRecoverTokensInstruction(programID, admin, recipient solana.PublicKey, amount uint64) (host.Instruction, error) {
	locker, vault, err := Addresses(programID)
	if err != nil {
		return host.Instruction{}, err
	}
	data, err := encodeInstruction(recoverTokensDiscriminator, &RecoverTokensArgs{Amount: amount})
	if err != nil {
		return host.Instruction{}, err
	}
	return host.Instruction{
		ProgramID: programID,
		Accounts: []host.AccountMeta{
			host.ReadOnly(locker),
			host.Writable(vault),
			host.Signer(recipient),
			host.Signer(admin),
			host.ReadOnly(solana.SystemProgramID),
		},
		Data: data,
	}, nil
}
