package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"

	"github.com/illarion/solvault/internal/config"
	"github.com/illarion/solvault/internal/core"
	"github.com/illarion/solvault/internal/crypto"
	"github.com/illarion/solvault/internal/host"
	"github.com/illarion/solvault/internal/keyring"
	"github.com/illarion/solvault/internal/keystore"
	"github.com/illarion/solvault/internal/locker"
	"github.com/illarion/solvault/internal/logging"
	"github.com/illarion/solvault/internal/pda"
	"github.com/illarion/solvault/internal/storage"
)

// Env carries the loaded configuration and logger into every command.
type Env struct {
	Config *config.Config
	Log    logging.Logger
}

// OpenVault opens the configured ledger.
func (e *Env) OpenVault() (*core.Solvault, error) {
	return core.New(e.Config, e.Log)
}

// OpenKeystore opens the configured keystore.
func (e *Env) OpenKeystore() (*keystore.Keystore, error) {
	return keystore.Open(e.Config.KeystoreDir)
}

// GetPassphrase retrieves the passphrase for wallet from the environment,
// then the OS keyring, then the terminal.
// The caller is responsible for calling crypto.ClearBytes on the result.
func GetPassphrase(ks *keystore.Keystore, wallet string) ([]byte, error) {
	if passphrase := keystore.PassphraseFromEnv(); passphrase != nil {
		return passphrase, nil
	}

	if passphrase, err := keyring.GetPassphrase(ks.Dir(), wallet); err == nil {
		return []byte(passphrase), nil
	}

	passphrase, err := keystore.ReadPassphrase(fmt.Sprintf("Passphrase for %s: ", wallet))
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	return passphrase, nil
}

// GetPassphraseForCreate retrieves a passphrase for a new wallet.
// Checks the environment variable first, then prompts with confirmation.
func GetPassphraseForCreate() ([]byte, error) {
	if passphrase := keystore.PassphraseFromEnv(); passphrase != nil {
		return passphrase, nil
	}
	return keystore.ReadPassphraseConfirm()
}

// UnlockWallet returns the private key of wallet.
func UnlockWallet(ks *keystore.Keystore, wallet string) (solana.PrivateKey, error) {
	passphrase, err := GetPassphrase(ks, wallet)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(passphrase)

	return ks.Unlock(wallet, passphrase)
}

// ResolveAddress accepts either a base58 address or a wallet name.
func ResolveAddress(ks *keystore.Keystore, s string) (solana.PublicKey, error) {
	if key, err := solana.PublicKeyFromBase58(s); err == nil {
		return key, nil
	}
	return ks.PublicKey(s)
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var programErr *locker.Error
	switch {
	case errors.Is(err, core.ErrNotInitialized), errors.Is(err, storage.ErrNotInitialized):
		return "Error: locker not initialized\nRun 'solvault init' first\n"
	case errors.Is(err, core.ErrAlreadyInitialized):
		return "Error: locker already initialized\nUse 'solvault status' to see current state\n"
	case errors.Is(err, core.ErrAmountUnitMismatch):
		return fmt.Sprintf("Error: %s\nSet amount_unit (or --amount-unit) to match the ledger\n", err)
	case errors.As(err, &programErr):
		return fmt.Sprintf("Error: program error %d (%s): %s\n", programErr.Code, programErr.Name, programErr.Msg)
	case errors.Is(err, keystore.ErrWrongPassphrase):
		return "Error: wrong passphrase\n"
	case errors.Is(err, keystore.ErrWalletNotFound):
		return fmt.Sprintf("Error: %s\nUse 'solvault wallets' to list wallets or 'solvault keygen' to create one\n", err)
	case errors.Is(err, host.ErrInsufficientFunds):
		return fmt.Sprintf("Error: %s\nUse 'solvault airdrop' to fund a local wallet\n", err)
	case errors.Is(err, pda.ErrSeedsMismatch):
		return fmt.Sprintf("Error: account does not match its program-derived address: %s\n", err)
	default:
		return fmt.Sprintf("Error: %s\n", err)
	}
}

// HandleError prints err and exits. Commands return their errors instead
// of calling it, so their deferred Close calls run first.
func HandleError(err error) {
	fmt.Fprint(os.Stderr, Message(err))
	os.Exit(1)
}

// formatSize formats a file size in human-readable form
func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}

// formatSOL renders lamports with the SOL equivalent.
func formatSOL(lamports uint64) string {
	return fmt.Sprintf("%d lamports (%.9f SOL)", lamports, float64(lamports)/float64(solana.LAMPORTS_PER_SOL))
}
