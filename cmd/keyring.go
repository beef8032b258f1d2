package cmd

import (
	"fmt"

	"github.com/illarion/solvault/internal/crypto"
	"github.com/illarion/solvault/internal/keyring"
	"github.com/illarion/solvault/internal/keystore"
)

// KeyringSave saves the wallet passphrase to the OS keyring
func KeyringSave(env *Env, wallet string) error {
	ks, err := env.OpenKeystore()
	if err != nil {
		return err
	}
	defer ks.Close()

	passphrase, err := keystore.ReadPassphrase(fmt.Sprintf("Passphrase for %s: ", wallet))
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(passphrase)

	// Verify passphrase is correct
	key, err := ks.Unlock(wallet, passphrase)
	if err != nil {
		return err
	}
	crypto.ClearBytes(key)

	if err := keyring.SavePassphrase(ks.Dir(), wallet, string(passphrase)); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}

	fmt.Println("Passphrase saved to keyring")
	return nil
}

// KeyringDelete removes the wallet passphrase from the OS keyring
func KeyringDelete(env *Env, wallet string) error {
	ks, err := env.OpenKeystore()
	if err != nil {
		return err
	}
	defer ks.Close()

	if err := keyring.DeletePassphrase(ks.Dir(), wallet); err != nil {
		fmt.Println("No passphrase stored in keyring")
		return nil
	}

	fmt.Println("Passphrase removed from keyring")
	return nil
}

// KeyringStatus checks if the wallet passphrase is stored in the keyring
func KeyringStatus(env *Env, wallet string) error {
	ks, err := env.OpenKeystore()
	if err != nil {
		return err
	}
	defer ks.Close()

	if keyring.HasPassphrase(ks.Dir(), wallet) {
		fmt.Println("Passphrase: stored in keyring")
	} else {
		fmt.Println("Passphrase: not stored")
	}
	return nil
}
