package cmd

import (
	"fmt"

	"github.com/illarion/solvault/internal/crypto"
)

// Keygen creates a new sealed wallet
func Keygen(env *Env, name string) error {
	ks, err := env.OpenKeystore()
	if err != nil {
		return err
	}
	defer ks.Close()

	passphrase, err := GetPassphraseForCreate()
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(passphrase)

	pub, err := ks.Create(name, passphrase)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Created wallet %s\n", name)
	fmt.Printf("  address: %s\n", pub)
	return nil
}

// Wallets lists the wallets in the keystore
func Wallets(env *Env) error {
	ks, err := env.OpenKeystore()
	if err != nil {
		return err
	}
	defer ks.Close()

	wallets, err := ks.List()
	if err != nil {
		return err
	}
	fmt.Printf("Wallets in %s:\n", ks.Dir())
	if len(wallets) == 0 {
		fmt.Println("  (none)")
		return nil
	}
	for _, w := range wallets {
		fmt.Printf("  %-20s %s\n", w.Name, w.PublicKey)
	}
	return nil
}
