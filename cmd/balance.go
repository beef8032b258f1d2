package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/solvault/internal/core"
)

// Balance prints the balance of an address or wallet, or of the vault
// when target is empty
func Balance(ctx context.Context, env *Env, target string) error {
	sv, err := env.OpenVault()
	if err != nil {
		return err
	}
	defer sv.Close()

	_, key, err := sv.Addresses()
	if err != nil {
		return err
	}
	if target != "" {
		ks, err := env.OpenKeystore()
		if err != nil {
			return err
		}
		defer ks.Close()
		if key, err = ResolveAddress(ks, target); err != nil {
			return err
		}
	}

	lamports, err := sv.Balance(ctx, key)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", key, formatSOL(lamports))
	return nil
}

// Airdrop credits a local wallet or address
func Airdrop(ctx context.Context, env *Env, target, amountArg string) error {
	amount, err := core.ParseAmount(amountArg)
	if err != nil {
		return err
	}

	ks, err := env.OpenKeystore()
	if err != nil {
		return err
	}
	defer ks.Close()
	key, err := ResolveAddress(ks, target)
	if err != nil {
		return err
	}

	sv, err := env.OpenVault()
	if err != nil {
		return err
	}
	defer sv.Close()

	if err := sv.Airdrop(ctx, key, amount); err != nil {
		return err
	}
	fmt.Printf("✓ Airdropped %s to %s\n", formatSOL(amount), key)
	return nil
}
