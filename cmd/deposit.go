package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/solvault/internal/core"
)

// Deposit sends lamports from wallet into the vault
func Deposit(ctx context.Context, env *Env, wallet, amountArg, tagArg string) error {
	amount, err := core.ParseAmount(amountArg)
	if err != nil {
		return err
	}
	tag, err := core.ParseTag(tagArg)
	if err != nil {
		return err
	}

	ks, err := env.OpenKeystore()
	if err != nil {
		return err
	}
	defer ks.Close()
	user, err := UnlockWallet(ks, wallet)
	if err != nil {
		return err
	}

	sv, err := env.OpenVault()
	if err != nil {
		return err
	}
	defer sv.Close()

	receipt, err := sv.Deposit(ctx, user, amount, tag)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Deposited %s (slot %d)\n", formatSOL(amount), receipt.Slot)
	fmt.Printf("  signature: %s\n", receipt.Signature)
	return nil
}
