package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/solvault/internal/core"
)

// Recover moves lamports from the vault to the recipient wallet. Both the
// admin wallet and the recipient wallet sign.
func Recover(ctx context.Context, env *Env, adminWallet, recipientWallet, amountArg string) error {
	amount, err := core.ParseAmount(amountArg)
	if err != nil {
		return err
	}

	ks, err := env.OpenKeystore()
	if err != nil {
		return err
	}
	defer ks.Close()
	admin, err := UnlockWallet(ks, adminWallet)
	if err != nil {
		return err
	}
	recipient := admin
	if recipientWallet != adminWallet {
		if recipient, err = UnlockWallet(ks, recipientWallet); err != nil {
			return err
		}
	}

	sv, err := env.OpenVault()
	if err != nil {
		return err
	}
	defer sv.Close()

	receipt, err := sv.Recover(ctx, admin, recipient, amount)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Recovered %s to %s (slot %d)\n", formatSOL(amount), recipient.PublicKey(), receipt.Slot)
	fmt.Printf("  signature: %s\n", receipt.Signature)
	return nil
}
