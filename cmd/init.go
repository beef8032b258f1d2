package cmd

import (
	"context"
	"fmt"
)

// Init initializes the locker with wallet as admin
func Init(ctx context.Context, env *Env, wallet string) error {
	ks, err := env.OpenKeystore()
	if err != nil {
		return err
	}
	defer ks.Close()
	admin, err := UnlockWallet(ks, wallet)
	if err != nil {
		return err
	}

	sv, err := env.OpenVault()
	if err != nil {
		return err
	}
	defer sv.Close()

	receipt, err := sv.Init(ctx, admin)
	if err != nil {
		return err
	}

	lockerKey, vault, err := sv.Addresses()
	if err != nil {
		return err
	}
	for _, line := range receipt.Logs {
		fmt.Println(line)
	}
	fmt.Printf("✓ Initialized locker %s\n", lockerKey)
	fmt.Printf("  vault: %s\n", vault)
	fmt.Printf("  admin: %s\n", admin.PublicKey())
	return nil
}
