package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/illarion/solvault/internal/git"
)

// Status shows the current state of the ledger and the locker
func Status(ctx context.Context, env *Env) error {
	if _, err := os.Stat(env.Config.Ledger); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Printf("No ledger found at %s\n", env.Config.Ledger)
			fmt.Println("Run 'solvault airdrop' or 'solvault init' to create one")
			return nil
		}
		return err
	}

	sv, err := env.OpenVault()
	if err != nil {
		return err
	}
	defer sv.Close()

	status, err := sv.Status(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Ledger:   %s\n", status.Ledger)
	fmt.Printf("Program:  %s\n", status.ProgramID)
	fmt.Printf("Units:    %s deposit event amounts\n", status.AmountUnit)
	fmt.Printf("Locker:   %s\n", status.Locker)
	fmt.Printf("Vault:    %s\n", status.Vault)
	if status.Initialized {
		fmt.Printf("Admin:    %s\n", status.Admin)
	} else {
		fmt.Println("Admin:    (locker not initialized)")
	}
	fmt.Printf("Balance:  %s\n", formatSOL(status.VaultBalance))
	fmt.Printf("Slot:     %d\n", status.Slot)
	fmt.Printf("Events:   %d\n", status.EventCount)
	if !status.Modified.IsZero() {
		fmt.Printf("Modified: %s\n", status.Modified.Format(time.RFC3339))
	}

	if status.Git != nil {
		fmt.Print(git.Format(status.Git))
	}
	return nil
}
