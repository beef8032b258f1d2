package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/illarion/solvault/internal/locker"
)

// Events lists emitted events starting at sequence from
func Events(ctx context.Context, env *Env, from uint64) error {
	sv, err := env.OpenVault()
	if err != nil {
		return err
	}
	defer sv.Close()

	events, err := sv.Events(ctx, from)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("(no events)")
		return nil
	}

	for _, ev := range events {
		fmt.Printf("#%d slot %d %s %s\n", ev.Seq, ev.Slot, ev.Time.Format(time.RFC3339), ev.Name)
		switch p := ev.Payload.(type) {
		case *locker.FundsAddedEvent:
			fmt.Printf("    user: %s\n", p.User)
			fmt.Printf("    sol_amount: %d (%s)\n", p.SolAmount, env.Config.AmountUnit)
			fmt.Printf("    transaction_hash: %x\n", p.TransactionHash)
		case *locker.TokenRecoveredEvent:
			fmt.Printf("    admin: %s\n", p.Admin)
			fmt.Printf("    amount: %d\n", p.Amount)
		}
		fmt.Printf("    signature: %s\n", ev.Signature)
	}
	return nil
}
