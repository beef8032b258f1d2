package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/illarion/solvault/internal/core"
)

// Snapshot writes a JSON dump of every account to out, or stdout
func Snapshot(ctx context.Context, env *Env, out string) error {
	sv, err := env.OpenVault()
	if err != nil {
		return err
	}
	defer sv.Close()

	data, err := sv.Snapshot(ctx)
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(out, append(data, '\n'), 0600); err != nil {
		return err
	}
	fmt.Printf("✓ Snapshot written to %s\n", out)
	return nil
}

// Diff compares a saved snapshot with the current ledger
func Diff(ctx context.Context, env *Env, file string) error {
	saved, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	sv, err := env.OpenVault()
	if err != nil {
		return err
	}
	defer sv.Close()

	out, err := sv.Diff(ctx, trimNewline(saved))
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Println("No changes since snapshot")
		return nil
	}
	fmt.Print(out)
	return nil
}

func trimNewline(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		return b[:n-1]
	}
	return b
}

// Compact compacts the ledger to reclaim unused space
func Compact(env *Env) error {
	sv, err := env.OpenVault()
	if err != nil {
		return err
	}
	defer sv.Close()

	info, err := os.Stat(env.Config.Ledger)
	if err != nil {
		return err
	}
	sizeBefore := info.Size()

	if err := sv.Compact(); err != nil {
		return err
	}

	info, err = os.Stat(env.Config.Ledger)
	if err != nil {
		return err
	}
	sizeAfter := info.Size()

	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
	return nil
}

// Price prints the SOL/USD price from a feed snapshot file
func Price(ctx context.Context, file string) error {
	price, err := core.Price(ctx, file, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("SOL/USD %.4f (±%d e%d, published %s)\n",
		price.Float(), price.Confidence, price.Exponent, time.Unix(price.PublishTime, 0).Format(time.RFC3339))
	return nil
}
