package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illarion/solvault/cmd"
	"github.com/illarion/solvault/internal/config"
	"github.com/illarion/solvault/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit(ctx, os.Args[2:])
	case "deposit":
		runDeposit(ctx, os.Args[2:])
	case "recover":
		runRecover(ctx, os.Args[2:])
	case "balance":
		runBalance(ctx, os.Args[2:])
	case "airdrop":
		runAirdrop(ctx, os.Args[2:])
	case "status":
		runStatus(ctx, os.Args[2:])
	case "events":
		runEvents(ctx, os.Args[2:])
	case "keygen":
		runKeygen(ctx, os.Args[2:])
	case "wallets":
		runWallets(ctx, os.Args[2:])
	case "keyring":
		runKeyring(ctx, os.Args[2:])
	case "snapshot":
		runSnapshot(ctx, os.Args[2:])
	case "diff":
		runDiff(ctx, os.Args[2:])
	case "compact":
		runCompact(ctx, os.Args[2:])
	case "price":
		runPrice(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// globalFlags are accepted by every command that touches the ledger or
// the keystore. Set flags override the config file and environment.
type globalFlags struct {
	config     *string
	ledger     *string
	keystore   *string
	program    *string
	amountUnit *string
	logLevel   *string
	logFormat  *string
}

func addGlobalFlags(fs *flag.FlagSet) *globalFlags {
	return &globalFlags{
		config:     fs.String("config", "", "Config file (default solvault.yaml or $SOLVAULT_CONFIG)"),
		ledger:     fs.String("ledger", "", "Ledger file"),
		keystore:   fs.String("keystore", "", "Wallet keystore directory"),
		program:    fs.String("program", "", "Locker program id"),
		amountUnit: fs.String("amount-unit", "", "FundsAddedEvent amount unit: raw or scaled"),
		logLevel:   fs.String("log-level", "", "Log level: debug, info, warn, error"),
		logFormat:  fs.String("log-format", "", "Log format: text or json"),
	}
}

func (g *globalFlags) env() *cmd.Env {
	cfg, err := config.Load(*g.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&cfg.Ledger, *g.ledger)
	override(&cfg.KeystoreDir, *g.keystore)
	override(&cfg.ProgramID, *g.program)
	override(&cfg.LogLevel, *g.logLevel)
	override(&cfg.LogFormat, *g.logFormat)
	if *g.amountUnit != "" {
		cfg.AmountUnit = config.AmountUnit(*g.amountUnit)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return &cmd.Env{Config: cfg, Log: log}
}

// check reports a failed command and exits. It runs after the command
// has returned, so the ledger and keystore are already closed.
func check(err error) {
	if err != nil {
		cmd.HandleError(err)
	}
}

func parse(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func requireArgs(fs *flag.FlagSet, n int, usage string) {
	if fs.NArg() != n {
		fmt.Fprintf(os.Stderr, "Usage: %s\n", usage)
		os.Exit(1)
	}
}

func runInit(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	g := addGlobalFlags(fs)
	wallet := fs.String("wallet", "default", "Admin wallet")
	parse(fs, args)
	requireArgs(fs, 0, "solvault init [--wallet <name>]")

	check(cmd.Init(ctx, g.env(), *wallet))
}

func runDeposit(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("deposit", flag.ExitOnError)
	g := addGlobalFlags(fs)
	wallet := fs.String("wallet", "default", "Depositing wallet")
	tag := fs.String("tag", "", "Transaction tag, hex up to 32 bytes")
	parse(fs, args)
	requireArgs(fs, 1, "solvault deposit [--wallet <name>] [--tag <hex>] <lamports>")

	check(cmd.Deposit(ctx, g.env(), *wallet, fs.Arg(0), *tag))
}

func runRecover(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("recover", flag.ExitOnError)
	g := addGlobalFlags(fs)
	wallet := fs.String("wallet", "default", "Admin wallet")
	to := fs.String("to", "", "Recipient wallet (defaults to the admin wallet)")
	parse(fs, args)
	requireArgs(fs, 1, "solvault recover [--wallet <name>] [--to <wallet>] <lamports>")

	recipient := *to
	if recipient == "" {
		recipient = *wallet
	}
	check(cmd.Recover(ctx, g.env(), *wallet, recipient, fs.Arg(0)))
}

func runBalance(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	g := addGlobalFlags(fs)
	parse(fs, args)
	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Usage: solvault balance [<wallet|address>]")
		os.Exit(1)
	}

	check(cmd.Balance(ctx, g.env(), fs.Arg(0)))
}

func runAirdrop(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("airdrop", flag.ExitOnError)
	g := addGlobalFlags(fs)
	parse(fs, args)
	requireArgs(fs, 2, "solvault airdrop <wallet|address> <lamports>")

	check(cmd.Airdrop(ctx, g.env(), fs.Arg(0), fs.Arg(1)))
}

func runStatus(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	g := addGlobalFlags(fs)
	parse(fs, args)

	check(cmd.Status(ctx, g.env()))
}

func runEvents(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	g := addGlobalFlags(fs)
	from := fs.Uint64("from", 0, "First event sequence to show")
	parse(fs, args)

	check(cmd.Events(ctx, g.env(), *from))
}

func runKeygen(_ context.Context, args []string) {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	g := addGlobalFlags(fs)
	parse(fs, args)
	requireArgs(fs, 1, "solvault keygen <name>")

	check(cmd.Keygen(g.env(), fs.Arg(0)))
}

func runWallets(_ context.Context, args []string) {
	fs := flag.NewFlagSet("wallets", flag.ExitOnError)
	g := addGlobalFlags(fs)
	parse(fs, args)

	check(cmd.Wallets(g.env()))
}

func runKeyring(_ context.Context, args []string) {
	fs := flag.NewFlagSet("keyring", flag.ExitOnError)
	g := addGlobalFlags(fs)
	parse(fs, args)
	requireArgs(fs, 2, "solvault keyring <save|delete|status> <wallet>")

	env := g.env()
	switch fs.Arg(0) {
	case "save":
		check(cmd.KeyringSave(env, fs.Arg(1)))
	case "delete":
		check(cmd.KeyringDelete(env, fs.Arg(1)))
	case "status":
		check(cmd.KeyringStatus(env, fs.Arg(1)))
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", fs.Arg(0))
		os.Exit(1)
	}
}

func runSnapshot(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	g := addGlobalFlags(fs)
	out := fs.String("out", "", "Write the snapshot to a file instead of stdout")
	parse(fs, args)

	check(cmd.Snapshot(ctx, g.env(), *out))
}

func runDiff(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	g := addGlobalFlags(fs)
	parse(fs, args)
	requireArgs(fs, 1, "solvault diff <snapshot-file>")

	check(cmd.Diff(ctx, g.env(), fs.Arg(0)))
}

func runCompact(_ context.Context, args []string) {
	fs := flag.NewFlagSet("compact", flag.ExitOnError)
	g := addGlobalFlags(fs)
	parse(fs, args)

	check(cmd.Compact(g.env()))
}

func runPrice(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("price", flag.ExitOnError)
	parse(fs, args)
	requireArgs(fs, 1, "solvault price <feed-file>")

	check(cmd.Price(ctx, fs.Arg(0)))
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: solvault completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("solvault - Custodial SOL locker on a local ledger")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  solvault <command> [flags] [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init        Initialize the locker with a wallet as admin")
	fmt.Println("  deposit     Add lamports to the vault")
	fmt.Println("  recover     Recover lamports from the vault (admin only)")
	fmt.Println("  balance     Show the balance of the vault, a wallet or an address")
	fmt.Println("  airdrop     Credit lamports to a local wallet")
	fmt.Println("  status      Show ledger and locker status")
	fmt.Println("  events      List emitted events")
	fmt.Println("  keygen      Create a new wallet")
	fmt.Println("  wallets     List wallets")
	fmt.Println("  keyring     Manage wallet passphrases in OS keyring")
	fmt.Println("  snapshot    Dump all accounts as JSON")
	fmt.Println("  diff        Compare a snapshot with the ledger")
	fmt.Println("  compact     Compact ledger to reclaim disk space")
	fmt.Println("  price       Read SOL/USD from a price feed file")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Global flags (ledger commands):")
	fmt.Println("  --config --ledger --keystore --program --amount-unit --log-level --log-format")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  solvault keygen admin                       # Create a wallet")
	fmt.Println("  solvault airdrop admin 2000000000           # Fund it on the local ledger")
	fmt.Println("  solvault init --wallet admin                # Initialize the locker")
	fmt.Println("  solvault deposit --wallet alice 1000        # Deposit 1000 lamports")
	fmt.Println("  solvault recover --wallet admin --to bob 500")
	fmt.Println()
	fmt.Println("Use 'solvault help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "init":
		fmt.Println("solvault init [--wallet <name>]")
		fmt.Println()
		fmt.Println("Creates the ledger if needed and initializes the locker.")
		fmt.Println("The wallet becomes the admin and pays for the locker account.")
		fmt.Println("Can only succeed once per ledger.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  solvault init --wallet admin")
	case "deposit":
		fmt.Println("solvault deposit [--wallet <name>] [--tag <hex>] <lamports>")
		fmt.Println()
		fmt.Println("Transfers lamports from the wallet into the vault and emits a")
		fmt.Println("FundsAddedEvent. The tag is an opaque 32-byte value recorded in")
		fmt.Println("the event; shorter hex values are right-aligned.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  solvault deposit --wallet alice 1000")
		fmt.Println("  solvault deposit --wallet alice --tag 01 1000")
	case "recover":
		fmt.Println("solvault recover [--wallet <name>] [--to <wallet>] <lamports>")
		fmt.Println()
		fmt.Println("Transfers lamports from the vault to the recipient wallet.")
		fmt.Println("Only the admin recorded at init may recover. Both the admin and")
		fmt.Println("the recipient wallets sign the transaction.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  solvault recover --wallet admin --to bob 500")
	case "balance":
		fmt.Println("solvault balance [<wallet|address>]")
		fmt.Println()
		fmt.Println("Shows the balance of a wallet or address, or of the vault when")
		fmt.Println("no argument is given. Does not require a passphrase.")
	case "airdrop":
		fmt.Println("solvault airdrop <wallet|address> <lamports>")
		fmt.Println()
		fmt.Println("Credits lamports on the local ledger, creating it if needed.")
	case "status":
		fmt.Println("solvault status")
		fmt.Println()
		fmt.Println("Shows ledger status including:")
		fmt.Println("  - Program, locker and vault addresses")
		fmt.Println("  - Admin and vault balance")
		fmt.Println("  - Current slot and event count")
		fmt.Println("  - Whether the ledger and keystore are kept out of git")
		fmt.Println()
		fmt.Println("Does not require a passphrase.")
	case "events":
		fmt.Println("solvault events [--from <seq>]")
		fmt.Println()
		fmt.Println("Lists FundsAddedEvent and TokenRecoveredEvent records in order.")
	case "keygen":
		fmt.Println("solvault keygen <name>")
		fmt.Println()
		fmt.Println("Creates a new ed25519 wallet sealed with a passphrase.")
		fmt.Println("The passphrase is read from SOLVAULT_PASSWORD or prompted twice.")
	case "wallets":
		fmt.Println("solvault wallets")
		fmt.Println()
		fmt.Println("Lists wallet names and addresses. Does not require a passphrase.")
	case "keyring":
		fmt.Println("solvault keyring <save|delete|status> <wallet>")
		fmt.Println()
		fmt.Println("Stores a wallet passphrase in the OS keyring so that commands")
		fmt.Println("do not prompt for it.")
	case "snapshot":
		fmt.Println("solvault snapshot [--out <file>]")
		fmt.Println()
		fmt.Println("Dumps every account as JSON.")
	case "diff":
		fmt.Println("solvault diff <snapshot-file>")
		fmt.Println()
		fmt.Println("Shows a unified diff between a saved snapshot and the current ledger.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  solvault snapshot --out before.json")
		fmt.Println("  solvault deposit 1000")
		fmt.Println("  solvault diff before.json")
	case "compact":
		fmt.Println("solvault compact")
		fmt.Println()
		fmt.Println("Compacts the ledger database to reclaim unused disk space.")
	case "price":
		fmt.Println("solvault price <feed-file>")
		fmt.Println()
		fmt.Println("Reads the SOL/USD price from a YAML feed snapshot keyed by feed id.")
		fmt.Println("Prices older than 6000 seconds are rejected.")
	case "completion":
		fmt.Println("solvault completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(solvault completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(solvault completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  solvault completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
