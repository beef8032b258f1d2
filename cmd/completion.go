package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_solvault() {
    local cur prev words cword
    _init_completion || return

    local commands="init deposit recover balance airdrop status events keygen wallets keyring snapshot diff compact price help completion"
    local global="--config --ledger --keystore --program --log-level --log-format"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local wallets
    wallets=$(solvault wallets 2>/dev/null | tail -n +2 | awk '$1 != "(none)" {print $1}')

    case "$prev" in
        --wallet|-w|--to)
            COMPREPLY=($(compgen -W "$wallets" -- "$cur"))
            return
            ;;
        --config|--ledger|--keystore|--out|-o)
            _filedir
            return
            ;;
    esac

    local cmd="${words[1]}"
    case "$cmd" in
        init)
            COMPREPLY=($(compgen -W "--wallet $global" -- "$cur"))
            ;;
        deposit)
            COMPREPLY=($(compgen -W "--wallet --tag $global" -- "$cur"))
            ;;
        recover)
            COMPREPLY=($(compgen -W "--wallet --to $global" -- "$cur"))
            ;;
        balance|airdrop)
            COMPREPLY=($(compgen -W "$wallets $global" -- "$cur"))
            ;;
        events)
            COMPREPLY=($(compgen -W "--from $global" -- "$cur"))
            ;;
        snapshot)
            COMPREPLY=($(compgen -W "--out $global" -- "$cur"))
            ;;
        diff|price)
            _filedir
            ;;
        keyring)
            if [[ $cword -eq 2 ]]; then
                COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            else
                COMPREPLY=($(compgen -W "$wallets" -- "$cur"))
            fi
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _solvault solvault
`

const zshCompletion = `#compdef solvault

_solvault() {
    local -a commands
    commands=(
        'init:Initialize the locker with a wallet as admin'
        'deposit:Add lamports to the vault'
        'recover:Recover lamports from the vault (admin only)'
        'balance:Show the balance of the vault, a wallet or an address'
        'airdrop:Credit lamports to a local wallet'
        'status:Show ledger and locker status'
        'events:List emitted events'
        'keygen:Create a new wallet'
        'wallets:List wallets'
        'keyring:Manage wallet passphrases in OS keyring'
        'snapshot:Dump all accounts as JSON'
        'diff:Compare a snapshot with the ledger'
        'compact:Compact ledger to reclaim disk space'
        'price:Read SOL/USD from a price feed file'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'solvault commands' commands
            ;;
        args)
            case "${words[2]}" in
                init)
                    _arguments '--wallet[Admin wallet]:wallet:_solvault_wallets'
                    ;;
                deposit)
                    _arguments \
                        '--wallet[Depositing wallet]:wallet:_solvault_wallets' \
                        '--tag[Transaction tag (hex)]:tag:'
                    ;;
                recover)
                    _arguments \
                        '--wallet[Admin wallet]:wallet:_solvault_wallets' \
                        '--to[Recipient wallet]:wallet:_solvault_wallets'
                    ;;
                balance|airdrop)
                    _solvault_wallets
                    ;;
                events)
                    _arguments '--from[First event sequence]:seq:'
                    ;;
                snapshot)
                    _arguments '--out[Output file]:file:_files'
                    ;;
                diff|price)
                    _files
                    ;;
                keyring)
                    _values 'subcommand' save delete status
                    ;;
                help)
                    _describe -t commands 'solvault commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_solvault_wallets() {
    local -a wallets
    wallets=(${(f)"$(solvault wallets 2>/dev/null | tail -n +2 | awk '$1 != "(none)" {print $1}')"})
    _describe -t wallets 'wallets' wallets
}

_solvault "$@"
`

const fishCompletion = `# solvault fish completions

set -l commands init deposit recover balance airdrop status events keygen wallets keyring snapshot diff compact price help completion

complete -c solvault -f

function __solvault_wallets
    solvault wallets 2>/dev/null | tail -n +2 | awk '$1 != "(none)" {print $1}'
end

# Commands
complete -c solvault -n "not __fish_seen_subcommand_from $commands" -a init -d 'Initialize the locker'
complete -c solvault -n "not __fish_seen_subcommand_from $commands" -a deposit -d 'Add lamports to the vault'
complete -c solvault -n "not __fish_seen_subcommand_from $commands" -a recover -d 'Recover lamports (admin only)'
complete -c solvault -n "not __fish_seen_subcommand_from $commands" -a balance -d 'Show a balance'
complete -c solvault -n "not __fish_seen_subcommand_from $commands" -a airdrop -d 'Credit a local wallet'
complete -c solvault -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show ledger status'
complete -c solvault -n "not __fish_seen_subcommand_from $commands" -a events -d 'List events'
complete -c solvault -n "not __fish_seen_subcommand_from $commands" -a keygen -d 'Create a wallet'
complete -c solvault -n "not __fish_seen_subcommand_from $commands" -a wallets -d 'List wallets'
complete -c solvault -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage passphrases in OS keyring'
complete -c solvault -n "not __fish_seen_subcommand_from $commands" -a snapshot -d 'Dump accounts as JSON'
complete -c solvault -n "not __fish_seen_subcommand_from $commands" -a diff -d 'Compare snapshot with ledger'
complete -c solvault -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact ledger'
complete -c solvault -n "not __fish_seen_subcommand_from $commands" -a price -d 'Read SOL/USD price'
complete -c solvault -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c solvault -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# wallet flags
complete -c solvault -n "__fish_seen_subcommand_from init deposit recover" -l wallet -x -a "(__solvault_wallets)" -d 'Signing wallet'
complete -c solvault -n "__fish_seen_subcommand_from recover" -l to -x -a "(__solvault_wallets)" -d 'Recipient wallet'
complete -c solvault -n "__fish_seen_subcommand_from deposit" -l tag -x -d 'Transaction tag (hex)'
complete -c solvault -n "__fish_seen_subcommand_from balance airdrop" -a "(__solvault_wallets)"
complete -c solvault -n "__fish_seen_subcommand_from events" -l from -x -d 'First event sequence'
complete -c solvault -n "__fish_seen_subcommand_from snapshot" -l out -r -F -d 'Output file'
complete -c solvault -n "__fish_seen_subcommand_from diff price" -F

# keyring subcommands
complete -c solvault -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c solvault -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c solvault -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
