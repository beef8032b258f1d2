// Package core provides the solvault operations behind the CLI.
//
// Core operations include:
//   - Init: create the ledger if needed and initialize the locker program
//   - Deposit: add_funds from a user wallet into the vault
//   - Recover: recover_tokens from the vault to a recipient (admin only)
//   - Status/Events/Balance: read-only views of the ledger
//   - Snapshot/Diff/Compact: ledger maintenance
package core
