// Package git warns when the local ledger or the wallet keystore is
// tracked by, or not ignored by, git. It shells out to the git binary.
package git
