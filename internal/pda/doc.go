// Package pda derives and re-verifies program-derived addresses.
//
// A program-derived address is computed from fixed seed bytes, a one-byte
// bump and the owning program's address, and is required to lie off the
// ed25519 curve so that no private key exists for it. The only way to
// "sign" for such an address is to reproduce its seeds, which is what
// ProveAuthority packages up for the host runtime.
package pda
