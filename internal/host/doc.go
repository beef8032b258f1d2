// Package host is the local runtime that executes program instructions.
//
// It plays the part a validator plays on chain: it verifies that every
// account marked as a signer really signed the transaction, hands the
// program a Context restricted to the accounts the instruction names,
// provides the native transfer primitives (self-authorized and
// program-authorized through a pda.Authority) and commits the whole
// instruction atomically. Account writes, emitted events, program logs
// and the replay record land in one storage transaction; any error
// returned by the program discards all of them.
//
// Writers are serialized by the storage layer's single-writer lock, so
// programs never take locks of their own.
package host
