// Package storage provides the BBolt ledger behind the local runtime.
//
// Database structure uses four buckets:
//   - config: format version, program id, timestamps and the slot counter
//   - accounts: 32-byte address -> JSON account record (lamports, owner, data)
//   - events: big-endian sequence -> JSON event record
//   - signatures: processed transaction signatures, for replay rejection
//
// Every transaction the runtime executes runs inside one BBolt write
// transaction, so account writes, emitted events and the signature record
// commit together or not at all.
package storage
