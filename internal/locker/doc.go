// Package locker is the custodial vault program.
//
// A single Locker account, derived from the seed "locker", records the
// admin and the bumps of the locker and vault addresses. The vault,
// derived from the seed "vault", is a bare system account that only holds
// lamports. Instructions:
//   - initialize: create the Locker, fixing the admin to the signer
//   - add_funds: anyone deposits lamports into the vault
//   - recover_tokens: the admin moves lamports from the vault to a recipient
//
// The vault has no private key. The program moves funds out of it by
// proving it can re-derive the vault address from its seeds.
package locker
