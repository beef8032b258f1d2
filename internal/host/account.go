package host

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/illarion/solvault/internal/storage"
)

// Account is the runtime view of one address.
// A missing address reads as an empty, system-owned account.
type Account struct {
	Address  solana.PublicKey
	Lamports uint64
	Owner    solana.PublicKey
	Data     []byte
}

// Empty reports whether the account holds neither lamports nor data.
func (a *Account) Empty() bool {
	return a.Lamports == 0 && len(a.Data) == 0
}

// Rent parameters, as on mainnet.
const (
	AccountStorageOverhead = 128
	LamportsPerByteYear    = 3480
	ExemptionThreshold     = 2
)

// MinimumBalance returns the lamports an account with space bytes of data
// must hold to be rent exempt.
func MinimumBalance(space uint64) uint64 {
	return (AccountStorageOverhead + space) * LamportsPerByteYear * ExemptionThreshold
}

func loadAccount(tx *storage.Tx, key solana.PublicKey) (*Account, error) {
	rec, err := tx.GetAccount(key[:])
	if err != nil {
		return nil, err
	}
	acct := &Account{Address: key, Owner: solana.SystemProgramID}
	if rec == nil {
		return acct, nil
	}

	owner, err := solana.PublicKeyFromBase58(rec.Owner)
	if err != nil {
		return nil, fmt.Errorf("account %s has invalid owner: %w", key, err)
	}
	acct.Lamports = rec.Lamports
	acct.Owner = owner
	acct.Data = rec.Data
	return acct, nil
}

// storeAccount persists acct; empty accounts are removed from the ledger.
func storeAccount(tx *storage.Tx, acct *Account) error {
	if acct.Empty() {
		return tx.DeleteAccount(acct.Address[:])
	}
	return tx.PutAccount(acct.Address[:], &storage.AccountRecord{
		Lamports: acct.Lamports,
		Owner:    acct.Owner.String(),
		Data:     acct.Data,
	})
}
