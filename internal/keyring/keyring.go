// Package keyring remembers wallet passphrases in the OS keyring.
package keyring

import (
	"github.com/zalando/go-keyring"
)

const serviceName = "solvault"

// account scopes an entry to one wallet in one keystore directory.
func account(keystoreDir, wallet string) string {
	return keystoreDir + ":" + wallet
}

// SavePassphrase stores a wallet passphrase in the OS keyring
func SavePassphrase(keystoreDir, wallet, passphrase string) error {
	return keyring.Set(serviceName, account(keystoreDir, wallet), passphrase)
}

// GetPassphrase retrieves a wallet passphrase from the OS keyring
func GetPassphrase(keystoreDir, wallet string) (string, error) {
	return keyring.Get(serviceName, account(keystoreDir, wallet))
}

// DeletePassphrase removes a wallet passphrase from the OS keyring
func DeletePassphrase(keystoreDir, wallet string) error {
	return keyring.Delete(serviceName, account(keystoreDir, wallet))
}

// HasPassphrase checks if a wallet passphrase is stored in the keyring
func HasPassphrase(keystoreDir, wallet string) bool {
	_, err := keyring.Get(serviceName, account(keystoreDir, wallet))
	return err == nil
}
