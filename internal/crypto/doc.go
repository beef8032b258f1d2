// Package crypto seals wallet private keys at rest.
//
// Sealing uses AES-256-GCM with:
//   - 32-byte key derived from a passphrase via argon2id
//   - 12-byte random nonce per seal, prepended to the ciphertext
//   - the wallet's public key as additional authenticated data
//
// Memory safety:
//   - Use ClearBytes() to zero passphrases and keys after use
package crypto
