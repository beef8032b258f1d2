// Package keystore keeps wallet keypairs on disk, sealed with a passphrase.
// Each wallet is one JSON file named after the wallet inside the keystore
// directory; file access is confined to that directory.
package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/illarion/solvault/internal/crypto"
)

const (
	fileVersion = 1
	fileSuffix  = ".json"
	DirPerm     = 0700
	FilePerm    = 0600
)

var (
	ErrInvalidName     = errors.New("invalid wallet name")
	ErrWalletExists    = errors.New("wallet already exists")
	ErrWalletNotFound  = errors.New("wallet not found")
	ErrWrongPassphrase = errors.New("wrong passphrase")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

type walletFile struct {
	Version   int        `json:"version"`
	PublicKey string     `json:"public_key"`
	KDF       crypto.KDF `json:"kdf"`
	Sealed    []byte     `json:"sealed"`
}

// WalletInfo is what can be learned about a wallet without its passphrase.
type WalletInfo struct {
	Name      string
	PublicKey solana.PublicKey
}

// Keystore is a directory of sealed wallets.
type Keystore struct {
	dir  string
	root *os.Root
}

// Open opens the keystore at dir, creating the directory if needed.
func Open(dir string) (*Keystore, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	if err := os.MkdirAll(absDir, DirPerm); err != nil {
		return nil, fmt.Errorf("failed to create keystore: %w", err)
	}
	root, err := os.OpenRoot(absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open keystore: %w", err)
	}
	return &Keystore{dir: absDir, root: root}, nil
}

func (k *Keystore) Close() error {
	return k.root.Close()
}

// Dir returns the absolute keystore directory.
func (k *Keystore) Dir() string {
	return k.dir
}

func fileName(name string) (string, error) {
	if !validName.MatchString(name) || strings.HasSuffix(name, fileSuffix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name + fileSuffix, nil
}

// Create generates a new keypair and stores it as name.
func (k *Keystore) Create(name string, passphrase []byte) (solana.PublicKey, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to generate key: %w", err)
	}
	defer crypto.ClearBytes(key)

	if err := k.Import(name, key, passphrase); err != nil {
		return solana.PublicKey{}, err
	}
	return key.PublicKey(), nil
}

// Import seals an existing private key as name.
func (k *Keystore) Import(name string, key solana.PrivateKey, passphrase []byte) error {
	file, err := fileName(name)
	if err != nil {
		return err
	}

	kdf, err := crypto.NewKDF()
	if err != nil {
		return err
	}
	sealKey := kdf.DeriveKey(passphrase)
	defer crypto.ClearBytes(sealKey)

	pub := key.PublicKey()
	sealed, err := crypto.Seal(sealKey, key, pub[:])
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(walletFile{
		Version:   fileVersion,
		PublicKey: pub.String(),
		KDF:       *kdf,
		Sealed:    sealed,
	}, "", "  ")
	if err != nil {
		return err
	}

	f, err := k.root.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, FilePerm)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrWalletExists, name)
		}
		return fmt.Errorf("failed to create wallet file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		k.root.Remove(file)
		return fmt.Errorf("failed to write wallet file: %w", err)
	}
	return f.Close()
}

func (k *Keystore) read(name string) (*walletFile, error) {
	file, err := fileName(name)
	if err != nil {
		return nil, err
	}
	f, err := k.root.Open(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, name)
		}
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	wf := &walletFile{}
	if err := json.Unmarshal(data, wf); err != nil {
		return nil, fmt.Errorf("failed to parse wallet %s: %w", name, err)
	}
	if wf.Version != fileVersion {
		return nil, fmt.Errorf("wallet %s: unsupported version %d", name, wf.Version)
	}
	return wf, nil
}

// PublicKey returns the public key of name. No passphrase is needed.
func (k *Keystore) PublicKey(name string) (solana.PublicKey, error) {
	wf, err := k.read(name)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBase58(wf.PublicKey)
}

// Unlock decrypts the private key of name. The caller should
// crypto.ClearBytes the result when done.
func (k *Keystore) Unlock(name string, passphrase []byte) (solana.PrivateKey, error) {
	wf, err := k.read(name)
	if err != nil {
		return nil, err
	}
	pub, err := solana.PublicKeyFromBase58(wf.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("wallet %s: %w", name, err)
	}

	sealKey := wf.KDF.DeriveKey(passphrase)
	defer crypto.ClearBytes(sealKey)

	plain, err := crypto.Open(sealKey, wf.Sealed, pub[:])
	if err != nil {
		if errors.Is(err, crypto.ErrAuthFailed) {
			return nil, ErrWrongPassphrase
		}
		return nil, err
	}

	key := solana.PrivateKey(plain)
	if !key.PublicKey().Equals(pub) {
		crypto.ClearBytes(plain)
		return nil, fmt.Errorf("wallet %s: key does not match public key", name)
	}
	return key, nil
}

// List returns every wallet sorted by name.
func (k *Keystore) List() ([]WalletInfo, error) {
	entries, err := os.ReadDir(k.dir)
	if err != nil {
		return nil, err
	}
	var wallets []WalletInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), fileSuffix)
		pub, err := k.PublicKey(name)
		if err != nil {
			continue
		}
		wallets = append(wallets, WalletInfo{Name: name, PublicKey: pub})
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].Name < wallets[j].Name })
	return wallets, nil
}
