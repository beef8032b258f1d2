package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	ConfigBucket     = []byte("config")
	AccountsBucket   = []byte("accounts")
	EventsBucket     = []byte("events")
	SignaturesBucket = []byte("signatures")
)

// Config keys
var (
	ConfigVersion    = []byte("version")
	ConfigCreated    = []byte("created")
	ConfigModified   = []byte("modified")
	ConfigProgramID  = []byte("program_id")
	ConfigAmountUnit = []byte("amount_unit")
	ConfigSlot       = []byte("slot")
)

var (
	ErrNotInitialized = errors.New("ledger not initialized")
	ErrAlreadyExists  = errors.New("ledger already initialized")
)

const formatVersion = "1"

// Storage provides BBolt-based storage for the ledger
type Storage struct {
	db *bolt.DB
}

// Open opens or creates a ledger database
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.db.Path()
}

// Initialize creates the bucket structure and records the program the
// ledger hosts and the unit its deposit events are written in. It fails
// with ErrAlreadyExists on an initialized ledger.
func (s *Storage) Initialize(programID, amountUnit string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket(ConfigBucket); b != nil && b.Get(ConfigVersion) != nil {
			return ErrAlreadyExists
		}

		for _, bucket := range [][]byte{ConfigBucket, AccountsBucket, EventsBucket, SignaturesBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if err := config.Put(ConfigVersion, []byte(formatVersion)); err != nil {
			return err
		}
		if err := config.Put(ConfigProgramID, []byte(programID)); err != nil {
			return err
		}
		if err := config.Put(ConfigAmountUnit, []byte(amountUnit)); err != nil {
			return err
		}
		if err := config.Put(ConfigSlot, encodeUint64(0)); err != nil {
			return err
		}

		created, _ := time.Now().MarshalBinary()
		if err := config.Put(ConfigCreated, created); err != nil {
			return err
		}
		return config.Put(ConfigModified, created)
	})
}

// IsInitialized checks if the database has been initialized
func (s *Storage) IsInitialized() (bool, error) {
	var initialized bool
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config != nil && config.Get(ConfigVersion) != nil {
			initialized = true
		}
		return nil
	})
	return initialized, err
}

// ProgramID returns the program address recorded at initialization
func (s *Storage) ProgramID() (string, error) {
	var id string
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		data := config.Get(ConfigProgramID)
		if data == nil {
			return fmt.Errorf("program_id not found")
		}
		id = string(data)
		return nil
	})
	return id, err
}

// AmountUnit returns the deposit event unit recorded at initialization
func (s *Storage) AmountUnit() (string, error) {
	var unit string
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		data := config.Get(ConfigAmountUnit)
		if data == nil {
			return fmt.Errorf("amount_unit not found")
		}
		unit = string(data)
		return nil
	})
	return unit, err
}

// GetModified retrieves the last modified timestamp
func (s *Storage) GetModified() (time.Time, error) {
	var modified time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		data := config.Get(ConfigModified)
		if data == nil {
			return fmt.Errorf("modified time not found")
		}
		return modified.UnmarshalBinary(data)
	})
	return modified, err
}

// Update runs fn inside a single read-write transaction. If fn returns an
// error nothing it wrote is persisted.
func (s *Storage) Update(fn func(*Tx) error) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(ConfigBucket) == nil {
			return ErrNotInitialized
		}
		if err := fn(&Tx{tx: tx}); err != nil {
			return err
		}
		modified, _ := time.Now().MarshalBinary()
		return tx.Bucket(ConfigBucket).Put(ConfigModified, modified)
	})
}

// View runs fn inside a read-only transaction.
func (s *Storage) View(fn func(*Tx) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(ConfigBucket) == nil {
			return ErrNotInitialized
		}
		return fn(&Tx{tx: tx})
	})
}

// Tx is a ledger transaction handed to Update and View callbacks.
type Tx struct {
	tx *bolt.Tx
}

// Slot returns the current slot.
func (t *Tx) Slot() uint64 {
	return decodeUint64(t.tx.Bucket(ConfigBucket).Get(ConfigSlot))
}

// NextSlot advances and returns the slot counter.
func (t *Tx) NextSlot() (uint64, error) {
	slot := t.Slot() + 1
	if err := t.tx.Bucket(ConfigBucket).Put(ConfigSlot, encodeUint64(slot)); err != nil {
		return 0, err
	}
	return slot, nil
}

// GetAccount returns the account at key, or nil if it does not exist.
func (t *Tx) GetAccount(key []byte) (*AccountRecord, error) {
	data := t.tx.Bucket(AccountsBucket).Get(key)
	if data == nil {
		return nil, nil
	}
	rec := &AccountRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("failed to decode account: %w", err)
	}
	return rec, nil
}

// PutAccount stores rec at key.
func (t *Tx) PutAccount(key []byte, rec *AccountRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return t.tx.Bucket(AccountsBucket).Put(key, data)
}

// DeleteAccount removes the account at key.
func (t *Tx) DeleteAccount(key []byte) error {
	return t.tx.Bucket(AccountsBucket).Delete(key)
}

// ForEachAccount calls fn for every account in key order.
func (t *Tx) ForEachAccount(fn func(key []byte, rec *AccountRecord) error) error {
	return t.tx.Bucket(AccountsBucket).ForEach(func(k, v []byte) error {
		rec := &AccountRecord{}
		if err := json.Unmarshal(v, rec); err != nil {
			return fmt.Errorf("failed to decode account: %w", err)
		}
		// Make a copy since the slice is only valid during the transaction
		return fn(append([]byte(nil), k...), rec)
	})
}

// AppendEvent assigns the next sequence number to rec and stores it.
func (t *Tx) AppendEvent(rec *EventRecord) (uint64, error) {
	events := t.tx.Bucket(EventsBucket)
	seq, err := events.NextSequence()
	if err != nil {
		return 0, err
	}
	rec.Seq = seq
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, err
	}
	return seq, events.Put(encodeUint64(seq), data)
}

// ForEachEvent calls fn for every event with sequence >= from.
func (t *Tx) ForEachEvent(from uint64, fn func(rec *EventRecord) error) error {
	c := t.tx.Bucket(EventsBucket).Cursor()
	for k, v := c.Seek(encodeUint64(from)); k != nil; k, v = c.Next() {
		rec := &EventRecord{}
		if err := json.Unmarshal(v, rec); err != nil {
			return fmt.Errorf("failed to decode event %x: %w", k, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// GetSignature returns the record of a committed transaction, or nil.
func (t *Tx) GetSignature(sig string) (*SignatureRecord, error) {
	data := t.tx.Bucket(SignaturesBucket).Get([]byte(sig))
	if data == nil {
		return nil, nil
	}
	rec := &SignatureRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// PutSignature records a committed transaction.
func (t *Tx) PutSignature(sig string, rec *SignatureRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return t.tx.Bucket(SignaturesBucket).Put([]byte(sig), data)
}

// Compact creates a compacted copy of the database, removing unused space.
func (s *Storage) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	// Create new database
	dst, err := bolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// Copy all buckets, keeping bucket sequences so event numbering continues
	err = s.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				if err := dstBucket.SetSequence(srcBucket.Sequence()); err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	// Reopen database
	s.db, err = bolt.Open(srcPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}

	return nil
}

func encodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func decodeUint64(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

