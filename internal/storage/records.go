package storage

import (
	"time"
)

// AccountRecord is the persisted form of one account.
type AccountRecord struct {
	Lamports uint64 `json:"lamports"`
	Owner    string `json:"owner"`
	Data     []byte `json:"data,omitempty"`
}

// EventRecord is one emitted program event.
type EventRecord struct {
	Seq       uint64    `json:"seq"`
	Slot      uint64    `json:"slot"`
	Signature string    `json:"signature"`
	Program   string    `json:"program"`
	Name      string    `json:"name"`
	Data      []byte    `json:"data"`
	Time      time.Time `json:"time"`
}

// SignatureRecord marks a committed transaction.
type SignatureRecord struct {
	Slot uint64    `json:"slot"`
	Time time.Time `json:"time"`
	Logs []string  `json:"logs,omitempty"`
}
