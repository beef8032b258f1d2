package core

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/illarion/solvault/internal/oracle"
)

// ParseTag decodes a hex transaction tag of up to 32 bytes. Shorter tags
// are right-aligned, so "01" sets the last byte.
func ParseTag(s string) ([32]byte, error) {
	var tag [32]byte
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return tag, nil
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return tag, fmt.Errorf("%w: %v", ErrInvalidTag, err)
	}
	if len(raw) > len(tag) {
		return tag, fmt.Errorf("%w: %d bytes (max %d)", ErrInvalidTag, len(raw), len(tag))
	}
	copy(tag[len(tag)-len(raw):], raw)
	return tag, nil
}

// ParseAmount parses a lamport amount.
func ParseAmount(s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.ReplaceAll(s, "_", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return v, nil
}

// Price reads the configured feed from a YAML price snapshot.
func Price(ctx context.Context, path string, now time.Time) (oracle.PriceData, error) {
	return oracle.ReadPrice(ctx, oracle.FileFeed{Path: path}, oracle.FeedID, now, oracle.MaximumAge)
}
