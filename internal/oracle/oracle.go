// Package oracle reads SOL/USD price snapshots for off-chain reporting.
// No program instruction consults it.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// FeedID is the SOL/USD price feed.
	FeedID = "ef0d8b6fda2ceba41da15d4095d1da392a0d2f8ed0c6c7bc0f4cfac8c280b56d"

	// MaximumAge is the oldest publish time, in seconds, a price may have.
	MaximumAge = 6000
)

var (
	ErrFeedNotFound = errors.New("price feed not found")
	ErrStalePrice   = errors.New("price is too old")
	ErrInvalidPrice = errors.New("invalid price")
)

// PriceData is one published price: Price * 10^Exponent, +/- Confidence.
type PriceData struct {
	Price       int64  `yaml:"price"`
	Exponent    int32  `yaml:"exponent"`
	PublishTime int64  `yaml:"publish_time"`
	Confidence  uint64 `yaml:"confidence"`
}

// Float returns the price as a float.
func (p PriceData) Float() float64 {
	return float64(p.Price) * math.Pow10(int(p.Exponent))
}

// Feed returns the latest price for a feed id.
type Feed interface {
	Latest(ctx context.Context, feedID string) (PriceData, error)
}

// ReadPrice returns the latest price for feedID provided it was published
// no more than maxAge seconds before now and is positive.
func ReadPrice(ctx context.Context, feed Feed, feedID string, now time.Time, maxAge int64) (PriceData, error) {
	price, err := feed.Latest(ctx, feedID)
	if err != nil {
		return PriceData{}, err
	}
	if age := now.Unix() - price.PublishTime; age > maxAge {
		return PriceData{}, fmt.Errorf("%w: published %ds ago, limit %ds", ErrStalePrice, age, maxAge)
	}
	if price.Price <= 0 {
		return PriceData{}, fmt.Errorf("%w: %d", ErrInvalidPrice, price.Price)
	}
	return price, nil
}

// FileFeed serves prices from a YAML file mapping feed ids to PriceData.
// The file is re-read on every call.
type FileFeed struct {
	Path string
}

func (f FileFeed) Latest(ctx context.Context, feedID string) (PriceData, error) {
	if err := ctx.Err(); err != nil {
		return PriceData{}, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return PriceData{}, fmt.Errorf("failed to read price file: %w", err)
	}
	var feeds map[string]PriceData
	if err := yaml.Unmarshal(data, &feeds); err != nil {
		return PriceData{}, fmt.Errorf("failed to parse price file: %w", err)
	}
	price, ok := feeds[strings.TrimPrefix(strings.ToLower(feedID), "0x")]
	if !ok {
		return PriceData{}, fmt.Errorf("%w: %s", ErrFeedNotFound, feedID)
	}
	return price, nil
}
