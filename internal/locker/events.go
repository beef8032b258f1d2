package locker

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	FundsAddedEventName     = "FundsAddedEvent"
	TokenRecoveredEventName = "TokenRecoveredEvent"
)

var (
	fundsAddedDiscriminator     = discriminator("event", FundsAddedEventName)
	tokenRecoveredDiscriminator = discriminator("event", TokenRecoveredEventName)
)

// FundsAddedEvent is emitted by add_funds. SolAmount is in the unit the
// program was configured with (see Options.DepositScale).
type FundsAddedEvent struct {
	User            solana.PublicKey
	SolAmount       uint64
	TransactionHash [32]byte
}

// TokenRecoveredEvent is emitted by recover_tokens. Amount is in lamports.
type TokenRecoveredEvent struct {
	Admin  solana.PublicKey
	Amount uint64
}

func encodeEvent(disc [8]byte, ev any) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(disc[:])
	if err := bin.NewBorshEncoder(&buf).Encode(ev); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeEvent decodes the data of an emitted event into
// *FundsAddedEvent or *TokenRecoveredEvent.
func DecodeEvent(data []byte) (any, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("event data too short: %d bytes", len(data))
	}
	var disc [8]byte
	copy(disc[:], data[:8])

	var ev any
	switch disc {
	case fundsAddedDiscriminator:
		ev = &FundsAddedEvent{}
	case tokenRecoveredDiscriminator:
		ev = &TokenRecoveredEvent{}
	default:
		return nil, fmt.Errorf("unknown event discriminator %x", disc)
	}
	if err := bin.NewBorshDecoder(data[8:]).Decode(ev); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	return ev, nil
}
