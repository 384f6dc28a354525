package ledger

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
)

// contextPollInterval is the number of attempts between two context checks.
const contextPollInterval = 1 << 12

// Miner searches for a nonce whose digest starts with a difficulty prefix.
// A Miner may be shared, but a given Block must only be mined by one caller
// at a time.
type Miner struct {
	hasher      *Hasher
	maxAttempts uint64
	logger      *slog.Logger
}

type MinerOption func(Miner) Miner

// NewMiner creates a Miner using the given Hasher. With no options the search
// is unbounded.
func NewMiner(hasher *Hasher, opts ...MinerOption) *Miner {
	m := Miner{
		hasher: hasher,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		m = opt(m)
	}
	return &m
}

// WithMaxAttempts bounds the number of digests computed by a single Mine
// call. Zero means no bound.
func WithMaxAttempts(attempts uint64) MinerOption {
	return func(m Miner) Miner {
		m.maxAttempts = attempts
		return m
	}
}

func WithMinerLogger(logger *slog.Logger) MinerOption {
	return func(m Miner) Miner {
		if logger != nil {
			m.logger = logger
		}
		return m
	}
}

// Hasher returns the Hasher used by the Miner.
func (m *Miner) Hasher() *Hasher {
	return m.hasher
}

// Meets reports whether digest starts with difficulty. An empty difficulty is
// met by every digest.
func Meets(digest, difficulty []byte) bool {
	return bytes.HasPrefix(digest, difficulty)
}

// Mine hashes b at its current nonce and keeps incrementing the nonce until
// the digest starts with difficulty. On success the nonce is left at the
// winning value and the sealed block is returned.
//
// Mine fails with ErrMiningExhausted if the attempt budget or the nonce space
// runs out, and with the context error if ctx is done. In both cases b keeps
// the last nonce tried.
func (m *Miner) Mine(ctx context.Context, b *Block, difficulty []byte) (*SealedBlock, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: block is nil", ErrInvalidArgument)
	}
	if difficulty == nil {
		return nil, fmt.Errorf("%w: difficulty is nil", ErrInvalidArgument)
	}
	if len(difficulty) > m.hasher.Size() {
		return nil, fmt.Errorf("%w: difficulty of %d bytes exceeds digest size %d", ErrInvalidArgument, len(difficulty), m.hasher.Size())
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("mining not started: %w", err)
	}

	var attempts uint64
	for {
		digest := m.hasher.Digest(b)
		attempts++
		if Meets(digest, difficulty) {
			m.logger.Debug("block mined",
				"nonce", b.nonce,
				"attempts", attempts,
				"seal", fmt.Sprintf("%X", digest[:min(len(digest), 8)]))
			return b.seal(digest), nil
		}

		if m.maxAttempts > 0 && attempts >= m.maxAttempts {
			m.logger.Warn("mining budget exhausted", "attempts", attempts, "difficulty", fmt.Sprintf("%X", difficulty))
			return nil, fmt.Errorf("%w: no match after %d attempts", ErrMiningExhausted, attempts)
		}
		if b.nonce == math.MaxUint64 {
			return nil, fmt.Errorf("%w: nonce space exhausted", ErrMiningExhausted)
		}
		if attempts%contextPollInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("mining interrupted after %d attempts: %w", attempts, err)
			}
		}
		b.nonce++
	}
}
