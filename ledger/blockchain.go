package ledger

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"
)

// Chain is an append-only sequence of sealed blocks mined under a fixed
// difficulty. Appends are serialized; readers may run concurrently with each
// other and only wait for an in-progress append.
type Chain struct {
	mu         sync.RWMutex
	blocks     []*SealedBlock
	difficulty []byte
	miner      *Miner
	validator  *Validator
	logger     *slog.Logger
}

type chainConfig struct {
	hasher    *Hasher
	minerOpts []MinerOption
	logger    *slog.Logger
}

type ChainOption func(chainConfig) chainConfig

// WithHasher sets the Hasher used for mining and validation. The default is
// SHA-512.
func WithHasher(h *Hasher) ChainOption {
	return func(c chainConfig) chainConfig {
		if h != nil {
			c.hasher = h
		}
		return c
	}
}

// WithMinerOptions configures the Miner driven by Append.
func WithMinerOptions(opts ...MinerOption) ChainOption {
	return func(c chainConfig) chainConfig {
		c.minerOpts = append(c.minerOpts, opts...)
		return c
	}
}

func WithLogger(logger *slog.Logger) ChainOption {
	return func(c chainConfig) chainConfig {
		if logger != nil {
			c.logger = logger
		}
		return c
	}
}

// NewChain mines genesis under difficulty and returns a chain holding it as
// its only block. Any link set on genesis is reset to a zero-length
// placeholder before mining.
// A nil difficulty fails with ErrInvalidArgument and a nil genesis with
// ErrInvalidGenesis.
func NewChain(ctx context.Context, difficulty []byte, genesis *Block, opts ...ChainOption) (*Chain, error) {
	if difficulty == nil {
		return nil, fmt.Errorf("%w: difficulty is nil", ErrInvalidArgument)
	}
	if genesis == nil {
		return nil, ErrInvalidGenesis
	}
	genesis.SetLink(nil)

	cfg := chainConfig{
		hasher: DefaultHasher(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		cfg = opt(cfg)
	}
	minerOpts := append([]MinerOption{WithMinerLogger(cfg.logger)}, cfg.minerOpts...)

	c := &Chain{
		blocks:     make([]*SealedBlock, 0, 1),
		difficulty: bytes.Clone(difficulty),
		miner:      NewMiner(cfg.hasher, minerOpts...),
		validator:  NewValidator(cfg.hasher),
		logger:     cfg.logger,
	}

	sealed, err := c.miner.Mine(ctx, genesis, c.difficulty)
	if err != nil {
		return nil, fmt.Errorf("mine genesis: %w", err)
	}
	c.blocks = append(c.blocks, sealed)
	c.logger.Debug("genesis stored", "seal", fmt.Sprintf("%X", sealed.seal))

	return c, nil
}

// Append links b to the current tip, mines it and stores the sealed result.
// If the chain is empty the link is left as supplied. On failure nothing is
// stored and b keeps the link and the last nonce tried.
func (c *Chain) Append(ctx context.Context, b *Block) (*SealedBlock, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: block is nil", ErrInvalidArgument)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if n := len(c.blocks); n > 0 {
		b.SetLink(c.blocks[n-1].seal)
	}

	sealed, err := c.miner.Mine(ctx, b, c.difficulty)
	if err != nil {
		return nil, fmt.Errorf("mine block %d: %w", len(c.blocks), err)
	}
	c.blocks = append(c.blocks, sealed)
	c.logger.Debug("block appended", "index", len(c.blocks)-1, "nonce", sealed.nonce)

	return sealed, nil
}

// Len returns the number of stored blocks.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.blocks)
}

// At returns the block at index. It fails with ErrIndexOutOfRange outside
// [0, Len()).
func (c *Chain) At(index int) (*SealedBlock, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if index < 0 || index >= len(c.blocks) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(c.blocks))
	}

	return c.blocks[index], nil
}

// Last returns the most recently stored block, if any.
func (c *Chain) Last() (*SealedBlock, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.blocks) == 0 {
		return nil, false
	}

	return c.blocks[len(c.blocks)-1], true
}

// Blocks returns a snapshot of the stored blocks.
func (c *Chain) Blocks() []*SealedBlock {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.blocks)
}

// All returns a forward iterator over the blocks stored when iteration
// starts. It can be ranged over any number of times.
func (c *Chain) All() iter.Seq[*SealedBlock] {
	return func(yield func(*SealedBlock) bool) {
		for _, b := range c.Blocks() {
			if !yield(b) {
				return
			}
		}
	}
}

// Difficulty returns a copy of the difficulty prefix.
func (c *Chain) Difficulty() []byte {
	return bytes.Clone(c.difficulty)
}

func (c *Chain) Hasher() *Hasher {
	return c.miner.Hasher()
}

// Validator returns a Validator using the chain's Hasher.
func (c *Chain) Validator() *Validator {
	return c.validator
}

// Verify audits every stored block: its seal must match its content and meet
// the difficulty, and its link must equal the previous seal. It returns
// ErrIntegrity wrapped with the index of the first offending block.
func (c *Chain) Verify() error {
	blocks := c.Blocks()

	for i, b := range blocks {
		if !c.validator.IsSelfValid(b) {
			return fmt.Errorf("block %d: seal mismatch: %w", i, ErrIntegrity)
		}
		if !Meets(b.seal, c.difficulty) {
			return fmt.Errorf("block %d: seal %X does not meet difficulty %X: %w", i, b.seal, c.difficulty, ErrIntegrity)
		}
		if i > 0 && !bytes.Equal(b.link, blocks[i-1].seal) {
			return fmt.Errorf("block %d: link does not match previous seal: %w", i, ErrIntegrity)
		}
	}

	return nil
}
