package ledger

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
)

// TestNewChainStoresMinedGenesis verifies that a new chain holds exactly the
// mined genesis block with an empty link.
func TestNewChainStoresMinedGenesis(t *testing.T) {
	difficulty := []byte{0x00}
	c, err := NewChain(context.Background(), difficulty, newTestBlock(t, []byte{0, 0, 0, 0}))
	if err != nil {
		t.Fatalf("failed to create chain: %v", err)
	}

	if c.Len() != 1 {
		t.Fatalf("expected 1 block (genesis), got %d", c.Len())
	}
	genesis, err := c.At(0)
	if err != nil {
		t.Fatalf("At(0) failed: %v", err)
	}
	if len(genesis.Link()) != 0 {
		t.Fatalf("genesis link should be empty, got %X", genesis.Link())
	}
	if !bytes.HasPrefix(genesis.Seal(), difficulty) {
		t.Fatalf("genesis seal %X does not meet difficulty", genesis.Seal())
	}
	if last, ok := c.Last(); !ok || last != genesis {
		t.Fatal("Last should return the genesis block")
	}
}

// TestNewChainResetsGenesisLink verifies that a link set on the genesis
// before the chain is created is replaced by an empty placeholder.
func TestNewChainResetsGenesisLink(t *testing.T) {
	genesis := newTestBlock(t, []byte{0, 0, 0, 0})
	genesis.SetLink([]byte{1, 2, 3})

	c, err := NewChain(context.Background(), []byte{0x00}, genesis)
	if err != nil {
		t.Fatalf("failed to create chain: %v", err)
	}
	stored, err := c.At(0)
	if err != nil {
		t.Fatalf("At(0) failed: %v", err)
	}
	if len(stored.Link()) != 0 {
		t.Fatalf("genesis link should be empty, got %X", stored.Link())
	}
	if err := c.Verify(); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
}

// TestNewChainInvalidArguments verifies that a missing genesis or difficulty
// is reported immediately.
func TestNewChainInvalidArguments(t *testing.T) {
	ctx := context.Background()

	if _, err := NewChain(ctx, []byte{0}, nil); !errors.Is(err, ErrInvalidGenesis) {
		t.Fatalf("nil genesis: expected ErrInvalidGenesis, got %v", err)
	}
	if _, err := NewChain(ctx, nil, newTestBlock(t, []byte{1})); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("nil difficulty: expected ErrInvalidArgument, got %v", err)
	}
}

// TestConcreteScenario mines a genesis of four zero bytes and a second block
// holding 0x01 under a two zero bytes difficulty, then flips one payload bit.
func TestConcreteScenario(t *testing.T) {
	difficulty := []byte{0x00, 0x00}
	genesisBlock, err := NewBlock([]byte{0x00, 0x00, 0x00, 0x00})
	if err != nil {
		t.Fatalf("failed to create genesis: %v", err)
	}

	c, err := NewChain(context.Background(), difficulty, genesisBlock)
	if err != nil {
		t.Fatalf("failed to create chain: %v", err)
	}
	genesis, _ := c.At(0)
	if !bytes.Equal(genesis.Seal()[:2], []byte{0x00, 0x00}) {
		t.Fatalf("genesis seal %X does not start with 0000", genesis.Seal())
	}

	secondBlock, err := NewBlock([]byte{0x01})
	if err != nil {
		t.Fatalf("failed to create second block: %v", err)
	}
	second, err := c.Append(context.Background(), secondBlock)
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if !bytes.Equal(second.Link(), genesis.Seal()) {
		t.Fatalf("second link %X does not equal genesis seal %X", second.Link(), genesis.Seal())
	}
	if !bytes.Equal(second.Seal()[:2], []byte{0x00, 0x00}) {
		t.Fatalf("second seal %X does not start with 0000", second.Seal())
	}

	v := c.Validator()
	if !v.IsSliceValid([]*SealedBlock{genesis, second}) {
		t.Fatal("expected [genesis, second] to be valid")
	}

	second.payload[0] ^= 0x01
	if v.IsSliceValid([]*SealedBlock{genesis, second}) {
		t.Fatal("flipping a payload bit should invalidate the chain")
	}
}

// TestAppendLinksToTip verifies that each appended block is linked to the
// seal of the block stored before it.
func TestAppendLinksToTip(t *testing.T) {
	c := newTestChain(t, 0)

	for i := 0; i < 5; i++ {
		tip, _ := c.Last()
		b := newTestBlock(t, []byte{byte(i)})
		b.SetLink([]byte("ignored"))

		sealed, err := c.Append(context.Background(), b)
		if err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
		if !bytes.Equal(sealed.Link(), tip.Seal()) {
			t.Fatalf("block %d link %X does not equal tip seal %X", i+1, sealed.Link(), tip.Seal())
		}
		if last, _ := c.Last(); last != sealed {
			t.Fatalf("block %d is not the new tip", i+1)
		}
	}
}

// TestAppendNilBlock verifies that appending nil is a usage error and leaves
// the chain untouched.
func TestAppendNilBlock(t *testing.T) {
	c := newTestChain(t, 0)
	if _, err := c.Append(context.Background(), nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 block, got %d", c.Len())
	}
}

// TestAppendExhaustedStoresNothing verifies that a failed search does not
// grow the chain.
func TestAppendExhaustedStoresNothing(t *testing.T) {
	c, err := NewChain(context.Background(), []byte{}, newTestBlock(t, []byte{0}),
		WithMinerOptions(WithMaxAttempts(1)))
	if err != nil {
		t.Fatalf("failed to create chain: %v", err)
	}
	// an empty difficulty always succeeds at the first attempt
	if _, err := c.Append(context.Background(), newTestBlock(t, []byte{1})); err != nil {
		t.Fatalf("append with empty difficulty failed: %v", err)
	}

	hard, err := NewChain(context.Background(), []byte{0x00}, newTestBlock(t, []byte{0}))
	if err != nil {
		t.Fatalf("failed to create chain: %v", err)
	}
	hard.miner = NewMiner(hard.Hasher(), WithMaxAttempts(1))

	// start from a nonce that misses, with a link of the length Append will set
	b := newTestBlock(t, []byte("unlucky"))
	b.SetLink(make([]byte, hard.Hasher().Size()))
	for Meets(hard.Hasher().Digest(b), hard.difficulty) {
		b.nonce++
	}
	if _, err := hard.Append(context.Background(), b); !errors.Is(err, ErrMiningExhausted) {
		t.Fatalf("expected ErrMiningExhausted, got %v", err)
	}
	if hard.Len() != 1 {
		t.Fatalf("expected 1 block after failed append, got %d", hard.Len())
	}
}

// TestAtBounds verifies indexing at and outside the chain bounds.
func TestAtBounds(t *testing.T) {
	c := newTestChain(t, 2)

	for _, index := range []int{-1, c.Len(), c.Len() + 10} {
		if _, err := c.At(index); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("At(%d): expected ErrIndexOutOfRange, got %v", index, err)
		}
	}
	for i := 0; i < c.Len(); i++ {
		if _, err := c.At(i); err != nil {
			t.Fatalf("At(%d) failed: %v", i, err)
		}
	}
}

// TestAllIsRestartable verifies that the iterator yields the blocks in order,
// can be ranged over again, and supports early termination.
func TestAllIsRestartable(t *testing.T) {
	c := newTestChain(t, 3)
	want := c.Blocks()

	for pass := 0; pass < 2; pass++ {
		i := 0
		for b := range c.All() {
			if b != want[i] {
				t.Fatalf("pass %d: block %d out of order", pass, i)
			}
			i++
		}
		if i != len(want) {
			t.Fatalf("pass %d: expected %d blocks, got %d", pass, len(want), i)
		}
	}

	count := 0
	for range c.All() {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Fatalf("expected early stop after 2 blocks, got %d", count)
	}
}

// TestDifficultyIsImmutable verifies the chain keeps its own copy of the
// difficulty.
func TestDifficultyIsImmutable(t *testing.T) {
	difficulty := []byte{0x00}
	c, err := NewChain(context.Background(), difficulty, newTestBlock(t, []byte{0}))
	if err != nil {
		t.Fatalf("failed to create chain: %v", err)
	}

	difficulty[0] = 0xFF
	c.Difficulty()[0] = 0xFF
	if !bytes.Equal(c.Difficulty(), []byte{0x00}) {
		t.Fatalf("difficulty changed to %X", c.Difficulty())
	}
}

// TestChainWithCustomHasher verifies that the chain mines and validates with
// the configured Hasher.
func TestChainWithCustomHasher(t *testing.T) {
	h, err := HasherByName("suite:Ed25519")
	if err != nil {
		t.Fatalf("failed to resolve hasher: %v", err)
	}
	c, err := NewChain(context.Background(), []byte{0x00}, newTestBlock(t, []byte{0}), WithHasher(h))
	if err != nil {
		t.Fatalf("failed to create chain: %v", err)
	}
	sealed, err := c.Append(context.Background(), newTestBlock(t, []byte{1}))
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if len(sealed.Seal()) != h.Size() {
		t.Fatalf("expected %d byte seal, got %d", h.Size(), len(sealed.Seal()))
	}
	if err := c.Verify(); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
}

// TestConcurrentAppendAndRead verifies that concurrent appends are serialized
// and readers never observe a broken chain.
func TestConcurrentAppendAndRead(t *testing.T) {
	c := newTestChain(t, 0)
	const writers, perWriter = 4, 5

	var wg sync.WaitGroup
	errChan := make(chan error, writers*perWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				b, err := NewBlock([]byte{byte(w), byte(i)})
				if err != nil {
					errChan <- err
					return
				}
				if _, err := c.Append(context.Background(), b); err != nil {
					errChan <- err
					return
				}
			}
		}(w)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	v := c.Validator()
	for reading := true; reading; {
		select {
		case <-done:
			reading = false
		default:
			if !v.IsChainValid(c.All()) {
				t.Fatal("reader observed an invalid chain")
			}
		}
	}
	close(errChan)
	for err := range errChan {
		t.Fatalf("append failed: %v", err)
	}

	if c.Len() != 1+writers*perWriter {
		t.Fatalf("expected %d blocks, got %d", 1+writers*perWriter, c.Len())
	}
	if err := c.Verify(); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
}
