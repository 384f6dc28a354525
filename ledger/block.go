package ledger

import (
	"bytes"
	"fmt"
	"time"
)

// Header is the read surface shared by unsealed and sealed blocks. It is
// everything the Hasher needs to compute a digest.
type Header interface {
	Payload() []byte
	Nonce() uint64
	Link() []byte
	Timestamp() time.Time
}

// Block is a ledger entry under construction. Its payload and timestamp are
// fixed at creation, while the link and nonce stay mutable until the block is
// mined into a SealedBlock.
type Block struct {
	payload   []byte
	link      []byte
	nonce     uint64
	timestamp time.Time
}

// NewBlock creates an unsealed block stamped with the current time. The
// payload is copied. A nil payload fails with ErrInvalidPayload; an empty
// one is accepted.
func NewBlock(payload []byte) (*Block, error) {
	return NewBlockAt(payload, time.Now())
}

// NewBlockAt is like NewBlock but uses the provided timestamp.
func NewBlockAt(payload []byte, ts time.Time) (*Block, error) {
	if payload == nil {
		return nil, ErrInvalidPayload
	}
	return &Block{
		payload:   bytes.Clone(payload),
		link:      []byte{},
		timestamp: ts,
	}, nil
}

// Payload returns a copy of the block payload.
func (b *Block) Payload() []byte { return bytes.Clone(b.payload) }

// Link returns the seal of the previous block, or an empty slice if the block
// is not linked yet.
func (b *Block) Link() []byte { return b.link }

func (b *Block) Nonce() uint64 { return b.nonce }

func (b *Block) Timestamp() time.Time { return b.timestamp }

// SetLink sets the link to a copy of prev.
func (b *Block) SetLink(prev []byte) {
	b.link = bytes.Clone(prev)
	if b.link == nil {
		b.link = []byte{}
	}
}

func (b *Block) String() string {
	return formatBlock(nil, b.link, b.nonce, b.timestamp)
}

// seal freezes the block with the given digest. The unsealed block keeps its
// state but shares nothing with the returned value.
func (b *Block) seal(digest []byte) *SealedBlock {
	return &SealedBlock{
		payload:   bytes.Clone(b.payload),
		link:      bytes.Clone(b.link),
		nonce:     b.nonce,
		timestamp: b.timestamp,
		seal:      bytes.Clone(digest),
	}
}

// SealedBlock is a mined block. Its hashed fields and seal cannot be changed
// through the public API; all accessors return copies.
type SealedBlock struct {
	payload   []byte
	link      []byte
	nonce     uint64
	timestamp time.Time
	seal      []byte
}

func (s *SealedBlock) Payload() []byte { return bytes.Clone(s.payload) }

func (s *SealedBlock) Link() []byte { return bytes.Clone(s.link) }

func (s *SealedBlock) Nonce() uint64 { return s.nonce }

func (s *SealedBlock) Timestamp() time.Time { return s.timestamp }

// Seal returns the digest the block was sealed with.
func (s *SealedBlock) Seal() []byte { return bytes.Clone(s.seal) }

// String renders the block for diagnostics: seal and link in uppercase hex,
// the nonce in decimal and the timestamp in RFC 3339 UTC.
func (s *SealedBlock) String() string {
	return formatBlock(s.seal, s.link, s.nonce, s.timestamp)
}

func formatBlock(seal, link []byte, nonce uint64, ts time.Time) string {
	return fmt.Sprintf("%X\n%X\n%d %s", seal, link, nonce, ts.UTC().Format(time.RFC3339Nano))
}
