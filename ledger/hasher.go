package ledger

import (
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"hash"
	"strings"
	"sync"

	"go.dedis.ch/kyber/v4/suites"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

const (
	HashSHA512  = "sha512"
	HashSHA3    = "sha3-512"
	HashBlake2b = "blake2b-512"

	// suitePrefix selects the hash factory of a kyber suite, e.g. "suite:Ed25519".
	suitePrefix = "suite:"
)

// Hasher computes block digests. It is safe for concurrent use.
type Hasher struct {
	pool *sync.Pool
	size int
}

// NewHasher creates a Hasher that uses hash instances created by newHash.
func NewHasher(newHash func() hash.Hash) *Hasher {
	return &Hasher{
		pool: &sync.Pool{
			New: func() any {
				return newHash()
			},
		},
		size: newHash().Size(),
	}
}

// DefaultHasher returns a SHA-512 Hasher.
func DefaultHasher() *Hasher {
	return NewHasher(sha512.New)
}

// HasherByName resolves one of the HashSHA512, HashSHA3 and HashBlake2b names,
// or "suite:<name>" for the hash of a registered kyber suite.
func HasherByName(name string) (*Hasher, error) {
	switch name {
	case "", HashSHA512:
		return DefaultHasher(), nil
	case HashSHA3:
		return NewHasher(sha3.New512), nil
	case HashBlake2b:
		return NewHasher(newBlake2b512), nil
	}
	if suiteName, ok := strings.CutPrefix(name, suitePrefix); ok {
		suite, err := suites.Find(suiteName)
		if err != nil {
			return nil, fmt.Errorf("%w: hash suite %q: %v", ErrInvalidArgument, suiteName, err)
		}
		return NewHasher(suite.Hash), nil
	}
	return nil, fmt.Errorf("%w: unknown hash %q", ErrInvalidArgument, name)
}

func newBlake2b512() hash.Hash {
	// New512 only fails for keys longer than 64 bytes.
	h, _ := blake2b.New512(nil)
	return h
}

// Size returns the length of the digests produced by the Hasher.
func (hs *Hasher) Size() int {
	return hs.size
}

// Digest hashes the payload, the nonce, the length of the link and the
// timestamp, in that order. Integers are written big endian: the nonce and
// the link length on 8 bytes, the timestamp as 8 bytes of Unix seconds
// followed by 4 bytes of nanoseconds. The link content is not part of the
// digest.
func (hs *Hasher) Digest(h Header) []byte {
	x := hs.pool.Get()
	defer hs.pool.Put(x)

	hasher := x.(hash.Hash)
	hasher.Reset()
	hasher.Write(payloadOf(h))

	ts := h.Timestamp()
	var buf [28]byte
	binary.BigEndian.PutUint64(buf[0:8], h.Nonce())
	binary.BigEndian.PutUint64(buf[8:16], uint64(len(h.Link())))
	binary.BigEndian.PutUint64(buf[16:24], uint64(ts.Unix()))
	binary.BigEndian.PutUint32(buf[24:28], uint32(ts.Nanosecond()))
	hasher.Write(buf[:])

	return hasher.Sum(nil)
}

// payloadOf reads the payload of the package's own block types without
// copying it.
func payloadOf(h Header) []byte {
	switch b := h.(type) {
	case *Block:
		return b.payload
	case *SealedBlock:
		return b.payload
	}
	return h.Payload()
}
