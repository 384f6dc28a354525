package ledger

import (
	"bytes"
	"fmt"
	"iter"
	"slices"
)

// Validator performs read-only integrity checks. A failed check is reported
// through the boolean result; errors are returned only for missing arguments.
type Validator struct {
	hasher *Hasher
}

// NewValidator creates a Validator that recomputes digests with h. It must be
// the Hasher the blocks were mined with.
func NewValidator(h *Hasher) *Validator {
	return &Validator{hasher: h}
}

// IsSelfValid reports whether b re-hashes to its stored seal. A nil block is
// not valid.
func (v *Validator) IsSelfValid(b *SealedBlock) bool {
	if b == nil {
		return false
	}
	return bytes.Equal(v.hasher.Digest(b), b.seal)
}

// IsLinked reports whether prev is self-valid and b's link equals prev's seal.
// It fails with ErrInvalidArgument if either block is nil.
func (v *Validator) IsLinked(b, prev *SealedBlock) (bool, error) {
	if b == nil {
		return false, fmt.Errorf("%w: block is nil", ErrInvalidArgument)
	}
	if prev == nil {
		return false, fmt.Errorf("%w: previous block is nil", ErrInvalidArgument)
	}
	return v.IsSelfValid(prev) && bytes.Equal(b.link, prev.seal), nil
}

// IsChainValid reports whether every adjacent pair of blocks is linked and
// every non-first block is self-valid. Sequences with fewer than two blocks
// are valid as there is no pair to check. A nil block makes the sequence
// invalid.
func (v *Validator) IsChainValid(blocks iter.Seq[*SealedBlock]) bool {
	var prev *SealedBlock
	for cur := range blocks {
		if cur == nil {
			return false
		}
		if prev != nil {
			if !v.IsSelfValid(cur) {
				return false
			}
			if ok, _ := v.IsLinked(cur, prev); !ok {
				return false
			}
		}
		prev = cur
	}
	return true
}

// IsSliceValid is IsChainValid over a slice.
func (v *Validator) IsSliceValid(blocks []*SealedBlock) bool {
	return v.IsChainValid(slices.Values(blocks))
}
