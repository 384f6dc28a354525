// Package ledger implements an append-only, hash-chained ledger sealed by
// proof of work.
//
// # Core Components
//
// Hasher: Deterministic digest over a block's payload, nonce, link length and
// timestamp. Backed by any hash.Hash factory (SHA-512 by default).
//
// Block: An entry under construction. Its nonce and link may still change.
// Mining turns it into a SealedBlock, a frozen value whose fields can no
// longer be modified through the public API.
//
// Miner: Searches the nonce space until the digest starts with the chain's
// difficulty prefix. The search can be bounded by an attempt budget and
// cancelled through a context.
//
// Chain: Ordered, append-only collection of sealed blocks. Append links the
// new block to the current tip and mines it before storing it.
//
// Validator: Read-only integrity checks for single blocks, adjacent pairs and
// whole sequences.
//
// # Security Properties
//
// The chain provides:
//   - Immutability: sealed blocks expose copies of their fields only
//   - Tamper detection: changing any hashed field breaks the seal
//   - Linkage: every block stores the seal of its predecessor
//
// Only the length of the previous seal is mixed into a block's digest. The
// link content itself is checked by comparing it to the predecessor's seal.
//
// # Usage
//
// Create a chain from a difficulty prefix and a genesis block, then append
// blocks. The Validator returned by Chain.Validator, or Chain.Verify, can be
// used at any time to audit the stored sequence.
package ledger
