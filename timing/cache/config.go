package cache

import (
	"fmt"
	"math"
	"strings"
)

// MaxSizeBits is the largest modeled cache, in bits, that can be configured.
const MaxSizeBits = 10240

// WordBytes is the size of one word. Block sizes are given in words.
const WordBytes = 4

// addressBits is the width of trace addresses.
const addressBits = 32

// Policy selects how a set chooses the way to fill on a miss.
type Policy int

const (
	// PolicyLegacy fills the first invalid way after compacting the tags in
	// front of it, and overwrites the last way when the set is full. Hits
	// reorder a separate recency list that misses never consult.
	PolicyLegacy Policy = iota
	// PolicyLRU evicts the least recently used way, tracked by an akita
	// cache directory.
	PolicyLRU
)

// String returns the flag spelling of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyLegacy:
		return "legacy"
	case PolicyLRU:
		return "lru"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy parses "legacy" or "lru".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy":
		return PolicyLegacy, nil
	case "lru":
		return PolicyLRU, nil
	default:
		return PolicyLegacy, fmt.Errorf("unknown replacement policy %q", s)
	}
}

// Config holds cache geometry.
type Config struct {
	// IndexBits is the number of index bits; the cache has 2^IndexBits sets.
	IndexBits int
	// BlockWords is the block size in words.
	BlockWords int
	// Associativity is the number of ways per set.
	Associativity int
	// Policy is the replacement policy.
	Policy Policy
}

// ConfigurationError reports a cache geometry that cannot be modeled.
type ConfigurationError struct {
	Config   Config
	SizeBits int64
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid cache configuration (index=%d, block=%d, assoc=%d): %s",
		e.Config.IndexBits, e.Config.BlockWords, e.Config.Associativity, e.Reason)
}

// NumSets returns the number of sets.
func (c Config) NumSets() int {
	return 1 << c.IndexBits
}

// OffsetBits returns the number of block offset bits, log2 of the block size
// in bytes rounded to the nearest integer.
func (c Config) OffsetBits() int {
	return int(math.RoundToEven(math.Log2(float64(c.BlockWords * WordBytes))))
}

// BlockBytes returns the block size in bytes implied by OffsetBits.
func (c Config) BlockBytes() int {
	return 1 << c.OffsetBits()
}

// SizeBits returns the modeled size of the cache in bits: every way stores
// its data words, a valid bit and a tag.
func (c Config) SizeBits() int64 {
	lineBits := int64(32*c.BlockWords + addressBits + 1 - c.IndexBits - c.OffsetBits())
	return int64(c.Associativity) * int64(c.NumSets()) * lineBits
}

// Validate checks the geometry against the capacity ceiling.
func (c Config) Validate() error {
	fail := func(size int64, format string, args ...any) error {
		return &ConfigurationError{
			Config:   c,
			SizeBits: size,
			Reason:   fmt.Sprintf(format, args...),
		}
	}

	if c.IndexBits < 0 {
		return fail(0, "index bits must be >= 0")
	}
	if c.BlockWords < 1 {
		return fail(0, "block size must be >= 1 word")
	}
	if c.Associativity < 1 {
		return fail(0, "associativity must be >= 1")
	}

	// Every factor of SizeBits is at least 1, so each one alone must fit
	// under the ceiling. Checking them first keeps the product from
	// overflowing.
	if c.BlockWords > MaxSizeBits/32 {
		return fail(0, "block size %d words exceeds maximum of %d bits",
			c.BlockWords, MaxSizeBits)
	}
	if c.Associativity > MaxSizeBits {
		return fail(0, "associativity %d exceeds maximum of %d bits",
			c.Associativity, MaxSizeBits)
	}
	if c.IndexBits+c.OffsetBits() > addressBits {
		return fail(0, "index and offset bits exceed %d address bits", addressBits)
	}
	if c.NumSets() > MaxSizeBits {
		return fail(0, "%d sets exceed maximum of %d bits", c.NumSets(), MaxSizeBits)
	}
	if c.Policy != PolicyLegacy && c.Policy != PolicyLRU {
		return fail(0, "unknown replacement policy %d", int(c.Policy))
	}

	size := c.SizeBits()
	if size > MaxSizeBits {
		return fail(size, "cache size %d bits exceeds maximum of %d", size, MaxSizeBits)
	}

	return nil
}
