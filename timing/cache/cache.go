// Package cache provides the set-associative cache model used by the timing
// simulation. Only hit/miss behavior is modeled; blocks carry no data.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Way is one storage slot of a set.
type Way struct {
	Valid bool
	Tag   uint32
}

// Statistics holds cache performance statistics.
type Statistics struct {
	// Accesses is counted by the caller through CountAccess.
	Accesses uint64
	Hits     uint64
	Misses   uint64
	// Evictions counts misses that replaced a way in a full set.
	Evictions uint64
}

// MissRate returns Misses/Accesses. The second result is false when no
// access has been counted.
func (s Statistics) MissRate() (float64, bool) {
	if s.Accesses == 0 {
		return 0, false
	}
	return float64(s.Misses) / float64(s.Accesses), true
}

type set struct {
	ways []Way
	// recency lists way indices, least recently used first.
	recency []int
}

// touch moves way to the most recently used end of the recency list.
func (s *set) touch(way int) {
	j := 0
	for j < len(s.recency) && s.recency[j] != way {
		j++
	}
	if j == len(s.recency) {
		return
	}

	copy(s.recency[j:], s.recency[j+1:])
	s.recency[len(s.recency)-1] = way
}

// Cache is a set-associative cache with a configurable replacement policy.
type Cache struct {
	config     Config
	offsetBits uint
	indexBits  uint

	sets []set

	// directory tracks block placement and recency for PolicyLRU.
	directory *akitacache.DirectoryImpl

	stats Statistics
}

// New creates a cache. The configuration is validated before anything is
// allocated.
func New(config Config) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Cache{
		config:     config,
		offsetBits: uint(config.OffsetBits()),
		indexBits:  uint(config.IndexBits),
	}
	c.allocate()

	return c, nil
}

func (c *Cache) allocate() {
	c.sets = make([]set, c.config.NumSets())
	for i := range c.sets {
		c.sets[i] = set{
			ways:    make([]Way, c.config.Associativity),
			recency: make([]int, c.config.Associativity),
		}
		for j := range c.sets[i].recency {
			c.sets[i].recency[j] = j
		}
	}

	if c.config.Policy == PolicyLRU {
		c.directory = akitacache.NewDirectory(
			c.config.NumSets(),
			c.config.Associativity,
			c.config.BlockBytes(),
			akitacache.NewLRUVictimFinder(),
		)
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// CountAccess records one access. Probe does not count accesses itself; the
// caller counts them where the access is attributed.
func (c *Cache) CountAccess() {
	c.stats.Accesses++
}

// Decompose splits an address into its set index and tag.
func (c *Cache) Decompose(addr uint32) (index, tag uint32) {
	index = (addr >> c.offsetBits) % (uint32(1) << c.indexBits)
	tag = uint32(uint64(addr) >> (c.offsetBits + c.indexBits))
	return index, tag
}

// Probe looks addr up, updates the replacement state and returns whether it
// hit. Hits and misses are counted; accesses are not.
func (c *Cache) Probe(addr uint32) bool {
	index, tag := c.Decompose(addr)

	if c.directory != nil {
		return c.probeDirectory(addr, index, tag)
	}

	s := &c.sets[index]
	for i, w := range s.ways {
		if w.Valid && w.Tag == tag {
			s.touch(i)
			c.stats.Hits++
			return true
		}
	}

	c.replaceOnMiss(s, tag)
	c.stats.Misses++

	return false
}

// replaceOnMiss installs tag into the first invalid way. The tags in front of
// that way move one position down first, so way 0 loses its tag whenever the
// free way is not way 0. A full set overwrites its last way.
func (c *Cache) replaceOnMiss(s *set, tag uint32) {
	i := 0
	for i < len(s.ways) && s.ways[i].Valid {
		i++
	}

	for j := 1; j < i; j++ {
		s.ways[j-1].Tag = s.ways[j].Tag
	}

	if i == len(s.ways) {
		i--
		c.stats.Evictions++
	}

	s.ways[i] = Way{Valid: true, Tag: tag}
}

// probeDirectory implements PolicyLRU on top of the akita directory. The
// directory keys blocks by block-aligned address; the local ways and recency
// list mirror it so that Ways and Recency report the same state under both
// policies.
func (c *Cache) probeDirectory(addr, index, tag uint32) bool {
	blockAddr := uint64(addr) &^ uint64(c.config.BlockBytes()-1)
	s := &c.sets[index]

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.directory.Visit(block)
		s.touch(block.WayID)
		c.stats.Hits++
		return true
	}

	c.stats.Misses++

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return false
	}

	if victim.IsValid {
		c.stats.Evictions++
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	s.ways[victim.WayID] = Way{Valid: true, Tag: tag}
	s.touch(victim.WayID)

	return false
}

// Ways returns a copy of the ways of the set at index.
func (c *Cache) Ways(index uint32) []Way {
	ways := make([]Way, len(c.sets[index].ways))
	copy(ways, c.sets[index].ways)
	return ways
}

// Recency returns a copy of the recency list of the set at index, least
// recently used first.
func (c *Cache) Recency(index uint32) []int {
	r := make([]int, len(c.sets[index].recency))
	copy(r, c.sets[index].recency)
	return r
}

// Reset invalidates every way and clears statistics.
func (c *Cache) Reset() {
	c.allocate()
	c.stats = Statistics{}
}
