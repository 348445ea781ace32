package layout

// FIFOCache is an abstract direct-mapped-free FIFO cache model used only to
// measure a layout's average cache misses per revisit (ACMR); it plays no
// part in the simulation itself (spec.md §4.3 "Goodness metric").
type FIFOCache struct {
	size    int
	entries []uint32
	present map[uint32]int // O(1) membership; the stored insertion position is not updated on eviction
}

// NewFIFOCache creates an empty cache of the given capacity.
func NewFIFOCache(size int) *FIFOCache {
	return &FIFOCache{
		size:    size,
		entries: make([]uint32, 0, size),
		present: make(map[uint32]int, size),
	}
}

// Touch records an access to value, evicting the oldest entry on a miss.
// It returns true if the access was a hit.
func (c *FIFOCache) Touch(value uint32) (hit bool) {
	if _, ok := c.present[value]; ok {
		return true
	}
	if len(c.entries) >= c.size {
		oldest := c.entries[0]
		c.entries = c.entries[1:]
		delete(c.present, oldest)
	}
	c.entries = append(c.entries, value)
	c.present[value] = len(c.entries) - 1
	return false
}

// ACMR computes the average cache misses per revisit for a sequence of
// point accesses (one spring touches two points, so the access stream for a
// spring list is the flattened endpoint sequence), under a FIFO cache of
// the given size. Revisits are accesses to a point already seen at least
// once before in the stream; a revisit that misses counts against the
// metric. spec.md defines this as purely a measurement tool — the layout
// optimizer is not required to minimize it, only expected to tend to.
func ACMR(accesses []uint32, cacheSize int) float64 {
	cache := NewFIFOCache(cacheSize)
	seen := make(map[uint32]bool, len(accesses))

	var revisits, misses int
	for _, v := range accesses {
		hit := cache.Touch(v)
		if seen[v] {
			revisits++
			if !hit {
				misses++
			}
		}
		seen[v] = true
	}

	if revisits == 0 {
		return 0
	}
	return float64(misses) / float64(revisits)
}

// SpringAccessStream flattens a spring list's endpoints into the access
// stream ACMR expects, in spring order.
func SpringAccessStream(springs []BuildSpring) []uint32 {
	stream := make([]uint32, 0, len(springs)*2)
	for _, s := range springs {
		stream = append(stream, s.A, s.B)
	}
	return stream
}
