package core

// AlignedBuffer is a fixed-capacity owned array of T. Its capacity is rounded
// up to SIMDWord so that the inner simulation loops can read four lanes past
// the live region without touching unallocated memory; the padding region is
// always zero-valued.
//
// Go does not expose control over a slice's base-pointer alignment the way
// the original's over-aligned C++ buffer did; what we can and do guarantee is
// the capacity rounding and the zeroed padding, which is what every invariant
// in spec.md §3.5 and §8.3 actually depends on.
type AlignedBuffer[T any] struct {
	data []T
	n    int // live length
}

// NewAlignedBuffer allocates a buffer with live length n and capacity
// round_up(n, 4); all capacity slots start zero-valued.
func NewAlignedBuffer[T any](n int) *AlignedBuffer[T] {
	cap := RoundUp4(n)
	return &AlignedBuffer[T]{
		data: make([]T, cap),
		n:    n,
	}
}

// Len returns the live length n.
func (b *AlignedBuffer[T]) Len() int { return b.n }

// Cap returns the padded capacity, round_up(n, 4).
func (b *AlignedBuffer[T]) Cap() int { return len(b.data) }

// Get returns the element at i. i may range over the full padded capacity;
// bounds checking is left to Go's own slice bounds checks (there is no
// separate debug/release split in this port).
func (b *AlignedBuffer[T]) Get(i ElementIndex) T { return b.data[i] }

// Set writes the element at i.
func (b *AlignedBuffer[T]) Set(i ElementIndex, v T) { b.data[i] = v }

// Raw exposes the full padded slice (live region plus padding) for code that
// wants to iterate SIMD-style across whole words of four.
func (b *AlignedBuffer[T]) Raw() []T { return b.data }

// Live exposes just the [0, n) live region.
func (b *AlignedBuffer[T]) Live() []T { return b.data[:b.n] }
