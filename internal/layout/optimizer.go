// Package layout implements the object builder's layout optimizer: a trait
// that reorders points and springs to help (or, for the identity case,
// leave alone) the simulator's inner loops.
//
// The package deliberately carries no dependency on internal/core — it works
// over a minimal build-time point/spring representation so that the object
// builder (which does depend on core) can call it without an import cycle.
package layout

// Point2 is a minimal 2D position, independent of internal/core's Vec2.
type Point2 struct {
	X, Y float32
}

// BuildPoint is the layout optimizer's view of a point: just enough to
// detect geometric structure (grid adjacency, perfect squares).
type BuildPoint struct {
	Position Point2
}

// BuildSpring is the layout optimizer's view of a spring: its two endpoints
// as indices into the build-time point slice.
type BuildSpring struct {
	A, B uint32
}

// SimulatorSpecificStructure is opaque, simulator-family-specific metadata
// that a layout optimizer may attach to the remap it produces. For the
// structural (perfect-square) optimizer this records how many of the
// leading springs participate in the vectorized four-spring path.
type SimulatorSpecificStructure struct {
	// SpringProcessingBlockSizes holds, in spec.md §4.3 terms,
	// [4*K] — the count of leading springs grouped into perfect-square
	// quadruples.
	SpringProcessingBlockSizes []int
	PerfectSquareCount         int
}

// Remap is the output of a layout optimizer: new-position -> old-index
// tables for points and springs, a flip mask (indexed by NEW spring index)
// telling the caller which springs need their endpoints swapped, and any
// simulator-specific structure the optimizer computed along the way.
type Remap struct {
	// PointRemap[newIndex] = oldIndex.
	PointRemap []uint32
	// SpringRemap[newIndex] = oldIndex.
	SpringRemap []uint32
	// FlipMask[newIndex] is true if the spring at newIndex should have its
	// endpoints swapped relative to the original build order.
	FlipMask  []bool
	Structure SimulatorSpecificStructure
}

// Optimizer computes a point/spring layout remap from the as-built point and
// spring arrays.
type Optimizer interface {
	Remap(points []BuildPoint, springs []BuildSpring) Remap
}

// Identity is the layout optimizer that changes nothing: new_index ==
// old_index for every point and spring, and the flip mask is empty
// (spec.md §8 invariant 4).
type Identity struct{}

// Remap implements Optimizer.
func (Identity) Remap(points []BuildPoint, springs []BuildSpring) Remap {
	pointRemap := make([]uint32, len(points))
	for i := range pointRemap {
		pointRemap[i] = uint32(i)
	}
	springRemap := make([]uint32, len(springs))
	for i := range springRemap {
		springRemap[i] = uint32(i)
	}
	return Remap{
		PointRemap:  pointRemap,
		SpringRemap: springRemap,
		FlipMask:    make([]bool, len(springs)),
	}
}
