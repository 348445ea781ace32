package layout

import "math"

// pointKey is a pair of lattice coordinates, normalized so the minimum
// point sits at (0, 0); this is independent of whatever fractional offset
// the object builder used to center the image in world space (spec.md §4.2
// step 1 places points at world position (x - W/2, y - H/2), which is a
// half-integer when W or H is odd), since only the relative spacing between
// neighbor pixels — always exactly 1 — matters for grid adjacency.
type pointKey struct{ x, y int32 }

// pairKey identifies an unordered pair of original point indices, used to
// look a spring up by its endpoints regardless of storage direction.
type pairKey struct{ lo, hi uint32 }

func makePairKey(a, b uint32) pairKey {
	if a < b {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}

// springRef records where a spring with known original endpoints (oa, ob)
// lives, so the optimizer can decide whether it needs flipping to match a
// wanted (from, to) direction.
type springRef struct {
	index  uint32
	oa, ob uint32
}

// directed returns (springIndex, needsFlip) for this spring oriented from
// "from" to "to".
func (r springRef) directed(from, to uint32) (uint32, bool) {
	if r.oa == from && r.ob == to {
		return r.index, false
	}
	// The only other possibility, given makePairKey matched {from,to}, is
	// the reverse orientation.
	return r.index, true
}

// Structural is the layout optimizer that detects "perfect squares" — four
// coplanar springs sharing four corner points — so the vectorized inner
// loop can load each corner point once and feed four springs (spec.md §4.3).
//
// Squares are found with a single greedy row-major sweep, exactly as
// spec.md §4.3 and its "Open question" prescribe: no attempt is made to
// find a globally optimal, order-independent cover.
type Structural struct{}

// Remap implements Optimizer.
func (Structural) Remap(points []BuildPoint, springs []BuildSpring) Remap {
	n := len(points)

	// Build the lattice index: pointKey -> original point index, normalized
	// to a non-negative integer grid anchored at the minimum corner.
	var minX, minY float32
	if n > 0 {
		minX, minY = points[0].Position.X, points[0].Position.Y
		for _, p := range points {
			if p.Position.X < minX {
				minX = p.Position.X
			}
			if p.Position.Y < minY {
				minY = p.Position.Y
			}
		}
	}

	grid := make(map[pointKey]uint32, n)
	coords := make([]pointKey, n)
	var maxX, maxY int32
	for i, p := range points {
		k := pointKey{
			x: int32(math.Round(float64(p.Position.X - minX))),
			y: int32(math.Round(float64(p.Position.Y - minY))),
		}
		coords[i] = k
		grid[k] = uint32(i)
		if k.x > maxX {
			maxX = k.x
		}
		if k.y > maxY {
			maxY = k.y
		}
	}

	// Build the pair -> spring lookup.
	bySpring := make(map[pairKey]springRef, len(springs))
	for i, s := range springs {
		bySpring[makePairKey(s.A, s.B)] = springRef{index: uint32(i), oa: s.A, ob: s.B}
	}

	pointMapped := make([]bool, n)
	springMapped := make([]bool, len(springs))

	pointRemap := make([]uint32, 0, n)
	springRemap := make([]uint32, 0, len(springs))
	flipBySpring := make([]bool, len(springs)) // indexed by OLD spring index, translated to new order at the end
	perfectSquareCount := 0

	lookup := func(from, to uint32) (springRef, bool) {
		ref, ok := bySpring[makePairKey(from, to)]
		if !ok || springMapped[ref.index] {
			return springRef{}, false
		}
		return ref, true
	}

	appendSpring := func(ref springRef, from, to uint32) {
		idx, flip := ref.directed(from, to)
		springRemap = append(springRemap, idx)
		flipBySpring[idx] = flip
		springMapped[idx] = true
	}

	// Greedy row-major sweep, bottom to top, matching the object builder's
	// own pixel scan order.
	for y := int32(0); y < maxY; y++ {
		for x := int32(0); x < maxX; x++ {
			a, aok := grid[pointKey{x, y}]
			b, bok := grid[pointKey{x + 1, y}]
			c, cok := grid[pointKey{x + 1, y + 1}]
			d, dok := grid[pointKey{x, y + 1}]
			if !aok || !bok || !cok || !dok {
				continue
			}

			diag1, ok1 := lookup(a, c) // J->L = A->C, always
			if !ok1 {
				continue
			}

			evenParity := (x+y)%2 == 0

			var diag2 springRef
			var ok2 bool
			var sideJK, sideML springRef
			var okJK, okML bool
			if evenParity {
				// Vertical sides: A-D and B-C. Second diagonal M=B, K=D: M->K = B->D.
				diag2, ok2 = lookup(b, d)
				sideJK, okJK = lookup(a, d) // J->K = A->D
				sideML, okML = lookup(b, c) // M->L = B->C
			} else {
				// Horizontal sides: A-B and D-C. Second diagonal M=D, K=B: M->K = D->B.
				diag2, ok2 = lookup(d, b)
				sideJK, okJK = lookup(a, b) // J->K = A->B
				sideML, okML = lookup(d, c) // M->L = D->C
			}
			if !ok2 || !okJK || !okML {
				continue
			}

			// Commit: cross-first order (s0=J->L, s1=M->K, s2=J->K, s3=M->L).
			if evenParity {
				appendSpring(diag1, a, c)
				appendSpring(diag2, b, d)
				appendSpring(sideJK, a, d)
				appendSpring(sideML, b, c)
			} else {
				appendSpring(diag1, a, c)
				appendSpring(diag2, d, b)
				appendSpring(sideJK, a, b)
				appendSpring(sideML, d, c)
			}

			for _, p := range [4]uint32{a, b, c, d} {
				if !pointMapped[p] {
					pointMapped[p] = true
					pointRemap = append(pointRemap, p)
				}
			}
			perfectSquareCount++
		}
	}

	// Append unmapped points and springs in original order.
	for i := 0; i < n; i++ {
		if !pointMapped[uint32(i)] {
			pointRemap = append(pointRemap, uint32(i))
		}
	}
	for i := 0; i < len(springs); i++ {
		if !springMapped[i] {
			springRemap = append(springRemap, uint32(i))
		}
	}

	flipMask := make([]bool, len(springRemap))
	for newIdx, oldIdx := range springRemap {
		flipMask[newIdx] = flipBySpring[oldIdx]
	}

	return Remap{
		PointRemap:  pointRemap,
		SpringRemap: springRemap,
		FlipMask:    flipMask,
		Structure: SimulatorSpecificStructure{
			SpringProcessingBlockSizes: []int{4 * perfectSquareCount},
			PerfectSquareCount:         perfectSquareCount,
		},
	}
}
