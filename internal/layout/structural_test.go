package layout

import "testing"

func unitSquarePoints() []BuildPoint {
	return []BuildPoint{
		{Position: Point2{X: 0, Y: 0}}, // a
		{Position: Point2{X: 1, Y: 0}}, // b
		{Position: Point2{X: 1, Y: 1}}, // c
		{Position: Point2{X: 0, Y: 1}}, // d
	}
}

func TestStructural_SingleSquare_CrossFirstOrder(t *testing.T) {
	points := unitSquarePoints()
	springs := []BuildSpring{
		{A: 0, B: 2}, // a-c diagonal
		{A: 1, B: 3}, // b-d diagonal
		{A: 0, B: 3}, // a-d side
		{A: 1, B: 2}, // b-c side
	}

	remap := Structural{}.Remap(points, springs)

	if remap.Structure.PerfectSquareCount != 1 {
		t.Fatalf("expected 1 perfect square, got %d", remap.Structure.PerfectSquareCount)
	}
	if len(remap.Structure.SpringProcessingBlockSizes) != 1 || remap.Structure.SpringProcessingBlockSizes[0] != 4 {
		t.Fatalf("expected block size [4], got %v", remap.Structure.SpringProcessingBlockSizes)
	}
	wantSpringOrder := []uint32{0, 1, 2, 3} // diag a-c, diag b-d, side a-d, side b-c
	if len(remap.SpringRemap) != len(wantSpringOrder) {
		t.Fatalf("expected %d springs in remap, got %d", len(wantSpringOrder), len(remap.SpringRemap))
	}
	for i, want := range wantSpringOrder {
		if remap.SpringRemap[i] != want {
			t.Errorf("spring slot %d: expected old index %d, got %d", i, want, remap.SpringRemap[i])
		}
	}
	for i, flip := range remap.FlipMask {
		if flip {
			t.Errorf("spring slot %d: expected no flip, endpoints already match commit direction", i)
		}
	}
	wantPointOrder := []uint32{0, 1, 2, 3}
	for i, want := range wantPointOrder {
		if remap.PointRemap[i] != want {
			t.Errorf("point slot %d: expected old index %d, got %d", i, want, remap.PointRemap[i])
		}
	}
}

func TestStructural_IncompleteSquare_NotCounted(t *testing.T) {
	points := unitSquarePoints()
	springs := []BuildSpring{
		{A: 0, B: 2}, // diag only, missing the rest
	}
	remap := Structural{}.Remap(points, springs)
	if remap.Structure.PerfectSquareCount != 0 {
		t.Errorf("expected 0 perfect squares for an incomplete square, got %d", remap.Structure.PerfectSquareCount)
	}
	if len(remap.SpringRemap) != 1 || remap.SpringRemap[0] != 0 {
		t.Errorf("expected the lone spring passed through unmapped, got %v", remap.SpringRemap)
	}
}

func TestStructural_FourByFourGrid_NinePerfectSquares(t *testing.T) {
	const edge = 4
	var points []BuildPoint
	index := make(map[[2]int]uint32)
	for x := 0; x < edge; x++ {
		for y := 0; y < edge; y++ {
			index[[2]int{x, y}] = uint32(len(points))
			points = append(points, BuildPoint{Position: Point2{X: float32(x), Y: float32(y)}})
		}
	}

	seen := make(map[pairKey]bool)
	var springs []BuildSpring
	addSpring := func(ax, ay, bx, by int) {
		a, b := index[[2]int{ax, ay}], index[[2]int{bx, by}]
		key := makePairKey(a, b)
		if seen[key] {
			return
		}
		seen[key] = true
		springs = append(springs, BuildSpring{A: a, B: b})
	}

	for x := 0; x < edge; x++ {
		for y := 0; y < edge; y++ {
			if x+1 < edge {
				addSpring(x, y, x+1, y)
			}
			if y+1 < edge {
				addSpring(x, y, x, y+1)
			}
			if x+1 < edge && y+1 < edge {
				addSpring(x, y, x+1, y+1)
				addSpring(x+1, y, x, y+1)
			}
		}
	}

	remap := Structural{}.Remap(points, springs)
	if remap.Structure.PerfectSquareCount != 9 {
		t.Errorf("expected 9 perfect squares in a fully populated 4x4 grid, got %d", remap.Structure.PerfectSquareCount)
	}
}
