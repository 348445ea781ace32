package core

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/cwbudde/springlab/internal/layout"
	"github.com/cwbudde/springlab/internal/material"
)

const (
	steelColor  = "FF0000"
	anchorColor = "00FF00"
	probeColor  = "0000FF"
	probe2Color = "00FFFF"
)

func testMaterialTable(t *testing.T) *material.Table {
	t.Helper()
	data := `[
		{"color_key": "` + steelColor + `", "name": "steel", "mass": {"nominal_mass": 1, "density": 2}, "stiffness": 10},
		{"color_key": "` + anchorColor + `", "name": "anchor", "mass": {"nominal_mass": 1, "density": 1}, "is_fixed": true},
		{"color_key": "` + probeColor + `", "name": "probe", "mass": {"nominal_mass": 1, "density": 1}, "is_bending_probe": true}
	]`
	table, err := material.LoadTable(strings.NewReader(data))
	if err != nil {
		t.Fatalf("load test material table: %v", err)
	}
	return table
}

func hexColor(t *testing.T, hexStr string) [3]byte {
	t.Helper()
	raw, err := hex.DecodeString(hexStr)
	if err != nil || len(raw) != 3 {
		t.Fatalf("bad test color %q: %v", hexStr, err)
	}
	return [3]byte{raw[0], raw[1], raw[2]}
}

// squareGrid builds a uniform square grid of the given edge length, all
// pixels colored with the given hex code.
func squareGrid(t *testing.T, edge int, hexStr string) PixelGrid {
	t.Helper()
	color := hexColor(t, hexStr)
	return PixelGrid{
		Width:  edge,
		Height: edge,
		RGB: func(x, y int) [3]byte {
			return color
		},
	}
}

func TestBuild_TwoAdjacentPixels_OneSpringCorrectRestLength(t *testing.T) {
	table := testMaterialTable(t)
	color := hexColor(t, steelColor)
	white := [3]byte{0xFF, 0xFF, 0xFF}
	grid := PixelGrid{
		Width:  2,
		Height: 1,
		RGB: func(x, y int) [3]byte {
			if x == 0 || x == 1 {
				return color
			}
			return white
		},
	}

	obj, err := Build("pair", grid, table, layout.Identity{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if obj.Points.Count() != 2 {
		t.Fatalf("expected 2 points, got %d", obj.Points.Count())
	}
	if obj.Springs.Count() != 1 {
		t.Fatalf("expected 1 spring, got %d", obj.Springs.Count())
	}
	if got := obj.Springs.RestLength(0); got < 0.999 || got > 1.001 {
		t.Errorf("expected rest length ~1.0 for adjacent pixels, got %v", got)
	}
}

func TestBuild_UnrecognizedPixel(t *testing.T) {
	table := testMaterialTable(t)
	bad := [3]byte{0x12, 0x34, 0x56}
	grid := PixelGrid{
		Width:  1,
		Height: 1,
		RGB: func(x, y int) [3]byte {
			return bad
		},
	}
	_, err := Build("bad", grid, table, layout.Identity{})
	var unrecognized *UnrecognizedPixelError
	if err == nil {
		t.Fatal("expected an UnrecognizedPixelError")
	}
	if _, ok := err.(*UnrecognizedPixelError); !ok {
		t.Fatalf("expected *UnrecognizedPixelError, got %T", err)
	}
	_ = unrecognized
}

func TestBuild_AllBackgroundYieldsEmptyStructure(t *testing.T) {
	table := testMaterialTable(t)
	white := [3]byte{0xFF, 0xFF, 0xFF}
	grid := PixelGrid{
		Width:  2,
		Height: 2,
		RGB: func(x, y int) [3]byte {
			return white
		},
	}
	_, err := Build("empty", grid, table, layout.Identity{})
	if err != ErrEmptyStructure {
		t.Fatalf("expected ErrEmptyStructure, got %v", err)
	}
}

func TestBuild_DuplicateBendingProbePoints(t *testing.T) {
	data := `[
		{"color_key": "` + probeColor + `", "name": "probe1", "mass": {"nominal_mass": 1, "density": 1}, "is_bending_probe": true}
	]`
	table, err := material.LoadTable(strings.NewReader(data))
	if err != nil {
		t.Fatalf("load table: %v", err)
	}
	color := hexColor(t, probeColor)
	grid := PixelGrid{
		Width:  2,
		Height: 1,
		RGB: func(x, y int) [3]byte {
			return color
		},
	}
	_, err = Build("dup-probe", grid, table, layout.Identity{})
	if err != ErrDuplicateBendingProbe {
		t.Fatalf("expected ErrDuplicateBendingProbe, got %v", err)
	}
}

func TestBuild_FixedMaterialPointIsFrozen(t *testing.T) {
	table := testMaterialTable(t)
	color := hexColor(t, anchorColor)
	grid := PixelGrid{
		Width:  1,
		Height: 1,
		RGB: func(x, y int) [3]byte {
			return color
		},
	}
	obj, err := Build("anchor", grid, table, layout.Identity{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if obj.Points.FrozenCoefficient(0) != 0 {
		t.Errorf("expected frozen coefficient 0 for a fixed material, got %v", obj.Points.FrozenCoefficient(0))
	}
	if !obj.Points.IsFrozen(0) {
		t.Error("expected the point to report IsFrozen true")
	}
}

func TestBuild_SpringsAreRegisteredOnBothEndpoints(t *testing.T) {
	table := testMaterialTable(t)
	grid := squareGrid(t, 2, steelColor)
	obj, err := Build("pair2", grid, table, layout.Identity{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for s := ElementIndex(0); s < ElementIndex(obj.Springs.Count()); s++ {
		a, b := obj.Springs.Endpoints(s)
		if !obj.Points.ConnectedSprings(a).Contains(s) {
			t.Errorf("spring %d not registered on endpoint a=%d", s, a)
		}
		if !obj.Points.ConnectedSprings(b).Contains(s) {
			t.Errorf("spring %d not registered on endpoint b=%d", s, b)
		}
	}
}

func TestBuild_IdentityOptimizerPreservesBuildOrder(t *testing.T) {
	table := testMaterialTable(t)
	grid := squareGrid(t, 3, steelColor)
	obj, err := Build("grid3", grid, table, layout.Identity{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// With Identity{}, scanning is column-major (x outer, y inner, see
	// directions/Build), so point 0 sits at the bottom-left corner and
	// point 1 is its north neighbor.
	halfW, halfH := float32(1.5), float32(1.5)
	want0 := Vec2{X: 0 - halfW, Y: 0 - halfH}
	want1 := Vec2{X: 0 - halfW, Y: 1 - halfH}
	if got := obj.Points.Position(0); got != want0 {
		t.Errorf("expected point 0 at %v, got %v", want0, got)
	}
	if got := obj.Points.Position(1); got != want1 {
		t.Errorf("expected point 1 at %v, got %v", want1, got)
	}
}

func TestBuild_FullyPopulated4x4Grid_NinePerfectSquares(t *testing.T) {
	table := testMaterialTable(t)
	grid := squareGrid(t, 4, steelColor)
	obj, err := Build("grid4x4", grid, table, layout.Structural{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if obj.Structure.PerfectSquareCount != 9 {
		t.Errorf("expected 9 perfect squares in a fully populated 4x4 grid, got %d", obj.Structure.PerfectSquareCount)
	}
}
