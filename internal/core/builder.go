package core

import (
	"github.com/cwbudde/springlab/internal/layout"
	"github.com/cwbudde/springlab/internal/material"
)

// rawPoint is a just-scanned point, indexed in raster-scan order, before any
// layout remap is applied.
type rawPoint struct {
	position Vec2
	material *material.Material
}

// rawSpring is a just-detected spring between two raw point indices.
type rawSpring struct {
	a, b ElementIndex
}

// directions is the half-circle of neighbor offsets the builder checks from
// each occupied pixel, so that every adjacent pair of points is visited
// exactly once (spec.md §4.2 step 2): E, SE, S, SW.
var directions = [4][2]int{
	{1, 0},
	{1, -1},
	{0, -1},
	{-1, -1},
}

// Build turns a decoded structural-layer raster into a simulation-ready
// Object, following spec.md §4.2: scan pixels into points, detect springs
// between 4-of-8-connected neighbors, hand the raw structure to a layout
// optimizer, then materialize the final point/spring stores in the
// optimizer's chosen order.
func Build(name string, pixels PixelGrid, table *material.Table, optimizer layout.Optimizer) (*Object, error) {
	halfW := float32(pixels.Width) / 2.0
	halfH := float32(pixels.Height) / 2.0

	var rawPoints []rawPoint
	grid := make(map[[2]int]ElementIndex, pixels.Width*pixels.Height)

	for x := 0; x < pixels.Width; x++ {
		for y := 0; y < pixels.Height; y++ {
			color := pixels.RGB(x, y)
			mat, ok, err := table.Lookup(color)
			if err != nil {
				return nil, &UnrecognizedPixelError{X: x, Y: y, Color: color}
			}
			if !ok {
				continue
			}
			idx := ElementIndex(len(rawPoints))
			grid[[2]int{x, y}] = idx
			rawPoints = append(rawPoints, rawPoint{
				position: Vec2{X: float32(x) - halfW, Y: float32(y) - halfH},
				material: mat,
			})
		}
	}

	if len(rawPoints) == 0 {
		return nil, ErrEmptyStructure
	}

	var rawSprings []rawSpring
	for y := 0; y < pixels.Height; y++ {
		for x := 0; x < pixels.Width; x++ {
			p, ok := grid[[2]int{x, y}]
			if !ok {
				continue
			}
			for _, d := range directions {
				q, ok := grid[[2]int{x + d[0], y + d[1]}]
				if !ok {
					continue
				}
				rawSprings = append(rawSprings, rawSpring{a: p, b: q})
			}
		}
	}

	buildPoints := make([]layout.BuildPoint, len(rawPoints))
	for i, rp := range rawPoints {
		buildPoints[i] = layout.BuildPoint{Position: layout.Point2{X: rp.position.X, Y: rp.position.Y}}
	}
	buildSprings := make([]layout.BuildSpring, len(rawSprings))
	for i, rs := range rawSprings {
		buildSprings[i] = layout.BuildSpring{A: uint32(rs.a), B: uint32(rs.b)}
	}

	remap := optimizer.Remap(buildPoints, buildSprings)

	oldToNewPoint := make([]ElementIndex, len(rawPoints))
	for newIdx, oldIdx := range remap.PointRemap {
		oldToNewPoint[oldIdx] = ElementIndex(newIdx)
	}

	points := NewPoints(len(remap.PointRemap))
	for newIdx, oldIdx := range remap.PointRemap {
		rp := rawPoints[oldIdx]
		ni := ElementIndex(newIdx)
		points.SetPosition(ni, rp.position)
		points.SetMass(ni, float32(rp.material.Mass.Particle()))
		points.SetMaterialStiffness(ni, float32(rp.material.Stiffness))
		points.SetFrozenCoefficient(ni, rp.material.FrozenCoefficient())
	}

	springs := NewSprings(len(remap.SpringRemap))
	for newIdx, oldIdx := range remap.SpringRemap {
		rs := rawSprings[oldIdx]
		a, b := oldToNewPoint[rs.a], oldToNewPoint[rs.b]
		if remap.FlipMask[newIdx] {
			a, b = b, a
		}
		ni := ElementIndex(newIdx)
		springs.SetEndpoints(ni, a, b)

		stiffness := (points.MaterialStiffness(a) + points.MaterialStiffness(b)) / 2.0
		springs.SetMaterialStiffness(ni, stiffness)

		restLength := points.Position(a).Sub(points.Position(b)).Length()
		springs.SetRestLength(ni, restLength)

		points.AddConnectedSpring(a, ni, b)
		points.AddConnectedSpring(b, ni, a)
	}

	bendingProbeFound := false
	for newIdx, oldIdx := range remap.PointRemap {
		if rawPoints[oldIdx].material.IsBendingProbe {
			if bendingProbeFound {
				return nil, ErrDuplicateBendingProbe
			}
			points.SetBendingProbe(ElementIndex(newIdx))
			bendingProbeFound = true
		}
	}

	return &Object{
		Name:      name,
		Points:    points,
		Springs:   springs,
		Structure: remap.Structure,
	}, nil
}
