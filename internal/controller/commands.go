package controller

import "github.com/cwbudde/springlab/internal/core"

// ProbeNearestPoint returns the index of the live point closest to world,
// and false if the object has no points at all (spec.md §6
// "probe_nearest_point(world_xy)").
func (c *Controller) ProbeNearestPoint(world core.Vec2) (core.ElementIndex, bool) {
	if c.object == nil || c.object.Points.Count() == 0 {
		return 0, false
	}
	n := c.object.Points.Count()
	best := core.ElementIndex(0)
	bestDist := c.object.Points.Position(0).Sub(world).Dot(c.object.Points.Position(0).Sub(world))
	for p := 1; p < n; p++ {
		pi := core.ElementIndex(p)
		d := c.object.Points.Position(pi).Sub(world)
		dist := d.Dot(d)
		if dist < bestDist {
			bestDist = dist
			best = pi
		}
	}
	return best, true
}

// MovePoint offsets a point's position by worldOffset, leaving its velocity
// untouched (spec.md §6 "move_point(index, world_offset)"). It is a no-op
// if no object is loaded or index is out of range.
func (c *Controller) MovePoint(index core.ElementIndex, worldOffset core.Vec2) {
	if c.object == nil || int(index) >= c.object.Points.Count() {
		return
	}
	p := c.object.Points
	p.SetPosition(index, p.Position(index).Add(worldOffset))
}

// ToggleFreeze flips a point between frozen and free (spec.md §6
// "toggle_freeze(index)"). It is a no-op if no object is loaded or index is
// out of range.
func (c *Controller) ToggleFreeze(index core.ElementIndex) {
	if c.object == nil || int(index) >= c.object.Points.Count() {
		return
	}
	c.object.Points.ToggleFreeze(index)
}
