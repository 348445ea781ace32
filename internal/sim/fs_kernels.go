package sim

import (
	"github.com/cwbudde/springlab/internal/core"
	"github.com/cwbudde/springlab/internal/workerpool"
)

// hookeAndDamp evaluates one spring's force contribution: the Hooke modulus
// from its current stretch, the damping modulus from relative endpoint
// velocity along the spring axis, and the unit direction to apply them
// along (spec.md §4.5.1, "Per micro-iteration (spring phase)"). The result
// is run through FlushDenormal component-wise: this is the per-spring
// result spec.md §5's denormal-flush requirement covers.
func hookeAndDamp(posA, posB, velA, velB core.Vec2, rest, kEff, cDamp float32) core.Vec2 {
	d := posB.Sub(posA)
	l := d.Length()
	u := d.Normalize()
	fh := (l - rest) * kEff
	fd := velB.Sub(velA).Dot(u) * cDamp
	f := u.Scale(fh + fd)
	return core.Vec2{X: workerpool.FlushDenormal(f.X), Y: workerpool.FlushDenormal(f.Y)}
}

// springPhaseBase is the "Base" variant: iterate the spring store directly,
// one pass, applying +force to endpoint A and -force to endpoint B.
func (s *fsSimulator) springPhaseBase(object *core.Object) {
	n := object.Springs.Count()
	for i := 0; i < n; i++ {
		si := core.ElementIndex(i)
		a, b := object.Springs.Endpoints(si)
		f := hookeAndDamp(
			object.Points.Position(a), object.Points.Position(b),
			object.Points.Velocity(a), object.Points.Velocity(b),
			object.Springs.RestLength(si), s.kEff[i], s.cDamp[i],
		)
		s.springForce[a] = s.springForce[a].Add(f)
		s.springForce[b] = s.springForce[b].Sub(f)
	}
}

// springPhaseByPoint visits every point and sums the contribution of each
// of its connected springs directly into that point's force, computed
// symmetrically from the point's own perspective (spec.md §4.5.1 table,
// "by point, with full point adjacency"). Each spring is thus evaluated
// twice, once from either endpoint, trading redundant work for point-local
// traversal instead of a scatter to two endpoints.
func (s *fsSimulator) springPhaseByPoint(object *core.Object) {
	n := object.Points.Count()
	for p := 0; p < n; p++ {
		pi := core.ElementIndex(p)
		adj := object.Points.ConnectedSprings(pi)
		var total core.Vec2
		posP := object.Points.Position(pi)
		velP := object.Points.Velocity(pi)
		for k := 0; k < adj.Len(); k++ {
			cs := adj.At(k)
			total = total.Add(hookeAndDamp(
				posP, object.Points.Position(cs.OtherEndpointIndex),
				velP, object.Points.Velocity(cs.OtherEndpointIndex),
				object.Springs.RestLength(cs.SpringIndex), s.kEff[cs.SpringIndex], s.cDamp[cs.SpringIndex],
			))
		}
		s.springForce[p] = total
	}
}

// springPhaseByPointCompact is springPhaseByPoint reading from the packed
// per-point spring table instead of indirecting through Springs on every
// micro-iteration.
func (s *fsSimulator) springPhaseByPointCompact(object *core.Object) {
	n := object.Points.Count()
	for p := 0; p < n; p++ {
		pi := core.ElementIndex(p)
		posP := object.Points.Position(pi)
		velP := object.Points.Velocity(pi)
		var total core.Vec2
		for _, e := range s.compact[p] {
			total = total.Add(hookeAndDamp(
				posP, object.Points.Position(e.other),
				velP, object.Points.Velocity(e.other),
				e.rest, e.stiffness, e.damping,
			))
		}
		s.springForce[p] = total
	}
}

// springPhaseByPointCompactIntegrating fuses the spring phase and the
// integration phase into one loop (spec.md §4.5.1 table,
// "ByPointCompactIntegrating"). It reads positions and velocities from a
// snapshot taken before the loop started, so visiting point p does not see
// point p+1's already-integrated state — this double buffering preserves
// the same Jacobi (simultaneous-update) semantics as every other FS
// variant, just fused into a single pass per point.
func (s *fsSimulator) springPhaseByPointCompactIntegrating(object *core.Object) {
	// This kernel does its own integration; Update skips its separate
	// integrate call for this variant (selfIntegrating is set).
	n := object.Points.Count()
	oldPos := make([]core.Vec2, n)
	oldVel := make([]core.Vec2, n)
	copy(oldPos, object.Points.PositionBuffer().Live())
	copy(oldVel, object.Points.VelocityBuffer().Live())

	pos := object.Points.PositionBuffer().Live()
	vel := object.Points.VelocityBuffer().Live()
	dt := s.lastDt
	for p := 0; p < n; p++ {
		var total core.Vec2
		for _, e := range s.compact[p] {
			total = total.Add(hookeAndDamp(
				oldPos[p], oldPos[e.other],
				oldVel[p], oldVel[e.other],
				e.rest, e.stiffness, e.damping,
			))
		}
		full := total.Add(s.externalForce[p])
		delta := oldVel[p].Scale(dt).Add(full.Scale(s.integrationFactor[p]))
		pos[p] = oldPos[p].Add(delta)
		v := delta.Scale(s.lastVelocityFactor)
		vel[p] = core.Vec2{X: workerpool.FlushDenormal(v.X), Y: workerpool.FlushDenormal(v.Y)}
	}
}

// springPhaseBySpringIntrinsics is the "BySpringIntrinsics" variant: the
// same computation as Base, grouped into 4-spring chunks the way a 4-wide
// SIMD gather over non-contiguous endpoints would. The endpoint buffers are
// read through their raw padded slices (instead of per-index Endpoints
// calls) since a real gather instruction would load all four lanes' indices
// out of one contiguous word; each lane is otherwise independent, so the
// portable form is identical to Base's loop body run 4 at a time. This port
// carries no platform-specific SIMD gather.
func (s *fsSimulator) springPhaseBySpringIntrinsics(object *core.Object) {
	n := object.Springs.Count()
	endpointA := object.Springs.EndpointABuffer().Raw()
	endpointB := object.Springs.EndpointBBuffer().Raw()
	i := 0
	for ; i+4 <= n; i += 4 {
		for lane := 0; lane < 4; lane++ {
			idx := i + lane
			a, b := endpointA[idx], endpointB[idx]
			f := hookeAndDamp(
				object.Points.Position(a), object.Points.Position(b),
				object.Points.Velocity(a), object.Points.Velocity(b),
				object.Springs.RestLength(core.ElementIndex(idx)), s.kEff[idx], s.cDamp[idx],
			)
			s.springForce[a] = s.springForce[a].Add(f)
			s.springForce[b] = s.springForce[b].Sub(f)
		}
	}
	for ; i < n; i++ {
		a, b := endpointA[i], endpointB[i]
		f := hookeAndDamp(
			object.Points.Position(a), object.Points.Position(b),
			object.Points.Velocity(a), object.Points.Velocity(b),
			object.Springs.RestLength(core.ElementIndex(i)), s.kEff[i], s.cDamp[i],
		)
		s.springForce[a] = s.springForce[a].Add(f)
		s.springForce[b] = s.springForce[b].Sub(f)
	}
}
