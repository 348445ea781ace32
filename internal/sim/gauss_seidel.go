package sim

import (
	"github.com/cwbudde/springlab/internal/core"
	"github.com/cwbudde/springlab/internal/workerpool"
)

// gaussSeidelSimulator implements "Gauss-Seidel by point" (spec.md §4.5.2):
// it shares the FS family's precomputation, but instead of a barrier
// between a full force pass and a full integration pass, it integrates
// external forces and velocity first, then visits points one at a time,
// recomputing spring forces from whatever neighbor positions are current
// at that moment (possibly already updated this same micro-iteration) and
// integrating each point's spring contribution immediately.
type gaussSeidelSimulator struct {
	*fsSimulator
}

func newGaussSeidelSimulator(_ *core.Object, _ Parameters, _ *workerpool.Pool) Simulator {
	return &gaussSeidelSimulator{fsSimulator: newFSSimulatorWithKernel(nil)}
}

func (s *gaussSeidelSimulator) Update(object *core.Object, _ float64, params Parameters, _ *workerpool.Pool) {
	i := params.NumMechanicalDynamicsIterations
	if i < 1 {
		i = 1
	}
	dt := params.TimeStepDuration / float32(i)
	gDamp := 1 - pow1m(params.GlobalDamping, 12.0/float32(i))
	velocityFactor := (1 - gDamp) / dt

	n := object.Points.Count()
	for iter := 0; iter < i; iter++ {
		// External-force-only tentative integration.
		for p := 0; p < n; p++ {
			pi := core.ElementIndex(p)
			delta := object.Points.Velocity(pi).Scale(dt).Add(s.externalForce[p].Scale(s.integrationFactor[p]))
			object.Points.SetPosition(pi, object.Points.Position(pi).Add(delta))
			object.Points.SetVelocity(pi, delta.Scale(velocityFactor))
		}

		// Sequential spring-force sweep: each point sees its neighbors'
		// current (possibly already-updated-this-iteration) state.
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

			delta := total.Scale(s.integrationFactor[p])
			object.Points.SetPosition(pi, object.Points.Position(pi).Add(delta))
			object.Points.SetVelocity(pi, object.Points.Velocity(pi).Add(delta.Scale(velocityFactor)))
		}
	}
}
