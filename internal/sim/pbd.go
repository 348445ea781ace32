package sim

import (
	"github.com/cwbudde/springlab/internal/core"
	"github.com/cwbudde/springlab/internal/workerpool"
)

// positionBasedBasicSimulator implements spec.md §4.5.3: predict a position
// under external force and damped velocity, then iteratively project each
// spring's stretch out of the predicted positions, and finally derive the
// step's velocity from how far the prediction moved.
type positionBasedBasicSimulator struct {
	invMass []float32 // 1/mass, cached per state change
}

func newPositionBasedBasicSimulator(_ *core.Object, _ Parameters, _ *workerpool.Pool) Simulator {
	return &positionBasedBasicSimulator{}
}

func (s *positionBasedBasicSimulator) OnStateChanged(object *core.Object, _ Parameters, _ *workerpool.Pool) {
	n := object.Points.Count()
	s.invMass = make([]float32, n)
	for p := 0; p < n; p++ {
		pi := core.ElementIndex(p)
		mass := object.Points.Mass(pi)
		if mass != 0 {
			s.invMass[p] = 1 / mass
		}
	}
}

func (s *positionBasedBasicSimulator) Update(object *core.Object, _ float64, params Parameters, _ *workerpool.Pool) {
	u := params.NumUpdateIterations
	if u < 1 {
		u = 1
	}
	sIter := params.NumSolverIterations
	if sIter < 1 {
		sIter = 1
	}
	dt := params.TimeStepDuration
	gDampPB := 1 - powf32(1-params.GlobalDamping, 0.4)

	n := object.Points.Count()
	xPred := make([]core.Vec2, n)

	for iter := 0; iter < u; iter++ {
		for p := 0; p < n; p++ {
			pi := core.ElementIndex(p)
			mass := object.Points.Mass(pi)
			frozen := object.Points.FrozenCoefficient(pi)

			fExt := object.Points.AssignedForce(pi).Add(params.Gravity().Scale(mass * params.MassAdjustment))
			v := object.Points.Velocity(pi).Add(fExt.Scale(dt / mass)).Scale(1 - gDampPB)
			v = v.Scale(frozen)
			object.Points.SetVelocity(pi, v)
			xPred[p] = object.Points.Position(pi).Add(v.Scale(dt))
		}

		for k := 0; k < sIter; k++ {
			numSprings := object.Springs.Count()
			for si := 0; si < numSprings; si++ {
				spr := core.ElementIndex(si)
				a, b := object.Springs.Endpoints(spr)

				wA := s.invMass[a] * object.Points.FrozenCoefficient(a)
				wB := s.invMass[b] * object.Points.FrozenCoefficient(b)
				denom := wA + wB
				if denom == 0 {
					denom = 1
				}

				d := xPred[a].Sub(xPred[b])
				u := d.Normalize()
				stretch := d.Length() - object.Springs.RestLength(spr)

				xPred[a] = xPred[a].Add(u.Scale(-(wA / denom) * params.PBDSpringStiffness * stretch))
				xPred[b] = xPred[b].Add(u.Scale((wB / denom) * params.PBDSpringStiffness * stretch))
			}
		}

		for p := 0; p < n; p++ {
			pi := core.ElementIndex(p)
			v := xPred[p].Sub(object.Points.Position(pi)).Scale(1 / dt)
			object.Points.SetVelocity(pi, v)
			object.Points.SetPosition(pi, xPred[p])
		}
	}
}
