package sim

import (
	"github.com/cwbudde/springlab/internal/core"
	"github.com/cwbudde/springlab/internal/workerpool"
)

// fsSimulator implements the FS / Classic family (spec.md §4.5.1): explicit
// position Verlet with first-order velocity, damped Hooke springs. Every
// variant in the table shares onStateChanged and the integration phase;
// they differ only in springPhase, the strategy used to compute each
// point's net spring force for one micro-iteration.
type fsSimulator struct {
	springPhase     func(s *fsSimulator, object *core.Object)
	selfIntegrating bool // true for ByPointCompactIntegrating: springPhase does its own integration

	externalForce     []core.Vec2
	integrationFactor []float32
	kEff              []float32
	cDamp             []float32
	springForce       []core.Vec2

	// compact holds the ByPointCompact/ByPointCompactIntegrating variants'
	// packed per-point spring table: one slice of entries per point.
	compact [][]compactEntry

	// lastDt and lastVelocityFactor are snapshotted by Update before each
	// micro-iteration, for the self-integrating variant's fused kernel.
	lastDt             float32
	lastVelocityFactor float32
}

// compactEntry packs one spring's simulation-relevant values alongside the
// point adjacency they're needed from, avoiding the indirection through
// Springs that the plain ByPoint variant pays on every micro-iteration
// (spec.md §4.5.1 table, "packed per-point spring table").
type compactEntry struct {
	stiffness float32 // k_eff
	damping   float32 // c_damp
	rest      float32
	other     core.ElementIndex
}

func newFSSimulatorWithKernel(kernel func(s *fsSimulator, object *core.Object)) *fsSimulator {
	return &fsSimulator{springPhase: kernel}
}

func newClassicSimulator(_ *core.Object, _ Parameters, _ *workerpool.Pool) Simulator {
	return newFSSimulatorWithKernel((*fsSimulator).springPhaseBase)
}

func newByPointSimulator(_ *core.Object, _ Parameters, _ *workerpool.Pool) Simulator {
	return newFSSimulatorWithKernel((*fsSimulator).springPhaseByPoint)
}

func newByPointCompactSimulator(_ *core.Object, _ Parameters, _ *workerpool.Pool) Simulator {
	return newFSSimulatorWithKernel((*fsSimulator).springPhaseByPointCompact)
}

func newByPointCompactIntegratingSimulator(_ *core.Object, _ Parameters, _ *workerpool.Pool) Simulator {
	s := newFSSimulatorWithKernel((*fsSimulator).springPhaseByPointCompactIntegrating)
	s.selfIntegrating = true
	return s
}

func newBySpringIntrinsicsSimulator(_ *core.Object, _ Parameters, _ *workerpool.Pool) Simulator {
	return newFSSimulatorWithKernel((*fsSimulator).springPhaseBySpringIntrinsics)
}

// OnStateChanged recomputes the precomputation block common to every FS
// variant (spec.md §4.5.1 "Precomputation").
func (s *fsSimulator) OnStateChanged(object *core.Object, params Parameters, _ *workerpool.Pool) {
	n := object.Points.Count()
	s.externalForce = make([]core.Vec2, n)
	s.integrationFactor = make([]float32, n)
	s.springForce = make([]core.Vec2, n)

	g := params.Gravity()
	adjust := params.MassAdjustment
	i := params.NumMechanicalDynamicsIterations
	if i < 1 {
		i = 1
	}
	dt := params.TimeStepDuration / float32(i)

	for p := 0; p < n; p++ {
		pi := core.ElementIndex(p)
		mass := object.Points.Mass(pi)
		s.externalForce[p] = g.Scale(mass * adjust).Add(object.Points.AssignedForce(pi))
		s.integrationFactor[p] = (dt * dt / (mass * adjust)) * object.Points.FrozenCoefficient(pi)
	}

	numSprings := object.Springs.Count()
	s.kEff = make([]float32, numSprings)
	s.cDamp = make([]float32, numSprings)
	for spr := 0; spr < numSprings; spr++ {
		si := core.ElementIndex(spr)
		a, b := object.Springs.Endpoints(si)
		mA := object.Points.Mass(a) * adjust
		mB := object.Points.Mass(b) * adjust
		var mu float32
		if mA+mB != 0 {
			mu = mA * mB / (mA + mB)
		}
		s.kEff[spr] = params.SpringReductionFraction * object.Springs.MaterialStiffness(si) * mu / (dt * dt)
		s.cDamp[spr] = params.SpringDampingCoefficient * mu / dt
	}

	s.rebuildCompact(object)
}

func (s *fsSimulator) rebuildCompact(object *core.Object) {
	n := object.Points.Count()
	s.compact = make([][]compactEntry, n)
	for p := 0; p < n; p++ {
		pi := core.ElementIndex(p)
		adj := object.Points.ConnectedSprings(pi)
		entries := make([]compactEntry, adj.Len())
		for k := 0; k < adj.Len(); k++ {
			cs := adj.At(k)
			entries[k] = compactEntry{
				stiffness: s.kEff[cs.SpringIndex],
				damping:   s.cDamp[cs.SpringIndex],
				rest:      object.Springs.RestLength(cs.SpringIndex),
				other:     cs.OtherEndpointIndex,
			}
		}
		s.compact[p] = entries
	}
}

// Update runs I micro-iterations of spring-phase-then-integration-phase.
func (s *fsSimulator) Update(object *core.Object, _ float64, params Parameters, pool *workerpool.Pool) {
	i := params.NumMechanicalDynamicsIterations
	if i < 1 {
		i = 1
	}
	dt := params.TimeStepDuration / float32(i)
	gDamp := 1 - pow1m(params.GlobalDamping, 12.0/float32(i))
	velocityFactor := (1 - gDamp) / dt
	s.lastDt = dt
	s.lastVelocityFactor = velocityFactor

	for iter := 0; iter < i; iter++ {
		s.springPhase(s, object)
		if !s.selfIntegrating {
			s.integrate(object, dt, velocityFactor)
		}
	}
	_ = pool // non-MT variants never touch the pool
}

// integrate is the integration phase shared by every FS variant (spec.md
// §4.5.1 "Per micro-iteration (integration phase)"). It writes through the
// live region of the position/velocity buffers directly rather than via
// per-index Get/Set, the SoA access pattern the aligned buffers exist for.
func (s *fsSimulator) integrate(object *core.Object, dt, velocityFactor float32) {
	n := object.Points.Count()
	pos := object.Points.PositionBuffer().Live()
	vel := object.Points.VelocityBuffer().Live()
	for p := 0; p < n; p++ {
		total := s.springForce[p].Add(s.externalForce[p])
		delta := vel[p].Scale(dt).Add(total.Scale(s.integrationFactor[p]))
		pos[p] = pos[p].Add(delta)
		v := delta.Scale(velocityFactor)
		vel[p] = core.Vec2{X: workerpool.FlushDenormal(v.X), Y: workerpool.FlushDenormal(v.Y)}
		s.springForce[p] = core.Vec2{}
	}
}

// pow1m returns (1-damping)^exponent. The FS family and Gauss-Seidel take
// 1 minus this value as their per-iteration global damping coefficient.
func pow1m(damping, exponent float32) float32 {
	return powf32(1-damping, exponent)
}
