package sim

import (
	"github.com/cwbudde/springlab/internal/core"
	"github.com/cwbudde/springlab/internal/workerpool"
)

// structuralBlockSize returns how many of the leading springs in object
// participate in the perfect-square vectorized path, per the layout
// optimizer's simulator_specific_structure (spec.md §4.3, §4.5.1).
func structuralBlockSize(object *core.Object) int {
	sizes := object.Structure.SpringProcessingBlockSizes
	if len(sizes) == 0 {
		return 0
	}
	return sizes[0]
}

// springPhaseStructural computes spring forces for the leading perfect-square
// block four springs at a time, loading each quadruple's four corner points
// (J, K, L, M) once and feeding all four springs from them, then falls back
// to the plain by-spring loop for whatever springs remain unstructured
// (spec.md §4.5.1, "BySpringStructuralIntrinsics").
//
// The endpoint pattern the structural layout optimizer guarantees for each
// block of 4 springs (s0..s3) is s0=J->L, s1=M->K, s2=J->K, s3=M->L, so J =
// s0.a = s2.a, M = s1.a = s3.a, L = s0.b = s2.b, K = s1.b = s3.b.
func (s *fsSimulator) springPhaseStructural(object *core.Object) {
	block := structuralBlockSize(object)
	i := 0
	for ; i+4 <= block; i += 4 {
		s0a, s0b := object.Springs.Endpoints(core.ElementIndex(i))
		s1a, s1b := object.Springs.Endpoints(core.ElementIndex(i + 1))
		j, l, m, k := s0a, s0b, s1a, s1b

		posJ, posK, posL, posM := object.Points.Position(j), object.Points.Position(k), object.Points.Position(l), object.Points.Position(m)
		velJ, velK, velL, velM := object.Points.Velocity(j), object.Points.Velocity(k), object.Points.Velocity(l), object.Points.Velocity(m)

		f0 := hookeAndDamp(posJ, posL, velJ, velL, object.Springs.RestLength(core.ElementIndex(i)), s.kEff[i], s.cDamp[i])
		f1 := hookeAndDamp(posM, posK, velM, velK, object.Springs.RestLength(core.ElementIndex(i+1)), s.kEff[i+1], s.cDamp[i+1])
		f2 := hookeAndDamp(posJ, posK, velJ, velK, object.Springs.RestLength(core.ElementIndex(i+2)), s.kEff[i+2], s.cDamp[i+2])
		f3 := hookeAndDamp(posM, posL, velM, velL, object.Springs.RestLength(core.ElementIndex(i+3)), s.kEff[i+3], s.cDamp[i+3])

		s.springForce[j] = s.springForce[j].Add(f0).Add(f2)
		s.springForce[l] = s.springForce[l].Sub(f0).Sub(f3)
		s.springForce[m] = s.springForce[m].Add(f1).Add(f3)
		s.springForce[k] = s.springForce[k].Sub(f1).Sub(f2)
	}
	for ; i < object.Springs.Count(); i++ {
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

func newBySpringStructuralIntrinsicsSimulator(_ *core.Object, _ Parameters, _ *workerpool.Pool) Simulator {
	return newFSSimulatorWithKernel((*fsSimulator).springPhaseStructural)
}

// bySpringStructuralMT is the "same + single-threaded (placeholder)" table
// row: a pool-shaped wrapper around the structural kernel that always runs
// it as a single task, so it's drop-in comparable to the truly parallel
// MTVectorized variant without actually splitting work across threads.
type bySpringStructuralMT struct {
	*fsSimulator
}

func newBySpringStructuralMTSimulator(_ *core.Object, _ Parameters, _ *workerpool.Pool) Simulator {
	return &bySpringStructuralMT{fsSimulator: newFSSimulatorWithKernel((*fsSimulator).springPhaseStructural)}
}

func (s *bySpringStructuralMT) Update(object *core.Object, tNow float64, params Parameters, pool *workerpool.Pool) {
	pool.Run([]workerpool.Task{
		func() { s.fsSimulator.Update(object, tNow, params, pool) },
	})
}
