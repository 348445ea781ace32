package sim

import (
	"github.com/cwbudde/springlab/internal/core"
	"github.com/cwbudde/springlab/internal/workerpool"
)

// bySpringStructuralMTVectorized is the fully parallel variant: the spring
// range is split into P contiguous chunks on 4-spring boundaries (the last
// chunk absorbs the remainder), and each worker accumulates its chunk's
// forces into its own full-size buffer so the fork-join phase has no
// shared-write races (spec.md §4.5.1 "MT variant specifics", §5).
type bySpringStructuralMTVectorized struct {
	base *fsSimulator

	accumulators [][]core.Vec2 // one per worker, reused across steps
	chunks       []springChunk
}

type springChunk struct{ start, end int }

func newBySpringStructuralMTVectorizedSimulator(_ *core.Object, _ Parameters, pool *workerpool.Pool) Simulator {
	s := &bySpringStructuralMTVectorized{
		base: newFSSimulatorWithKernel((*fsSimulator).springPhaseStructural),
	}
	_ = pool
	return s
}

func (s *bySpringStructuralMTVectorized) OnStateChanged(object *core.Object, params Parameters, pool *workerpool.Pool) {
	s.base.OnStateChanged(object, params, pool)

	p := pool.Parallelism()
	if p < 1 {
		p = 1
	}
	n := object.Points.Count()
	s.accumulators = make([][]core.Vec2, p)
	for i := range s.accumulators {
		s.accumulators[i] = make([]core.Vec2, n)
	}
	s.chunks = partitionSprings(object.Springs.Count(), p)
}

// partitionSprings splits [0, numSprings) into up to p contiguous chunks
// whose boundaries fall on multiples of 4, except the last chunk, which
// absorbs whatever doesn't divide evenly.
func partitionSprings(numSprings, p int) []springChunk {
	if numSprings == 0 {
		return nil
	}
	blocks := core.RoundUp4(numSprings) / 4
	base := blocks / p
	extra := blocks % p

	chunks := make([]springChunk, 0, p)
	start := 0
	for w := 0; w < p && start < numSprings; w++ {
		blockCount := base
		if w < extra {
			blockCount++
		}
		end := start + blockCount*4
		if w == p-1 || end > numSprings {
			end = numSprings
		}
		if end <= start {
			continue
		}
		chunks = append(chunks, springChunk{start: start, end: end})
		start = end
	}
	return chunks
}

func (s *bySpringStructuralMTVectorized) Update(object *core.Object, _ float64, params Parameters, pool *workerpool.Pool) {
	i := params.NumMechanicalDynamicsIterations
	if i < 1 {
		i = 1
	}
	dt := params.TimeStepDuration / float32(i)
	gDamp := 1 - pow1m(params.GlobalDamping, 12.0/float32(i))
	velocityFactor := (1 - gDamp) / dt

	for iter := 0; iter < i; iter++ {
		s.springPhaseParallel(object, pool)
		s.reduceAndIntegrate(object, dt, velocityFactor)
	}
}

func (s *bySpringStructuralMTVectorized) springPhaseParallel(object *core.Object, pool *workerpool.Pool) {
	block := structuralBlockSize(object)

	tasks := make([]workerpool.Task, len(s.chunks))
	for w, chunk := range s.chunks {
		w, chunk := w, chunk
		tasks[w] = func() {
			acc := s.accumulators[w]
			springForceChunk(object, s.base, acc, chunk.start, chunk.end, block)
		}
	}
	pool.Run(tasks)
}

// springForceChunk is springPhaseStructural's computation restricted to
// spring range [start, end) and writing into a caller-owned accumulator
// instead of the shared fsSimulator.springForce buffer.
func springForceChunk(object *core.Object, s *fsSimulator, acc []core.Vec2, start, end, block int) {
	i := start
	for ; i+4 <= end && i+4 <= block; i += 4 {
		s0a, s0b := object.Springs.Endpoints(core.ElementIndex(i))
		s1a, s1b := object.Springs.Endpoints(core.ElementIndex(i + 1))
		j, l, m, k := s0a, s0b, s1a, s1b

		posJ, posK, posL, posM := object.Points.Position(j), object.Points.Position(k), object.Points.Position(l), object.Points.Position(m)
		velJ, velK, velL, velM := object.Points.Velocity(j), object.Points.Velocity(k), object.Points.Velocity(l), object.Points.Velocity(m)

		f0 := hookeAndDamp(posJ, posL, velJ, velL, object.Springs.RestLength(core.ElementIndex(i)), s.kEff[i], s.cDamp[i])
		f1 := hookeAndDamp(posM, posK, velM, velK, object.Springs.RestLength(core.ElementIndex(i+1)), s.kEff[i+1], s.cDamp[i+1])
		f2 := hookeAndDamp(posJ, posK, velJ, velK, object.Springs.RestLength(core.ElementIndex(i+2)), s.kEff[i+2], s.cDamp[i+2])
		f3 := hookeAndDamp(posM, posL, velM, velL, object.Springs.RestLength(core.ElementIndex(i+3)), s.kEff[i+3], s.cDamp[i+3])

		acc[j] = acc[j].Add(f0).Add(f2)
		acc[l] = acc[l].Sub(f0).Sub(f3)
		acc[m] = acc[m].Add(f1).Add(f3)
		acc[k] = acc[k].Sub(f1).Sub(f2)
	}
	for ; i < end; i++ {
		si := core.ElementIndex(i)
		a, b := object.Springs.Endpoints(si)
		f := hookeAndDamp(
			object.Points.Position(a), object.Points.Position(b),
			object.Points.Velocity(a), object.Points.Velocity(b),
			object.Springs.RestLength(si), s.kEff[i], s.cDamp[i],
		)
		acc[a] = acc[a].Add(f)
		acc[b] = acc[b].Sub(f)
	}
}

// reduceAndIntegrate sums every worker's accumulator per point, runs the
// shared integration phase, and zeros the accumulators in the same pass
// (spec.md §4.5.1 "MT variant specifics"). Unlike the original's specialized
// P ∈ {1, 2, 4} code paths, this reduction is a single generic loop — a
// deliberate simplification since those paths are a performance detail with
// no effect on the result.
func (s *bySpringStructuralMTVectorized) reduceAndIntegrate(object *core.Object, dt, velocityFactor float32) {
	n := object.Points.Count()
	pos := object.Points.PositionBuffer().Live()
	vel := object.Points.VelocityBuffer().Live()
	for p := 0; p < n; p++ {
		var total core.Vec2
		for w := range s.accumulators {
			total = total.Add(s.accumulators[w][p])
			s.accumulators[w][p] = core.Vec2{}
		}

		full := total.Add(s.base.externalForce[p])
		delta := vel[p].Scale(dt).Add(full.Scale(s.base.integrationFactor[p]))
		pos[p] = pos[p].Add(delta)
		v := delta.Scale(velocityFactor)
		vel[p] = core.Vec2{X: workerpool.FlushDenormal(v.X), Y: workerpool.FlushDenormal(v.Y)}
	}
}
