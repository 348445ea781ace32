package core

// Springs is the structure-of-arrays store for every spring in an object.
// Endpoint, rest-length and stiffness buffers are fixed at build time; no
// simulator mutates them.
type Springs struct {
	n int

	endpointA         *AlignedBuffer[ElementIndex]
	endpointB         *AlignedBuffer[ElementIndex]
	restLength        *AlignedBuffer[float32]
	materialStiffness *AlignedBuffer[float32]
}

// NewSprings allocates a spring store for n springs with capacity
// round_up(n, 4); padding slots get endpoints NoneIndex and zero length.
func NewSprings(n int) *Springs {
	s := &Springs{
		n:                 n,
		endpointA:         NewAlignedBuffer[ElementIndex](n),
		endpointB:         NewAlignedBuffer[ElementIndex](n),
		restLength:        NewAlignedBuffer[float32](n),
		materialStiffness: NewAlignedBuffer[float32](n),
	}
	for i := n; i < s.endpointA.Cap(); i++ {
		s.endpointA.Set(ElementIndex(i), NoneIndex)
		s.endpointB.Set(ElementIndex(i), NoneIndex)
	}
	return s
}

// Count returns the live number of springs, n.
func (s *Springs) Count() int { return s.n }

// Capacity returns the padded buffer capacity, round_up(n, 4).
func (s *Springs) Capacity() int { return s.endpointA.Cap() }

// Endpoints returns the (a, b) point indices of spring i.
func (s *Springs) Endpoints(i ElementIndex) (a, b ElementIndex) {
	return s.endpointA.Get(i), s.endpointB.Get(i)
}

// SetEndpoints sets the (a, b) point indices of spring i.
func (s *Springs) SetEndpoints(i ElementIndex, a, b ElementIndex) {
	s.endpointA.Set(i, a)
	s.endpointB.Set(i, b)
}

func (s *Springs) EndpointABuffer() *AlignedBuffer[ElementIndex] { return s.endpointA }
func (s *Springs) EndpointBBuffer() *AlignedBuffer[ElementIndex] { return s.endpointB }

func (s *Springs) RestLength(i ElementIndex) float32       { return s.restLength.Get(i) }
func (s *Springs) SetRestLength(i ElementIndex, v float32) { s.restLength.Set(i, v) }

func (s *Springs) MaterialStiffness(i ElementIndex) float32 { return s.materialStiffness.Get(i) }
func (s *Springs) SetMaterialStiffness(i ElementIndex, v float32) {
	s.materialStiffness.Set(i, v)
}
