package core

// ConnectedSpring is one entry in a point's adjacency list: the spring that
// touches this point, and the point at the spring's other endpoint.
type ConnectedSpring struct {
	SpringIndex        ElementIndex
	OtherEndpointIndex ElementIndex
}

// ConnectedSprings is a bounded, duplicate-free list of springs incident on a
// point, capacity MaxSpringsPerPoint (8 neighbours plus one rope).
type ConnectedSprings struct {
	entries [MaxSpringsPerPoint]ConnectedSpring
	count   int
}

// Len returns the number of springs currently registered.
func (c *ConnectedSprings) Len() int { return c.count }

// At returns the i-th entry.
func (c *ConnectedSprings) At(i int) ConnectedSpring { return c.entries[i] }

// Contains reports whether springIndex is already registered.
func (c *ConnectedSprings) Contains(springIndex ElementIndex) bool {
	for i := 0; i < c.count; i++ {
		if c.entries[i].SpringIndex == springIndex {
			return true
		}
	}
	return false
}

// Add appends a new connected spring. It panics if the list is full or the
// spring is already present — both are builder bugs, not runtime conditions.
func (c *ConnectedSprings) Add(springIndex, otherEndpointIndex ElementIndex) {
	if c.Contains(springIndex) {
		panic("duplicate spring in connected-springs list")
	}
	if c.count >= MaxSpringsPerPoint {
		panic("connected-springs list overflow")
	}
	c.entries[c.count] = ConnectedSpring{springIndex, otherEndpointIndex}
	c.count++
}

// BendingProbe identifies the single point (if any) whose displacement from
// its factory position is reported as a scalar measurement.
type BendingProbe struct {
	PointIndex             ElementIndex
	OriginalWorldPosition  Vec2
}

// Points is the structure-of-arrays store for every point in an object.
// Positions and velocities are the only buffers any simulator may mutate;
// everything else is fixed at build time.
type Points struct {
	n int

	position           *AlignedBuffer[Vec2]
	velocity           *AlignedBuffer[Vec2]
	assignedForce      *AlignedBuffer[Vec2]
	mass               *AlignedBuffer[float32]
	materialStiffness  *AlignedBuffer[float32]
	frozenCoefficient  *AlignedBuffer[float32]
	connectedSprings   []ConnectedSprings

	bendingProbe *BendingProbe
}

// NewPoints allocates a point store for n points with capacity round_up(n,4).
func NewPoints(n int) *Points {
	return &Points{
		n:                 n,
		position:          NewAlignedBuffer[Vec2](n),
		velocity:          NewAlignedBuffer[Vec2](n),
		assignedForce:     NewAlignedBuffer[Vec2](n),
		mass:              NewAlignedBuffer[float32](n),
		materialStiffness: NewAlignedBuffer[float32](n),
		frozenCoefficient: NewAlignedBuffer[float32](n),
		connectedSprings:  make([]ConnectedSprings, RoundUp4(n)),
	}
}

// Count returns the live number of points, n.
func (p *Points) Count() int { return p.n }

// Capacity returns the padded buffer capacity, round_up(n, 4).
func (p *Points) Capacity() int { return p.position.Cap() }

func (p *Points) Position(i ElementIndex) Vec2       { return p.position.Get(i) }
func (p *Points) SetPosition(i ElementIndex, v Vec2) { p.position.Set(i, v) }
func (p *Points) PositionBuffer() *AlignedBuffer[Vec2] { return p.position }

func (p *Points) Velocity(i ElementIndex) Vec2       { return p.velocity.Get(i) }
func (p *Points) SetVelocity(i ElementIndex, v Vec2) { p.velocity.Set(i, v) }
func (p *Points) VelocityBuffer() *AlignedBuffer[Vec2] { return p.velocity }

func (p *Points) AssignedForce(i ElementIndex) Vec2       { return p.assignedForce.Get(i) }
func (p *Points) SetAssignedForce(i ElementIndex, v Vec2) { p.assignedForce.Set(i, v) }

func (p *Points) Mass(i ElementIndex) float32       { return p.mass.Get(i) }
func (p *Points) SetMass(i ElementIndex, v float32) { p.mass.Set(i, v) }

func (p *Points) MaterialStiffness(i ElementIndex) float32       { return p.materialStiffness.Get(i) }
func (p *Points) SetMaterialStiffness(i ElementIndex, v float32) { p.materialStiffness.Set(i, v) }

// FrozenCoefficient is 1.0 for a free point, 0.0 for a frozen one.
func (p *Points) FrozenCoefficient(i ElementIndex) float32 { return p.frozenCoefficient.Get(i) }
func (p *Points) SetFrozenCoefficient(i ElementIndex, v float32) {
	p.frozenCoefficient.Set(i, v)
}

// IsFrozen reports whether point i is immovable.
func (p *Points) IsFrozen(i ElementIndex) bool { return p.frozenCoefficient.Get(i) == 0 }

// ToggleFreeze flips a point between frozen (0) and free (1).
func (p *Points) ToggleFreeze(i ElementIndex) {
	if p.IsFrozen(i) {
		p.frozenCoefficient.Set(i, 1)
	} else {
		p.frozenCoefficient.Set(i, 0)
	}
}

// ConnectedSprings returns the adjacency list for point i.
func (p *Points) ConnectedSprings(i ElementIndex) *ConnectedSprings { return &p.connectedSprings[i] }

// AddConnectedSpring registers springIndex (with its far endpoint) on point i.
func (p *Points) AddConnectedSpring(i ElementIndex, springIndex, otherEndpointIndex ElementIndex) {
	p.connectedSprings[i].Add(springIndex, otherEndpointIndex)
}

// SetBendingProbe designates point i as the bending probe, remembering its
// current position as the factory position.
func (p *Points) SetBendingProbe(i ElementIndex) {
	p.bendingProbe = &BendingProbe{PointIndex: i, OriginalWorldPosition: p.Position(i)}
}

// BendingProbe returns the designated bending probe, or nil if none.
func (p *Points) BendingProbe() *BendingProbe { return p.bendingProbe }
