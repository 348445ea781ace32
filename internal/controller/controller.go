// Package controller implements the simulation controller (spec.md §4.6):
// it owns the currently-loaded object, the currently-selected simulator and
// parameter set, the accumulated simulation clock, and a rolling timing
// window, and it publishes one measurement per step to subscribed handlers.
package controller

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cwbudde/springlab/internal/core"
	"github.com/cwbudde/springlab/internal/layout"
	"github.com/cwbudde/springlab/internal/material"
	"github.com/cwbudde/springlab/internal/sim"
	"github.com/cwbudde/springlab/internal/workerpool"
)

// timingWindowSize bounds the rolling average of step durations, mirroring
// the original engine's fixed-size PerfStats ring buffer.
const timingWindowSize = 60

// Handler is notified once per RunIteration call with that step's
// Measurement.
type Handler func(Measurement)

// Measurement is what RunIteration publishes to subscribers: the step's own
// duration, a rolling average, the object's current kinetic and potential
// energy, and the bending probe's displacement, if the object has one
// (spec.md §4.6).
type Measurement struct {
	Step               int
	SimTime            float64
	StepDuration        time.Duration
	AvgStepDuration     time.Duration
	KineticEnergy       float64
	PotentialEnergy     float64
	BendingProbeOffset  *core.Vec2
}

// objectSource remembers how the current object was built, so Reset can
// reload it from scratch (spec.md §4.6 "reset()... re-loads the current
// object from the same source").
type objectSource struct {
	name      string
	pixels    core.PixelGrid
	table     *material.Table
	optimizer layout.Optimizer
}

// Controller drives one loaded object through repeated simulation steps.
// It is not safe for concurrent use from multiple goroutines; the pool it
// holds is the only internal concurrency.
type Controller struct {
	logger *slog.Logger
	pool   *workerpool.Pool

	source objectSource
	object *core.Object

	simName string
	sim     sim.Simulator
	params  sim.Parameters

	simTime float64
	step    int

	durations    [timingWindowSize]time.Duration
	durationN    int
	durationHead int

	handlers []Handler
}

// New creates a controller with the given worker pool and default
// parameters. The pool is owned by the caller, who is responsible for
// closing it.
func New(pool *workerpool.Pool, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Controller{
		logger: logger,
		pool:   pool,
		params: sim.DefaultParameters(),
	}
}

// LoadObject builds and adopts a new object from a structural-layer raster,
// a material table and a layout optimizer, then selects simName (or keeps
// the previously selected simulator if simName is empty and one is already
// selected).
func (c *Controller) LoadObject(name string, pixels core.PixelGrid, table *material.Table, optimizer layout.Optimizer, simName string) error {
	object, err := core.Build(name, pixels, table, optimizer)
	if err != nil {
		return fmt.Errorf("controller: load object %q: %w", name, err)
	}

	c.source = objectSource{name: name, pixels: pixels, table: table, optimizer: optimizer}
	c.object = object
	c.simTime = 0
	c.step = 0
	c.durationN = 0
	c.durationHead = 0

	if simName == "" {
		simName = c.simName
	}
	if simName == "" {
		simName = "classic"
	}

	c.logger.Info("object loaded",
		"name", name,
		"points", object.Points.Count(),
		"springs", object.Springs.Count(),
		"perfect_squares", object.Structure.PerfectSquareCount,
	)

	return c.SelectSimulator(simName)
}

// SelectSimulator switches the active simulator family, re-deriving its
// per-object precomputation from the current object and parameters
// (spec.md §4.6).
func (c *Controller) SelectSimulator(name string) error {
	if c.object == nil {
		return fmt.Errorf("controller: no object loaded")
	}
	s, err := sim.New(name, c.object, c.params, c.pool)
	if err != nil {
		return err
	}
	c.sim = s
	c.simName = name
	c.logger.Debug("simulator selected", "simulator", name)
	return nil
}

// SimulatorName returns the currently selected simulator's registry name.
func (c *Controller) SimulatorName() string { return c.simName }

// Object returns the currently loaded object, or nil if none is loaded.
func (c *Controller) Object() *core.Object { return c.object }

// Parameters returns the controller's current parameter set.
func (c *Controller) Parameters() sim.Parameters { return c.params }

// SetParameters replaces the whole parameter set and re-runs
// OnStateChanged, since every FS-family coefficient depends on them.
func (c *Controller) SetParameters(params sim.Parameters) error {
	c.params = params
	if c.sim == nil || c.object == nil {
		return nil
	}
	c.sim.OnStateChanged(c.object, c.params, c.pool)
	return nil
}

// SetParameter validates and applies one named tunable (spec.md §6
// set_parameter), then re-runs the active simulator's OnStateChanged since
// every FS-family coefficient depends on the full parameter set.
func (c *Controller) SetParameter(key string, value float64) error {
	if err := sim.SetParameter(&c.params, key, value); err != nil {
		return err
	}
	if c.sim != nil && c.object != nil {
		c.sim.OnStateChanged(c.object, c.params, c.pool)
	}
	return nil
}

// Reset reloads the current object from its original source and zeros the
// simulation clock, per spec.md §4.6.
func (c *Controller) Reset() error {
	if c.object == nil {
		return fmt.Errorf("controller: no object loaded")
	}
	return c.LoadObject(c.source.name, c.source.pixels, c.source.table, c.source.optimizer, c.simName)
}

// Step returns the number of completed RunIteration calls since the object
// was last (re)loaded.
func (c *Controller) Step() int { return c.step }

// SimTime returns the accumulated simulation time, in seconds, since the
// object was last (re)loaded.
func (c *Controller) SimTime() float64 { return c.simTime }

// Subscribe registers handler to be called with every subsequent
// RunIteration's Measurement. The returned function unsubscribes it.
func (c *Controller) Subscribe(handler Handler) (unsubscribe func()) {
	c.handlers = append(c.handlers, handler)
	idx := len(c.handlers) - 1
	return func() {
		c.handlers[idx] = nil
	}
}

// RunIteration times one call to the active simulator's Update, advances
// the clock by TimeStepDuration, computes energies, and publishes a
// Measurement to every subscriber (spec.md §4.6).
func (c *Controller) RunIteration() (Measurement, error) {
	if c.sim == nil || c.object == nil {
		return Measurement{}, fmt.Errorf("controller: no simulator selected")
	}

	start := time.Now()
	c.sim.Update(c.object, c.simTime, c.params, c.pool)
	duration := time.Since(start)

	c.simTime += float64(c.params.TimeStepDuration)
	c.step++
	c.recordDuration(duration)

	m := Measurement{
		Step:               c.step,
		SimTime:            c.simTime,
		StepDuration:       duration,
		AvgStepDuration:    c.averageDuration(),
		KineticEnergy:      kineticEnergy(c.object),
		PotentialEnergy:    potentialEnergy(c.object),
		BendingProbeOffset: bendingProbeOffset(c.object),
	}

	for _, h := range c.handlers {
		if h != nil {
			h(m)
		}
	}

	return m, nil
}

func (c *Controller) recordDuration(d time.Duration) {
	c.durations[c.durationHead] = d
	c.durationHead = (c.durationHead + 1) % timingWindowSize
	if c.durationN < timingWindowSize {
		c.durationN++
	}
}

func (c *Controller) averageDuration() time.Duration {
	if c.durationN == 0 {
		return 0
	}
	var total time.Duration
	for i := 0; i < c.durationN; i++ {
		total += c.durations[i]
	}
	return total / time.Duration(c.durationN)
}

// kineticEnergy sums 1/2 * m * |v|^2 over every live point.
func kineticEnergy(object *core.Object) float64 {
	var total float64
	n := object.Points.Count()
	for p := 0; p < n; p++ {
		pi := core.ElementIndex(p)
		v := object.Points.Velocity(pi)
		m := float64(object.Points.Mass(pi))
		total += 0.5 * m * float64(v.Dot(v))
	}
	return total
}

// potentialEnergy sums 1/2 * k * (length - rest)^2 over every spring, using
// each spring's own material stiffness rather than any simulator's
// per-parameter k_eff, so the measurement is comparable across simulator
// families.
func potentialEnergy(object *core.Object) float64 {
	var total float64
	n := object.Springs.Count()
	for s := 0; s < n; s++ {
		si := core.ElementIndex(s)
		a, b := object.Springs.Endpoints(si)
		length := object.Points.Position(a).Sub(object.Points.Position(b)).Length()
		stretch := float64(length - object.Springs.RestLength(si))
		total += 0.5 * float64(object.Springs.MaterialStiffness(si)) * stretch * stretch
	}
	return total
}

// bendingProbeOffset returns the bending probe's current displacement from
// its factory position, or nil if the object has no bending probe.
func bendingProbeOffset(object *core.Object) *core.Vec2 {
	probe := object.Points.BendingProbe()
	if probe == nil {
		return nil
	}
	offset := object.Points.Position(probe.PointIndex).Sub(probe.OriginalWorldPosition)
	return &offset
}
