package core

import "github.com/cwbudde/springlab/internal/layout"

// SimulatorSpecificStructure carries whatever extra layout metadata the
// chosen layout.Optimizer computed while remapping an object's points and
// springs (spec.md §4.3). It is opaque to core and passed through verbatim
// to whichever simulator family cares to interpret it.
type SimulatorSpecificStructure = layout.SimulatorSpecificStructure

// Object is a fully built, simulation-ready mass-spring structure: a point
// store, a spring store, and whatever layout-specific structure the builder
// attached along the way.
type Object struct {
	Name      string
	Points    *Points
	Springs   *Springs
	Structure SimulatorSpecificStructure
}
