// Package sim implements the simulator trait (spec.md §4.5): a family of
// interchangeable integrators that advance a core.Object through fixed-size
// time steps, dispatched behind a small interface the way the object's
// layout family is dispatched behind internal/layout.Optimizer.
package sim

import "github.com/cwbudde/springlab/internal/core"

// standardGravity is the magnitude, in m/s^2, of the canonical downward
// gravity vector that gravity_adjustment scales.
const standardGravity float32 = 9.80665

// Parameters holds every tunable the controller exposes, common and
// simulator-specific alike (spec.md §6's set_parameter keys).
type Parameters struct {
	TimeStepDuration  float32 // Δt_macro
	MassAdjustment    float32
	GravityAdjustment float32
	GlobalDamping     float32

	// Classic / FS family.
	SpringStiffnessCoefficient     float32 // Classic; also reused by Fast-MSS
	SpringDampingCoefficient       float32
	NumMechanicalDynamicsIterations int // I, FS family micro-iteration count
	SpringReductionFraction         float32

	// Position-Based Dynamics.
	NumUpdateIterations int // U
	NumSolverIterations int // S
	PBDSpringStiffness   float32

	// Fast-MSS.
	NumLocalGlobalStepIterations int // K_lg
}

// DefaultParameters returns a set of parameters inside every range §6
// specifies, suitable as a starting point for any simulator family.
func DefaultParameters() Parameters {
	return Parameters{
		TimeStepDuration:                1.0 / 60.0,
		MassAdjustment:                  1.0,
		GravityAdjustment:               1.0,
		GlobalDamping:                   0.01,
		SpringStiffnessCoefficient:      1.0,
		SpringDampingCoefficient:        1.0,
		NumMechanicalDynamicsIterations: 8,
		SpringReductionFraction:         1.0,
		NumUpdateIterations:             1,
		NumSolverIterations:             10,
		PBDSpringStiffness:              1.0,
		NumLocalGlobalStepIterations:    20,
	}
}

// Gravity returns the effective gravity vector g = (0, -standardGravity *
// GravityAdjustment), pointing down (-Y).
func (p Parameters) Gravity() core.Vec2 {
	return core.Vec2{X: 0, Y: -standardGravity * p.GravityAdjustment}
}
