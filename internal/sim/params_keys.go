package sim

import "fmt"

// parameterRange is the inclusive bound a recognized set_parameter key must
// fall within (spec.md §6).
type parameterRange struct {
	min, max float64
	set      func(p *Parameters, v float64)
}

var parameterRanges = map[string]parameterRange{
	"time_step_duration": {0.0003, 1.3, func(p *Parameters, v float64) { p.TimeStepDuration = float32(v) }},
	"mass_adjustment":    {1e-4, 1e3, func(p *Parameters, v float64) { p.MassAdjustment = float32(v) }},
	"gravity_adjustment": {0, 1e3, func(p *Parameters, v float64) { p.GravityAdjustment = float32(v) }},
	"global_damping":     {0, 1, func(p *Parameters, v float64) { p.GlobalDamping = float32(v) }},

	"spring_stiffness_coefficient": {0, 5e5, func(p *Parameters, v float64) { p.SpringStiffnessCoefficient = float32(v) }},
	"spring_damping_coefficient":   {0, 1e4, func(p *Parameters, v float64) { p.SpringDampingCoefficient = float32(v) }},
	"num_mechanical_dynamics_iterations": {1, 200, func(p *Parameters, v float64) {
		p.NumMechanicalDynamicsIterations = int(v)
	}},
	"spring_reduction_fraction": {0, 1, func(p *Parameters, v float64) { p.SpringReductionFraction = float32(v) }},

	"num_update_iterations": {1, 100, func(p *Parameters, v float64) { p.NumUpdateIterations = int(v) }},
	"num_solver_iterations": {1, 100, func(p *Parameters, v float64) { p.NumSolverIterations = int(v) }},
	"spring_stiffness":      {0, 1, func(p *Parameters, v float64) { p.PBDSpringStiffness = float32(v) }},

	"num_local_global_step_iterations": {1, 1000, func(p *Parameters, v float64) {
		p.NumLocalGlobalStepIterations = int(v)
	}},
}

// SetParameter validates and applies one named tunable from spec.md §6's
// set_parameter key set. Unknown keys and out-of-range values are errors;
// callers that want to apply many keys at once should collect errors and
// decide whether a partial application is acceptable.
func SetParameter(p *Parameters, key string, value float64) error {
	r, ok := parameterRanges[key]
	if !ok {
		return fmt.Errorf("sim: unknown parameter %q", key)
	}
	if value < r.min || value > r.max {
		return fmt.Errorf("sim: parameter %q value %g out of range [%g, %g]", key, value, r.min, r.max)
	}
	r.set(p, value)
	return nil
}

// ParameterNames returns every recognized set_parameter key.
func ParameterNames() []string {
	names := make([]string, 0, len(parameterRanges))
	for name := range parameterRanges {
		names = append(names, name)
	}
	return names
}
