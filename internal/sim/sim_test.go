package sim

import (
	"math"
	"testing"

	"github.com/cwbudde/springlab/internal/core"
	"github.com/cwbudde/springlab/internal/workerpool"
)

// twoPointObject builds a minimal object: point 0 frozen at the origin,
// point 1 free, displaced beyond the spring's rest length so every
// simulator family has real spring work to do.
func twoPointObject() *core.Object {
	points := core.NewPoints(2)
	points.SetPosition(0, core.Vec2{X: 0, Y: 0})
	points.SetMass(0, 1)
	points.SetMaterialStiffness(0, 100)
	points.SetFrozenCoefficient(0, 0) // frozen

	points.SetPosition(1, core.Vec2{X: 1.5, Y: 0})
	points.SetMass(1, 1)
	points.SetMaterialStiffness(1, 100)
	points.SetFrozenCoefficient(1, 1) // free

	springs := core.NewSprings(1)
	springs.SetEndpoints(0, 0, 1)
	springs.SetRestLength(0, 1.0)
	springs.SetMaterialStiffness(0, 100)

	points.AddConnectedSpring(0, 0, 1)
	points.AddConnectedSpring(1, 0, 0)

	return &core.Object{Name: "two-point", Points: points, Springs: springs}
}

func noGravityParameters() Parameters {
	p := DefaultParameters()
	p.GravityAdjustment = 0
	return p
}

func TestNames_IncludesEveryRegisteredSimulator(t *testing.T) {
	want := []string{
		"classic", "fs-base", "fs-by-point", "fs-by-point-compact",
		"fs-by-point-compact-integrating", "fs-by-spring-intrinsics",
		"fs-by-spring-structural-intrinsics", "fs-by-spring-structural-mt",
		"fs-by-spring-structural-mt-vectorized", "gauss-seidel-by-point",
		"position-based-basic", "fast-mss-basic",
	}
	names := make(map[string]bool)
	for _, n := range Names() {
		names[n] = true
	}
	for _, w := range want {
		if !names[w] {
			t.Errorf("expected %q to be a registered simulator", w)
		}
	}
}

func TestNew_UnknownSimulatorErrors(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Close()
	obj := twoPointObject()
	_, err := New("does-not-exist", obj, DefaultParameters(), pool)
	if err == nil {
		t.Fatal("expected an error for an unknown simulator name")
	}
}

func TestSimulators_FrozenPointNeverMoves(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Close()
	params := noGravityParameters()

	for _, name := range Names() {
		name := name
		t.Run(name, func(t *testing.T) {
			obj := twoPointObject()
			simulator, err := New(name, obj, params, pool)
			if err != nil {
				t.Fatalf("New(%q): %v", name, err)
			}
			for step := 0; step < 10; step++ {
				simulator.Update(obj, float64(step)*float64(params.TimeStepDuration), params, pool)
			}
			pos := obj.Points.Position(0)
			if pos.X != 0 || pos.Y != 0 {
				t.Errorf("%s: expected frozen point to stay at origin, got %v", name, pos)
			}
		})
	}
}

func TestSimulators_FreePointMovesTowardRestLength(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Close()
	params := noGravityParameters()

	for _, name := range Names() {
		name := name
		t.Run(name, func(t *testing.T) {
			obj := twoPointObject()
			simulator, err := New(name, obj, params, pool)
			if err != nil {
				t.Fatalf("New(%q): %v", name, err)
			}
			startDist := obj.Points.Position(1).Sub(obj.Points.Position(0)).Length()
			for step := 0; step < 30; step++ {
				simulator.Update(obj, float64(step)*float64(params.TimeStepDuration), params, pool)
			}
			endPos := obj.Points.Position(1)
			if math.IsNaN(float64(endPos.X)) || math.IsNaN(float64(endPos.Y)) {
				t.Fatalf("%s: point position became NaN", name)
			}
			endDist := endPos.Sub(obj.Points.Position(0)).Length()
			if endDist >= startDist {
				t.Errorf("%s: expected distance to shrink toward rest length (start %v), got %v", name, startDist, endDist)
			}
		})
	}
}

func TestSetParameter_RejectsUnknownKey(t *testing.T) {
	p := DefaultParameters()
	if err := SetParameter(&p, "not_a_real_key", 1); err == nil {
		t.Error("expected an error for an unknown parameter key")
	}
}

func TestSetParameter_RejectsOutOfRange(t *testing.T) {
	p := DefaultParameters()
	if err := SetParameter(&p, "global_damping", 5); err == nil {
		t.Error("expected an error for an out-of-range value")
	}
}

func TestSetParameter_AppliesInRangeValue(t *testing.T) {
	p := DefaultParameters()
	if err := SetParameter(&p, "time_step_duration", 0.02); err != nil {
		t.Fatalf("SetParameter: %v", err)
	}
	if p.TimeStepDuration != 0.02 {
		t.Errorf("expected time step 0.02, got %v", p.TimeStepDuration)
	}
}

func TestParameterNames_NonEmpty(t *testing.T) {
	if len(ParameterNames()) == 0 {
		t.Error("expected at least one recognized parameter name")
	}
}

func TestDefaultParameters_AllWithinRange(t *testing.T) {
	defaults := DefaultParameters()
	checks := map[string]float64{
		"time_step_duration":                 float64(defaults.TimeStepDuration),
		"mass_adjustment":                     float64(defaults.MassAdjustment),
		"gravity_adjustment":                  float64(defaults.GravityAdjustment),
		"global_damping":                      float64(defaults.GlobalDamping),
		"spring_stiffness_coefficient":        float64(defaults.SpringStiffnessCoefficient),
		"spring_damping_coefficient":          float64(defaults.SpringDampingCoefficient),
		"num_mechanical_dynamics_iterations":  float64(defaults.NumMechanicalDynamicsIterations),
		"spring_reduction_fraction":           float64(defaults.SpringReductionFraction),
		"num_update_iterations":               float64(defaults.NumUpdateIterations),
		"num_solver_iterations":               float64(defaults.NumSolverIterations),
		"spring_stiffness":                    float64(defaults.PBDSpringStiffness),
		"num_local_global_step_iterations":    float64(defaults.NumLocalGlobalStepIterations),
	}
	for key, v := range checks {
		p := DefaultParameters()
		if err := SetParameter(&p, key, v); err != nil {
			t.Errorf("default value for %q rejected: %v", key, err)
		}
	}
}
