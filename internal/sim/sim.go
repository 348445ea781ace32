package sim

import (
	"fmt"

	"github.com/cwbudde/springlab/internal/core"
	"github.com/cwbudde/springlab/internal/workerpool"
)

// Simulator is the trait every integrator family implements (spec.md §4.5).
// OnStateChanged recomputes whatever per-object/per-parameter caches the
// simulator keeps (spring k_eff, factored system matrices, ...); it must be
// called again whenever the object or the relevant parameters change.
// Update advances the object by one macro step of params.TimeStepDuration.
type Simulator interface {
	OnStateChanged(object *core.Object, params Parameters, pool *workerpool.Pool)
	Update(object *core.Object, tNow float64, params Parameters, pool *workerpool.Pool)
}

// Factory constructs a Simulator for a freshly loaded object.
type Factory func(object *core.Object, params Parameters, pool *workerpool.Pool) Simulator

// registry maps the name the controller and CLI select by to a Factory.
var registry = map[string]Factory{
	"classic":                             newClassicSimulator,
	"fs-base":                             newClassicSimulator,
	"fs-by-point":                         newByPointSimulator,
	"fs-by-point-compact":                 newByPointCompactSimulator,
	"fs-by-point-compact-integrating":     newByPointCompactIntegratingSimulator,
	"fs-by-spring-intrinsics":             newBySpringIntrinsicsSimulator,
	"fs-by-spring-structural-intrinsics":  newBySpringStructuralIntrinsicsSimulator,
	"fs-by-spring-structural-mt":          newBySpringStructuralMTSimulator,
	"fs-by-spring-structural-mt-vectorized": newBySpringStructuralMTVectorizedSimulator,
	"gauss-seidel-by-point":               newGaussSeidelSimulator,
	"position-based-basic":                newPositionBasedBasicSimulator,
	"fast-mss-basic":                      newFastMSSSimulator,
}

// Names returns every registered simulator name, for listing and validation.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// New constructs the named simulator and runs its initial OnStateChanged.
func New(name string, object *core.Object, params Parameters, pool *workerpool.Pool) (Simulator, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("sim: unknown simulator %q", name)
	}
	s := factory(object, params, pool)
	s.OnStateChanged(object, params, pool)
	return s, nil
}
