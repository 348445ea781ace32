package main

import (
	"fmt"
	"math"
	"path/filepath"
	"runtime"
	"time"

	"github.com/cwbudde/springlab/internal/controller"
	"github.com/cwbudde/springlab/internal/core"
	"github.com/cwbudde/springlab/internal/workerpool"
	"github.com/spf13/cobra"
)

var (
	benchObjectPath  string
	benchMaterial    string
	benchOptimizer   string
	benchSimulatorA  string
	benchSimulatorB  string
	benchSteps       int
	benchParallelism int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Compare two integrators on the same object",
	Long: `Runs two simulators independently on freshly built, identical
copies of the same object for the same number of steps, and reports each
one's throughput and their final-position divergence (the RMS distance
between corresponding points) as a quick stability/accuracy sanity check.`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().StringVar(&benchObjectPath, "object", "", "Structural-layer PNG path (required)")
	benchCmd.Flags().StringVar(&benchMaterial, "materials", "", "Material table JSON path (required)")
	benchCmd.Flags().StringVar(&benchOptimizer, "optimizer", "structural", "Layout optimizer: identity or structural")
	benchCmd.Flags().StringVar(&benchSimulatorA, "simulator-a", "classic", "First integrator name")
	benchCmd.Flags().StringVar(&benchSimulatorB, "simulator-b", "fs-by-point", "Second integrator name")
	benchCmd.Flags().IntVar(&benchSteps, "steps", 600, "Number of macro steps to run")
	benchCmd.Flags().IntVar(&benchParallelism, "parallelism", runtime.NumCPU(), "Worker pool size")

	benchCmd.MarkFlagRequired("object")
	benchCmd.MarkFlagRequired("materials")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	optimizer, err := resolveOptimizer(benchOptimizer)
	if err != nil {
		return err
	}
	pixels, table, err := loadPixelsAndTable(benchObjectPath, benchMaterial)
	if err != nil {
		return err
	}
	objectName := filepath.Base(benchObjectPath)

	pool := workerpool.New(benchParallelism)
	defer pool.Close()

	ctlA := controller.New(pool, logger)
	if err := ctlA.LoadObject(objectName, pixels, table, optimizer, benchSimulatorA); err != nil {
		return fmt.Errorf("load object for %s: %w", benchSimulatorA, err)
	}
	ctlB := controller.New(pool, logger)
	if err := ctlB.LoadObject(objectName, pixels, table, optimizer, benchSimulatorB); err != nil {
		return fmt.Errorf("load object for %s: %w", benchSimulatorB, err)
	}

	startA := time.Now()
	for i := 0; i < benchSteps; i++ {
		if _, err := ctlA.RunIteration(); err != nil {
			return fmt.Errorf("%s iteration %d: %w", benchSimulatorA, i, err)
		}
	}
	elapsedA := time.Since(startA)

	startB := time.Now()
	for i := 0; i < benchSteps; i++ {
		if _, err := ctlB.RunIteration(); err != nil {
			return fmt.Errorf("%s iteration %d: %w", benchSimulatorB, i, err)
		}
	}
	elapsedB := time.Since(startB)

	divergence := rmsPositionDivergence(ctlA, ctlB)

	fmt.Printf("%-30s steps=%d elapsed=%s steps/sec=%.1f\n", benchSimulatorA, benchSteps, elapsedA, float64(benchSteps)/elapsedA.Seconds())
	fmt.Printf("%-30s steps=%d elapsed=%s steps/sec=%.1f\n", benchSimulatorB, benchSteps, elapsedB, float64(benchSteps)/elapsedB.Seconds())
	fmt.Printf("rms_position_divergence=%.6f\n", divergence)

	return nil
}

// rmsPositionDivergence reports the RMS distance between the two
// controllers' point positions, a quick check of how far two integrators
// drift apart over the same number of steps on the same starting object.
func rmsPositionDivergence(a, b *controller.Controller) float64 {
	objA, objB := a.Object(), b.Object()
	n := objA.Points.Count()
	if n == 0 || n != objB.Points.Count() {
		return math.NaN()
	}
	var sumSq float64
	for i := 0; i < n; i++ {
		idx := core.ElementIndex(i)
		pi := objA.Points.Position(idx)
		pj := objB.Points.Position(idx)
		d := pi.Sub(pj)
		sumSq += float64(d.Dot(d))
	}
	return math.Sqrt(sumSq / float64(n))
}
