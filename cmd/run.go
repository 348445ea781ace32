package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/cwbudde/springlab/internal/controller"
	"github.com/cwbudde/springlab/internal/sim"
	"github.com/cwbudde/springlab/internal/store"
	"github.com/cwbudde/springlab/internal/workerpool"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	runObjectPath  string
	runMaterial    string
	runOptimizer   string
	runSimulator   string
	runSteps       int
	runParallelism int
	runDataDir     string
	runTracePath   string
	runRunID       string
	runConfigPath  string
	runCpuProfile  string
	runMemProfile  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Advance a loaded object through a fixed number of simulation steps",
	Long: `Loads a structural-layer raster and material table, builds the
mass-spring object, selects an integrator and advances it for a fixed
number of steps, printing a final measurement and optionally saving a
resumable run snapshot and a per-step measurement trace.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runObjectPath, "object", "", "Structural-layer PNG path (required)")
	runCmd.Flags().StringVar(&runMaterial, "materials", "", "Material table JSON path (required)")
	runCmd.Flags().StringVar(&runOptimizer, "optimizer", "structural", "Layout optimizer: identity or structural")
	runCmd.Flags().StringVar(&runSimulator, "simulator", "classic", "Integrator name (see list-simulators)")
	runCmd.Flags().IntVar(&runSteps, "steps", 600, "Number of macro steps to run")
	runCmd.Flags().IntVar(&runParallelism, "parallelism", runtime.NumCPU(), "Worker pool size")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "./data", "Base directory for snapshots and traces")
	runCmd.Flags().StringVar(&runTracePath, "trace", "", "If set to any non-empty value, writes a per-step trace.jsonl under data-dir")
	runCmd.Flags().StringVar(&runRunID, "run-id", "", "Run identifier for snapshot/trace storage (default: a generated UUID)")
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Optional JSON file of simulation parameters, overriding the defaults")
	runCmd.Flags().StringVar(&runCpuProfile, "cpuprofile", "", "Write CPU profile to file")
	runCmd.Flags().StringVar(&runMemProfile, "memprofile", "", "Write memory profile to file")

	runCmd.MarkFlagRequired("object")
	runCmd.MarkFlagRequired("materials")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if runCpuProfile != "" {
		f, err := os.Create(runCpuProfile)
		if err != nil {
			return fmt.Errorf("create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	optimizer, err := resolveOptimizer(runOptimizer)
	if err != nil {
		return err
	}
	pixels, table, err := loadPixelsAndTable(runObjectPath, runMaterial)
	if err != nil {
		return err
	}

	pool := workerpool.New(runParallelism)
	defer pool.Close()

	ctl := controller.New(pool, logger)
	objectName := filepath.Base(runObjectPath)
	if err := ctl.LoadObject(objectName, pixels, table, optimizer, runSimulator); err != nil {
		return fmt.Errorf("load object: %w", err)
	}

	if runConfigPath != "" {
		params, err := loadParametersFile(runConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := ctl.SetParameters(params); err != nil {
			return fmt.Errorf("apply config: %w", err)
		}
	}

	if runRunID == "" {
		runRunID = uuid.NewString()
	}

	var tracer *store.TraceWriter
	if runTracePath != "" {
		tracer, err = store.NewTraceWriter(runDataDir, runRunID, false)
		if err != nil {
			return fmt.Errorf("open trace writer: %w", err)
		}
		defer tracer.Close()
	}

	start := time.Now()
	var last controller.Measurement
	for i := 0; i < runSteps; i++ {
		m, err := ctl.RunIteration()
		if err != nil {
			return fmt.Errorf("run iteration %d: %w", i, err)
		}
		last = m
		if tracer != nil {
			entry := store.TraceEntry{
				Step:              m.Step,
				SimTime:           m.SimTime,
				StepDurationNanos: int64(m.StepDuration),
				KineticEnergy:     m.KineticEnergy,
				PotentialEnergy:   m.PotentialEnergy,
				Timestamp:         time.Now(),
			}
			if m.BendingProbeOffset != nil {
				x, y := float64(m.BendingProbeOffset.X), float64(m.BendingProbeOffset.Y)
				entry.BendingProbeOffsetX = &x
				entry.BendingProbeOffsetY = &y
			}
			if err := tracer.Write(entry); err != nil {
				logger.Warn("trace write failed", "error", err)
			}
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("simulator=%s steps=%d elapsed=%s avg_step=%s ke=%.6f pe=%.6f\n",
		ctl.SimulatorName(), runSteps, elapsed, last.AvgStepDuration, last.KineticEnergy, last.PotentialEnergy)

	fsStore, err := store.NewFSStore(runDataDir)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	params := ctl.Parameters()
	snapshot := &store.RunSnapshot{
		RunID: runRunID,
		Source: store.ObjectSource{
			ObjectPath:   runObjectPath,
			MaterialPath: runMaterial,
			Optimizer:    runOptimizer,
		},
		SimulatorName:       ctl.SimulatorName(),
		Parameters:          toStoreParameters(params),
		Step:                ctl.Step(),
		SimTime:             ctl.SimTime(),
		LastKineticEnergy:   last.KineticEnergy,
		LastPotentialEnergy: last.PotentialEnergy,
		Timestamp:           time.Now(),
	}
	if err := fsStore.SaveSnapshot(runRunID, snapshot); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	fmt.Printf("run-id=%s\n", runRunID)

	if runMemProfile != "" {
		f, err := os.Create(runMemProfile)
		if err != nil {
			return fmt.Errorf("create memory profile: %w", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("write memory profile: %w", err)
		}
	}

	return nil
}

// loadParametersFile reads a sim.Parameters override from JSON, using
// store.SimulationParameters' tagged fields as the wire shape so the file
// format matches what a saved snapshot's "parameters" section looks like.
func loadParametersFile(path string) (sim.Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sim.Parameters{}, fmt.Errorf("read parameters file: %w", err)
	}
	params := toStoreParameters(sim.DefaultParameters())
	if err := json.Unmarshal(data, &params); err != nil {
		return sim.Parameters{}, fmt.Errorf("parse parameters file: %w", err)
	}
	return fromStoreParameters(params), nil
}

func toStoreParameters(p sim.Parameters) store.SimulationParameters {
	return store.SimulationParameters{
		TimeStepDuration:                float64(p.TimeStepDuration),
		MassAdjustment:                  float64(p.MassAdjustment),
		GravityAdjustment:               float64(p.GravityAdjustment),
		GlobalDamping:                   float64(p.GlobalDamping),
		SpringStiffnessCoefficient:      float64(p.SpringStiffnessCoefficient),
		SpringDampingCoefficient:        float64(p.SpringDampingCoefficient),
		NumMechanicalDynamicsIterations: p.NumMechanicalDynamicsIterations,
		SpringReductionFraction:         float64(p.SpringReductionFraction),
		NumUpdateIterations:             p.NumUpdateIterations,
		NumSolverIterations:             p.NumSolverIterations,
		PBDSpringStiffness:              float64(p.PBDSpringStiffness),
		NumLocalGlobalStepIterations:    p.NumLocalGlobalStepIterations,
	}
}

func fromStoreParameters(p store.SimulationParameters) sim.Parameters {
	return sim.Parameters{
		TimeStepDuration:                float32(p.TimeStepDuration),
		MassAdjustment:                  float32(p.MassAdjustment),
		GravityAdjustment:               float32(p.GravityAdjustment),
		GlobalDamping:                   float32(p.GlobalDamping),
		SpringStiffnessCoefficient:      float32(p.SpringStiffnessCoefficient),
		SpringDampingCoefficient:        float32(p.SpringDampingCoefficient),
		NumMechanicalDynamicsIterations: p.NumMechanicalDynamicsIterations,
		SpringReductionFraction:         float32(p.SpringReductionFraction),
		NumUpdateIterations:             p.NumUpdateIterations,
		NumSolverIterations:             p.NumSolverIterations,
		PBDSpringStiffness:              float32(p.PBDSpringStiffness),
		NumLocalGlobalStepIterations:    p.NumLocalGlobalStepIterations,
	}
}
