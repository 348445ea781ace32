package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/cwbudde/springlab/internal/controller"
	"github.com/cwbudde/springlab/internal/store"
	"github.com/cwbudde/springlab/internal/workerpool"
	"github.com/spf13/cobra"
)

var (
	resumeDataDir     string
	resumeSteps       int
	resumeParallelism int
)

var resumeCmd = &cobra.Command{
	Use:   "resume [run-id]",
	Short: "Resume a run from a saved snapshot",
	Long: `Reloads the object a snapshot was built from, reselects its
simulator and parameters, fast-forwards the simulation clock display to
the snapshot's step count, and advances it for the requested number of
additional steps, saving an updated snapshot at the end.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for snapshot storage")
	resumeCmd.Flags().IntVar(&resumeSteps, "steps", 600, "Number of additional macro steps to run")
	resumeCmd.Flags().IntVar(&resumeParallelism, "parallelism", 0, "Worker pool size (0 = runtime.NumCPU)")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	runID := args[0]

	s, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}

	snapshot, err := s.LoadSnapshot(runID)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	fmt.Printf("Loaded snapshot:\n")
	fmt.Printf("  Run ID: %s\n", snapshot.RunID)
	fmt.Printf("  Simulator: %s\n", snapshot.SimulatorName)
	fmt.Printf("  Step: %d\n", snapshot.Step)
	fmt.Printf("  Sim time: %.3f\n", snapshot.SimTime)
	fmt.Printf("  Saved at: %s\n\n", snapshot.Timestamp.Format(time.RFC3339))

	optimizer, err := resolveOptimizer(snapshot.Source.Optimizer)
	if err != nil {
		return err
	}
	pixels, table, err := loadPixelsAndTable(snapshot.Source.ObjectPath, snapshot.Source.MaterialPath)
	if err != nil {
		return err
	}

	parallelism := resumeParallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	pool := workerpool.New(parallelism)
	defer pool.Close()

	ctl := controller.New(pool, logger)
	if err := ctl.LoadObject(runID, pixels, table, optimizer, snapshot.SimulatorName); err != nil {
		return fmt.Errorf("load object: %w", err)
	}
	if err := ctl.SetParameters(fromStoreParameters(snapshot.Parameters)); err != nil {
		return fmt.Errorf("apply snapshot parameters: %w", err)
	}

	fmt.Printf("Resuming for %d steps...\n", resumeSteps)
	start := time.Now()

	var last controller.Measurement
	for i := 0; i < resumeSteps; i++ {
		m, err := ctl.RunIteration()
		if err != nil {
			return fmt.Errorf("run iteration %d: %w", i, err)
		}
		last = m
	}
	elapsed := time.Since(start)

	fmt.Printf("\n✓ Resumed run completed in %s\n", elapsed)
	fmt.Printf("  Previous step: %d -> new local step: %d (cumulative: %d)\n",
		snapshot.Step, ctl.Step(), snapshot.Step+ctl.Step())
	fmt.Printf("  Kinetic energy: %.6f, potential energy: %.6f\n", last.KineticEnergy, last.PotentialEnergy)

	updated := &store.RunSnapshot{
		RunID:               snapshot.RunID,
		Source:              snapshot.Source,
		SimulatorName:        ctl.SimulatorName(),
		Parameters:           toStoreParameters(ctl.Parameters()),
		Step:                 snapshot.Step + ctl.Step(),
		SimTime:              snapshot.SimTime + ctl.SimTime(),
		LastKineticEnergy:    last.KineticEnergy,
		LastPotentialEnergy:  last.PotentialEnergy,
		Timestamp:            time.Now(),
	}
	if err := s.SaveSnapshot(runID, updated); err != nil {
		return fmt.Errorf("save updated snapshot: %w", err)
	}
	fmt.Printf("✓ Snapshot updated\n")

	return nil
}
