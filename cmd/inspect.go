package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/springlab/internal/core"
	"github.com/cwbudde/springlab/internal/report"
	"github.com/spf13/cobra"
)

var (
	inspectObjectPath string
	inspectMaterial   string
	inspectOptimizer  string
	inspectHTMLReport string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Build an object and print its structural statistics",
	Long: `Builds the mass-spring object from a structural-layer raster and
material table, without running any simulation steps, and reports point
and spring counts, perfect-square coverage and frozen-point counts. With
--html-report, also writes a standalone HTML summary.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectObjectPath, "object", "", "Structural-layer PNG path (required)")
	inspectCmd.Flags().StringVar(&inspectMaterial, "materials", "", "Material table JSON path (required)")
	inspectCmd.Flags().StringVar(&inspectOptimizer, "optimizer", "structural", "Layout optimizer: identity or structural")
	inspectCmd.Flags().StringVar(&inspectHTMLReport, "html-report", "", "If set, writes an HTML summary to this path")

	inspectCmd.MarkFlagRequired("object")
	inspectCmd.MarkFlagRequired("materials")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	optimizer, err := resolveOptimizer(inspectOptimizer)
	if err != nil {
		return err
	}
	pixels, table, err := loadPixelsAndTable(inspectObjectPath, inspectMaterial)
	if err != nil {
		return err
	}

	objectName := filepath.Base(inspectObjectPath)
	object, err := core.Build(objectName, pixels, table, optimizer)
	if err != nil {
		return fmt.Errorf("build object: %w", err)
	}

	frozen := 0
	for i := 0; i < object.Points.Count(); i++ {
		if object.Points.IsFrozen(core.ElementIndex(i)) {
			frozen++
		}
	}

	summary := report.Summary{
		ObjectName:         objectName,
		SimulatorName:      "(none selected)",
		PointCount:         object.Points.Count(),
		SpringCount:        object.Springs.Count(),
		PerfectSquareCount: object.Structure.PerfectSquareCount,
		FrozenPointCount:   frozen,
	}

	fmt.Printf("object=%s points=%d springs=%d perfect_squares=%d frozen=%d\n",
		summary.ObjectName, summary.PointCount, summary.SpringCount,
		summary.PerfectSquareCount, summary.FrozenPointCount)

	if inspectHTMLReport != "" {
		f, err := os.Create(inspectHTMLReport)
		if err != nil {
			return fmt.Errorf("create html report: %w", err)
		}
		defer f.Close()
		if err := report.Page(summary).Render(context.Background(), f); err != nil {
			return fmt.Errorf("render html report: %w", err)
		}
		fmt.Printf("wrote %s\n", inspectHTMLReport)
	}

	return nil
}
