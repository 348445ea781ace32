package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/springlab/internal/store"
	"github.com/spf13/cobra"
)

var (
	snapshotDataDir string
	snapshotKeep    int
	snapshotOlder   int
	snapshotForce   bool
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Manage saved run snapshots",
	Long: `Manage run snapshots saved by the run command, including listing
and cleaning old ones. A snapshot records enough state (object source,
simulator, parameters, step and clock) to resume a run later.`,
}

var listSnapshotsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved run snapshots",
	RunE:  runListSnapshots,
}

var cleanSnapshotsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete old run snapshots",
	Long:  `Delete snapshots based on retention policy: --keep-last and/or --older-than.`,
	RunE:  runCleanSnapshots,
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)
	snapshotsCmd.AddCommand(listSnapshotsCmd)
	snapshotsCmd.AddCommand(cleanSnapshotsCmd)

	snapshotsCmd.PersistentFlags().StringVar(&snapshotDataDir, "data-dir", "./data", "Base directory for snapshot storage")

	cleanSnapshotsCmd.Flags().IntVar(&snapshotKeep, "keep-last", 0, "Keep only the N most recently saved snapshots (0 = keep all)")
	cleanSnapshotsCmd.Flags().IntVar(&snapshotOlder, "older-than", 0, "Delete snapshots older than N days (0 = no age limit)")
	cleanSnapshotsCmd.Flags().BoolVarP(&snapshotForce, "force", "f", false, "Skip confirmation prompt")
}

func runListSnapshots(cmd *cobra.Command, args []string) error {
	s, err := store.NewFSStore(snapshotDataDir)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}

	infos, err := s.ListSnapshots()
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("No snapshots found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tTIMESTAMP\tSTEP\tSIM TIME\tSIMULATOR\tOBJECT")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.3f\t%s\t%s\n",
			info.RunID,
			info.Timestamp.Format("2006-01-02 15:04:05"),
			info.Step,
			info.SimTime,
			info.SimulatorName,
			info.ObjectPath,
		)
	}
	w.Flush()
	fmt.Printf("\nTotal snapshots: %d\n", len(infos))
	return nil
}

func runCleanSnapshots(cmd *cobra.Command, args []string) error {
	if snapshotKeep == 0 && snapshotOlder == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	s, err := store.NewFSStore(snapshotDataDir)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}

	infos, err := s.ListSnapshots()
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("No snapshots to clean.")
		return nil
	}

	toDelete := selectSnapshotsForDeletion(infos, snapshotKeep, snapshotOlder)
	if len(toDelete) == 0 {
		fmt.Println("No snapshots match deletion criteria.")
		return nil
	}

	fmt.Printf("Found %d snapshot(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Printf("  - %s (step %d, %s)\n", info.RunID, info.Step, info.Timestamp.Format("2006-01-02 15:04:05"))
	}

	if !snapshotForce {
		fmt.Print("\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	deleted, failed := 0, 0
	for _, info := range toDelete {
		if err := s.DeleteSnapshot(info.RunID); err != nil {
			slog.Error("failed to delete snapshot", "run_id", info.RunID, "error", err)
			failed++
		} else {
			deleted++
		}
	}
	fmt.Printf("\nDeleted %d snapshot(s), %d failed.\n", deleted, failed)
	return nil
}

// selectSnapshotsForDeletion applies an age cutoff and/or a keep-last-N
// count to decide which snapshots to delete.
func selectSnapshotsForDeletion(infos []store.RunInfo, keepLast, olderThanDays int) []store.RunInfo {
	var toDelete []store.RunInfo

	if olderThanDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -olderThanDays)
		for _, info := range infos {
			if info.Timestamp.Before(cutoff) {
				toDelete = append(toDelete, info)
			}
		}
	}

	if keepLast > 0 && len(infos) > keepLast {
		sorted := make([]store.RunInfo, len(infos))
		copy(sorted, infos)
		for i := 0; i < len(sorted)-1; i++ {
			for j := 0; j < len(sorted)-i-1; j++ {
				if sorted[j].Timestamp.After(sorted[j+1].Timestamp) {
					sorted[j], sorted[j+1] = sorted[j+1], sorted[j]
				}
			}
		}
		numToDelete := len(sorted) - keepLast
		for i := 0; i < numToDelete; i++ {
			found := false
			for _, existing := range toDelete {
				if existing.RunID == sorted[i].RunID {
					found = true
					break
				}
			}
			if !found {
				toDelete = append(toDelete, sorted[i])
			}
		}
	}

	return toDelete
}
