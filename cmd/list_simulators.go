package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/springlab/internal/sim"
	"github.com/spf13/cobra"
)

var listSimulatorsCmd = &cobra.Command{
	Use:   "list-simulators",
	Short: "List the registered integrator names",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME")
		for _, name := range sim.Names() {
			fmt.Fprintln(w, name)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listSimulatorsCmd)
}
