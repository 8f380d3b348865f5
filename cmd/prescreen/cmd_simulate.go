package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"prescreen/internal/simulate"
	"prescreen/internal/simulate/scenarios"
)

var simulateFlags struct {
	scenario string
	parallel int
	verbose  bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay the scripted scenario suite and check expected outcomes",
	Long: `Simulate runs the embedded conversation scenarios against the
deterministic oracle tier and compares the recorded results with each
scenario's expectations. A non-zero exit means at least one mismatch.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVarP(&simulateFlags.scenario, "scenario", "s", "", "Run a single scenario by name (default: all)")
	simulateCmd.Flags().IntVarP(&simulateFlags.parallel, "parallel", "p", 4, "Concurrent scenario runs")
	simulateCmd.Flags().BoolVarP(&simulateFlags.verbose, "verbose", "v", false, "Print every expectation mismatch")
	_ = simulateCmd.RegisterFlagCompletionFunc("scenario",
		func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return scenarios.List(), cobra.ShellCompDirectiveNoFileComp
		})
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	var (
		scs []*simulate.Scenario
		err error
	)
	if simulateFlags.scenario != "" {
		sc, err := scenarios.Load(simulateFlags.scenario)
		if err != nil {
			return err
		}
		scs = append(scs, sc)
	} else {
		scs, err = scenarios.LoadAll()
		if err != nil {
			return err
		}
	}

	runner := &simulate.Runner{Parallel: simulateFlags.parallel}
	results := runner.RunAll(cmd.Context(), scs)

	fmt.Println(simulate.Report(results))

	failed := 0
	for _, r := range results {
		if r.Passed() {
			continue
		}
		failed++
		if simulateFlags.verbose {
			fmt.Printf("\n%s:\n", r.Scenario.Name)
			for _, f := range r.Failures {
				fmt.Printf("  - %s\n", f)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
	}
	return nil
}
