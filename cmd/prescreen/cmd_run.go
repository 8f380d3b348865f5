package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"prescreen/internal/dialog"
	"prescreen/internal/display"
	"prescreen/internal/interview"
	"prescreen/internal/schedule"
	"prescreen/internal/session"
	"prescreen/internal/store"
)

var runFlags struct {
	inputPath string
	dbPath    string
	noStore   bool
	silence   time.Duration
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one screening session interactively on the terminal",
	Long: `Run drives a full screening session with you playing the candidate:
agent utterances are printed, your typed lines are the candidate turns.
Ctrl-D hangs up; staying quiet past the silence timeout behaves like a
silent candidate on a call. The finished session is stored like any other.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.inputPath, "input", "f", "", "Session input YAML file (required)")
	runCmd.Flags().StringVar(&runFlags.dbPath, "db", store.DefaultDBPath, "Results DB path")
	runCmd.Flags().BoolVar(&runFlags.noStore, "no-store", false, "Do not persist the session record")
	runCmd.Flags().DurationVar(&runFlags.silence, "silence-timeout", 30*time.Second, "Per-stage silence timeout for typed answers")
	_ = runCmd.MarkFlagRequired("input")
}

func runRun(cmd *cobra.Command, _ []string) error {
	in, err := session.LoadInput(runFlags.inputPath)
	if err != nil {
		return err
	}

	policy := session.DefaultPolicy()
	// Typing is slower than talking.
	policy.SilenceTimeout = runFlags.silence
	policy.OpenSilenceTimeout = runFlags.silence

	var sink interview.ResultSink
	if !runFlags.noStore {
		st, err := store.Open(runFlags.dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		sink = st
	}

	// SIGINT is the external-cancellation path: the session winds down to
	// an incomplete outcome and still flushes its partial record.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := dialog.NewConsole(os.Stdin, os.Stdout)
	defer console.Close()

	ctrl := interview.New(interview.Config{
		Input:     in,
		Policy:    policy,
		Channel:   console,
		Oracle:    dialog.NewReliable(dialog.RuleOracle{}, policy.OracleRetryBackoff),
		Directory: schedule.NewWeekdayDirectory(),
		Sink:      sink,
	})
	rec := ctrl.Run(ctx)

	fmt.Println()
	fmt.Println(display.RecordDetail(rec))
	return nil
}
