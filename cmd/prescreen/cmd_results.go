package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"prescreen/internal/display"
	"prescreen/internal/session"
	"prescreen/internal/store"
)

var resultsFlags struct {
	dbPath  string
	outcome string
	callID  string
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List stored session results, or show one session in full",
	RunE:  runResults,
}

func init() {
	resultsCmd.Flags().StringVar(&resultsFlags.dbPath, "db", store.DefaultDBPath, "Results DB path")
	resultsCmd.Flags().StringVar(&resultsFlags.outcome, "outcome", "", "Filter by terminal outcome (completed, knockout_failed, ...)")
	resultsCmd.Flags().StringVar(&resultsFlags.callID, "call", "", "Show the full record for one call ID")
}

func runResults(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(resultsFlags.dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := cmd.Context()

	if resultsFlags.callID != "" {
		rec, err := st.Get(ctx, resultsFlags.callID)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("no session with call ID %q", resultsFlags.callID)
		}
		fmt.Println(display.RecordDetail(rec))
		return nil
	}

	var recs []*session.Record
	if resultsFlags.outcome != "" {
		recs, err = st.ListByOutcome(ctx, session.Outcome(resultsFlags.outcome))
	} else {
		recs, err = st.List(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Println(display.RecordsTable(recs))
	return nil
}
