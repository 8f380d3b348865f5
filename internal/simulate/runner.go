package simulate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/sync/errgroup"

	"prescreen/internal/dialog"
	"prescreen/internal/display"
	"prescreen/internal/interview"
	"prescreen/internal/logging"
	"prescreen/internal/schedule"
	"prescreen/internal/session"
)

// Result is one scenario run: the final record plus any expectation
// mismatches.
type Result struct {
	Scenario *Scenario
	Record   *session.Record
	Failures []string
}

// Passed reports whether every expectation held.
func (r Result) Passed() bool { return len(r.Failures) == 0 }

// Runner executes scenarios against the rule oracle and an in-process slot
// directory pinned to a fixed clock, so runs are reproducible.
type Runner struct {
	// Parallel bounds concurrent scenario runs; 0 means sequential.
	Parallel int
	// Clock pins the slot directory's notion of now. Defaults to a fixed
	// Monday so proposed weekdays never drift.
	Clock func() time.Time
}

// referenceNow is an arbitrary fixed Monday morning.
var referenceNow = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

func (r *Runner) clock() func() time.Time {
	if r.Clock != nil {
		return r.Clock
	}
	return func() time.Time { return referenceNow }
}

// RunOne executes a single scenario end to end.
func (r *Runner) RunOne(ctx context.Context, sc *Scenario) Result {
	dir := schedule.NewWeekdayDirectory()
	dir.Clock = r.clock()

	in := sc.Input
	ctrl := interview.New(interview.Config{
		Input:     &in,
		Policy:    session.DefaultPolicy(),
		Channel:   NewScriptedChannel(sc.Script),
		Oracle:    dialog.RuleOracle{},
		Directory: dir,
		SessionID: sc.Name,
	})
	rec := ctrl.Run(ctx)
	return Result{Scenario: sc, Record: rec, Failures: sc.Expect.Check(rec)}
}

// RunAll executes all scenarios, bounded by Parallel, and returns results in
// scenario order. Individual failures are expectation mismatches, not errors;
// only context cancellation stops the run early.
func (r *Runner) RunAll(ctx context.Context, scs []*Scenario) []Result {
	log := logging.New("simulate")
	results := make([]Result, len(scs))

	g, gctx := errgroup.WithContext(ctx)
	if r.Parallel > 0 {
		g.SetLimit(r.Parallel)
	} else {
		g.SetLimit(1)
	}
	for i, sc := range scs {
		i, sc := i, sc
		g.Go(func() error {
			results[i] = r.RunOne(gctx, sc)
			log.Info("scenario finished", "scenario", sc.Name,
				"outcome", string(results[i].Record.Outcome), "passed", results[i].Passed())
			return nil
		})
	}
	_ = g.Wait() // failures live in the results
	return results
}

// Report renders a verdict table over the results.
func Report(results []Result) string {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"Scenario", "Outcome", "Verdict", "Mismatches"})
	passed := 0
	for _, r := range results {
		verdict := "PASS"
		if !r.Passed() {
			verdict = "FAIL"
		} else {
			passed++
		}
		w.AppendRow(table.Row{
			r.Scenario.Name,
			display.Outcome(r.Record.Outcome),
			verdict,
			display.Truncate(strings.Join(r.Failures, "; "), 60),
		})
	}
	w.AppendFooter(table.Row{"", "", "passed", fmt.Sprintf("%d/%d", passed, len(results))})
	return w.Render()
}
