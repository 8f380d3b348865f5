package display

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"prescreen/internal/session"
)

func newTable() table.Writer {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	return w
}

// RecordsTable renders the session list as a fixed-width terminal table.
func RecordsTable(recs []*session.Record) string {
	w := newTable()
	w.AppendHeader(table.Row{"Call", "Candidate", "Job", "Outcome", "KO", "Slot", "Duration"})
	for _, r := range recs {
		w.AppendRow(table.Row{
			Truncate(r.CallID, 12),
			Truncate(r.CandidateName, 24),
			Truncate(r.JobTitle, 24),
			Outcome(r.Outcome),
			BoolMark(r.PassedKnockout),
			Truncate(r.ChosenTimeslot, 28),
			FmtDuration(r.EndedAt.Sub(r.StartedAt)),
		})
	}
	w.AppendFooter(table.Row{"", "", "", "", "", "total", len(recs)})
	return w.Render()
}

// RecordDetail renders one full session record, answers and transcript
// included.
func RecordDetail(rec *session.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Call %s — %s, %s\n", rec.CallID, rec.CandidateName, rec.JobTitle)
	fmt.Fprintf(&b, "Outcome: %s", Outcome(rec.Outcome))
	if rec.ConsentGiven != nil {
		fmt.Fprintf(&b, "  Consent: %s", BoolMark(*rec.ConsentGiven))
	}
	fmt.Fprintf(&b, "  Irrelevant turns: %d\n", rec.IrrelevantCount)
	if rec.ChosenTimeslot != "" {
		fmt.Fprintf(&b, "Interview: %s\n", rec.ChosenTimeslot)
	}
	if rec.SchedulingPreference != "" {
		fmt.Fprintf(&b, "Scheduling preference: %s\n", rec.SchedulingPreference)
	}

	if len(rec.KnockoutAnswers) > 0 {
		w := newTable()
		w.AppendHeader(table.Row{"Knockout Question", "Result", "Answer", "Note"})
		w.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, WidthMax: 44},
			{Number: 3, WidthMax: 36},
			{Number: 4, WidthMax: 30},
		})
		for _, a := range rec.KnockoutAnswers {
			answer := a.RawAnswer
			if a.PreKnown {
				answer = "(from candidate record)"
			}
			w.AppendRow(table.Row{a.QuestionText, Result(a.Result), answer, a.CandidateNote})
		}
		b.WriteString(w.Render())
		b.WriteByte('\n')
	}

	if len(rec.OpenAnswers) > 0 {
		w := newTable()
		w.AppendHeader(table.Row{"Open Question", "Summary"})
		w.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, WidthMax: 44},
			{Number: 2, WidthMax: 60},
		})
		for _, a := range rec.OpenAnswers {
			w.AppendRow(table.Row{a.QuestionText, a.Summary})
		}
		b.WriteString(w.Render())
		b.WriteByte('\n')
	}

	if len(rec.Transcript) > 0 {
		b.WriteString("Transcript:\n")
		for _, u := range rec.Transcript {
			fmt.Fprintf(&b, "  %-9s | %s\n", u.Role, u.Text)
		}
	}
	return b.String()
}
