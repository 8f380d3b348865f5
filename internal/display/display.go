// Package display provides human-readable names for machine codes and the
// table rendering used by the CLI.
//
// Rule: code is for machines, words are for humans. Use these functions in
// CLI output and reports; keep raw codes for JSON fields and comparisons.
package display

import (
	"fmt"
	"time"

	"prescreen/internal/session"
)

var outcomes = map[session.Outcome]string{
	session.OutcomeCompleted:      "Completed",
	session.OutcomeUnclear:        "Unclear",
	session.OutcomeIrrelevant:     "Irrelevant",
	session.OutcomeIncomplete:     "Incomplete",
	session.OutcomeEscalated:      "Escalated to Recruiter",
	session.OutcomeVoicemail:      "Voicemail",
	session.OutcomeNotInterested:  "Not Interested",
	session.OutcomeKnockoutFailed: "Knockout Failed",
}

// Outcome returns the human-readable name for a terminal outcome.
// Unknown codes are returned as-is.
func Outcome(o session.Outcome) string {
	if name, ok := outcomes[o]; ok {
		return name
	}
	return string(o)
}

var phases = map[session.Phase]string{
	session.PhaseGreeting:      "Greeting",
	session.PhaseScreening:     "Screening",
	session.PhaseQualification: "Qualification",
	session.PhaseScheduling:    "Scheduling",
	session.PhaseAlternative:   "Alternative Openings",
	session.PhaseTerminal:      "Terminal",
}

// Phase returns the human-readable name for a conversation phase.
func Phase(p session.Phase) string {
	if name, ok := phases[p]; ok {
		return name
	}
	return string(p)
}

var results = map[session.QuestionResult]string{
	session.ResultPass:               "Pass",
	session.ResultFail:               "Fail",
	session.ResultUnclear:            "Unclear",
	session.ResultIrrelevant:         "Irrelevant",
	session.ResultRecruiterRequested: "Recruiter Requested",
}

// Result returns the human-readable name for a knockout question result.
func Result(r session.QuestionResult) string {
	if name, ok := results[r]; ok {
		return name
	}
	return string(r)
}

// FmtDuration formats a duration as "Xm Ys" or "Ys".
func FmtDuration(d time.Duration) string {
	s := int(d.Seconds())
	if s >= 60 {
		return fmt.Sprintf("%dm %ds", s/60, s%60)
	}
	return fmt.Sprintf("%ds", s)
}

// Truncate shortens s to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// BoolMark returns "✓" for true and "✗" for false.
func BoolMark(v bool) string {
	if v {
		return "✓"
	}
	return "✗"
}
