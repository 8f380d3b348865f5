// Package simulate runs scripted end-to-end screening conversations against
// the deterministic oracle tier and checks the recorded results. It is the
// regression harness for the conversation core: no network, no language
// model, reproducible outcomes.
package simulate

import (
	"fmt"

	"prescreen/internal/session"
)

// Step is one scripted candidate reaction, consumed per controller await.
// Exactly one of Say, Silent or Hangup should be set.
type Step struct {
	Say    string `yaml:"say,omitempty"`
	Silent bool   `yaml:"silent,omitempty"`
	Hangup bool   `yaml:"hangup,omitempty"`
}

// Expect is the assertion set checked against the final record. Pointer
// fields are skipped when absent from the YAML.
type Expect struct {
	Outcome                  string  `yaml:"outcome"`
	PassedKnockout           *bool   `yaml:"passed_knockout,omitempty"`
	InterestedInAlternatives *bool   `yaml:"interested_in_alternatives,omitempty"`
	TimeslotSet              *bool   `yaml:"chosen_timeslot_set,omitempty"`
	ChosenTimeslot           *string `yaml:"chosen_timeslot,omitempty"`
	SchedulingPreference     *string `yaml:"scheduling_preference,omitempty"`
	IrrelevantCount          *int    `yaml:"irrelevant_count,omitempty"`
	KnockoutAnswers          *int    `yaml:"knockout_answers,omitempty"`
	OpenAnswers              *int    `yaml:"open_answers,omitempty"`

	// KnockoutResults pins individual question results by question ID.
	KnockoutResults map[string]string `yaml:"knockout_results,omitempty"`
}

// Scenario is one scripted conversation with its session input and
// expectations.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Input       session.Input `yaml:"input"`
	Script      []Step        `yaml:"script"`
	Expect      Expect        `yaml:"expect"`
}

// Check compares the record against the expectations and returns one failure
// string per mismatch.
func (e Expect) Check(rec *session.Record) []string {
	var fails []string
	mismatch := func(field string, got, want any) {
		fails = append(fails, fmt.Sprintf("%s: got %v, want %v", field, got, want))
	}

	if e.Outcome != "" && string(rec.Outcome) != e.Outcome {
		mismatch("outcome", rec.Outcome, e.Outcome)
	}
	if e.PassedKnockout != nil && rec.PassedKnockout != *e.PassedKnockout {
		mismatch("passed_knockout", rec.PassedKnockout, *e.PassedKnockout)
	}
	if e.InterestedInAlternatives != nil && rec.InterestedInAlternatives != *e.InterestedInAlternatives {
		mismatch("interested_in_alternatives", rec.InterestedInAlternatives, *e.InterestedInAlternatives)
	}
	if e.TimeslotSet != nil && (rec.ChosenTimeslot != "") != *e.TimeslotSet {
		mismatch("chosen_timeslot_set", rec.ChosenTimeslot != "", *e.TimeslotSet)
	}
	if e.ChosenTimeslot != nil && rec.ChosenTimeslot != *e.ChosenTimeslot {
		mismatch("chosen_timeslot", rec.ChosenTimeslot, *e.ChosenTimeslot)
	}
	if e.SchedulingPreference != nil && rec.SchedulingPreference != *e.SchedulingPreference {
		mismatch("scheduling_preference", rec.SchedulingPreference, *e.SchedulingPreference)
	}
	if e.IrrelevantCount != nil && rec.IrrelevantCount != *e.IrrelevantCount {
		mismatch("irrelevant_count", rec.IrrelevantCount, *e.IrrelevantCount)
	}
	if e.KnockoutAnswers != nil && len(rec.KnockoutAnswers) != *e.KnockoutAnswers {
		mismatch("knockout_answers", len(rec.KnockoutAnswers), *e.KnockoutAnswers)
	}
	if e.OpenAnswers != nil && len(rec.OpenAnswers) != *e.OpenAnswers {
		mismatch("open_answers", len(rec.OpenAnswers), *e.OpenAnswers)
	}
	for id, want := range e.KnockoutResults {
		found := false
		for _, a := range rec.KnockoutAnswers {
			if a.QuestionID == id {
				found = true
				if string(a.Result) != want {
					mismatch("knockout_results."+id, a.Result, want)
				}
			}
		}
		if !found {
			fails = append(fails, fmt.Sprintf("knockout_results.%s: question not answered", id))
		}
	}
	return fails
}
