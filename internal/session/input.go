// Package session holds the data model for one screening conversation:
// the immutable SessionInput supplied at session start, the mutable State
// owned by the controller, the sealed Record handed to the result sink,
// and the Policy of tunable bounds.
package session

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KnockoutQuestion is a mandatory yes/no eligibility question.
// Context is background knowledge for answering candidate clarifications;
// it is never read out spontaneously.
type KnockoutQuestion struct {
	ID      string `json:"id" yaml:"id"`
	Prompt  string `json:"prompt" yaml:"prompt"`
	DataKey string `json:"data_key,omitempty" yaml:"data_key,omitempty"`
	Context string `json:"context,omitempty" yaml:"context,omitempty"`
}

// OpenQuestion is a free-text question whose answer is recorded for the
// recruiter but never disqualifies the candidate.
type OpenQuestion struct {
	ID          string `json:"id" yaml:"id"`
	Prompt      string `json:"prompt" yaml:"prompt"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// CandidateRecord is pre-known candidate data from the CRM. Known answers are
// keyed by KnockoutQuestion.DataKey and let the screening loop skip questions;
// an existing booking date lets the controller skip scheduling entirely.
type CandidateRecord struct {
	KnownAnswers        map[string]string `json:"known_answers,omitempty" yaml:"known_answers,omitempty"`
	ExistingBookingDate string            `json:"existing_booking_date,omitempty" yaml:"existing_booking_date,omitempty"`
}

// Input is the full configuration for one screening session. It is built
// upstream (vacancy lookup, question generation, CRM lookup) and never
// mutated after session start.
type Input struct {
	CallID string `json:"call_id" yaml:"call_id"`

	CandidateName  string           `json:"candidate_name" yaml:"candidate_name"`
	CandidateKnown bool             `json:"candidate_known,omitempty" yaml:"candidate_known,omitempty"`
	Record         *CandidateRecord `json:"candidate_record,omitempty" yaml:"candidate_record,omitempty"`

	JobTitle       string `json:"job_title" yaml:"job_title"`
	OfficeLocation string `json:"office_location,omitempty" yaml:"office_location,omitempty"`
	OfficeAddress  string `json:"office_address,omitempty" yaml:"office_address,omitempty"`

	Knockouts     []KnockoutQuestion `json:"knockout_questions" yaml:"knockout_questions"`
	OpenQuestions []OpenQuestion     `json:"open_questions" yaml:"open_questions"`

	AllowEscalation bool `json:"allow_escalation" yaml:"allow_escalation"`
	RequireConsent  bool `json:"require_consent" yaml:"require_consent"`
}

// LoadInput reads a session input from a YAML (or JSON) file.
func LoadInput(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session input: %w", err)
	}
	var in Input
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parse session input %s: %w", path, err)
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("session input %s: %w", path, err)
	}
	return &in, nil
}

// Validate checks structural requirements: non-empty prompts and unique
// question IDs across both lists.
func (in *Input) Validate() error {
	seen := make(map[string]bool)
	for _, q := range in.Knockouts {
		if q.ID == "" || q.Prompt == "" {
			return fmt.Errorf("knockout question needs id and prompt (id=%q)", q.ID)
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
	}
	for _, q := range in.OpenQuestions {
		if q.ID == "" || q.Prompt == "" {
			return fmt.Errorf("open question needs id and prompt (id=%q)", q.ID)
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}

// KnownAnswer returns the pre-known answer for a knockout question, if any.
// Only pass-type pre-known answers are trusted; a pre-known value is always
// treated as a pass, never as a fail.
func (in *Input) KnownAnswer(q KnockoutQuestion) (string, bool) {
	if in.Record == nil || !in.CandidateKnown || q.DataKey == "" {
		return "", false
	}
	v, ok := in.Record.KnownAnswers[q.DataKey]
	return v, ok
}

// AllKnockoutsKnown reports whether every knockout question with a data key
// already has a pre-known answer, i.e. screening can be skipped wholesale.
func (in *Input) AllKnockoutsKnown() bool {
	if in.Record == nil || !in.CandidateKnown || len(in.Knockouts) == 0 {
		return false
	}
	for _, q := range in.Knockouts {
		if q.DataKey == "" {
			return false
		}
		if _, ok := in.Record.KnownAnswers[q.DataKey]; !ok {
			return false
		}
	}
	return true
}

// ExistingBooking returns the pre-existing scheduled slot, if any.
func (in *Input) ExistingBooking() (string, bool) {
	if in.Record == nil || !in.CandidateKnown || in.Record.ExistingBookingDate == "" {
		return "", false
	}
	return in.Record.ExistingBookingDate, true
}
