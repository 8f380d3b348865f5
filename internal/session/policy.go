package session

import "time"

// Policy holds the tunable bounds of the conversation. The defaults are
// representative, not product-final; deployments override per campaign.
type Policy struct {
	// IrrelevanceLimit is the session-wide trolling cutoff. Reaching it
	// forces the irrelevant outcome regardless of phase.
	IrrelevanceLimit int

	// UnclearRetries bounds re-prompts for an answer that classifies as
	// unclear before the question finalizes as unclear.
	UnclearRetries int

	// IrrelevantRetries bounds re-asks of the same question after an
	// irrelevant answer before the question finalizes as irrelevant.
	IrrelevantRetries int

	// SilenceTimeout is one silence stage for yes/no questions: first
	// expiry triggers a gentle re-prompt, second ends the session.
	SilenceTimeout time.Duration

	// OpenSilenceTimeout is the per-stage timeout for open questions,
	// longer because candidates need thinking time.
	OpenSilenceTimeout time.Duration

	// MaxTurnsPerQuestion force-finalizes a question as unclear after this
	// many candidate turns, whatever they contained.
	MaxTurnsPerQuestion int

	// SlotProposals is how many timeslots are proposed per batch.
	SlotProposals int

	// MaxSlotLookups bounds directory lookups (the initial batch plus
	// preference-driven re-queries) before scheduling soft-completes with
	// only a recorded preference.
	MaxSlotLookups int

	// OracleRetryBackoff is the wait before the single retry of a failed
	// oracle call.
	OracleRetryBackoff time.Duration

	// AlternativeQuestions is the reduced fixed question set used when a
	// knocked-out candidate is interested in other openings.
	AlternativeQuestions []OpenQuestion

	// VoicemailMessage is left verbatim when an answering machine is
	// detected; no live closing is composed in that case.
	VoicemailMessage string
}

// Normalize fills every zero field from DefaultPolicy and returns the
// result. A caller-supplied policy keeps the fields it set.
func (p Policy) Normalize() Policy {
	def := DefaultPolicy()
	if p.IrrelevanceLimit == 0 {
		p.IrrelevanceLimit = def.IrrelevanceLimit
	}
	if p.UnclearRetries == 0 {
		p.UnclearRetries = def.UnclearRetries
	}
	if p.IrrelevantRetries == 0 {
		p.IrrelevantRetries = def.IrrelevantRetries
	}
	if p.SilenceTimeout == 0 {
		p.SilenceTimeout = def.SilenceTimeout
	}
	if p.OpenSilenceTimeout == 0 {
		p.OpenSilenceTimeout = def.OpenSilenceTimeout
	}
	if p.MaxTurnsPerQuestion == 0 {
		p.MaxTurnsPerQuestion = def.MaxTurnsPerQuestion
	}
	if p.SlotProposals == 0 {
		p.SlotProposals = def.SlotProposals
	}
	if p.MaxSlotLookups == 0 {
		p.MaxSlotLookups = def.MaxSlotLookups
	}
	if p.OracleRetryBackoff == 0 {
		p.OracleRetryBackoff = def.OracleRetryBackoff
	}
	if p.AlternativeQuestions == nil {
		p.AlternativeQuestions = def.AlternativeQuestions
	}
	if p.VoicemailMessage == "" {
		p.VoicemailMessage = def.VoicemailMessage
	}
	return p
}

// DefaultPolicy returns the representative defaults.
func DefaultPolicy() Policy {
	return Policy{
		IrrelevanceLimit:    2,
		UnclearRetries:      1,
		IrrelevantRetries:   1,
		SilenceTimeout:      6 * time.Second,
		OpenSilenceTimeout:  10 * time.Second,
		MaxTurnsPerQuestion: 4,
		SlotProposals:       3,
		MaxSlotLookups:      2,
		OracleRetryBackoff:  500 * time.Millisecond,
		AlternativeQuestions: []OpenQuestion{
			{ID: "alt_region", Prompt: "Which region are you looking for work in?", Description: "Preferred work region"},
			{ID: "alt_hours", Prompt: "Are you looking for full-time, part-time or flex work?", Description: "Employment type"},
			{ID: "alt_sector", Prompt: "Do you have experience in a particular sector, for example logistics, production or retail?", Description: "Sector experience"},
		},
		VoicemailMessage: "Hello, this is an automated call about your recent application. We will try to reach you again later.",
	}
}
