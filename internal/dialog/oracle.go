package dialog

import (
	"context"

	"prescreen/internal/session"
)

// KnockoutVerdict classifies one candidate turn against a yes/no question.
// Pass, Fail, Unclear and Irrelevant are final classifications; Clarification
// and Recruiter are conversational signals the evaluator handles before a
// final classification exists.
type KnockoutVerdict string

const (
	VerdictPass          KnockoutVerdict = "pass"
	VerdictFail          KnockoutVerdict = "fail"
	VerdictUnclear       KnockoutVerdict = "unclear"
	VerdictIrrelevant    KnockoutVerdict = "irrelevant"
	VerdictClarification KnockoutVerdict = "clarification"
	VerdictRecruiter     KnockoutVerdict = "recruiter"
)

// KnockoutReading is the oracle's reading of one knockout turn. Summary is a
// short restatement of what the candidate said (never invented); Note carries
// a candidate question the oracle could not answer from context, kept for the
// recruiter.
type KnockoutReading struct {
	Verdict KnockoutVerdict
	Summary string
	Note    string
}

// GreetingVerdict classifies the candidate's reaction to the greeting.
type GreetingVerdict string

const (
	GreetReady      GreetingVerdict = "ready"
	GreetDeclined   GreetingVerdict = "declined"
	GreetVoicemail  GreetingVerdict = "voicemail"
	GreetUnclear    GreetingVerdict = "unclear"
	GreetIrrelevant GreetingVerdict = "irrelevant"
	GreetRecruiter  GreetingVerdict = "recruiter"
)

// GreetingReading is the oracle's reading of the greeting turn. Consent is
// set only when the turn carried an explicit consent statement.
type GreetingReading struct {
	Verdict GreetingVerdict
	Consent *bool
}

// Affirmation classifies a plain yes/no follow-up: the fail double
// confirmation and the alternative-openings interest check.
type Affirmation string

const (
	AffirmYes        Affirmation = "yes"
	AffirmNo         Affirmation = "no"
	AffirmUnclear    Affirmation = "unclear"
	AffirmIrrelevant Affirmation = "irrelevant"
)

// SlotVerdict classifies the candidate's reaction to a batch of proposed
// timeslots.
type SlotVerdict string

const (
	SlotAccepted     SlotVerdict = "accepted"
	SlotNone         SlotVerdict = "none"
	SlotCannotAttend SlotVerdict = "cannot_attend"
	SlotUnclear      SlotVerdict = "unclear"
	SlotIrrelevant   SlotVerdict = "irrelevant"
)

// SlotReading is the oracle's reading of one scheduling turn. Index points
// into the proposed batch when accepted; Preference carries the candidate's
// stated day preference (or their verbatim statement for cannot_attend).
type SlotReading struct {
	Verdict    SlotVerdict
	Index      int
	Preference string
}

// QA is one prior question/answer pair, passed as small structured context.
type QA struct {
	Question string
	Answer   string
}

// Intent names an utterance the core wants composed.
type Intent string

const (
	IntentGreeting        Intent = "greeting"
	IntentAskKnockout     Intent = "ask_knockout"
	IntentRepromptYesNo   Intent = "reprompt_yes_no"
	IntentConfirmFail     Intent = "confirm_fail"
	IntentClarify         Intent = "clarify"
	IntentNoteAck         Intent = "note_ack"
	IntentSilenceProbe    Intent = "silence_probe"
	IntentAskOpen         Intent = "ask_open"
	IntentAlternative     Intent = "alternative_offer"
	IntentProposeSlots    Intent = "propose_slots"
	IntentAskPreference   Intent = "ask_preference"
	IntentConfirmSlot     Intent = "confirm_slot"
	IntentExistingBooking Intent = "existing_booking"
	IntentClosing         Intent = "closing"
)

// PromptContext is the small structured context handed to Compose and the
// greeting classifier.
type PromptContext struct {
	CandidateName  string
	JobTitle       string
	OfficeLocation string
	OfficeAddress  string
	RequireConsent bool

	Knockout *session.KnockoutQuestion
	Open     *session.OpenQuestion

	// Answer is the candidate text being reacted to: the negative answer
	// being restated for confirmation, or the clarifying question being
	// answered.
	Answer string

	Slots       []string
	BookingDate string
	Outcome     session.Outcome
}

// Oracle produces natural-language utterances and classifies candidate
// answers. Implementations must be pure from the caller's perspective (no
// shared mutable state), deterministic for identical inputs, and must map an
// unconfident classification to unclear rather than guessing pass or fail.
// A remote language model is the intended production implementation;
// RuleOracle is the deterministic local tier.
type Oracle interface {
	ClassifyGreeting(ctx context.Context, answer string, pc PromptContext) (GreetingReading, error)
	ClassifyKnockout(ctx context.Context, q session.KnockoutQuestion, answer string, history []QA) (KnockoutReading, error)
	ClassifyOpen(ctx context.Context, q session.OpenQuestion, answer string) (string, error)
	ClassifyAffirmation(ctx context.Context, prompt, answer string) (Affirmation, error)
	ClassifySlots(ctx context.Context, proposals []string, answer string) (SlotReading, error)
	Compose(ctx context.Context, intent Intent, pc PromptContext) (string, error)
}
