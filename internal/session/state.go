package session

import "time"

// Phase is the controller's current position in the interview.
type Phase string

const (
	PhaseGreeting      Phase = "GREETING"
	PhaseScreening     Phase = "SCREENING"
	PhaseQualification Phase = "QUALIFICATION"
	PhaseScheduling    Phase = "SCHEDULING"
	PhaseAlternative   Phase = "ALTERNATIVE"
	PhaseTerminal      Phase = "TERMINAL"
)

// Outcome is the terminal result of a session. Empty until the state is sealed.
type Outcome string

const (
	OutcomeCompleted      Outcome = "completed"
	OutcomeUnclear        Outcome = "unclear"
	OutcomeIrrelevant     Outcome = "irrelevant"
	OutcomeIncomplete     Outcome = "incomplete"
	OutcomeEscalated      Outcome = "escalated"
	OutcomeVoicemail      Outcome = "voicemail"
	OutcomeNotInterested  Outcome = "not_interested"
	OutcomeKnockoutFailed Outcome = "knockout_failed"
)

// QuestionResult is the finalized classification of one knockout answer.
type QuestionResult string

const (
	ResultPass               QuestionResult = "pass"
	ResultFail               QuestionResult = "fail"
	ResultUnclear            QuestionResult = "unclear"
	ResultIrrelevant         QuestionResult = "irrelevant"
	ResultRecruiterRequested QuestionResult = "recruiter_requested"
)

// KnockoutAnswer records one finalized knockout question.
// PreKnown marks answers synthesized from the candidate record without
// asking the question.
type KnockoutAnswer struct {
	QuestionID    string         `json:"question_id"`
	QuestionText  string         `json:"question_text"`
	Result        QuestionResult `json:"result"`
	RawAnswer     string         `json:"raw_answer"`
	CandidateNote string         `json:"candidate_note,omitempty"`
	PreKnown      bool           `json:"pre_known,omitempty"`
}

// OpenAnswer records one open question's summarized answer.
type OpenAnswer struct {
	QuestionID    string `json:"question_id"`
	QuestionText  string `json:"question_text"`
	Summary       string `json:"summary"`
	CandidateNote string `json:"candidate_note,omitempty"`
}

// Utterance is one transcript line, either side of the conversation.
type Utterance struct {
	Role string `json:"role"` // "agent" or "candidate"
	Text string `json:"text"`
}

// PhaseChange records one controller transition for the session history.
type PhaseChange struct {
	From  Phase     `json:"from"`
	To    Phase     `json:"to"`
	Event string    `json:"event"`
	At    time.Time `json:"at"`
}

// State is the mutable per-session state. It is owned exclusively by one
// controller instance and mutated only by the controller and the synchronous
// loop/evaluator calls it makes; once sealed it must not change.
type State struct {
	Input *Input

	Phase        Phase
	ConsentGiven *bool

	// IrrelevantCount is the session-wide trolling counter. It only
	// increases; crossing Policy.IrrelevanceLimit forces the irrelevant
	// outcome from any phase.
	IrrelevantCount int

	KnockoutAnswers []KnockoutAnswer
	OpenAnswers     []OpenAnswer

	PassedKnockout           bool
	InterestedInAlternatives bool

	ChosenTimeslot       string
	SchedulingPreference string

	Transcript []Utterance
	History    []PhaseChange

	Outcome   Outcome
	StartedAt time.Time
	EndedAt   time.Time

	sealed bool
}

// NewState creates the initial state for a session input.
func NewState(in *Input) *State {
	return &State{
		Input:     in,
		Phase:     PhaseGreeting,
		StartedAt: time.Now().UTC(),
	}
}

// NoteIrrelevant increments the irrelevance counter and reports whether the
// limit has been reached. The counter never decreases.
func (s *State) NoteIrrelevant(limit int) bool {
	s.IrrelevantCount++
	return s.IrrelevantCount >= limit
}

// Sealed reports whether a terminal outcome has been set.
func (s *State) Sealed() bool { return s.sealed }

// Seal sets the terminal outcome and freezes the state. Only the first call
// has any effect; a session has exactly one terminal outcome.
func (s *State) Seal(outcome Outcome) {
	if s.sealed {
		return
	}
	s.sealed = true
	s.Outcome = outcome
	s.Phase = PhaseTerminal
	s.EndedAt = time.Now().UTC()
}

// Say appends an agent utterance to the transcript.
func (s *State) Say(text string) {
	s.Transcript = append(s.Transcript, Utterance{Role: "agent", Text: text})
}

// Hear appends a candidate utterance to the transcript.
func (s *State) Hear(text string) {
	s.Transcript = append(s.Transcript, Utterance{Role: "candidate", Text: text})
}

// Record is the immutable snapshot of a finished session, the only externally
// observable output of the core.
type Record struct {
	CallID        string `json:"call_id"`
	CandidateName string `json:"candidate_name"`
	JobTitle      string `json:"job_title"`

	Outcome      Outcome `json:"outcome"`
	ConsentGiven *bool   `json:"consent_given,omitempty"`

	KnockoutAnswers []KnockoutAnswer `json:"knockout_answers"`
	OpenAnswers     []OpenAnswer     `json:"open_answers"`

	PassedKnockout           bool `json:"passed_knockout"`
	InterestedInAlternatives bool `json:"interested_in_alternatives"`

	ChosenTimeslot       string `json:"chosen_timeslot,omitempty"`
	SchedulingPreference string `json:"scheduling_preference,omitempty"`

	IrrelevantCount int `json:"irrelevant_count"`

	Transcript []Utterance   `json:"transcript,omitempty"`
	History    []PhaseChange `json:"history,omitempty"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// Snapshot deep-copies the state into a Record. Call after Seal; later state
// mutations (there should be none) cannot affect the returned record.
func (s *State) Snapshot() *Record {
	rec := &Record{
		Outcome:                  s.Outcome,
		PassedKnockout:           s.PassedKnockout,
		InterestedInAlternatives: s.InterestedInAlternatives,
		ChosenTimeslot:           s.ChosenTimeslot,
		SchedulingPreference:     s.SchedulingPreference,
		IrrelevantCount:          s.IrrelevantCount,
		StartedAt:                s.StartedAt,
		EndedAt:                  s.EndedAt,
	}
	if s.Input != nil {
		rec.CallID = s.Input.CallID
		rec.CandidateName = s.Input.CandidateName
		rec.JobTitle = s.Input.JobTitle
	}
	if s.ConsentGiven != nil {
		v := *s.ConsentGiven
		rec.ConsentGiven = &v
	}
	rec.KnockoutAnswers = append([]KnockoutAnswer(nil), s.KnockoutAnswers...)
	rec.OpenAnswers = append([]OpenAnswer(nil), s.OpenAnswers...)
	rec.Transcript = append([]Utterance(nil), s.Transcript...)
	rec.History = append([]PhaseChange(nil), s.History...)
	return rec
}
