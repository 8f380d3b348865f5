package interview

import "prescreen/internal/session"

// Event is what a phase run reports back to the controller. The transition
// tables below are the single source of truth for phase routing: a phase
// function computes an Event, advance() looks it up.
type Event string

const (
	EvReady            Event = "candidate_ready"
	EvDeclined         Event = "candidate_declined"
	EvVoicemail        Event = "voicemail_detected"
	EvAllPassed        Event = "knockouts_passed"
	EvKnockoutFailed   Event = "knockout_failed"
	EvUnclear          Event = "unclear"
	EvEscalated        Event = "recruiter_requested"
	EvQualified        Event = "open_questions_done"
	EvAltQualified     Event = "alternative_questions_done"
	EvAltInterested    Event = "alternative_interested"
	EvAltDeclined      Event = "alternative_declined"
	EvScheduled        Event = "scheduling_done"
	EvSilence          Event = "silence"
	EvDisconnected     Event = "disconnected"
	EvCancelled        Event = "cancelled"
	EvIrrelevanceLimit Event = "irrelevance_limit"
)

type transitionKey struct {
	from  session.Phase
	event Event
}

// phaseTransitions routes phase-specific events. Events absent here fall
// through to anyPhase.
var phaseTransitions = map[transitionKey]session.Phase{
	{session.PhaseGreeting, EvReady}:     session.PhaseScreening,
	{session.PhaseGreeting, EvDeclined}:  session.PhaseTerminal,
	{session.PhaseGreeting, EvVoicemail}: session.PhaseTerminal,
	{session.PhaseGreeting, EvEscalated}: session.PhaseTerminal,
	// In Greeting, persistent silence means the candidate is unreachable,
	// not that an interview broke off halfway.
	{session.PhaseGreeting, EvSilence}: session.PhaseTerminal,

	{session.PhaseScreening, EvAllPassed}:      session.PhaseQualification,
	{session.PhaseScreening, EvKnockoutFailed}: session.PhaseAlternative,
	{session.PhaseScreening, EvUnclear}:        session.PhaseTerminal,
	{session.PhaseScreening, EvEscalated}:      session.PhaseTerminal,

	{session.PhaseQualification, EvQualified}:    session.PhaseScheduling,
	{session.PhaseQualification, EvAltQualified}: session.PhaseTerminal,

	{session.PhaseScheduling, EvScheduled}: session.PhaseTerminal,

	{session.PhaseAlternative, EvAltInterested}: session.PhaseQualification,
	{session.PhaseAlternative, EvAltDeclined}:   session.PhaseTerminal,
}

// anyPhase routes session-wide terminal events, valid from every phase.
var anyPhase = map[Event]session.Phase{
	EvSilence:          session.PhaseTerminal,
	EvDisconnected:     session.PhaseTerminal,
	EvCancelled:        session.PhaseTerminal,
	EvIrrelevanceLimit: session.PhaseTerminal,
	EvUnclear:          session.PhaseTerminal,
}

// terminalOutcomes maps a (phase, event) arriving at Terminal onto the
// session outcome.
func terminalOutcome(from session.Phase, ev Event) session.Outcome {
	switch ev {
	case EvVoicemail:
		return session.OutcomeVoicemail
	case EvDeclined:
		return session.OutcomeNotInterested
	case EvEscalated:
		return session.OutcomeEscalated
	case EvUnclear:
		return session.OutcomeUnclear
	case EvIrrelevanceLimit:
		return session.OutcomeIrrelevant
	case EvDisconnected, EvCancelled:
		return session.OutcomeIncomplete
	case EvSilence:
		if from == session.PhaseGreeting {
			return session.OutcomeNotInterested
		}
		return session.OutcomeIncomplete
	case EvAltDeclined:
		return session.OutcomeKnockoutFailed
	case EvScheduled, EvAltQualified:
		return session.OutcomeCompleted
	}
	return session.OutcomeIncomplete
}

// next resolves the transition for an event in a phase.
func next(from session.Phase, ev Event) (session.Phase, bool) {
	if to, ok := phaseTransitions[transitionKey{from, ev}]; ok {
		return to, true
	}
	if to, ok := anyPhase[ev]; ok {
		return to, true
	}
	return from, false
}
