// Package interview owns the session controller: the finite state machine
// that drives one candidate conversation Greeting -> Screening ->
// Qualification -> (Scheduling | Alternative) -> Terminal, owns the
// session-wide counters, and emits exactly one result record per session.
package interview

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"prescreen/internal/dialog"
	"prescreen/internal/logging"
	"prescreen/internal/qualify"
	"prescreen/internal/schedule"
	"prescreen/internal/screening"
	"prescreen/internal/session"
)

// ResultSink receives the final immutable snapshot, exactly once per
// session, at Terminal. Durability is the sink's own responsibility.
type ResultSink interface {
	Record(ctx context.Context, rec *session.Record) error
}

// Config wires one controller. Channel, Oracle and Input are required;
// Directory may be nil when scheduling can never be reached or is always
// pre-booked; Sink may be nil (the record is still returned from Run).
type Config struct {
	Input     *session.Input
	Policy    session.Policy
	Channel   dialog.Channel
	Oracle    dialog.Oracle
	Directory schedule.Directory
	Sink      ResultSink
	SessionID string
}

// Controller runs one session on one goroutine. All state mutation happens
// on that goroutine; sessions share nothing.
type Controller struct {
	cfg Config
	st  *session.State
	log *slog.Logger

	// altTrack marks that qualification runs the reduced alternative
	// question set and terminates instead of moving to scheduling.
	altTrack bool

	// failedQuestion keeps the knockout prompt that ended screening, for
	// the alternative-openings offer.
	failedQuestion string
}

// New builds a controller, filling policy and session ID defaults.
func New(cfg Config) *Controller {
	cfg.Policy = cfg.Policy.Normalize()
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	return &Controller{
		cfg: cfg,
		log: logging.New("interview").With("session", cfg.SessionID),
	}
}

// Run drives the session to a terminal outcome. It always returns a sealed
// record and always invokes the sink exactly once, whatever happened on the
// way — cancellation, disconnect and oracle failure degrade to terminal
// outcomes, never to a lost session.
func (c *Controller) Run(ctx context.Context) *session.Record {
	c.st = session.NewState(c.cfg.Input)

	for c.st.Phase != session.PhaseTerminal {
		from := c.st.Phase
		var ev Event
		switch from {
		case session.PhaseGreeting:
			ev = c.runGreeting(ctx)
		case session.PhaseScreening:
			ev = c.runScreening(ctx)
		case session.PhaseQualification:
			ev = c.runQualification(ctx)
		case session.PhaseAlternative:
			ev = c.runAlternative(ctx)
		case session.PhaseScheduling:
			ev = c.runScheduling(ctx)
		default:
			ev = EvCancelled
		}
		c.advance(from, ev)
	}

	c.sayClosing(ctx)

	rec := c.st.Snapshot()
	if c.cfg.Sink != nil {
		// Fire-and-forget: a sink failure must not affect the session.
		if err := c.cfg.Sink.Record(context.WithoutCancel(ctx), rec); err != nil {
			c.log.Error("result sink failed", "error", err)
		}
	}
	c.log.Info("session finished", "outcome", string(rec.Outcome),
		"knockouts", len(rec.KnockoutAnswers), "open", len(rec.OpenAnswers))
	return rec
}

// advance applies one transition and seals the state on Terminal.
func (c *Controller) advance(from session.Phase, ev Event) {
	to, ok := next(from, ev)
	if !ok {
		// An event the table does not know is a programming error; fail
		// safe toward incomplete rather than spinning.
		c.log.Error("unroutable event", "phase", string(from), "event", string(ev))
		to = session.PhaseTerminal
	}
	c.st.History = append(c.st.History, session.PhaseChange{
		From: from, To: to, Event: string(ev), At: time.Now().UTC(),
	})
	c.log.Info("phase transition", "from", string(from), "to", string(to), "event", string(ev))
	if to == session.PhaseTerminal {
		c.st.Seal(terminalOutcome(from, ev))
		return
	}
	c.st.Phase = to
}

// absorb adds evaluator-reported irrelevant turns to the session counter and
// reports whether the global limit is now reached.
func (c *Controller) absorb(n int) bool {
	limit := false
	for i := 0; i < n; i++ {
		limit = c.st.NoteIrrelevant(c.cfg.Policy.IrrelevanceLimit)
	}
	return limit
}

func (c *Controller) trace(role, text string) {
	if role == "agent" {
		c.st.Say(text)
	} else {
		c.st.Hear(text)
	}
}

func (c *Controller) promptContext() dialog.PromptContext {
	in := c.cfg.Input
	return dialog.PromptContext{
		CandidateName:  in.CandidateName,
		JobTitle:       in.JobTitle,
		OfficeLocation: in.OfficeLocation,
		OfficeAddress:  in.OfficeAddress,
		RequireConsent: in.RequireConsent,
	}
}

// say composes and sends one controller-level utterance; false means the
// transport is gone.
func (c *Controller) say(ctx context.Context, intent dialog.Intent, pc dialog.PromptContext) bool {
	text, err := c.cfg.Oracle.Compose(ctx, intent, pc)
	if err != nil || text == "" {
		c.log.Warn("compose failed", "intent", string(intent), "error", err)
		return true
	}
	c.st.Say(text)
	return c.cfg.Channel.Send(ctx, text) == nil
}

// sayClosing speaks the outcome-specific goodbye. Incomplete sessions have
// no channel left to speak into; voicemail already got its canned message.
func (c *Controller) sayClosing(ctx context.Context) {
	switch c.st.Outcome {
	case session.OutcomeIncomplete, session.OutcomeVoicemail:
		return
	}
	pc := c.promptContext()
	pc.Outcome = c.st.Outcome
	c.say(ctx, dialog.IntentClosing, pc)
}

// awaitTurn is the shared controller-level receive with two-stage silence.
func (c *Controller) awaitTurn(ctx context.Context) (string, Event, bool) {
	silences := 0
	for {
		ev := c.cfg.Channel.Await(ctx, c.cfg.Policy.SilenceTimeout)
		switch ev.Kind {
		case dialog.KindTurn:
			c.st.Hear(ev.Turn.Text)
			return ev.Turn.Text, "", true
		case dialog.KindSilence:
			silences++
			if silences >= 2 {
				return "", EvSilence, false
			}
			if !c.say(ctx, dialog.IntentSilenceProbe, c.promptContext()) {
				return "", EvDisconnected, false
			}
		case dialog.KindDisconnected:
			return "", EvDisconnected, false
		case dialog.KindCancelled:
			return "", EvCancelled, false
		}
	}
}

// runGreeting opens the call, collects consent when required, and reads
// whether the candidate is available, declining, or an answering machine.
func (c *Controller) runGreeting(ctx context.Context) Event {
	pc := c.promptContext()
	if !c.say(ctx, dialog.IntentGreeting, pc) {
		return EvDisconnected
	}

	reprompts := 0
	for turns := 0; turns < c.cfg.Policy.MaxTurnsPerQuestion; turns++ {
		answer, ev, ok := c.awaitTurn(ctx)
		if !ok {
			return ev
		}

		reading, _ := c.cfg.Oracle.ClassifyGreeting(ctx, answer, pc)
		if reading.Consent != nil {
			c.st.ConsentGiven = reading.Consent
		}
		if c.cfg.Input.RequireConsent && reading.Consent != nil && !*reading.Consent {
			return EvDeclined
		}

		switch reading.Verdict {
		case dialog.GreetReady:
			return EvReady
		case dialog.GreetDeclined:
			return EvDeclined
		case dialog.GreetVoicemail:
			// Leave the canned message; nobody live is listening.
			c.st.Say(c.cfg.Policy.VoicemailMessage)
			_ = c.cfg.Channel.Send(ctx, c.cfg.Policy.VoicemailMessage)
			return EvVoicemail
		case dialog.GreetRecruiter:
			if c.cfg.Input.AllowEscalation {
				return EvEscalated
			}
			if !c.say(ctx, dialog.IntentGreeting, pc) {
				return EvDisconnected
			}
		case dialog.GreetIrrelevant:
			if c.absorb(1) {
				return EvIrrelevanceLimit
			}
			if !c.say(ctx, dialog.IntentGreeting, pc) {
				return EvDisconnected
			}
		default: // unclear
			if reprompts >= c.cfg.Policy.UnclearRetries {
				return EvDeclined
			}
			reprompts++
			if !c.say(ctx, dialog.IntentGreeting, pc) {
				return EvDisconnected
			}
		}
	}
	return EvDeclined
}

func (c *Controller) runScreening(ctx context.Context) Event {
	loop := &screening.Loop{
		Channel: c.cfg.Channel,
		Oracle:  c.cfg.Oracle,
		Policy:  c.cfg.Policy,
		Trace:   c.trace,
		Log:     c.log,
	}
	budget := c.cfg.Policy.IrrelevanceLimit - c.st.IrrelevantCount
	res := loop.Run(ctx, c.cfg.Input, budget)

	c.st.KnockoutAnswers = append(c.st.KnockoutAnswers, res.Answers...)
	c.absorb(res.IrrelevantTurns)

	switch res.Signal {
	case screening.SigAllPassed:
		c.st.PassedKnockout = true
		return EvAllPassed
	case screening.SigFailed:
		if res.FailedQuestion != nil {
			c.failedQuestion = res.FailedQuestion.Prompt
		}
		return EvKnockoutFailed
	case screening.SigUnclear:
		return EvUnclear
	case screening.SigRecruiter:
		return EvEscalated
	case screening.SigIrrelevant, screening.SigIrrelevanceLimit:
		// A question finalized irrelevant ends the session even when the
		// global limit was not strictly crossed mid-question.
		return EvIrrelevanceLimit
	case screening.SigSilence:
		return EvSilence
	case screening.SigDisconnected:
		return EvDisconnected
	default:
		return EvCancelled
	}
}

func (c *Controller) runQualification(ctx context.Context) Event {
	questions := c.cfg.Input.OpenQuestions
	done := EvQualified
	if c.altTrack {
		questions = c.cfg.Policy.AlternativeQuestions
		done = EvAltQualified
	}

	loop := &qualify.Loop{
		Channel: c.cfg.Channel,
		Oracle:  c.cfg.Oracle,
		Policy:  c.cfg.Policy,
		Trace:   c.trace,
		Log:     c.log,
	}
	res := loop.Run(ctx, questions)
	c.st.OpenAnswers = append(c.st.OpenAnswers, res.Answers...)

	switch res.Abort {
	case qualify.AbortSilence:
		return EvSilence
	case qualify.AbortDisconnected:
		return EvDisconnected
	case qualify.AbortCancelled:
		return EvCancelled
	}
	return done
}

// runAlternative offers other openings after a knockout fail.
func (c *Controller) runAlternative(ctx context.Context) Event {
	pc := c.promptContext()
	pc.Answer = c.failedQuestion
	if !c.say(ctx, dialog.IntentAlternative, pc) {
		return EvDisconnected
	}

	reprompts := 0
	for turns := 0; turns < c.cfg.Policy.MaxTurnsPerQuestion; turns++ {
		answer, ev, ok := c.awaitTurn(ctx)
		if !ok {
			return ev
		}
		aff, _ := c.cfg.Oracle.ClassifyAffirmation(ctx, "interested in other openings", answer)
		switch aff {
		case dialog.AffirmYes:
			c.st.InterestedInAlternatives = true
			c.altTrack = true
			return EvAltInterested
		case dialog.AffirmNo:
			return EvAltDeclined
		case dialog.AffirmIrrelevant:
			if c.absorb(1) {
				return EvIrrelevanceLimit
			}
			if !c.say(ctx, dialog.IntentAlternative, pc) {
				return EvDisconnected
			}
		default:
			if reprompts >= c.cfg.Policy.UnclearRetries {
				return EvAltDeclined
			}
			reprompts++
			if !c.say(ctx, dialog.IntentAlternative, pc) {
				return EvDisconnected
			}
		}
	}
	return EvAltDeclined
}

func (c *Controller) runScheduling(ctx context.Context) Event {
	if booking, ok := c.cfg.Input.ExistingBooking(); ok {
		pc := c.promptContext()
		pc.BookingDate = booking
		c.st.ChosenTimeslot = booking
		if !c.say(ctx, dialog.IntentExistingBooking, pc) {
			return EvDisconnected
		}
		return EvScheduled
	}

	neg := &schedule.Negotiator{
		Channel:           c.cfg.Channel,
		Oracle:            c.cfg.Oracle,
		Directory:         c.cfg.Directory,
		Policy:            c.cfg.Policy,
		SessionID:         c.cfg.SessionID,
		IrrelevanceBudget: c.cfg.Policy.IrrelevanceLimit - c.st.IrrelevantCount,
		Trace:             c.trace,
		Log:               c.log,
	}
	res := neg.Run(ctx, c.promptContext())
	c.absorb(res.IrrelevantTurns)

	switch res.Abort {
	case schedule.AbortIrrelevanceLimit:
		return EvIrrelevanceLimit
	case schedule.AbortSilence:
		return EvSilence
	case schedule.AbortDisconnected:
		return EvDisconnected
	case schedule.AbortCancelled:
		return EvCancelled
	}

	if res.Slot != nil {
		c.st.ChosenTimeslot = res.Slot.Spoken
	} else {
		c.st.SchedulingPreference = res.Preference
	}
	return EvScheduled
}
