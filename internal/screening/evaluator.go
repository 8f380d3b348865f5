// Package screening runs the yes/no knockout part of the interview: one
// Evaluator drives a single question to a finalized answer, and Loop
// sequences the evaluators with the early-exit branching policy.
package screening

import (
	"context"
	"log/slog"

	"prescreen/internal/dialog"
	"prescreen/internal/logging"
	"prescreen/internal/session"
)

// Abort explains why an evaluator stopped without (or while) finalizing.
type Abort int

const (
	AbortNone Abort = iota
	AbortIrrelevanceLimit
	AbortSilence
	AbortDisconnected
	AbortCancelled
)

// Result is one evaluator run: the finalized answer plus the signals the
// loop and controller act on. Evaluators never touch session state; counts
// travel back as values.
type Result struct {
	Answer          session.KnockoutAnswer
	Abort           Abort
	IrrelevantTurns int
}

// Trace receives both sides of the conversation for the transcript.
// Role is "agent" or "candidate".
type Trace func(role, text string)

// Evaluator asks one knockout question to completion.
// State machine: Asking -> AwaitingAnswer -> {Confirming | Resolved}.
type Evaluator struct {
	Channel dialog.Channel
	Oracle  dialog.Oracle
	Policy  session.Policy

	// AllowEscalation enables the recruiter-requested exit.
	AllowEscalation bool

	// IrrelevanceBudget is how many more irrelevant turns the session
	// tolerates. The evaluator aborts the moment the budget is spent,
	// before any local re-ask.
	IrrelevanceBudget int

	// History carries prior Q/A pairs as classification context.
	History []dialog.QA

	Trace Trace
	Log   *slog.Logger
}

func (e *Evaluator) logger() *slog.Logger {
	if e.Log == nil {
		e.Log = logging.New("screening")
	}
	return e.Log
}

func (e *Evaluator) trace(role, text string) {
	if e.Trace != nil {
		e.Trace(role, text)
	}
}

// say composes and sends one utterance. A send failure means the transport
// is gone and is reported as a disconnect.
func (e *Evaluator) say(ctx context.Context, intent dialog.Intent, pc dialog.PromptContext) bool {
	text, err := e.Oracle.Compose(ctx, intent, pc)
	if err != nil || text == "" {
		// Reliable oracles degrade instead of failing; a hard error here
		// still must not kill the session.
		e.logger().Warn("compose failed", "intent", string(intent), "error", err)
		return true
	}
	e.trace("agent", text)
	if err := e.Channel.Send(ctx, text); err != nil {
		e.logger().Warn("send failed", "error", err)
		return false
	}
	return true
}

// Run drives the question to completion and returns the finalized answer.
func (e *Evaluator) Run(ctx context.Context, q session.KnockoutQuestion) Result {
	res := Result{Answer: session.KnockoutAnswer{QuestionID: q.ID, QuestionText: q.Prompt}}
	pc := dialog.PromptContext{Knockout: &q}

	finalize := func(r session.QuestionResult, raw string) Result {
		res.Answer.Result = r
		res.Answer.RawAnswer = raw
		return res
	}
	lost := func(a Abort) Result {
		res.Abort = a
		res.Answer.Result = session.ResultUnclear
		return res
	}

	if !e.say(ctx, dialog.IntentAskKnockout, pc) {
		return lost(AbortDisconnected)
	}

	var (
		turns      int
		silences   int
		reprompts  int
		reasks     int
		clarified  bool
		confirming bool
		failRaw    string
	)
	confirmPrompt := q.Prompt

	for {
		ev := e.Channel.Await(ctx, e.Policy.SilenceTimeout)
		switch ev.Kind {
		case dialog.KindSilence:
			silences++
			if silences >= 2 {
				return lost(AbortSilence)
			}
			if !e.say(ctx, dialog.IntentSilenceProbe, pc) {
				return lost(AbortDisconnected)
			}
			continue
		case dialog.KindDisconnected:
			return lost(AbortDisconnected)
		case dialog.KindCancelled:
			return lost(AbortCancelled)
		}

		silences = 0
		turns++
		answer := ev.Turn.Text
		e.trace("candidate", answer)

		if confirming {
			aff, _ := e.Oracle.ClassifyAffirmation(ctx, confirmPrompt, answer)
			switch aff {
			case dialog.AffirmYes:
				return finalize(session.ResultFail, failRaw)
			case dialog.AffirmNo:
				// Reversal after double confirmation is a clean pass.
				return finalize(session.ResultPass, answer)
			case dialog.AffirmIrrelevant:
				res.IrrelevantTurns++
				if res.IrrelevantTurns >= e.IrrelevanceBudget {
					res.Abort = AbortIrrelevanceLimit
					return finalize(session.ResultIrrelevant, answer)
				}
				if !e.say(ctx, dialog.IntentConfirmFail, pc) {
					return lost(AbortDisconnected)
				}
			default:
				if reprompts < e.Policy.UnclearRetries {
					reprompts++
					if !e.say(ctx, dialog.IntentConfirmFail, pc) {
						return lost(AbortDisconnected)
					}
				} else {
					return finalize(session.ResultUnclear, answer)
				}
			}
			if turns >= e.Policy.MaxTurnsPerQuestion {
				return finalize(session.ResultUnclear, answer)
			}
			continue
		}

		reading, _ := e.Oracle.ClassifyKnockout(ctx, q, answer, e.History)
		if reading.Note != "" && res.Answer.CandidateNote == "" {
			res.Answer.CandidateNote = reading.Note
		}

		switch reading.Verdict {
		case dialog.VerdictPass:
			return finalize(session.ResultPass, summaryOr(reading.Summary, answer))

		case dialog.VerdictFail:
			// A fail is never finalized on first hearing: restate the
			// specific negative answer and require reaffirmation.
			confirming = true
			failRaw = summaryOr(reading.Summary, answer)
			pc.Answer = failRaw
			if !e.say(ctx, dialog.IntentConfirmFail, pc) {
				return lost(AbortDisconnected)
			}

		case dialog.VerdictRecruiter:
			if e.AllowEscalation {
				return finalize(session.ResultRecruiterRequested, summaryOr(reading.Summary, answer))
			}
			// Escalation disabled: steer back to the question.
			if !e.say(ctx, dialog.IntentRepromptYesNo, pc) {
				return lost(AbortDisconnected)
			}

		case dialog.VerdictClarification:
			// Answer the candidate's question once from background
			// context; it does not count toward the irrelevance budget.
			pc.Answer = answer
			intent := dialog.IntentClarify
			if clarified {
				intent = dialog.IntentNoteAck
				if res.Answer.CandidateNote == "" {
					res.Answer.CandidateNote = answer
				}
			}
			clarified = true
			if !e.say(ctx, intent, pc) {
				return lost(AbortDisconnected)
			}
			if intent == dialog.IntentNoteAck {
				if !e.say(ctx, dialog.IntentRepromptYesNo, pc) {
					return lost(AbortDisconnected)
				}
			}

		case dialog.VerdictIrrelevant:
			res.IrrelevantTurns++
			if res.IrrelevantTurns >= e.IrrelevanceBudget {
				res.Abort = AbortIrrelevanceLimit
				return finalize(session.ResultIrrelevant, answer)
			}
			if reasks < e.Policy.IrrelevantRetries {
				reasks++
				if !e.say(ctx, dialog.IntentAskKnockout, pc) {
					return lost(AbortDisconnected)
				}
			} else {
				return finalize(session.ResultIrrelevant, answer)
			}

		default: // unclear
			if reprompts < e.Policy.UnclearRetries {
				reprompts++
				if !e.say(ctx, dialog.IntentRepromptYesNo, pc) {
					return lost(AbortDisconnected)
				}
			} else {
				return finalize(session.ResultUnclear, answer)
			}
		}

		if turns >= e.Policy.MaxTurnsPerQuestion {
			return finalize(session.ResultUnclear, answer)
		}
	}
}

func summaryOr(summary, fallback string) string {
	if summary != "" {
		return summary
	}
	return fallback
}
