// Package qualify runs the open-ended qualification part of the interview.
// Open questions have no pass/fail semantics: a single answer is always
// accepted and summarized, and the loop never exits early on content.
package qualify

import (
	"context"
	"log/slog"

	"prescreen/internal/dialog"
	"prescreen/internal/logging"
	"prescreen/internal/session"
)

// Abort explains why an evaluator or loop stopped before its question list
// was exhausted. Content never aborts qualification; only the transport can.
type Abort int

const (
	AbortNone Abort = iota
	AbortSilence
	AbortDisconnected
	AbortCancelled
)

// Trace receives both sides of the conversation for the transcript.
type Trace func(role, text string)

// Result is one open-question run. An answer is always present: even on a
// silence abort the question is recorded with a no-answer summary.
type Result struct {
	Answer session.OpenAnswer
	Abort  Abort
}

// Evaluator asks one open question to completion.
// State machine: Asking -> AwaitingAnswer -> Resolved. No confirmation step,
// no retries for ambiguity. Classification context is per-question by
// construction: ClassifyOpen receives only this question and this answer, so
// prior turns cannot contaminate the summary.
type Evaluator struct {
	Channel dialog.Channel
	Oracle  dialog.Oracle
	Policy  session.Policy
	Trace   Trace
	Log     *slog.Logger
}

func (e *Evaluator) trace(role, text string) {
	if e.Trace != nil {
		e.Trace(role, text)
	}
}

// Run asks the question and records whatever comes back.
func (e *Evaluator) Run(ctx context.Context, q session.OpenQuestion) Result {
	res := Result{Answer: session.OpenAnswer{QuestionID: q.ID, QuestionText: q.Prompt}}
	pc := dialog.PromptContext{Open: &q}
	log := e.Log
	if log == nil {
		log = logging.New("qualify")
	}

	say := func(intent dialog.Intent) bool {
		text, err := e.Oracle.Compose(ctx, intent, pc)
		if err != nil || text == "" {
			log.Warn("compose failed", "intent", string(intent), "error", err)
			return true
		}
		e.trace("agent", text)
		if err := e.Channel.Send(ctx, text); err != nil {
			log.Warn("send failed", "error", err)
			return false
		}
		return true
	}

	noAnswer := func(a Abort) Result {
		res.Abort = a
		res.Answer.Summary = "Candidate did not answer"
		return res
	}

	if !say(dialog.IntentAskOpen) {
		return noAnswer(AbortDisconnected)
	}

	silences := 0
	for {
		ev := e.Channel.Await(ctx, e.Policy.OpenSilenceTimeout)
		switch ev.Kind {
		case dialog.KindSilence:
			silences++
			if silences >= 2 {
				return noAnswer(AbortSilence)
			}
			if !say(dialog.IntentSilenceProbe) {
				return noAnswer(AbortDisconnected)
			}
			continue
		case dialog.KindDisconnected:
			return noAnswer(AbortDisconnected)
		case dialog.KindCancelled:
			return noAnswer(AbortCancelled)
		}

		answer := ev.Turn.Text
		e.trace("candidate", answer)
		summary, err := e.Oracle.ClassifyOpen(ctx, q, answer)
		if err != nil || summary == "" {
			summary = answer
		}
		res.Answer.Summary = summary
		return res
	}
}
