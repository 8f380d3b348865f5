package screening

import (
	"context"
	"fmt"
	"log/slog"

	"prescreen/internal/dialog"
	"prescreen/internal/logging"
	"prescreen/internal/session"
)

// Signal is the loop's verdict, mapped by the controller onto a phase
// transition.
type Signal int

const (
	SigAllPassed Signal = iota
	SigFailed
	SigUnclear
	SigIrrelevant
	SigRecruiter
	SigIrrelevanceLimit
	SigSilence
	SigDisconnected
	SigCancelled
)

// LoopResult is everything a screening pass produced. Answers are in asking
// order; no question appears twice; after a fail no later question appears.
type LoopResult struct {
	Answers         []session.KnockoutAnswer
	Signal          Signal
	FailedQuestion  *session.KnockoutQuestion
	IrrelevantTurns int
}

// Loop sequences knockout evaluators over the input's question list.
type Loop struct {
	Channel dialog.Channel
	Oracle  dialog.Oracle
	Policy  session.Policy
	Trace   Trace
	Log     *slog.Logger
}

// Run iterates the ordered question list. Questions with a pre-known answer
// are synthesized as pass without invoking an evaluator (only passes are ever
// trusted from the record). Branching follows the early-exit policy: a fail,
// a persisted unclear/irrelevant, or a recruiter request stops the loop.
//
// budget is the remaining session irrelevance budget; the loop spends it
// across evaluators and aborts with SigIrrelevanceLimit when it runs out.
func (l *Loop) Run(ctx context.Context, in *session.Input, budget int) LoopResult {
	log := l.Log
	if log == nil {
		log = logging.New("screening")
	}

	var res LoopResult
	var history []dialog.QA

	for i := range in.Knockouts {
		q := in.Knockouts[i]

		if known, ok := in.KnownAnswer(q); ok {
			res.Answers = append(res.Answers, session.KnockoutAnswer{
				QuestionID:   q.ID,
				QuestionText: q.Prompt,
				Result:       session.ResultPass,
				RawAnswer:    fmt.Sprintf("(pre-known: %s)", known),
				PreKnown:     true,
			})
			log.Debug("knockout skipped via candidate record", "question", q.ID)
			continue
		}

		eval := &Evaluator{
			Channel:           l.Channel,
			Oracle:            l.Oracle,
			Policy:            l.Policy,
			AllowEscalation:   in.AllowEscalation,
			IrrelevanceBudget: budget - res.IrrelevantTurns,
			History:           history,
			Trace:             l.Trace,
			Log:               log,
		}
		r := eval.Run(ctx, q)
		res.Answers = append(res.Answers, r.Answer)
		res.IrrelevantTurns += r.IrrelevantTurns
		history = append(history, dialog.QA{Question: q.Prompt, Answer: r.Answer.RawAnswer})

		log.Info("knockout finalized",
			"question", q.ID, "result", string(r.Answer.Result), "abort", int(r.Abort))

		switch r.Abort {
		case AbortIrrelevanceLimit:
			res.Signal = SigIrrelevanceLimit
			return res
		case AbortSilence:
			res.Signal = SigSilence
			return res
		case AbortDisconnected:
			res.Signal = SigDisconnected
			return res
		case AbortCancelled:
			res.Signal = SigCancelled
			return res
		}

		switch r.Answer.Result {
		case session.ResultPass:
			continue
		case session.ResultFail:
			res.Signal = SigFailed
			res.FailedQuestion = &q
			return res
		case session.ResultUnclear:
			res.Signal = SigUnclear
			return res
		case session.ResultIrrelevant:
			res.Signal = SigIrrelevant
			return res
		case session.ResultRecruiterRequested:
			res.Signal = SigRecruiter
			return res
		}
	}

	res.Signal = SigAllPassed
	return res
}
