package qualify

import (
	"context"
	"log/slog"

	"prescreen/internal/dialog"
	"prescreen/internal/logging"
	"prescreen/internal/session"
)

// LoopResult is a full qualification pass. When Abort is AbortNone the answer
// count equals the question count — the loop never early-exits on content.
type LoopResult struct {
	Answers []session.OpenAnswer
	Abort   Abort
}

// Loop sequences open-question evaluators over a question list.
type Loop struct {
	Channel dialog.Channel
	Oracle  dialog.Oracle
	Policy  session.Policy
	Trace   Trace
	Log     *slog.Logger
}

// Run asks every question in order. Only a transport failure stops the loop
// early; the aborted question is still recorded with its no-answer summary.
func (l *Loop) Run(ctx context.Context, questions []session.OpenQuestion) LoopResult {
	log := l.Log
	if log == nil {
		log = logging.New("qualify")
	}

	var res LoopResult
	for _, q := range questions {
		eval := &Evaluator{
			Channel: l.Channel,
			Oracle:  l.Oracle,
			Policy:  l.Policy,
			Trace:   l.Trace,
			Log:     log,
		}
		r := eval.Run(ctx, q)
		res.Answers = append(res.Answers, r.Answer)
		log.Info("open question recorded", "question", q.ID, "abort", int(r.Abort))
		if r.Abort != AbortNone {
			res.Abort = r.Abort
			return res
		}
	}
	return res
}
