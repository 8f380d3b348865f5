package dialog

import (
	"context"
	"log/slog"
	"time"

	"prescreen/internal/logging"
	"prescreen/internal/session"
)

// Reliable wraps an Oracle with the boundary failure policy: one retry with
// backoff, then degrade instead of propagating. Classification failures
// degrade to unclear (never silently to pass); composition failures fall back
// to the canned template wording.
type Reliable struct {
	Inner   Oracle
	Backoff time.Duration

	// sleep is swapped in tests.
	sleep func(time.Duration)
	log   *slog.Logger
}

// NewReliable wraps inner with the given retry backoff.
func NewReliable(inner Oracle, backoff time.Duration) *Reliable {
	return &Reliable{
		Inner:   inner,
		Backoff: backoff,
		sleep:   time.Sleep,
		log:     logging.New("oracle"),
	}
}

// retry runs call, and once more after the backoff if it failed.
func (r *Reliable) retry(ctx context.Context, what string, call func() error) error {
	err := call()
	if err == nil {
		return nil
	}
	r.log.Warn("oracle call failed, retrying", "call", what, "error", err)
	if r.sleep != nil {
		r.sleep(r.Backoff)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err = call(); err != nil {
		r.log.Warn("oracle call failed twice, degrading", "call", what, "error", err)
	}
	return err
}

func (r *Reliable) ClassifyGreeting(ctx context.Context, answer string, pc PromptContext) (GreetingReading, error) {
	var reading GreetingReading
	err := r.retry(ctx, "classify_greeting", func() (e error) {
		reading, e = r.Inner.ClassifyGreeting(ctx, answer, pc)
		return
	})
	if err != nil {
		return GreetingReading{Verdict: GreetUnclear}, nil
	}
	return reading, nil
}

func (r *Reliable) ClassifyKnockout(ctx context.Context, q session.KnockoutQuestion, answer string, history []QA) (KnockoutReading, error) {
	var reading KnockoutReading
	err := r.retry(ctx, "classify_knockout", func() (e error) {
		reading, e = r.Inner.ClassifyKnockout(ctx, q, answer, history)
		return
	})
	if err != nil {
		return KnockoutReading{Verdict: VerdictUnclear, Summary: answer}, nil
	}
	return reading, nil
}

func (r *Reliable) ClassifyOpen(ctx context.Context, q session.OpenQuestion, answer string) (string, error) {
	var summary string
	err := r.retry(ctx, "classify_open", func() (e error) {
		summary, e = r.Inner.ClassifyOpen(ctx, q, answer)
		return
	})
	if err != nil {
		// Open questions always record something; the raw text is the
		// degraded summary.
		return answer, nil
	}
	return summary, nil
}

func (r *Reliable) ClassifyAffirmation(ctx context.Context, prompt, answer string) (Affirmation, error) {
	var a Affirmation
	err := r.retry(ctx, "classify_affirmation", func() (e error) {
		a, e = r.Inner.ClassifyAffirmation(ctx, prompt, answer)
		return
	})
	if err != nil {
		return AffirmUnclear, nil
	}
	return a, nil
}

func (r *Reliable) ClassifySlots(ctx context.Context, proposals []string, answer string) (SlotReading, error) {
	var reading SlotReading
	err := r.retry(ctx, "classify_slots", func() (e error) {
		reading, e = r.Inner.ClassifySlots(ctx, proposals, answer)
		return
	})
	if err != nil {
		return SlotReading{Verdict: SlotUnclear}, nil
	}
	return reading, nil
}

func (r *Reliable) Compose(ctx context.Context, intent Intent, pc PromptContext) (string, error) {
	var text string
	err := r.retry(ctx, "compose", func() (e error) {
		text, e = r.Inner.Compose(ctx, intent, pc)
		return
	})
	if err != nil {
		return composeTemplate(intent, pc), nil
	}
	return text, nil
}
