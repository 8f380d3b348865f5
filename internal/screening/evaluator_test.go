package screening

import (
	"context"
	"testing"
	"time"

	"prescreen/internal/dialog"
	"prescreen/internal/session"
)

// scriptChannel replays a fixed sequence of candidate events. Silence and
// disconnect are scripted directly so tests never wait on real timers.
type scriptChannel struct {
	events []dialog.Event
	pos    int
	sent   []string
}

func (c *scriptChannel) Send(ctx context.Context, text string) error {
	c.sent = append(c.sent, text)
	return nil
}

func (c *scriptChannel) Await(ctx context.Context, timeout time.Duration) dialog.Event {
	if c.pos >= len(c.events) {
		return dialog.Event{Kind: dialog.KindDisconnected}
	}
	ev := c.events[c.pos]
	c.pos++
	return ev
}

func say(text string) dialog.Event {
	return dialog.Event{Kind: dialog.KindTurn, Turn: dialog.Turn{Text: text}}
}

var silent = dialog.Event{Kind: dialog.KindSilence}

var forklift = session.KnockoutQuestion{
	ID:      "k_forklift",
	Prompt:  "Do you have a valid forklift certificate?",
	DataKey: "forklift_certificate",
	Context: "Any certificate issued in the last five years counts.",
}

func newEvaluator(ch *scriptChannel) *Evaluator {
	return &Evaluator{
		Channel:           ch,
		Oracle:            dialog.RuleOracle{},
		Policy:            session.DefaultPolicy(),
		IrrelevanceBudget: 2,
	}
}

func TestEvaluator_Pass(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{say("Yes, I have one.")}}
	res := newEvaluator(ch).Run(context.Background(), forklift)

	if res.Answer.Result != session.ResultPass {
		t.Fatalf("result = %v, want pass", res.Answer.Result)
	}
	if res.Abort != AbortNone {
		t.Errorf("abort = %v, want none", res.Abort)
	}
	if res.IrrelevantTurns != 0 {
		t.Errorf("irrelevant turns = %d, want 0", res.IrrelevantTurns)
	}
}

func TestEvaluator_FailNeedsConfirmation(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{
		say("No, I don't have that."),
		say("Yes, that is right."),
	}}
	res := newEvaluator(ch).Run(context.Background(), forklift)

	if res.Answer.Result != session.ResultFail {
		t.Fatalf("result = %v, want fail after confirmation", res.Answer.Result)
	}
	// The confirmation prompt must have gone out between the two turns.
	if len(ch.sent) != 2 {
		t.Errorf("sent %d utterances, want 2 (question + confirmation)", len(ch.sent))
	}
}

func TestEvaluator_FailReversalIsCleanPass(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{
		say("No, I don't."),
		say("No, that is incorrect."),
	}}
	res := newEvaluator(ch).Run(context.Background(), forklift)

	if res.Answer.Result != session.ResultPass {
		t.Fatalf("result = %v, want pass after reversal", res.Answer.Result)
	}
}

func TestEvaluator_ClarificationThenAnswer(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{
		say("What kind of certificate do you mean?"),
		say("Yes, I do have one."),
	}}
	res := newEvaluator(ch).Run(context.Background(), forklift)

	if res.Answer.Result != session.ResultPass {
		t.Fatalf("result = %v, want pass", res.Answer.Result)
	}
	// A clarification never spends the irrelevance budget.
	if res.IrrelevantTurns != 0 {
		t.Errorf("irrelevant turns = %d, want 0", res.IrrelevantTurns)
	}
}

func TestEvaluator_IrrelevantWithinBudget(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{
		say("I like trains."),
		say("Yes, I have one."),
	}}
	res := newEvaluator(ch).Run(context.Background(), forklift)

	if res.Answer.Result != session.ResultPass {
		t.Fatalf("result = %v, want pass after re-ask", res.Answer.Result)
	}
	if res.IrrelevantTurns != 1 {
		t.Errorf("irrelevant turns = %d, want 1", res.IrrelevantTurns)
	}
}

func TestEvaluator_IrrelevanceBudgetSpent(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{say("I like trains.")}}
	ev := newEvaluator(ch)
	ev.IrrelevanceBudget = 1
	res := ev.Run(context.Background(), forklift)

	if res.Abort != AbortIrrelevanceLimit {
		t.Fatalf("abort = %v, want irrelevance limit", res.Abort)
	}
	if res.Answer.Result != session.ResultIrrelevant {
		t.Errorf("result = %v, want irrelevant", res.Answer.Result)
	}
}

func TestEvaluator_SilenceProbeThenAnswer(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{
		silent,
		say("Yes, I have one."),
	}}
	res := newEvaluator(ch).Run(context.Background(), forklift)

	if res.Answer.Result != session.ResultPass {
		t.Fatalf("result = %v, want pass after silence probe", res.Answer.Result)
	}
	if len(ch.sent) != 2 {
		t.Errorf("sent %d utterances, want question + probe", len(ch.sent))
	}
}

func TestEvaluator_DoubleSilenceAborts(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{silent, silent}}
	res := newEvaluator(ch).Run(context.Background(), forklift)

	if res.Abort != AbortSilence {
		t.Fatalf("abort = %v, want silence", res.Abort)
	}
	if res.Answer.Result != session.ResultUnclear {
		t.Errorf("result = %v, want unclear", res.Answer.Result)
	}
}

func TestEvaluator_RecruiterEscalation(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{
		say("I'd rather speak to a real person about this."),
	}}
	ev := newEvaluator(ch)
	ev.AllowEscalation = true
	res := ev.Run(context.Background(), forklift)

	if res.Answer.Result != session.ResultRecruiterRequested {
		t.Fatalf("result = %v, want recruiter requested", res.Answer.Result)
	}
}

func TestEvaluator_RecruiterSteeredBackWhenDisabled(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{
		say("Can I talk to a real person?"),
		say("Yes, I have one."),
	}}
	res := newEvaluator(ch).Run(context.Background(), forklift)

	if res.Answer.Result != session.ResultPass {
		t.Fatalf("result = %v, want pass after steering back", res.Answer.Result)
	}
}

func TestEvaluator_UnclearAfterRetries(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{
		say("Well, it depends on the certificate I suppose."),
		say("Hard to say about the certificate really."),
	}}
	res := newEvaluator(ch).Run(context.Background(), forklift)

	if res.Answer.Result != session.ResultUnclear {
		t.Fatalf("result = %v, want unclear after retries", res.Answer.Result)
	}
	if res.Abort != AbortNone {
		t.Errorf("abort = %v, want none (unclear is a verdict, not an abort)", res.Abort)
	}
}

func TestEvaluator_Disconnect(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{
		{Kind: dialog.KindDisconnected},
	}}
	res := newEvaluator(ch).Run(context.Background(), forklift)

	if res.Abort != AbortDisconnected {
		t.Fatalf("abort = %v, want disconnected", res.Abort)
	}
}
