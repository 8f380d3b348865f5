package schedule

import (
	"context"
	"testing"
	"time"

	"prescreen/internal/dialog"
	"prescreen/internal/session"
)

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

// conflictDirectory wraps a WeekdayDirectory and forces ErrConflict on the
// first n booking attempts.
type conflictDirectory struct {
	*WeekdayDirectory
	conflicts int
	bookCalls int
}

func (d *conflictDirectory) Book(ctx context.Context, s Slot, sessionID string) error {
	d.bookCalls++
	if d.bookCalls <= d.conflicts {
		return ErrConflict
	}
	return d.WeekdayDirectory.Book(ctx, s, sessionID)
}

func newNegotiator(ch *scriptChannel, dir Directory) *Negotiator {
	return &Negotiator{
		Channel:           ch,
		Oracle:            dialog.RuleOracle{},
		Directory:         dir,
		Policy:            session.DefaultPolicy(),
		SessionID:         "sess-1",
		IrrelevanceBudget: 2,
	}
}

func TestNegotiator_AcceptsFirstProposal(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{
		say("The first option works for me."),
	}}
	res := newNegotiator(ch, pinnedDirectory()).Run(context.Background(), dialog.PromptContext{})

	if res.Abort != AbortNone {
		t.Fatalf("abort = %v, want none", res.Abort)
	}
	if res.Slot == nil || res.Slot.Date != "2026-03-03" || res.Slot.Time != "09:00" {
		t.Fatalf("slot = %+v, want Tuesday 09:00", res.Slot)
	}
	if res.Preference != "" {
		t.Errorf("preference = %q, want empty on a booked slot", res.Preference)
	}
	// Proposal then confirmation.
	if len(ch.sent) != 2 {
		t.Errorf("sent %d utterances, want 2", len(ch.sent))
	}
}

func TestNegotiator_OrdinalPicksSecondSlot(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{
		say("The second option, please."),
	}}
	res := newNegotiator(ch, pinnedDirectory()).Run(context.Background(), dialog.PromptContext{})

	if res.Slot == nil || res.Slot.Date != "2026-03-04" {
		t.Fatalf("slot = %+v, want the Wednesday slot", res.Slot)
	}
}

func TestNegotiator_BoundedLookupsSoftSuccess(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{
		say("None of those work for me."),
		say("I can only do Monday."),
		say("None of those work either."),
		say("Only evening appointments work for me."),
	}}
	res := newNegotiator(ch, pinnedDirectory()).Run(context.Background(), dialog.PromptContext{})

	if res.Abort != AbortNone {
		t.Fatalf("abort = %v, want none", res.Abort)
	}
	if res.Slot != nil {
		t.Fatalf("slot = %+v, want none after exhausted lookups", res.Slot)
	}
	if res.Preference != "Only evening appointments work for me." {
		t.Errorf("preference = %q, want the candidate's last wording", res.Preference)
	}
}

func TestNegotiator_PreferenceHintNarrowsSecondBatch(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{
		say("None of those work for me."),
		say("I can only do Friday."),
		say("Yes, the first one is fine."),
	}}
	res := newNegotiator(ch, pinnedDirectory()).Run(context.Background(), dialog.PromptContext{})

	if res.Slot == nil {
		t.Fatal("no slot booked from the hinted batch")
	}
	day, err := time.Parse("2006-01-02", res.Slot.Date)
	if err != nil {
		t.Fatal(err)
	}
	if day.Weekday() != time.Friday {
		t.Errorf("booked %s, want a Friday", res.Slot.Spoken)
	}
}

func TestNegotiator_ConflictReQueries(t *testing.T) {
	dir := &conflictDirectory{WeekdayDirectory: pinnedDirectory(), conflicts: 1}
	ch := &scriptChannel{events: []dialog.Event{
		say("The first option works for me."),
		say("The first option works for me."),
	}}
	res := newNegotiator(ch, dir).Run(context.Background(), dialog.PromptContext{})

	if res.Abort != AbortNone {
		t.Fatalf("abort = %v, want none", res.Abort)
	}
	if res.Slot == nil {
		t.Fatal("no slot booked after conflict re-query")
	}
	if dir.bookCalls != 2 {
		t.Errorf("book calls = %d, want 2 (conflict then success)", dir.bookCalls)
	}
}

func TestNegotiator_ConflictStormStillRecordsPreference(t *testing.T) {
	// Every booking races away. Once lookups run out the negotiation must
	// not finish with neither a slot nor a preference.
	dir := &conflictDirectory{WeekdayDirectory: pinnedDirectory(), conflicts: 99}
	ch := &scriptChannel{events: []dialog.Event{
		say("The first option works for me."),
		say("The first option works for me."),
		say("The first option works for me."),
		say("The first option works for me."),
		say("Only evening appointments work for me."),
	}}
	res := newNegotiator(ch, dir).Run(context.Background(), dialog.PromptContext{})

	if res.Abort != AbortNone {
		t.Fatalf("abort = %v, want none", res.Abort)
	}
	if res.Slot != nil {
		t.Fatalf("slot = %+v, want none when every booking conflicts", res.Slot)
	}
	if res.Preference != "Only evening appointments work for me." {
		t.Errorf("preference = %q, want the candidate's stated preference", res.Preference)
	}
	if dir.bookCalls != 4 {
		t.Errorf("book calls = %d, want 4 before giving up", dir.bookCalls)
	}
}

func TestNegotiator_CannotAttendCapturedVerbatim(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{
		say("I can't come to the office at all, I would need a remote interview."),
	}}
	res := newNegotiator(ch, pinnedDirectory()).Run(context.Background(), dialog.PromptContext{})

	if res.Abort != AbortNone {
		t.Fatalf("abort = %v, want none", res.Abort)
	}
	if res.Slot != nil {
		t.Fatal("slot booked despite cannot-attend statement")
	}
	want := "I can't come to the office at all, I would need a remote interview."
	if res.Preference != want {
		t.Errorf("preference = %q, want the verbatim statement", res.Preference)
	}
}

func TestNegotiator_IrrelevanceBudget(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{
		say("I like trains."),
		say("Bananas are purple, my friend."),
	}}
	n := newNegotiator(ch, pinnedDirectory())
	res := n.Run(context.Background(), dialog.PromptContext{})

	if res.Abort != AbortIrrelevanceLimit {
		t.Fatalf("abort = %v, want irrelevance limit", res.Abort)
	}
	if res.IrrelevantTurns != 2 {
		t.Errorf("irrelevant turns = %d, want 2", res.IrrelevantTurns)
	}
}

func TestNegotiator_DoubleSilenceAborts(t *testing.T) {
	ch := &scriptChannel{events: []dialog.Event{
		{Kind: dialog.KindSilence},
		{Kind: dialog.KindSilence},
	}}
	res := newNegotiator(ch, pinnedDirectory()).Run(context.Background(), dialog.PromptContext{})

	if res.Abort != AbortSilence {
		t.Fatalf("abort = %v, want silence", res.Abort)
	}
}
