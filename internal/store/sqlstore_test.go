package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"prescreen/internal/session"
)

func testRecord(callID string, outcome session.Outcome) *session.Record {
	consent := true
	return &session.Record{
		CallID:        callID,
		CandidateName: "Alex",
		JobTitle:      "Warehouse Operative",
		Outcome:       outcome,
		ConsentGiven:  &consent,
		KnockoutAnswers: []session.KnockoutAnswer{
			{QuestionID: "k_forklift", QuestionText: "Do you have a valid forklift certificate?",
				Result: session.ResultPass, RawAnswer: "Yes, I have one."},
			{QuestionID: "k_weekend", QuestionText: "Are you available to work weekend shifts?",
				Result: session.ResultPass, RawAnswer: "(pre-known: yes)", PreKnown: true},
		},
		OpenAnswers: []session.OpenAnswer{
			{QuestionID: "q_experience", QuestionText: "Tell me about your experience.",
				Summary: "Three years in a distribution center."},
		},
		PassedKnockout: true,
		ChosenTimeslot: "Tuesday 3 March at 09:00",
		Transcript: []session.Utterance{
			{Role: "agent", Text: "Hello Alex."},
			{Role: "candidate", Text: "Hi."},
		},
		History: []session.PhaseChange{
			{From: session.PhaseGreeting, To: session.PhaseScreening, Event: "candidate_ready",
				At: time.Date(2026, 3, 2, 9, 0, 10, 0, time.UTC)},
		},
		StartedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		EndedAt:   time.Date(2026, 3, 2, 9, 4, 30, 0, time.UTC),
	}
}

func openTestStore(t *testing.T) *SqlStore {
	t.Helper()
	st, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSqlStore_RoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	want := testRecord("call-1", session.OutcomeCompleted)

	if err := st.Record(ctx, want); err != nil {
		t.Fatal(err)
	}
	got, err := st.Get(ctx, "call-1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("record not found after write")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSqlStore_RewriteReplacesAnswers(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	first := testRecord("call-1", session.OutcomeIncomplete)
	if err := st.Record(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := testRecord("call-1", session.OutcomeCompleted)
	second.KnockoutAnswers = second.KnockoutAnswers[:1]
	if err := st.Record(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := st.Get(ctx, "call-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Outcome != session.OutcomeCompleted {
		t.Errorf("outcome = %s, want the rewritten value", got.Outcome)
	}
	if len(got.KnockoutAnswers) != 1 {
		t.Errorf("knockout answers = %d, want 1 (old rows wiped)", len(got.KnockoutAnswers))
	}
}

func TestSqlStore_GetMissing(t *testing.T) {
	st := openTestStore(t)
	got, err := st.Get(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for a missing call", got)
	}
}

func TestSqlStore_ListByOutcome(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	recs := []*session.Record{
		testRecord("call-1", session.OutcomeCompleted),
		testRecord("call-2", session.OutcomeVoicemail),
		testRecord("call-3", session.OutcomeCompleted),
	}
	for i, r := range recs {
		r.EndedAt = r.EndedAt.Add(time.Duration(i) * time.Minute)
		if err := st.Record(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	all, err := st.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("list = %d records, want 3", len(all))
	}
	// Newest first.
	if all[0].CallID != "call-3" {
		t.Errorf("first listed = %s, want the latest call", all[0].CallID)
	}

	completed, err := st.ListByOutcome(ctx, session.OutcomeCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if len(completed) != 2 {
		t.Errorf("completed = %d records, want 2", len(completed))
	}
}

func TestOpen_CreatesParentDir(t *testing.T) {
	path := t.TempDir() + "/nested/dir/prescreen.db"
	st, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if err := st.Record(context.Background(), testRecord("call-1", session.OutcomeCompleted)); err != nil {
		t.Fatal(err)
	}
}
