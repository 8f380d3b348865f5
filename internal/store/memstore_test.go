package store

import (
	"context"
	"testing"
	"time"

	"prescreen/internal/session"
)

func TestMemStore_CopiesOnWrite(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()

	rec := testRecord("call-1", session.OutcomeCompleted)
	if err := st.Record(ctx, rec); err != nil {
		t.Fatal(err)
	}
	rec.Outcome = session.OutcomeIncomplete

	got, err := st.Get(ctx, "call-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Outcome != session.OutcomeCompleted {
		t.Errorf("stored record shares memory with the caller's copy")
	}
}

func TestMemStore_ListNewestFirst(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()

	for i, id := range []string{"call-1", "call-2", "call-3"} {
		r := testRecord(id, session.OutcomeCompleted)
		r.EndedAt = r.EndedAt.Add(time.Duration(i) * time.Minute)
		if err := st.Record(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	all, err := st.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].CallID != "call-3" {
		t.Errorf("list order wrong: got %d records, first %q", len(all), all[0].CallID)
	}

	byOutcome, err := st.ListByOutcome(ctx, session.OutcomeVoicemail)
	if err != nil {
		t.Fatal(err)
	}
	if len(byOutcome) != 0 {
		t.Errorf("voicemail records = %d, want 0", len(byOutcome))
	}
}
