package dialog

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestPipe_TurnRoundTrip(t *testing.T) {
	p := NewPipe()
	ctx := context.Background()

	if err := p.Send(ctx, "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := p.Send(ctx, "still there?"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if diff := cmp.Diff([]string{"hello", "still there?"}, p.Drain()); diff != "" {
		t.Errorf("Drain mismatch (-want +got):\n%s", diff)
	}
	if got := p.Drain(); len(got) != 0 {
		t.Errorf("second Drain = %v, want empty", got)
	}

	if err := p.Reply("hi"); err != nil {
		t.Fatalf("Reply: %v", err)
	}
	ev := p.Await(ctx, time.Second)
	if ev.Kind != KindTurn || ev.Turn.Text != "hi" {
		t.Errorf("Await = %+v, want turn %q", ev, "hi")
	}
}

func TestPipe_SilenceTimeout(t *testing.T) {
	p := NewPipe()
	ev := p.Await(context.Background(), time.Millisecond)
	if ev.Kind != KindSilence {
		t.Errorf("Await kind = %v, want silence", ev.Kind)
	}
}

func TestPipe_ExplicitSilence(t *testing.T) {
	p := NewPipe()
	p.Silence()
	ev := p.Await(context.Background(), time.Minute)
	if ev.Kind != KindSilence {
		t.Errorf("Await kind = %v, want silence", ev.Kind)
	}
}

func TestPipe_Hangup(t *testing.T) {
	p := NewPipe()
	p.Hangup()
	p.Hangup() // idempotent

	if err := p.Send(context.Background(), "x"); err != ErrClosed {
		t.Errorf("Send after hangup = %v, want ErrClosed", err)
	}
	if err := p.Reply("y"); err != ErrClosed {
		t.Errorf("Reply after hangup = %v, want ErrClosed", err)
	}
	ev := p.Await(context.Background(), time.Minute)
	if ev.Kind != KindDisconnected {
		t.Errorf("Await kind = %v, want disconnected", ev.Kind)
	}
}

func TestPipe_Cancelled(t *testing.T) {
	p := NewPipe()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ev := p.Await(ctx, time.Minute)
	if ev.Kind != KindCancelled {
		t.Errorf("Await kind = %v, want cancelled", ev.Kind)
	}
}
