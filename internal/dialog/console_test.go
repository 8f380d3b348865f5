package dialog

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func TestConsole_TurnAndEOF(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("Yes, I do.\n"), &out)
	defer c.Close()

	if err := c.Send(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "agent> hello") {
		t.Errorf("send output = %q", out.String())
	}

	ev := c.Await(context.Background(), time.Second)
	if ev.Kind != KindTurn || ev.Turn.Text != "Yes, I do." {
		t.Fatalf("event = %+v, want the typed line", ev)
	}
	// Input exhausted: EOF reads as a hangup.
	if ev := c.Await(context.Background(), time.Second); ev.Kind != KindDisconnected {
		t.Errorf("event kind = %v, want disconnected at EOF", ev.Kind)
	}
}

func TestConsole_CloseReleasesPendingLine(t *testing.T) {
	// Two lines but only one Await: the reader goroutine holds the second
	// line in flight and must exit on Close instead of blocking forever.
	pr, pw := io.Pipe()
	c := NewConsole(pr, io.Discard)
	go func() {
		io.WriteString(pw, "first\nsecond\n")
		pw.Close()
	}()

	if ev := c.Await(context.Background(), time.Second); ev.Kind != KindTurn {
		t.Fatalf("event kind = %v, want turn", ev.Kind)
	}
	c.Close()
	c.Close() // idempotent

	select {
	case <-c.done:
	case <-time.After(time.Second):
		t.Fatal("reader goroutine did not exit after Close")
	}
}
