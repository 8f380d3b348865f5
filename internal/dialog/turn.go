// Package dialog defines the two boundary contracts the screening core talks
// through: the Channel (a bidirectional stream of utterances with silence and
// disconnect signaling) and the Oracle (utterance composition and answer
// classification). It also ships the local implementations used by tests, the
// CLI and the MCP bridge: an in-memory Pipe, a console channel, a
// deterministic rule oracle and the Reliable retry decorator.
package dialog

import (
	"context"
	"time"
)

// Turn is one unit of candidate input, already reduced to text.
type Turn struct {
	Text string
	At   time.Time
}

// EventKind tags the result of awaiting a candidate turn. Silence and
// disconnection are first-class values, never errors.
type EventKind int

const (
	KindTurn EventKind = iota
	KindSilence
	KindDisconnected
	KindCancelled
)

func (k EventKind) String() string {
	switch k {
	case KindTurn:
		return "turn"
	case KindSilence:
		return "silence"
	case KindDisconnected:
		return "disconnected"
	case KindCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Event is the outcome of one Await call. Turn is meaningful only when Kind
// is KindTurn.
type Event struct {
	Kind EventKind
	Turn Turn
}

// Channel is the transport abstraction. Await is the sole suspension point in
// the system: it blocks until a turn arrives, the timeout elapses (silence),
// the peer disconnects, or ctx is cancelled. Implementations must not
// busy-poll; the silence stages need roughly one-second accuracy.
type Channel interface {
	// Send delivers one agent utterance. An error means the channel is
	// unusable (disconnected); callers treat it like a disconnect event.
	Send(ctx context.Context, text string) error

	// Await blocks for the next candidate turn, bounded by timeout.
	Await(ctx context.Context, timeout time.Duration) Event
}
