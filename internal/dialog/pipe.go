package dialog

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by Send after the pipe has been hung up.
var ErrClosed = errors.New("dialog: channel closed")

// Pipe is an in-memory Channel. The session side calls Send/Await; the
// candidate side (a test, a scripted simulator, or the MCP bridge) calls
// Reply/Drain/Hangup. Safe for one goroutine per side.
type Pipe struct {
	in     chan Turn
	quiet  chan struct{}
	closed chan struct{}
	once   sync.Once

	mu  sync.Mutex
	out []string
}

// NewPipe creates an open pipe with a small turn buffer.
func NewPipe() *Pipe {
	return &Pipe{
		in:     make(chan Turn, 8),
		quiet:  make(chan struct{}, 8),
		closed: make(chan struct{}),
	}
}

// Send buffers an agent utterance for the candidate side.
func (p *Pipe) Send(_ context.Context, text string) error {
	select {
	case <-p.closed:
		return ErrClosed
	default:
	}
	p.mu.Lock()
	p.out = append(p.out, text)
	p.mu.Unlock()
	return nil
}

// Await blocks for the next candidate turn, the timeout, hangup, or cancel.
func (p *Pipe) Await(ctx context.Context, timeout time.Duration) Event {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case t := <-p.in:
		return Event{Kind: KindTurn, Turn: t}
	case <-p.quiet:
		return Event{Kind: KindSilence}
	case <-timer.C:
		return Event{Kind: KindSilence}
	case <-p.closed:
		return Event{Kind: KindDisconnected}
	case <-ctx.Done():
		return Event{Kind: KindCancelled}
	}
}

// Silence injects an explicit silence signal, for drivers that detect
// candidate silence themselves instead of relying on the Await timeout.
func (p *Pipe) Silence() {
	select {
	case p.quiet <- struct{}{}:
	default:
	}
}

// Reply injects one candidate turn. Returns ErrClosed after hangup.
func (p *Pipe) Reply(text string) error {
	select {
	case <-p.closed:
		return ErrClosed
	case p.in <- Turn{Text: text, At: time.Now()}:
		return nil
	}
}

// Drain returns and clears the buffered agent utterances.
func (p *Pipe) Drain() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.out
	p.out = nil
	return out
}

// Hangup closes the pipe from the candidate side. Idempotent.
func (p *Pipe) Hangup() {
	p.once.Do(func() { close(p.closed) })
}
