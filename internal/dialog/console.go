package dialog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// Console is a Channel over a terminal: agent utterances are printed,
// candidate turns are read line by line. A reader goroutine feeds Await so
// silence timeouts work even though reads on the underlying stream block.
//
// EOF (Ctrl-D) reads as a disconnect, matching a candidate hanging up.
type Console struct {
	out   io.Writer
	lines chan string
	done  chan struct{}
	stop  chan struct{}
	once  sync.Once
}

// NewConsole starts the reader goroutine and returns the channel.
func NewConsole(r io.Reader, w io.Writer) *Console {
	c := &Console{
		out:   w,
		lines: make(chan string),
		done:  make(chan struct{}),
		stop:  make(chan struct{}),
	}
	go func() {
		defer close(c.done)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case c.lines <- sc.Text():
			case <-c.stop:
				return
			}
		}
	}()
	return c
}

// Close releases the reader goroutine. The underlying stream is not closed;
// a blocked read ends on the next line or EOF. Idempotent.
func (c *Console) Close() {
	c.once.Do(func() { close(c.stop) })
}

// Send implements Channel.
func (c *Console) Send(_ context.Context, text string) error {
	_, err := fmt.Fprintf(c.out, "agent> %s\n", text)
	return err
}

// Await implements Channel.
func (c *Console) Await(ctx context.Context, timeout time.Duration) Event {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case line := <-c.lines:
		return Event{Kind: KindTurn, Turn: Turn{Text: line, At: time.Now()}}
	case <-c.done:
		return Event{Kind: KindDisconnected}
	case <-timer.C:
		return Event{Kind: KindSilence}
	case <-ctx.Done():
		return Event{Kind: KindCancelled}
	}
}
