package simulate

import (
	"context"
	"sync"
	"time"

	"prescreen/internal/dialog"
)

// ScriptedChannel replays a scenario script. Each Await consumes the next
// step; Send only records the agent side. A script that runs out reads as a
// hangup so a mis-sized script fails fast instead of stalling on silence
// handling.
type ScriptedChannel struct {
	mu    sync.Mutex
	steps []Step
	pos   int
	sent  []string
}

// NewScriptedChannel returns a channel replaying the given steps.
func NewScriptedChannel(steps []Step) *ScriptedChannel {
	return &ScriptedChannel{steps: steps}
}

// Send implements dialog.Channel.
func (c *ScriptedChannel) Send(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, text)
	return nil
}

// Await implements dialog.Channel. It never sleeps; scripted silence is
// reported immediately.
func (c *ScriptedChannel) Await(ctx context.Context, _ time.Duration) dialog.Event {
	if ctx.Err() != nil {
		return dialog.Event{Kind: dialog.KindCancelled}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pos >= len(c.steps) {
		return dialog.Event{Kind: dialog.KindDisconnected}
	}
	step := c.steps[c.pos]
	c.pos++
	switch {
	case step.Hangup:
		return dialog.Event{Kind: dialog.KindDisconnected}
	case step.Silent:
		return dialog.Event{Kind: dialog.KindSilence}
	default:
		return dialog.Event{Kind: dialog.KindTurn, Turn: dialog.Turn{Text: step.Say, At: time.Now()}}
	}
}

// Sent returns the agent utterances recorded so far.
func (c *ScriptedChannel) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}
