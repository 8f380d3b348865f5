package mcpserve

import (
	"context"
	"os"
	"time"

	"prescreen/internal/logging"
)

// WatchParent monitors for parent process death in a background goroutine and
// calls cancel when the parent PID changes, so a disconnected MCP host does
// not leave a zombie server behind.
//
// It must NOT read from stdin: the SDK's StdioTransport owns stdin
// exclusively, and stealing bytes here would corrupt the JSON-RPC stream.
func WatchParent(ctx context.Context, cancel context.CancelFunc) {
	ppid := os.Getppid()
	log := logging.New("mcpserve")
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
				if os.Getppid() != ppid {
					log.Warn("parent process died, shutting down", "was_pid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}
