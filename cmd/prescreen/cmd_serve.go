package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"prescreen/internal/logging"
	"prescreen/internal/mcpserve"
	"prescreen/internal/store"
)

var serveFlags struct {
	dbPath  string
	noStore bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the screening core over MCP stdio",
	Long: `Starts an MCP server over stdin/stdout. The connected client drives one
screening session at a time through the session tools: it reads the agent
utterances to the candidate and submits the candidate's turns back.

The server monitors for parent process death and self-terminates when the
host disconnects, so no zombie servers accumulate.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.dbPath, "db", store.DefaultDBPath, "Results DB path")
	serveCmd.Flags().BoolVar(&serveFlags.noStore, "no-store", false, "Do not persist session records")
}

func runServe(cmd *cobra.Command, _ []string) error {
	var st store.Store
	if !serveFlags.noStore {
		s, err := store.Open(serveFlags.dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()
		st = s
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	mcpserve.WatchParent(ctx, cancel)

	logging.New("mcpserve").Info("starting prescreen MCP server over stdio (parent watchdog active)")
	return mcpserve.NewServer(version, st).Run(ctx)
}
