package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/universa-labs/universa-go/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local simulated backend (HTTP + MCP stdio)",
	Long: `Serve the simulation engine's endpoint surface over HTTP so a
frontend can point at a local backend, and expose the matching tools
over MCP stdio for agent clients.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	printStep("universa version %s", version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	// The session's engine backs the dispatcher fallback AND the HTTP
	// surface, so a write through an MCP tool is visible to HTTP reads.
	handler := api.NewHandler(sess.engine)

	addr := fmt.Sprintf("127.0.0.1:%d", sess.cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Dispatcher: sess.dispatcher,
		Audit:      sess.audit,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("simulated backend listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("MCP server started (stdio transport)")
		if err := stdioSrv.Listen(gctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("MCP stdio server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		printStep("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
