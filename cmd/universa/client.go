package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/universa-labs/universa-go/internal/auditlog"
	"github.com/universa-labs/universa-go/internal/backend"
	"github.com/universa-labs/universa-go/internal/config"
	"github.com/universa-labs/universa-go/internal/dispatch"
	"github.com/universa-labs/universa-go/internal/sim"
)

// session bundles everything a client command needs for one run.
type session struct {
	cfg        config.Config
	dispatcher *dispatch.Dispatcher
	engine     *sim.Engine
	audit      *auditlog.Store
}

func (s *session) Close() {
	if s.audit != nil {
		s.audit.Close()
	}
}

// newSession loads config, wires the dispatcher and probes the backend
// once so the mode is decided before the first functional call.
func newSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	setupLogging(cfg)

	audit, err := auditlog.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}

	initial := dispatch.Live
	if cfg.API.ForceSimulated {
		initial = dispatch.Simulated
	}

	client := backend.New(cfg.API.BaseURL,
		time.Duration(cfg.API.RequestTimeoutSecs)*time.Second,
		time.Duration(cfg.API.ProbeTimeoutSecs)*time.Second)

	engine := sim.New()
	d := dispatch.New(dispatch.NewModeState(initial), client, engine, audit)

	if mode := d.Probe(ctx); mode == dispatch.Simulated && !cfg.API.ForceSimulated {
		printWarning("backend unreachable, using local simulation")
	}

	return &session{cfg: cfg, dispatcher: d, engine: engine, audit: audit}, nil
}

func setupLogging(cfg config.Config) {
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

// printDocument writes a result document as indented JSON to stdout.
func printDocument(doc dispatch.Document) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// renderError prints the structured error document for non-transport
// failures. The command still exits zero: an application error is a
// result, not a tooling failure.
func renderError(err error) error {
	var de *dispatch.Error
	if errors.As(err, &de) {
		printError("%s", de.Message)
		return printDocument(de.Document())
	}
	return err
}
