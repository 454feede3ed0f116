// Command expense-tracker is the command-line entry point: it loads
// configuration, opens the local store, wires every component, and
// dispatches to the cobra command tree in internal/cli.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chandrameenamohan/expense-tracker/internal/auth"
	"github.com/chandrameenamohan/expense-tracker/internal/categorize"
	"github.com/chandrameenamohan/expense-tracker/internal/cli"
	"github.com/chandrameenamohan/expense-tracker/internal/config"
	"github.com/chandrameenamohan/expense-tracker/internal/dedup"
	"github.com/chandrameenamohan/expense-tracker/internal/ingest"
	"github.com/chandrameenamohan/expense-tracker/internal/insights"
	"github.com/chandrameenamohan/expense-tracker/internal/llm"
	"github.com/chandrameenamohan/expense-tracker/internal/logging"
	"github.com/chandrameenamohan/expense-tracker/internal/parse"
	"github.com/chandrameenamohan/expense-tracker/internal/query"
	"github.com/chandrameenamohan/expense-tracker/internal/review"
	"github.com/chandrameenamohan/expense-tracker/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(os.Getenv("EXPENSE_TRACKER_DEBUG") != "")

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	llmBin := os.Getenv("EXPENSE_TRACKER_LLM_BIN")
	if llmBin == "" {
		llmBin = "claude"
	}
	gateway := llm.New(llmBin, llm.NewSubprocessRunner(llmBin), logger)

	authManager := auth.NewManager(cfg.HomeDir, cfg.Gmail.RedirectPort, time.Duration(cfg.Gmail.AuthTimeoutMs)*time.Millisecond)

	aiParser := parse.NewAIParser(gateway, cfg.Parser.BodyTruncationLimit)
	registry := parse.NewRegistry(aiParser, logger)

	app := &cli.App{
		Config:      cfg,
		Logger:      logger,
		Store:       db,
		Auth:        authManager,
		Gateway:     gateway,
		Registry:    registry,
		Categorizer: categorize.New(gateway, db),
		Dedup:       dedup.New(db, gateway, cfg.Dedup.DateToleranceDays, logger),
		Query:       query.New(db, gateway),
		Insights:    insights.New(db, cfg.Alerts.SpikeThreshold, cfg.Alerts.LargeTransactionAmount),
		Review:      review.New(db),
	}
	app.NewSyncer = func() (*ingest.Syncer, error) {
		ctx := context.Background()
		httpClient, err := authManager.Client(ctx)
		if err != nil {
			return nil, fmt.Errorf("authorize gmail: %w", err)
		}
		provider, err := ingest.NewGmailProvider(ctx, httpClient)
		if err != nil {
			return nil, err
		}
		return ingest.New(provider, db, logger), nil
	}

	root := cli.NewRootCommand(app)
	return root.ExecuteContext(context.Background())
}
