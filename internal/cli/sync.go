package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chandrameenamohan/expense-tracker/internal/ingest"
)

func newSyncCommand(app *App) *cobra.Command {
	var since string
	var skipCategorize bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetches new mail, extracts transactions, categorizes, and dedups",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var sinceTime *time.Time
			if since != "" {
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("sync: invalid --since: %w", err)
				}
				sinceTime = &t
			}

			opts := ingest.Options{
				Senders:               app.Config.Gmail.Senders,
				SubjectKeywords:       app.Config.Gmail.SubjectKeywords,
				Since:                 sinceTime,
				DefaultLookbackMonths: app.Config.Sync.DefaultLookbackMonths,
				FetchBatchSize:        app.Config.Gmail.FetchBatchSize,
			}

			result, err := runSyncWithReauth(ctx, app, opts)
			if err != nil {
				return fmt.Errorf("sync: %w", err)
			}
			fmt.Printf("Fetched %d messages, %d new.\n", result.MessagesFound, result.NewEmailsStored)

			newTxIDs, err := parseAndStore(ctx, app, result.NewMessageIDs)
			if err != nil {
				return fmt.Errorf("sync: %w", err)
			}
			fmt.Printf("Extracted %d transactions.\n", len(newTxIDs))

			if !skipCategorize && len(newTxIDs) > 0 {
				if err := categorizeTransactions(ctx, app, newTxIDs); err != nil {
					return fmt.Errorf("sync: categorize: %w", err)
				}
			}

			if len(newTxIDs) > 0 {
				dedupResult, err := app.Dedup.Run(ctx, newTxIDs)
				if err != nil {
					return fmt.Errorf("sync: dedup: %w", err)
				}
				fmt.Printf("Checked %d duplicate candidates, marked %d.\n", dedupResult.CandidatesExamined, dedupResult.DuplicatesMarked)
			}

			alerts, err := app.Insights.PostSyncAlerts(ctx, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("sync: alerts: %w", err)
			}
			for _, a := range alerts {
				fmt.Printf("[%s] %s\n", a.Type, a.Message)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "only sync messages after this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&skipCategorize, "skip-categorize", false, "skip categorization for this sync")
	return cmd
}

// runSyncWithReauth runs one sync, and on an authorization-revoked error
// from the provider, deletes the stale token, re-authorizes
// interactively, and retries exactly once (spec.md §7).
func runSyncWithReauth(ctx context.Context, app *App, opts ingest.Options) (ingest.Result, error) {
	syncer, err := app.NewSyncer()
	if err != nil {
		return ingest.Result{}, err
	}

	result, err := syncer.Sync(ctx, opts)
	if err == nil || !errors.Is(err, ingest.ErrAuthRevoked) {
		return result, err
	}

	if delErr := app.Auth.DeleteToken(); delErr != nil {
		return ingest.Result{}, fmt.Errorf("reauthorize: %w", delErr)
	}
	fmt.Println("Gmail authorization was revoked; reauthorizing...")

	syncer, err = app.NewSyncer()
	if err != nil {
		return ingest.Result{}, err
	}
	return syncer.Sync(ctx, opts)
}

// parseAndStore runs the parsing pipeline over each newly stored raw
// email and persists whatever transactions it yields, returning the ids
// of the transactions actually inserted.
func parseAndStore(ctx context.Context, app *App, messageIDs []string) ([]string, error) {
	var allTxs []string
	for _, messageID := range messageIDs {
		email, err := app.Store.GetRawEmail(ctx, messageID)
		if err != nil {
			return nil, fmt.Errorf("get raw email %s: %w", messageID, err)
		}
		txs := app.Registry.Parse(ctx, *email)
		if len(txs) == 0 {
			continue
		}
		inserted, err := app.Store.InsertTransactions(ctx, txs)
		if err != nil {
			return nil, fmt.Errorf("insert transactions for %s: %w", messageID, err)
		}
		allTxs = append(allTxs, inserted...)
	}
	return allTxs, nil
}
