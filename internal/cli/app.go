// Package cli implements the Command Surface (C11): the cobra commands
// spec.md §6 names, wired against the components assembled by
// cmd/expense-tracker/main.go.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/chandrameenamohan/expense-tracker/internal/auth"
	"github.com/chandrameenamohan/expense-tracker/internal/categorize"
	"github.com/chandrameenamohan/expense-tracker/internal/config"
	"github.com/chandrameenamohan/expense-tracker/internal/dedup"
	"github.com/chandrameenamohan/expense-tracker/internal/ingest"
	"github.com/chandrameenamohan/expense-tracker/internal/insights"
	"github.com/chandrameenamohan/expense-tracker/internal/llm"
	"github.com/chandrameenamohan/expense-tracker/internal/parse"
	"github.com/chandrameenamohan/expense-tracker/internal/ports"
	"github.com/chandrameenamohan/expense-tracker/internal/query"
	"github.com/chandrameenamohan/expense-tracker/internal/review"
)

// App bundles every assembled component the command surface dispatches
// into. main.go constructs one; commands never reach past it for
// dependencies.
type App struct {
	Config      config.Config
	Logger      zerolog.Logger
	Store       ports.Store
	Auth        *auth.Manager
	Gateway     *llm.Gateway
	Registry    *parse.Registry
	Categorizer *categorize.Categorizer
	Dedup       *dedup.Engine
	Query       *query.Engine
	Insights    *insights.Engine
	Review      *review.Queue

	// NewSyncer builds a Syncer against a freshly authorized mail
	// provider; sync needs a live client per invocation since the token
	// may have been reacquired since the App was built.
	NewSyncer func() (*ingest.Syncer, error)
}

// NewRootCommand assembles the full command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "expense-tracker",
		Short: "Extracts, categorizes, and reports on bank and UPI transactions from email",
	}

	root.AddCommand(
		newSetupCommand(app),
		newSyncCommand(app),
		newListCommand(app),
		newSummaryCommand(app),
		newReviewCommand(app),
		newRecategorizeCommand(app),
		newRemerchantCommand(app),
		newReparseCommand(app),
		newChatCommand(app),
		newFlagCommand(app),
	)
	return root
}
