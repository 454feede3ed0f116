package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
)

func newFlagCommand(app *App) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "flag <id> correct|wrong",
		Short: "Records a ground-truth verdict on a transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, verdict := args[0], args[1]
			if verdict != string(domain.VerdictCorrect) && verdict != string(domain.VerdictWrong) {
				return fmt.Errorf("flag: verdict must be %q or %q", domain.VerdictCorrect, domain.VerdictWrong)
			}

			err := app.Store.InsertEvalFlag(cmd.Context(), domain.EvalFlag{
				TransactionID: id,
				Verdict:       domain.EvalVerdict(verdict),
				Notes:         notes,
				CreatedAt:     time.Now().UTC(),
			})
			if err != nil {
				return fmt.Errorf("flag: %w", err)
			}
			fmt.Printf("%s flagged %s\n", id, verdict)
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "optional free-text note")
	return cmd
}
