package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemerchantCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remerchant <id> <name>",
		Short: "Overrides a transaction's merchant name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, name := args[0], args[1]
			if err := app.Store.UpdateTransactionMerchant(cmd.Context(), id, name); err != nil {
				return fmt.Errorf("remerchant: %w", err)
			}
			fmt.Printf("%s: merchant set to %q\n", id, name)
			return nil
		},
	}
}
