package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newReviewCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Walks the review queue interactively: a(ccept), c <cat>, s(kip), q(uit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			txs, err := app.Review.List(ctx)
			if err != nil {
				return fmt.Errorf("review: %w", err)
			}
			if len(txs) == 0 {
				fmt.Println("Review queue is empty.")
				return nil
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for _, tx := range txs {
				fmt.Printf("\n%s  %s  %.2f  %s  category=%s\n", tx.Date.Format("2006-01-02"), tx.Merchant, tx.Amount, tx.Bank, tx.Category)
				fmt.Print("[a]ccept / c <category> / s[kip] / q[uit]: ")

				if !scanner.Scan() {
					return nil
				}
				line := strings.TrimSpace(scanner.Text())
				switch {
				case line == "q":
					return nil
				case line == "s":
					continue
				case line == "a":
					if err := app.Review.Resolve(ctx, tx.ID, ""); err != nil {
						return fmt.Errorf("review: resolve %s: %w", tx.ID, err)
					}
				case strings.HasPrefix(line, "c "):
					category := strings.TrimSpace(strings.TrimPrefix(line, "c "))
					if err := app.Review.Resolve(ctx, tx.ID, category); err != nil {
						return fmt.Errorf("review: resolve %s: %w", tx.ID, err)
					}
				default:
					fmt.Println("unrecognized input, skipping")
				}
			}
			return nil
		},
	}
}
