package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [question]",
		Short: "Asks a natural-language question about stored transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if len(args) > 0 {
				ask(app, ctx, strings.Join(args, " "))
				return nil
			}

			fmt.Println("Ask a question about your transactions, or type 'q' to quit.")
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return nil
				}
				question := strings.TrimSpace(scanner.Text())
				if question == "q" || question == "" {
					return nil
				}
				ask(app, ctx, question)
			}
		},
	}
}

func ask(app *App, ctx context.Context, question string) {
	resp := app.Query.Ask(ctx, question)
	if resp.Error != "" {
		fmt.Println("error:", resp.Error)
		return
	}
	fmt.Println(resp.Answer)
}
