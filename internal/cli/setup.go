package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSetupCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Authorizes Gmail access and prepares the local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(app.Config.HomeDir, 0o700); err != nil {
				return fmt.Errorf("setup: create home dir: %w", err)
			}

			if _, err := app.Auth.Client(cmd.Context()); err != nil {
				return fmt.Errorf("setup: authorize gmail: %w", err)
			}

			fmt.Println("Gmail authorized and local store ready at", app.Config.DBPath)
			return nil
		},
	}
}
