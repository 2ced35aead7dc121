package commands

import (
	"fmt"
	"slc-balance/internal/scrapers/slc"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Checks that the configured credentials can sign in.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		creds, err := credentials(cfg)
		if err != nil {
			return err
		}

		client, err := newClient(cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		result, err := client.Login(cmd.Context(), creds)
		if err != nil {
			return err
		}

		printLogin(cmd, result)
		if !result.Authenticated() {
			return fmt.Errorf("login was rejected at step: %s (status %d)", result.Step, result.StatusCode)
		}
		return nil
	},
}

func printLogin(cmd *cobra.Command, result slc.LoginResult) {
	t := newTable(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Step reached", "Status code", "Authenticated"})
	t.AppendRow(table.Row{result.Step.String(), result.StatusCode, result.Authenticated()})
	t.Render()
}
