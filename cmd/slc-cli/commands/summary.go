package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slc-balance/internal/notify"
	"slc-balance/internal/scrapers/slc"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	summaryJson  bool
	summaryEmail bool
)

func init() {
	summaryCmd.Flags().BoolVar(&summaryJson, "json", false, "Print the summary as JSON.")
	summaryCmd.Flags().BoolVar(&summaryEmail, "email", false, "E-mail the summary using the email section of the config.")
	rootCmd.AddCommand(summaryCmd)
}

var summaryCmd = &cobra.Command{
	Use:   "summary [--json] [--email]",
	Short: "Signs in and prints the account summary.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		creds, err := credentials(cfg)
		if err != nil {
			return err
		}

		result, err := fetchSummary(cmd.Context(), cfg, creds)
		if err != nil {
			return err
		}

		if summaryJson {
			err = printSummaryJson(cmd.OutOrStdout(), result)
			if err != nil {
				return err
			}
		} else {
			printSummaryTable(cmd.OutOrStdout(), result)
		}

		if summaryEmail {
			err = notify.SendSummary(cmd.Context(), cfg.Email, result.Summary, time.Now())
			if err != nil {
				return err
			}
			slog.Info("sent summary email", "to", cfg.Email.To)
		}
		return nil
	},
}

// fetchSummary signs in with a fresh session and reads the overview page.
func fetchSummary(ctx context.Context, cfg Config, creds slc.Credentials) (slc.SummaryResult, error) {
	client, err := newClient(cfg)
	if err != nil {
		return slc.SummaryResult{}, err
	}
	defer client.Close()

	login, err := client.Login(ctx, creds)
	if err != nil {
		return slc.SummaryResult{}, err
	}
	if !login.Authenticated() {
		return slc.SummaryResult{}, fmt.Errorf("login was rejected at step: %s (status %d)", login.Step, login.StatusCode)
	}

	result, err := client.Summary(ctx)
	if err != nil {
		return result, err
	}
	if !result.Ok() {
		return result, fmt.Errorf("overview page returned status %d", result.StatusCode)
	}
	return result, nil
}

type summaryJsonOutput struct {
	Summary slc.Summary       `json:"summary"`
	Missing map[string]string `json:"missing,omitempty"`
}

func printSummaryJson(out io.Writer, result slc.SummaryResult) error {
	output := summaryJsonOutput{Summary: result.Summary}
	if len(result.Failures) > 0 {
		output.Missing = map[string]string{}
		for _, failure := range result.Failures {
			output.Missing[string(failure.Field)] = failure.Err.Error()
		}
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func printSummaryTable(out io.Writer, result slc.SummaryResult) {
	missing := map[slc.Field]error{}
	for _, failure := range result.Failures {
		missing[failure.Field] = failure.Err
	}

	t := newTable(out)
	t.AppendHeader(table.Row{"Field", "Value"})
	for _, field := range slc.Fields {
		if err, ok := missing[field]; ok {
			t.AppendRow(table.Row{field, fmt.Sprintf("unavailable (%s)", err)})
			continue
		}
		switch value := result.Summary[field].(type) {
		case float64:
			if field == slc.FieldInterestRate {
				t.AppendRow(table.Row{field, fmt.Sprintf("%.2f%%", value*100)})
				continue
			}
			t.AppendRow(table.Row{field, fmt.Sprintf("£%.2f", value)})
		case string:
			t.AppendRow(table.Row{field, value})
		}
	}
	t.Render()
}
