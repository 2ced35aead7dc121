package commands

import (
	"log/slog"
	"slc-balance/internal/components/chrono"
	"slc-balance/internal/components/telemetry"
	"slc-balance/internal/notify"

	"github.com/spf13/cobra"
)

var (
	watchSchedule string
	watchEmail    bool
)

func init() {
	watchCmd.Flags().StringVar(&watchSchedule, "cron", "0 9 * * 1", "When to fetch the summary, a cron expression in UK time.")
	watchCmd.Flags().BoolVar(&watchEmail, "email", false, "E-mail every summary using the email section of the config.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [--cron <spec>] [--email]",
	Short: "Fetches the account summary on a schedule until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		if watchEmail {
			err = cfg.Email.Validate()
			if err != nil {
				return err
			}
		}
		creds, err := credentials(cfg)
		if err != nil {
			return err
		}

		clock, err := chrono.NewStandardImpl()
		if err != nil {
			return err
		}
		tel := telemetry.NewScopedAPI("watch", telemetry.SlogAPI{})
		cron := chrono.NewStandardCron(clock, tel)

		ctx := cmd.Context()
		err = cron.Cron(watchSchedule, func() {
			result, err := fetchSummary(ctx, cfg, creds)
			if err != nil {
				tel.ReportBroken("fetch", err)
				return
			}
			slog.Info(
				"fetched summary",
				"fields", len(result.Summary),
				"missing", len(result.Failures),
			)
			if !watchEmail {
				return
			}
			err = notify.SendSummary(ctx, cfg.Email, result.Summary, clock.Now())
			if err != nil {
				tel.ReportBroken("email", err)
			}
		})
		if err != nil {
			return err
		}

		slog.Info("watching account summary", "cron", watchSchedule, "timezone", clock.Location())
		cron.Run(ctx)
		return nil
	},
}
