package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"MarketAnalyst/internal/notifier"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		send   bool
	)
	cmd := &cobra.Command{
		Use:   "report SYMBOL",
		Short: "Fetch, calculate and score the latest indicators for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.collector().Collect(cmd.Context(), strings.ToUpper(args[0]))
			if err != nil {
				return err
			}

			rec := a.recorder()
			defer rec.Close()
			if err := rec.RecordReport(report); err != nil {
				a.logger.Error("record report failed", zap.Error(err))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			fmt.Fprintln(out, report.Text)
			s := report.Summary
			fmt.Fprintf(out, "\nBias: %s (score %+.3f)\n", s.Bias, s.TotalScore)
			fmt.Fprintf(out, "Support: %.2f  Resistance: %.2f\n", s.Support, s.Resistance)
			for _, f := range s.Factors {
				fmt.Fprintf(out, "  %-15s %+.1f x %.2f = %+.3f  %s\n", f.Name, f.RawScore, f.Weight, f.Weighted, f.Commentary)
			}
			if s.WarningMsg != "" {
				fmt.Fprintf(out, "Warning: %s\n", s.WarningMsg)
			}

			if send {
				if err := a.cfg.ValidateTelegram(); err != nil {
					return err
				}
				tn := notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy, a.logger)
				return tn.SendWithRetry(cmd.Context(), notifier.FormatReport(report), 3)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&send, "send", false, "also deliver the report to Telegram")
	return cmd
}
