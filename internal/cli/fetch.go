package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"MarketAnalyst/internal/collector"
)

func parseDateFlag(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return t, nil
}

func newFetchCmd(a *app) *cobra.Command {
	var start, end, interval string
	cmd := &cobra.Command{
		Use:   "fetch SYMBOL",
		Short: "Download price history and print it as CSV",
		Long: `Fetch bars from the configured data source and print them in the CSV
layout "analyst calc" reads.

Example:
  analyst fetch NVDA --start 2024-05-01 --end 2024-07-01 --interval 1d > nvda.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := parseDateFlag("start", start)
			if err != nil {
				return err
			}
			e, err := parseDateFlag("end", end)
			if err != nil {
				return err
			}
			if interval == "" {
				interval = a.cfg.DataSource.Interval
			}
			bars, err := a.fetcher().FetchHistory(cmd.Context(), strings.ToUpper(args[0]), collector.HistoryRequest{
				Start:    s,
				End:      e,
				Interval: interval,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), collector.EncodeCSV(bars))
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "day after the last day (YYYY-MM-DD, default now)")
	cmd.Flags().StringVar(&interval, "interval", "", "bar interval, e.g. 1d, 1wk, 1mo (default from config)")
	return cmd
}
