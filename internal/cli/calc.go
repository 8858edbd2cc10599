package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newCalcCmd(a *app) *cobra.Command {
	var (
		tail     int
		extended bool
	)
	cmd := &cobra.Command{
		Use:   "calc [file|-]",
		Short: "Compute indicators from a CSV price file",
		Long: `Read OHLCV rows (Date, Open, High, Low, Close, Volume) from a CSV file,
or from stdin when the argument is "-" or omitted, resample them to daily
bars and print the most recent rows with their technical indicators.

Example:
  analyst calc prices.csv --tail 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("tail") {
				if tail <= 0 {
					return fmt.Errorf("--tail must be positive")
				}
				a.cfg.Indicators.TailRows = tail
			}
			if cmd.Flags().Changed("extended") {
				a.cfg.Indicators.Extended = extended
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				in = f
			}
			data, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			out, err := a.calculator().Run(string(data))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().IntVar(&tail, "tail", 0, "number of most recent rows to print (default from config)")
	cmd.Flags().BoolVar(&extended, "extended", false, "add Bollinger Bands, ATR, OBV, VROC and Parabolic SAR")
	return cmd
}
