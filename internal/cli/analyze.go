package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"MarketAnalyst/internal/analyst"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "analyze COMPANY",
		Short: "Run the LLM analyst and write a technical-analysis report",
		Long: `Ask the analyst agent for a full technical analysis of a company. The agent
fetches prices and news and calls the indicator calculator as tools. Requires
OPENAI_API_KEY.

Example:
  analyst analyze Apple --output outputs/apple.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = a.cfg.Agent.OutputFile
			}
			tb := &analyst.Toolbox{Fetcher: a.fetcher(), Calc: a.calculator(), Logger: a.logger}
			an := analyst.New(tb, a.cfg.Agent.Model, a.cfg.Agent.MaxTurns, output, a.logger)

			report, err := an.Run(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "markdown output path (default from config)")
	return cmd
}
