package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"MarketAnalyst/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigValidateCmd(a))
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file populated with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Default().SaveToFile(output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "configs/config.yaml", "output file path")
	return cmd
}

func newConfigValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the config file with environment overrides and validate it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config %s: %w", a.configPath, err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config %s is valid\n", a.configPath)
			fmt.Fprintf(out, "  provider:  %s\n", a.cfg.DataSource.Provider)
			fmt.Fprintf(out, "  watchlist: %v\n", a.cfg.Watchlist.Symbols)
			fmt.Fprintf(out, "  cron:      %s\n", a.cfg.Schedule.ReportCron)
			return nil
		},
	}
}
