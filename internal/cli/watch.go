package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"MarketAnalyst/internal/notifier"
	"MarketAnalyst/internal/scheduler"
)

func newWatchCmd(a *app) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Report on the watchlist on a cron schedule and answer Telegram commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := cfg.ValidateTelegram(); err != nil {
				return err
			}
			log := a.logger
			log.Info("MarketAnalyst starting", zap.String("version", Version))

			tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)

			rec := a.recorder()
			defer rec.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sched := scheduler.NewScheduler(ctx, a.collector(), tn, rec, cfg.Watchlist.Symbols, log)
			if err := sched.RegisterAll(cfg.Schedule.ReportCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			go tn.StartPolling(ctx, sched.HandleCommand)

			if runOnStart || os.Getenv("RUN_ON_START") == "true" {
				log.Info("running initial report")
				go sched.RunNow()
			}

			startup := notifier.FormatWatchlist(cfg.Watchlist.Symbols, cfg.Schedule.ReportCron)
			if err := tn.SendWithRetry(ctx, startup, scheduler.SendRetries); err != nil {
				log.Warn("startup message failed", zap.Error(err))
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case sig := <-sigCh:
				log.Info("shutting down", zap.String("signal", sig.String()))
			case <-ctx.Done():
			}
			cancel()
			return nil
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "report on the watchlist immediately (also RUN_ON_START=true)")
	return cmd
}
