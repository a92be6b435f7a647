package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"GeoSentinel/internal/logging"
	"GeoSentinel/internal/notifier"
	"GeoSentinel/internal/scheduler"
	"GeoSentinel/internal/sources"
)

var runFlags struct {
	runOnStart bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daemon: scheduled digests, red-line checks and Telegram commands",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

func init() {
	runCmd.Flags().BoolVar(&runFlags.runOnStart, "run-on-start", os.Getenv("RUN_ON_START") == "true", "Send a digest immediately")
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	logger := logging.New("main")
	logger.Info().Str("version", version).Msg("GeoSentinel starting...")

	a, err := openAgent()
	if err != nil {
		return err
	}
	defer a.Close()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, a)
	if err := sched.RegisterAll(cfg.Schedule.DigestCron, cfg.Schedule.RedLineCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if err := cfg.ValidateNotifier(); err != nil {
		logger.Warn().Err(err).Msg("telegram disabled, digests are logged only")
	} else {
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Info().Msg("telegram polling started")
	}

	go func() {
		if err := sources.Watch(ctx, cfg.SourcesFile, a.SetSources); err != nil {
			logger.Warn().Err(err).Msg("source whitelist watch stopped")
		}
	}()

	if runFlags.runOnStart {
		logger.Info().Msg("run-on-start enabled, sending digest now")
		go sched.RunDigestNow()
	}

	logger.Info().Str("digest", cfg.Schedule.DigestCron).Str("redline", cfg.Schedule.RedLineCron).
		Msg("GeoSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		logger.Info().Msg("shutdown signal received, stopping...")
	case <-ctx.Done():
	}
	cancel()
	logger.Info().Msg("GeoSentinel stopped")
	return nil
}
