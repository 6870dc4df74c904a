package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"smart-todo/internal/bot"
	"smart-todo/internal/service"
)

const jobTimeout = 30 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot with the digest and insight jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, runServe)
		},
	}
}

func runServe(ctx context.Context, a *app) error {
	if err := a.cfg.ValidateBot(); err != nil {
		return err
	}

	telegramBot, err := bot.New(a.cfg.TelegramToken, a.cfg.OwnerChatID, bot.Services{
		Tasks:      a.tasks,
		Categories: a.categories,
		Contexts:   a.contexts,
		Digest:     a.digest,
		Engine:     a.engine,
		Reconciler: a.reconciler,
	}, a.logger)
	if err != nil {
		return err
	}

	scheduler := service.NewSchedulerService(time.Local, a.logger)
	if err := scheduleJobs(scheduler, a, telegramBot.SendDigest); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	a.logger.Info("smart todo bot started", zap.Int64("owner", a.cfg.OwnerChatID))
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger.Info("shutdown complete")
	return nil
}

// scheduleJobs registers the digest (daily at DigestTime, else every
// DigestInterval) and the insight pass.
func scheduleJobs(scheduler *service.SchedulerService, a *app, sendDigest service.Job) error {
	if a.cfg.DigestTime != "" {
		if _, err := scheduler.ScheduleDaily("digest", a.cfg.DigestTime, jobTimeout, sendDigest); err != nil {
			return err
		}
	} else if _, err := scheduler.ScheduleInterval("digest", a.cfg.DigestInterval, jobTimeout, sendDigest); err != nil {
		return err
	}

	_, err := scheduler.ScheduleInterval("insights", a.cfg.InsightInterval, jobTimeout, func(ctx context.Context) error {
		_, err := a.insights.ProcessPending(ctx)
		return err
	})
	return err
}
