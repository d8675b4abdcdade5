package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ahmetk3436/medassist/internal/config"
	"github.com/ahmetk3436/medassist/internal/database"
	"github.com/ahmetk3436/medassist/internal/push"
	"github.com/ahmetk3436/medassist/internal/reminders"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	// JSON structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd := &cobra.Command{
		Use:          "medassist",
		Short:        "Healthcare assistant API with tool-calling chat",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(sendRemindersCmd())
	rootCmd.AddCommand(workerCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration and opens the database.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func pushSender(cfg *config.Config) push.Sender {
	if !cfg.PushEnabled() {
		slog.Warn("VAPID keys not set, push notifications disabled")
		return nil
	}
	return push.NewWebPush(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return err
			}
			slog.Info("Migrations applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo doctors, labs and lab tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return err
			}
			if err := database.Seed(cmd.Context(), db); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			slog.Info("Seed data loaded")
			return nil
		},
	}
}

func sendRemindersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send-reminders",
		Short: "Deliver the reminders due this minute and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer database.Close(db)

			var queue reminders.Enqueuer
			if cfg.RabbitURL != "" {
				q, err := reminders.DialQueue(cfg.RabbitURL, cfg.RabbitQueue)
				if err != nil {
					return err
				}
				defer q.Close()
				queue = q
			}

			report, err := reminders.NewDispatcher(db, pushSender(cfg), queue).SendDue(cmd.Context())
			if err != nil {
				return err
			}
			slog.Info("Reminders sent", "due", report.Due, "queued", report.Queued, "sent", report.Sent, "failed", report.Failed)
			return nil
		},
	}
}

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume queued reminders and deliver push notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if cfg.RabbitURL == "" {
				return errors.New("RABBITMQ_URL is required for the worker")
			}
			sender := pushSender(cfg)
			if sender == nil {
				return errors.New("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY are required for the worker")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			d := reminders.NewDispatcher(db, sender, nil)
			err = reminders.RunWorker(ctx, cfg.RabbitURL, cfg.RabbitQueue, cfg.WorkerConcurrency, d)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			slog.Info("Reminder worker stopped")
			return nil
		},
	}
}
