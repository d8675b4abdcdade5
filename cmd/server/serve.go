package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmetk3436/medassist/internal/chat"
	"github.com/ahmetk3436/medassist/internal/clinic"
	"github.com/ahmetk3436/medassist/internal/config"
	"github.com/ahmetk3436/medassist/internal/database"
	"github.com/ahmetk3436/medassist/internal/handlers"
	"github.com/ahmetk3436/medassist/internal/llm"
	"github.com/ahmetk3436/medassist/internal/reminders"
	"github.com/ahmetk3436/medassist/internal/routes"
	"github.com/ahmetk3436/medassist/internal/streams"
	"github.com/ahmetk3436/medassist/internal/tools"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			return serve(cfg, db)
		},
	}
}

func serve(cfg *config.Config, db *gorm.DB) error {
	slog.Info("Starting MedAssist", "version", handlers.Version)

	// ─── Resumable streams ──────────────────────────────────────────────
	var store streams.Store
	var pinger handlers.Pinger
	var redisStore *streams.RedisStore
	if cfg.ResumableStreams() {
		rs, err := streams.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return err
		}
		redisStore = rs
		store, pinger = rs, rs
		slog.Info("Resumable streams enabled")
	} else {
		slog.Info("REDIS_URL not set, resumable streams disabled")
	}

	// ─── Reminder delivery ──────────────────────────────────────────────
	var queue *reminders.Queue
	var enqueuer reminders.Enqueuer
	if cfg.RabbitURL != "" {
		q, err := reminders.DialQueue(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			slog.Warn("RabbitMQ unavailable, delivering reminders inline", "error", err)
		} else {
			queue, enqueuer = q, q
		}
	}
	dispatcher := reminders.NewDispatcher(db, pushSender(cfg), enqueuer)

	scheduler := reminders.NewScheduler(dispatcher, cfg.ReminderInterval())
	scheduler.Start()

	// ─── Chat ───────────────────────────────────────────────────────────
	clinicStore := clinic.NewStore(db)
	chatSvc := chat.NewService(
		chat.NewRepo(db),
		tools.Catalog(clinicStore),
		llm.NewOpenAIClient(cfg.LLMAPIKey, cfg.LLMBaseURL),
		llm.NewCatalog(cfg),
		store,
		chat.Options{
			MaxSteps:    cfg.ChatMaxSteps,
			MaxDuration: cfg.ChatMaxDuration(),
			WordDelay:   cfg.SmoothStreamDelay(),
		},
	)

	// ─── Handlers ───────────────────────────────────────────────────────
	h := routes.Handlers{
		Auth:   handlers.NewAuthHandler(db, cfg),
		Chat:   handlers.NewChatHandler(chatSvc, db),
		Clinic: handlers.NewClinicHandler(clinicStore),
		Speech: handlers.NewSpeechHandler(llm.NewWhisper(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.TranscriptionModel)),
		Push:   handlers.NewPushHandler(db, dispatcher, cfg.CronSecret),
		Audit:  handlers.NewAuditHandler(db),
		System: handlers.NewSystemHandler(db, pinger),
	}

	// ─── Fiber App ──────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      "medassist v" + handlers.Version,
		ServerHeader: "medassist",
		BodyLimit:    25 * 1024 * 1024, // audio uploads
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal server error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": message,
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Cron-Secret",
		AllowMethods:  "GET, POST, PUT, DELETE, PATCH, OPTIONS",
		ExposeHeaders: "X-Stream-Id",
	}))

	app.Use(recover.New(recover.Config{
		EnableStackTrace: false,
	}))

	// Security headers
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	})

	// Request logger
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if c.Path() == "/api/health" {
			return err
		}
		slog.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.IP(),
		)
		return err
	})

	routes.Setup(app, cfg, h)

	// ─── Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("Shutting down MedAssist...")

		scheduler.Stop()

		if err := app.ShutdownWithTimeout(cfg.ChatMaxDuration()); err != nil {
			slog.Error("Fiber shutdown error", "error", err)
		}
		if queue != nil {
			queue.Close()
		}
		if redisStore != nil {
			redisStore.Close()
		}
		database.Close(db)
	}()

	// ─── Start ──────────────────────────────────────────────────────────
	listenAddr := ":" + cfg.Port
	slog.Info("MedAssist listening", "addr", listenAddr)

	return app.Listen(listenAddr)
}
