package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forget_me_not/internal/app"
	"forget_me_not/internal/infra/config"
	idb "forget_me_not/internal/infra/database"
	"forget_me_not/internal/infra/httpapi"
	"forget_me_not/internal/infra/logger"
	infraPush "forget_me_not/internal/infra/push"
	"forget_me_not/internal/infra/scheduler"
	"forget_me_not/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Get()
	log.WithField("environment", cfg.Environment).Info("Configuration loaded")

	// Database
	db, err := idb.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	if cfg.RunMigrations {
		if err := idb.RunMigrations(cfg.DatabaseURL, log); err != nil {
			log.Fatalf("FATAL: Could not run database migrations: %v", err)
		}
	}

	// Repositories
	personRepo := idb.NewPostgresPersonRepository(db)
	outreachRepo := idb.NewPostgresOutreachRepository(db)
	tokenRepo := idb.NewPostgresPushTokenRepository(db)

	// Services
	pushClient := infraPush.NewExpoClient(cfg.PushAPIURL)
	outreachService := app.NewOutreachService(personRepo, outreachRepo, log.WithField("component", "outreach_service"))
	dispatchService := app.NewDispatchService(personRepo, tokenRepo, pushClient, cfg.AppName, log.WithField("component", "dispatch_service"))
	suggestionService := app.NewSuggestionService(nil)

	// Scheduled dispatch
	dispatchScheduler := scheduler.NewDispatchScheduler(
		dispatchService,
		log.WithField("component", "scheduler"),
		cfg.CronSpecDispatch,
	)
	if err := dispatchScheduler.Start(); err != nil {
		log.Fatalf("FATAL: Could not start dispatch scheduler: %v", err)
	}

	// HTTP API
	handlers := httpapi.NewHandlers(
		outreachService,
		dispatchService,
		suggestionService,
		personRepo,
		outreachRepo,
		tokenRepo,
		log.WithField("component", "httpapi"),
	)
	e := httpapi.NewServer(handlers)
	go func() {
		log.WithField("addr", cfg.HTTPListenAddr).Info("HTTP server starting")
		if err := e.Start(cfg.HTTPListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("FATAL: HTTP server failed: %v", err)
		}
	}()

	// Optional owner chat surface
	botCtx, cancelBot := context.WithCancel(context.Background())
	defer cancelBot()
	var bot *telebot.Bot
	if cfg.TelegramToken != "" {
		pref := telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				entry := log.WithError(err)
				if c != nil && c.Sender() != nil {
					entry = entry.WithField("sender_id", c.Sender().ID)
				}
				entry.Error("Telegram handler error")
			},
		}
		bot, err = telebot.NewBot(pref)
		if err != nil {
			log.Fatalf("FATAL: Could not create Telegram bot: %v", err)
		}
		telegram.RegisterCheckInHandlers(
			botCtx,
			bot,
			outreachService,
			personRepo,
			suggestionService,
			cfg.OwnerUserID,
			cfg.OwnerTelegramID,
			log.WithField("component", "telegram"),
		)
		go bot.Start()
		log.Info("Telegram check-in bot started")
	} else {
		log.Info("TELEGRAM_TOKEN not set; chat surface disabled")
	}

	log.Info("Application setup complete")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	dispatchScheduler.Stop()
	if bot != nil {
		bot.Stop()
		cancelBot()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}
	log.Info("Application shut down gracefully")
}
