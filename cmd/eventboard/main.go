package main

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/eventboard/internal/api"
	"github.com/Kerhoff/eventboard/internal/config"
	"github.com/Kerhoff/eventboard/internal/handlers"
	"github.com/Kerhoff/eventboard/internal/metrics"
	"github.com/Kerhoff/eventboard/internal/models"
	"github.com/Kerhoff/eventboard/internal/notify"
	"github.com/Kerhoff/eventboard/internal/repository"
	"github.com/Kerhoff/eventboard/internal/repository/file"
	"github.com/Kerhoff/eventboard/internal/repository/memory"
	"github.com/Kerhoff/eventboard/internal/repository/postgres"
	"github.com/Kerhoff/eventboard/internal/service"
	"github.com/Kerhoff/eventboard/internal/telegram"
	"github.com/Kerhoff/eventboard/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel, cfg.LogFormat)
	l.Info("Starting eventboard...")

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	m := metrics.New()

	// Store and change feed
	bus := notify.NewBus()
	defer bus.Close()
	bus.Subscribe(m.ObserveChange)
	bus.Subscribe(func(c models.Change) {
		l.WithFields(logrus.Fields{
			"type":     c.Type,
			"event_id": c.Event.ID,
			"dates":    c.Dates(),
		}).Debug("Store changed")
	})
	store := memory.NewEventStore(memory.WithObserver(bus.Publish))

	// Session slot
	var sessions repository.SessionStore
	if cfg.DatabaseURL != "" {
		db, err := config.NewDatabase(cfg.DatabaseURL, l)
		if err != nil {
			l.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.Migrate(cfg.MigrationsPath); err != nil {
			l.Fatalf("Failed to run migrations: %v", err)
		}
		sessions = postgres.NewSessionStore(db.DB)
		l.Info("Using Postgres session storage")
	} else {
		sessions, err = file.NewSessionStore(cfg.SessionDir)
		if err != nil {
			l.Fatalf("Failed to open session directory: %v", err)
		}
		l.Infof("Using file session storage in %s", cfg.SessionDir)
	}

	// Service layer
	svc := service.New(l, store, sessions, bus, service.WithRecorder(m))

	if cfg.SeedEvents > 0 {
		now := time.Now()
		rng := rand.New(rand.NewPCG(uint64(now.UnixNano()), 0))
		if err := svc.Seed(ctx, cfg.SeedEvents, now, rng); err != nil {
			l.Fatalf("Failed to seed events: %v", err)
		}
	}

	// Telegram bot, optional
	if cfg.TelegramToken != "" {
		startBot(ctx, cfg, svc, l)
	} else {
		l.Info("TELEGRAM_TOKEN not set, bot disabled")
	}

	// HTTP API
	apiServer := api.NewServer(svc, l, m)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsServer := &http.Server{
		Addr:              ":" + cfg.PrometheusPort,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	for name, srv := range map[string]*http.Server{"HTTP": httpServer, "Metrics": metricsServer} {
		go func() {
			l.Infof("%s server listening on %s", name, srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				l.Errorf("%s server error: %v", name, err)
				cancel()
			}
		}()
	}

	l.Info("eventboard started successfully")

	<-ctx.Done()

	l.Info("Shutting down servers...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.Errorf("HTTP server shutdown: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		l.Errorf("Metrics server shutdown: %v", err)
	}

	l.Info("eventboard stopped")
}

func startBot(ctx context.Context, cfg *config.Config, svc *service.Service, l *logrus.Logger) {
	bot, err := telegram.NewBot(cfg.TelegramToken, l)
	if err != nil {
		l.Fatalf("Failed to create Telegram bot: %v", err)
	}

	subs := handlers.NewSubscribers()

	bot.RegisterCommand("start", handlers.NewStartHandler(l))
	bot.RegisterCommand("help", handlers.NewHelpHandler(l))

	// Calendar handlers
	bot.RegisterCommand("event", handlers.NewEventAddHandler(svc, l))
	bot.RegisterCommand("events", handlers.NewEventsHandler(svc, l))
	bot.RegisterCommand("move", handlers.NewMoveHandler(svc, l))
	bot.RegisterCommand("rename", handlers.NewRenameHandler(svc, l))
	bot.RegisterCommand("delevent", handlers.NewEventDeleteHandler(svc, l))

	// Digest handlers
	bot.RegisterCommand("subscribe", handlers.NewSubscribeHandler(subs, l))
	bot.RegisterCommand("unsubscribe", handlers.NewUnsubscribeHandler(subs, l))

	go svc.StartDigestScheduler(ctx, cfg.DigestInterval, time.Now, func(date string, events []*models.Event) {
		text := handlers.FormatAgenda(date, events)
		for _, chatID := range subs.Chats() {
			if err := bot.SendMessage(chatID, text); err != nil {
				l.WithField("chat_id", chatID).Errorf("Failed to send digest: %v", err)
			}
		}
	})

	go func() {
		if err := bot.Start(ctx); err != nil {
			l.Errorf("Bot error: %v", err)
		}
	}()
}
