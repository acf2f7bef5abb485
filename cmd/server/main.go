package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"carbonledger/internal/adapters/directory"
	httpadapter "carbonledger/internal/adapters/http"
	"carbonledger/internal/adapters/memory"
	"carbonledger/internal/adapters/notify"
	pg "carbonledger/internal/adapters/postgres"
	"carbonledger/internal/adapters/rediscache"
	"carbonledger/internal/config"
	"carbonledger/internal/factors"
	"carbonledger/internal/ports"
	"carbonledger/internal/services/allocation"
	"carbonledger/internal/services/invitations"
	"carbonledger/internal/services/portfolio"
	"carbonledger/internal/services/validation"
	"carbonledger/internal/workers/invitesweeper"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	var log *zap.Logger
	var err error
	if cfg.Env == "production" {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store ports.Store
	if cfg.DatabaseURL != "" {
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("db connect failed", zap.Error(err))
		}
		defer db.Close()
		store = db
	} else {
		// local runs without Postgres keep everything in memory
		log.Warn("DATABASE_URL not set, using in-memory store")
		store = memory.NewStore()
	}

	var notifier ports.Notifier
	if cfg.MailRelayURL != "" {
		notifier = notify.NewMailRelay(cfg.MailRelayURL, log)
	} else {
		log.Warn("MAIL_RELAY_URL not set, notifications are logged only")
		notifier = &notify.Discard{Log: log}
	}

	var dir ports.Directory
	if cfg.DirectoryURL != "" {
		dir = directory.NewClient(cfg.DirectoryURL)
	} else {
		dir = &directory.Static{}
	}

	validator := validation.New(validation.DefaultThresholds())

	invCfg := invitations.DefaultConfig()
	invCfg.DefaultExpiry = time.Duration(cfg.InvitationExpiryDays) * 24 * time.Hour
	invCfg.ReminderInterval = time.Duration(cfg.ReminderIntervalDays) * 24 * time.Hour
	invCfg.MaxReminders = cfg.MaxReminders
	invCfg.ExtensionDays = cfg.ExtensionDays
	invSvc := invitations.New(store, validator, notifier, dir, invCfg, log)

	calc := allocation.New(store, factors.NewTable())
	agg := portfolio.New(store, calc, log)
	if cfg.RedisAddr != "" {
		cache := rediscache.NewPortfolioCache(cfg.RedisAddr, cfg.PortfolioCacheTTL, log)
		if err := cache.Ping(ctx); err != nil {
			log.Warn("redis unreachable, portfolio cache disabled", zap.Error(err))
		} else {
			agg = agg.WithCache(cache)
		}
	}

	srv := httpadapter.New(invSvc, agg, dir, log)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	sweeper := invitesweeper.New(invSvc, cfg.SweepInterval, log)
	go sweeper.Run(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- http.ListenAndServe(cfg.ListenAddr, r) }()
	log.Info("listening", zap.String("addr", cfg.ListenAddr), zap.String("env", cfg.Env))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
		time.Sleep(300 * time.Millisecond)
	case err := <-errCh:
		log.Fatal("server error", zap.Error(err))
	}
}
