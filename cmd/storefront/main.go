package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/login"
	"github.com/Skotchmaster/storefront/internal/state"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/tokenstore"
	"github.com/Skotchmaster/storefront/internal/ui"
)

func main() {
	cfg := config.Load()

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL, cfg.TokenDBPath)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		publisher = producer
	}

	api := apiclient.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)
	store := state.NewStore()
	tokenStore := &tokenstore.GormStore{DB: gdb}
	recorder := &ui.Recorder{}
	notifier := ui.Tee{recorder, ui.LogNotifier{Logger: logger.With("component", "ui")}}

	if len(cfg.JWTSecret) == 0 {
		logger.Warn("JWT_SECRET not set, auth tokens are decoded without signature checks")
	}

	screens := &httpserver.ScreenHTTP{
		Login: &login.Flow{
			API:      api,
			Tokens:   tokenStore,
			Decoder:  tokens.NewDecoder(cfg.JWTSecret),
			Store:    store,
			Notifier: notifier,
			Nav:      recorder,
			Events:   publisher,
		},
		Checkout: &checkout.Flow{
			API:           api,
			Store:         store,
			Notifier:      notifier,
			Nav:           recorder,
			Events:        publisher,
			Tokens:        tokenStore,
			AuthCartFetch: cfg.CartFetchAuth,
		},
		Store:    store,
		Recorder: recorder,
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	httpserver.Register(e, &httpserver.Deps{Screens: screens, Logger: logger})

	go func() {
		logger.Info("storefront listening", "addr", cfg.ListenAddr, "api", cfg.APIBaseURL)
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("echo start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	if err := db.Close(gdb); err != nil {
		logger.Error("db close error", "error", err)
	}

	logger.Info("shutdown complete")
}
