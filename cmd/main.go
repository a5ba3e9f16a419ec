package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flirting-singles/party-service/config"
	"github.com/flirting-singles/party-service/internal/catalog"
	"github.com/flirting-singles/party-service/internal/domain"
	"github.com/flirting-singles/party-service/internal/lobby"
	"github.com/flirting-singles/party-service/internal/postgres"
	"github.com/flirting-singles/party-service/internal/security"
	"github.com/flirting-singles/party-service/internal/service"
	httpx "github.com/flirting-singles/party-service/internal/transport/http"
	"github.com/flirting-singles/party-service/internal/transport/ws"
	"github.com/flirting-singles/party-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting party-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres (optional, history only) ---
	ctx := context.Background()
	var (
		chatSvc    *service.ChatService
		sessionSvc *service.SessionService
	)
	if cfg.Postgres.DSN != "" {
		db, err := postgres.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer db.Close()

		chatSvc = service.NewChatService(postgres.NewChatRepository(db.Pool))
		sessionSvc = service.NewSessionService(postgres.NewSessionRepository(db.Pool))
	} else {
		slog.Warn("postgres.dsn is empty, chat and session history disabled")
	}

	// --- game catalog ---
	games := make([]domain.Game, 0, len(cfg.Games))
	for _, g := range cfg.Games {
		games = append(games, domain.Game{
			ID:         g.ID,
			Name:       g.Name,
			MinPlayers: g.MinPlayers,
			MaxPlayers: g.MaxPlayers,
		})
	}
	cat := catalog.New(games)

	// --- lobby core ---
	hub := ws.NewHub()
	var recorder lobby.Recorder
	if sessionSvc != nil {
		recorder = sessionSvc
	}
	reg := lobby.NewRegistry(cat, ws.NewNotifier(hub), recorder, lobby.Config{
		RoomCap:        cfg.Lobby.RoomCap,
		CountdownStart: cfg.Lobby.CountdownSeconds,
		TickInterval:   cfg.Lobby.TickIntervalDuration(),
		GracePeriod:    cfg.Lobby.GracePeriodDuration(),
	})
	binder := lobby.NewBinder(reg)

	// --- transports ---
	verifier := security.NewTokenVerifier(cfg.Auth.Secret, cfg.Auth.Issuer)
	var wsChat ws.ChatSvc
	if chatSvc != nil {
		wsChat = chatSvc
	}
	wsServer := ws.NewServer(hub, reg, binder, verifier, wsChat)

	handler := httpx.NewHandler(reg, cat, chatSvc, sessionSvc)
	router := httpx.NewRouter(handler, verifier, wsServer)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
