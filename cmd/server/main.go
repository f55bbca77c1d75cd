package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/snigenigmatic/QuadChat/internal/auth"
	"github.com/snigenigmatic/QuadChat/internal/cache"
	"github.com/snigenigmatic/QuadChat/internal/config"
	"github.com/snigenigmatic/QuadChat/internal/delivery"
	"github.com/snigenigmatic/QuadChat/internal/handler"
	"github.com/snigenigmatic/QuadChat/internal/kafka"
	"github.com/snigenigmatic/QuadChat/internal/presence"
	"github.com/snigenigmatic/QuadChat/internal/service"
	"github.com/snigenigmatic/QuadChat/internal/store"
	"github.com/snigenigmatic/QuadChat/pkg/database"
	"github.com/snigenigmatic/QuadChat/pkg/jwt"
	"github.com/snigenigmatic/QuadChat/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := log.L()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Init(cfg.Log)
	logger := log.L()

	if cfg.Auth.Secret == "" {
		logger.Fatal().Msg("auth.secret (JWT_SECRET) is required")
	}

	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting quadchat server")

	// Database
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.AutoMigrate(db, store.Models()...); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	st := store.NewGormStore(db)
	logger.Info().Str("driver", cfg.Database.Driver).Msg("connected to database")

	// Optional Redis history cache
	var historyCache cache.HistoryCache
	if cfg.Redis.Enabled {
		historyCache, err = cache.NewRedisHistoryCache(cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		logger.Info().Str("address", cfg.Redis.Address).Msg("connected to redis")
	}

	// Optional Kafka archive producer
	var producer kafka.MessageProducer
	if cfg.Kafka.Enabled {
		producer, err = kafka.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create kafka producer")
		}
		logger.Info().Str("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("connected to kafka")
	}

	// Core
	registry := presence.NewRegistry()
	router := delivery.NewRouter(registry, st)
	chatSvc := service.NewChatService(registry, router, st, historyCache, producer, cfg.Chat, cfg.Redis.HistoryTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := chatSvc.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start chat service")
	}
	defer chatSvc.Stop()

	// Auth
	tokens := jwt.NewManager(cfg.Auth.Secret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	authenticator := auth.NewJWTAuthenticator(tokens, st)

	// HTTP + WebSocket
	wsHandler := handler.NewWSHandler(chatSvc, authenticator, cfg.WebSocket)
	httpHandler := handler.NewHTTPHandler(registry, st)

	r := mux.NewRouter()
	r.Use(log.HTTPMiddleware(logger))
	wsHandler.RegisterRoutes(r)
	httpHandler.RegisterRoutes(r)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("quadchat server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down quadchat server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
	}

	logger.Info().Msg("quadchat server stopped")
}
