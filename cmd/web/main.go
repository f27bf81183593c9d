package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/op-bracket/internal/cache"
	"github.com/AdamBeresnev/op-bracket/internal/config"
	"github.com/AdamBeresnev/op-bracket/internal/db"
	"github.com/AdamBeresnev/op-bracket/internal/events"
	"github.com/AdamBeresnev/op-bracket/internal/logger"
	"github.com/AdamBeresnev/op-bracket/internal/service"
	"github.com/AdamBeresnev/op-bracket/internal/store"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "op-bracket",
	})
	defer log.Sync()

	database, err := db.InitDB(cfg.Database.Path, cfg.Database.BusyTimeout)
	if err != nil {
		log.Fatal("Failed to open database", "path", cfg.Database.Path, "error", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	ctx := context.Background()
	deps := service.Deps{Log: log}

	if cfg.Redis.Address != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", "address", cfg.Redis.Address, "error", err)
		}
		defer client.Close()
		deps.Cache = cache.NewRedisBracketCache(client, cfg.Redis.TTL)
		log.Info("Bracket cache enabled", "address", cfg.Redis.Address)
	}

	if cfg.NATS.URL != "" {
		publisher, err := events.Connect(ctx, cfg.NATS, log)
		if err != nil {
			log.Fatal("Failed to connect to NATS", "url", cfg.NATS.URL, "error", err)
		}
		defer publisher.Close()
		deps.Publisher = publisher
		log.Info("Event publishing enabled", "url", cfg.NATS.URL)
	}

	tournamentStore := store.NewTournamentStore(database)
	app := &application{
		log:         log,
		tournaments: service.NewTournamentService(database, tournamentStore, deps),
		matches:     service.NewMatchService(database, tournamentStore, deps),
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           newRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("Server starting", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	<-done
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}
}
