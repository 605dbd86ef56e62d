package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/internal/api"
	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/internal/config"
	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/internal/match"
	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/internal/metrics"
	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/internal/rating"
	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/internal/store"
	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	setupLogging(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ratings survive restarts through Redis; queues and pending
	// matches are in-memory only.
	st := store.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
	defer st.Close()

	ratings := rating.NewStore(st)
	if persisted, err := st.LoadAllPlayers(ctx); err != nil {
		log.Warn().Err(err).Msg("could not load persisted ratings, starting cold")
	} else {
		ratings.Seed(persisted)
		log.Info().Int("players", len(persisted)).Msg("ratings restored")
	}

	hub := ws.NewHub()
	go hub.Run()

	eng := match.NewEngine(match.Config{
		TickInterval:   cfg.TickInterval,
		AcceptTimeout:  cfg.AcceptTimeout,
		MatchRetention: cfg.MatchRetention,
	}, ratings, hub)
	go eng.Run(ctx)

	metrics.Init()

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: api.NewRouter(eng, ratings, hub)}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	cancel()
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShut()
	_ = srv.Shutdown(ctxShut)
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()
}
