package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/quiz-event-console/internal/config"
	"github.com/iliyamo/quiz-event-console/internal/database"
	"github.com/iliyamo/quiz-event-console/internal/handler"
	"github.com/iliyamo/quiz-event-console/internal/importer"
	"github.com/iliyamo/quiz-event-console/internal/queue"
	"github.com/iliyamo/quiz-event-console/internal/repository"
	"github.com/iliyamo/quiz-event-console/internal/router"
	"github.com/iliyamo/quiz-event-console/internal/session"
	"github.com/iliyamo/quiz-event-console/internal/upstream"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogger(cfg)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable; rate limiting and response cache disabled")
	}

	sessions := session.NewManager()
	staging := importer.NewStore()
	registry := upstream.NewRegistry(upstream.Config{
		BaseURL: cfg.UpstreamBaseURL,
		Timeout: cfg.UpstreamTimeout,
		Logger:  log.With().Str("component", "upstream").Logger(),
	})
	jobs := repository.NewImportJobRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.Register(e, router.Deps{
		Sessions:     sessions,
		Auth:         handler.NewAuthHandler(sessions, registry, staging),
		Menu:         handler.NewMenuHandler(registry, sessions, log.With().Str("component", "menu").Logger()),
		Import:       handler.NewImportHandler(staging, registry, sessions, jobs, cfg.ImportMaxBytes, log.With().Str("component", "import").Logger()),
		Participants: handler.NewParticipantHandler(registry, sessions),
		Directory:    handler.NewDirectoryHandler(registry, sessions),
		Redis:        rdb,
		RateLimit:    config.LoadRateLimitConfig(),
		Cache:        config.LoadCacheConfig(),
	})

	// The consumer mirrors imported events into the on-disk audit log
	// and reconnects on its own; it never blocks startup.
	go func() {
		if err := queue.StartImportConsumer(); err != nil {
			log.Warn().Err(err).Msg("import consumer stopped")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("upstream", cfg.UpstreamBaseURL).Msg("console listening")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Env == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
