package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "fintech_sentiment/internal/adapters/http_server"
	"fintech_sentiment/internal/adapters/observability"
	redisad "fintech_sentiment/internal/adapters/redis"
	"fintech_sentiment/internal/app"
	"fintech_sentiment/internal/domain"
	"fintech_sentiment/internal/shared"
	"fintech_sentiment/internal/storage/csvstore"
	mysqlrepo "fintech_sentiment/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// review source
	var source domain.ReviewSource
	switch cfg.Source {
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		source = mysqlrepo.New(db)
	default:
		source = csvstore.New(cfg.DataPath)
	}

	// Load eagerly: a missing data file must halt startup with a clear
	// message, never surface later as a half-rendered dashboard.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	table, err := source.Load(ctx)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("source", cfg.Source).
			Msg("review data not found; run the sentiment pipeline first")
	}
	log.Info().Int("reviews", len(table)).Str("source", cfg.Source).Msg("review table loaded")

	// cache
	var cache domain.Cache = redisad.Noop{}
	if cfg.RedisAddr != "" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}

	q := app.NewDashboardService(source, cache, cfg.CacheTTL)
	a := app.NewAnswerService(source)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, A: a, AskRPS: float64(cfg.AskRPS)})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
