package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"fintech_sentiment/internal/adapters/feed"
	"fintech_sentiment/internal/adapters/observability"
	"fintech_sentiment/internal/domain"
	"fintech_sentiment/internal/shared"
	"fintech_sentiment/internal/storage/csvstore"
	mysqlrepo "fintech_sentiment/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("data", cfg.DataPath).
		Str("feed", cfg.FeedBase).
		Int("workers", cfg.Workers).
		Int("batch", cfg.BatchSize).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	table, err := loadInput(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("loading review input failed")
	}
	log.Info().Int("reviews", len(table)).Msg("input loaded")

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for start := 0; start < len(table); start += cfg.BatchSize {
		end := start + cfg.BatchSize
		if end > len(table) {
			end = len(table)
		}
		batch := table[start:end]

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(offset int, rs []domain.Review) {
			defer wg.Done()
			defer sem.Release(1)

			if err := repo.UpsertReviews(ctx, rs); err != nil {
				log.Warn().Int("offset", offset).Err(err).Msg("batch upsert failed")
				return
			}
			observability.ReviewsIngested.Add(float64(len(rs)))
			log.Info().Int("offset", offset).Int("rows", len(rs)).Msg("batch ok")
		}(start, batch)
	}

	wg.Wait()
	log.Info().Msg("ingestion completed")
}

// loadInput prefers the HTTP feed when configured, else the CSV drop.
func loadInput(ctx context.Context, cfg shared.Config) ([]domain.Review, error) {
	if cfg.FeedBase != "" {
		cl, err := feed.New(cfg.FeedBase, cfg.FeedKey, cfg.FeedRPS)
		if err != nil {
			return nil, err
		}
		return cl.FetchAll(ctx, cfg.BatchSize)
	}
	return csvstore.New(cfg.DataPath).Load(ctx)
}
