package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	DataPath    string
	Source      string // csv | mysql
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	FeedBase    string
	FeedKey     string
	FeedRPS     int
	Workers     int
	BatchSize   int
	AskRPS      int
	CacheTTL    time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		DataPath:    env("DATA_PATH", "data/fintech_reviews_sentiment.csv"),
		Source:      env("SOURCE", "csv"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/finrev?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", ""),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		FeedBase:    env("FEED_BASE_URL", ""),
		FeedKey:     env("FEED_API_KEY", ""),
		FeedRPS:     atoi("FEED_RPS", 5),
		Workers:     atoi("INGEST_WORKERS", 8),
		BatchSize:   atoi("INGEST_BATCH_SIZE", 500),
		AskRPS:      atoi("ASK_RPS", 5),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.Source != "csv" && c.Source != "mysql" {
		log.Warn().Str("source", c.Source).Msg("unknown SOURCE, falling back to csv")
		c.Source = "csv"
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
