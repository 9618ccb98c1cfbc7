package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/docket/internal/hearing"
)

type Config struct {
	Port             int
	NatsURL          string
	NatsToken        string
	DatabaseURL      string
	LogLevel         string
	SlackBotToken    string
	SlackChannel     string
	APIToken         string
	JudiciaryURL     string
	FetchTimeout     time.Duration
	FetchConcurrency int
	CacheTTL         time.Duration
	Courts           []string
	Cutoff           string
	StatePath        string
}

func Load() Config {
	return Config{
		Port:             envInt("DOCKET_PORT", 8760),
		NatsURL:          envStr("NATS_URL", ""),
		NatsToken:        envStr("NATS_TOKEN", ""),
		DatabaseURL:      envStr("DATABASE_URL", ""),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		SlackBotToken:    envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:     envStr("SLACK_DOCKET_CHANNEL", ""),
		APIToken:         envStr("DOCKET_API_TOKEN", ""),
		JudiciaryURL:     envStr("JUDICIARY_URL", "https://www.judiciary.gov.sg/hearing-list/GetFilteredList/"),
		FetchTimeout:     envDuration("DOCKET_FETCH_TIMEOUT", 10*time.Second),
		FetchConcurrency: envInt("DOCKET_FETCH_CONCURRENCY", 4),
		CacheTTL:         envDuration("DOCKET_CACHE_TTL", 30*time.Minute),
		Courts:           envList("DOCKET_COURTS", hearing.DefaultCourts),
		Cutoff:           envStr("DOCKET_CUTOFF", "12:30 PM"),
		StatePath:        envStr("DOCKET_STATE_PATH", "~/.docket/backfill-state.json"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
