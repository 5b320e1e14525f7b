package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultAPIURL = "http://localhost:8000"

type Config struct {
	// Backend base URL (the menu/order REST API)
	APIURL      string
	HTTPTimeout time.Duration

	// Local HTTP adapter
	Addr             string
	CORSAllowOrigins []string

	// Default user name for the interactive shell
	UserName string

	// Optional submission journal (Postgres). Empty disables it.
	JournalDSN     string
	JournalMigrate bool

	// Optional submission events (RabbitMQ). Empty disables them.
	RabbitURL string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real env vars take precedence.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIURL:      strings.TrimRight(getenv("BENTO_API_URL", DefaultAPIURL), "/"),
		HTTPTimeout: parseDuration(getenv("BENTO_HTTP_TIMEOUT", "10s"), 10*time.Second),

		Addr:             getenv("BENTO_HTTP_ADDR", ":8080"),
		CORSAllowOrigins: splitCSV(getenv("BENTO_CORS_ALLOW_ORIGINS", "*")),

		UserName: strings.TrimSpace(os.Getenv("BENTO_USER_NAME")),

		JournalDSN:     strings.TrimSpace(os.Getenv("BENTO_JOURNAL_DSN")),
		JournalMigrate: envBool("BENTO_JOURNAL_MIGRATE", true),

		RabbitURL: strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
