package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL  string
	ListenAddr  string
	HTTPTimeout time.Duration

	TokenDBPath string
	DatabaseURL string

	// empty secret means tokens are decoded without signature checks
	JWTSecret []byte

	KafkaBrokers []string
	KafkaTopic   string

	LogLevel string

	CartFetchAuth bool
}

// Load reads .env when present, then the process environment.
func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from any key lookup, such as os.LookupEnv or a
// map read with godotenv.Read.
func FromLookup(lookup func(string) (string, bool)) *Config {
	env := source(lookup)

	return &Config{
		APIBaseURL:  strings.TrimRight(env.str("API_BASE_URL", "http://localhost:5000/api"), "/"),
		ListenAddr:  env.str("LISTEN_ADDR", ":8081"),
		HTTPTimeout: env.seconds("HTTP_TIMEOUT_SECONDS", 10*time.Second),

		TokenDBPath: env.str("TOKEN_DB_PATH", "storefront.db"),
		DatabaseURL: env.str("DATABASE_URL", ""),

		JWTSecret: []byte(env.str("JWT_SECRET", "")),

		KafkaBrokers: env.list("KAFKA_BROKERS"),
		KafkaTopic:   env.str("KAFKA_TOPIC", "storefront_events"),

		LogLevel: env.str("LOG_LEVEL", "info"),

		CartFetchAuth: env.flag("CART_FETCH_AUTH", false),
	}
}

type source func(string) (string, bool)

// str treats a set but empty variable as unset.
func (s source) str(key, def string) string {
	if v, ok := s(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

// seconds reads a positive whole number of seconds.
func (s source) seconds(key string, def time.Duration) time.Duration {
	n, err := strconv.Atoi(s.str(key, ""))
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

func (s source) flag(key string, def bool) bool {
	b, err := strconv.ParseBool(s.str(key, ""))
	if err != nil {
		return def
	}
	return b
}

// list splits a comma separated value and drops blank entries.
func (s source) list(key string) []string {
	var out []string
	for _, p := range strings.Split(s.str(key, ""), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
