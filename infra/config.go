package infra

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port  int
	Debug bool

	MongoURI string
	MongoDB  string

	// Empty RedisAddr keeps presence in-process.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	TicketTTL time.Duration

	ZegoAppID        int64
	ZegoServerSecret string
}

// LoadConfig reads .env when present, then the environment, with defaults
// suitable for local development.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Port:  envInt("PORT", 4000),
		Debug: envBool("DEBUG", false),

		MongoURI: envStr("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:  envStr("MONGO_DB", "chatapp"),

		RedisAddr:     envStr("REDIS_ADDR", ""),
		RedisPassword: envStr("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),

		JWTSecret: envStr("JWT_SECRET", "dev-secret"),
		TicketTTL: envDuration("TICKET_TTL", 24*time.Hour),

		ZegoAppID:        int64(envInt("ZEGO_APP_ID", 0)),
		ZegoServerSecret: envStr("ZEGO_SERVER_SECRET", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
