package config

import (
	"crypto/rand"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DBDriver       string // sqlite | postgres
	DBDSN          string
	LogFile        string
	JWTSecret      []byte
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	CORSOrigins    string
	PageSize       int
	KafkaBrokers   string
	KafkaTopic     string
	OutboxInterval time.Duration
	AdminUsername  string
	AdminPassword  string
}

func Load() Config {
	// .env is optional; real environment wins.
	_ = godotenv.Load()

	cfg := Config{
		Port:           getenv("PORT", "8080"),
		DBDriver:       strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBDSN:          getenv("DB_DSN", "beecommerce.db"),
		LogFile:        os.Getenv("LOG_FILE"),
		AccessTTL:      duration("ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTTL:     duration("REFRESH_TOKEN_TTL", 24*time.Hour),
		CORSOrigins:    getenv("CORS_ORIGINS", "http://localhost:3000"),
		PageSize:       integer("PAGE_SIZE", 5),
		KafkaBrokers:   os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:     getenv("KAFKA_TOPIC", "orders"),
		OutboxInterval: duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		AdminUsername:  os.Getenv("ADMIN_USERNAME"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
	}
	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		log.Printf("[warn] unknown DB_DRIVER %q, using sqlite", cfg.DBDriver)
		cfg.DBDriver = "sqlite"
	}

	if s := os.Getenv("JWT_SECRET"); s != "" {
		cfg.JWTSecret = []byte(s)
	} else {
		log.Printf("[warn] JWT_SECRET not set; generating a per-process key, tokens will not survive a restart")
		cfg.JWTSecret = randomKey(32)
	}

	log.Printf("[config] PORT=%s DB_DRIVER=%s DB_DSN=%s LOG_FILE=%s PAGE_SIZE=%d KAFKA_BROKERS=%s",
		cfg.Port, cfg.DBDriver, cfg.DBDSN, cfg.LogFile, cfg.PageSize, cfg.KafkaBrokers)
	return cfg
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[warn] invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

func integer(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[warn] invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func randomKey(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("[config] could not generate key: %v", err)
	}
	return b
}
