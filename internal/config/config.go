package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	HTTPAddr     string
	Env          string
	LogLevel     string
	GelfAddr     string
	StoreBackend string
	OxiDBHost    string
	OxiDBPort    int
	PoolSize     int
	MongoURI     string
	MongoDB      string
	PollInterval time.Duration
	JWTSecret    string
	TokenTTL     time.Duration
	AdminEmail   string
	AdminPass    string
	PublicOrigin string
	CORSOrigin   string
	// ExportTimeout bounds the spreadsheet webhook call. Zero means no timeout.
	ExportTimeout time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr:      getEnv("ONTOHIN_ADDR", ":8080"),
		Env:           getEnv("APP_ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", ""),
		GelfAddr:      getEnv("GELF_ADDR", ""),
		StoreBackend:  getEnv("STORE_BACKEND", "memory"),
		OxiDBHost:     getEnv("OXIDB_HOST", "127.0.0.1"),
		OxiDBPort:     getEnvInt("OXIDB_PORT", 4444),
		PoolSize:      getEnvInt("OXIDB_POOL_SIZE", 3),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "ontohin"),
		PollInterval:  getEnvDuration("POLL_INTERVAL", 2*time.Second),
		JWTSecret:     getEnv("JWT_SECRET", "ontohin-dev-secret-change-me"),
		TokenTTL:      getEnvDuration("JWT_TTL", 12*time.Hour),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@ontohin26.local"),
		AdminPass:     getEnv("ADMIN_PASS", "admin123"),
		PublicOrigin:  getEnv("PUBLIC_ORIGIN", "http://localhost:8080"),
		CORSOrigin:    getEnv("CORS_ORIGIN", "*"),
		ExportTimeout: getEnvDuration("EXPORT_TIMEOUT", 0),
	}
}

// Log writes the effective configuration with secrets redacted.
func (c *Config) Log(logger *zap.Logger) {
	logger.Info("Application configuration",
		zap.String("addr", c.HTTPAddr),
		zap.String("env", c.Env),
		zap.String("store_backend", c.StoreBackend),
		zap.String("oxidb", c.OxiDBHost+":"+strconv.Itoa(c.OxiDBPort)),
		zap.Int("oxidb_pool_size", c.PoolSize),
		zap.String("mongo_db", c.MongoDB),
		zap.Duration("poll_interval", c.PollInterval),
		zap.String("jwt_secret", "[REDACTED]"),
		zap.Duration("jwt_ttl", c.TokenTTL),
		zap.String("admin_email", c.AdminEmail),
		zap.String("public_origin", c.PublicOrigin),
		zap.String("cors_origin", c.CORSOrigin),
		zap.Duration("export_timeout", c.ExportTimeout),
		zap.Bool("gelf", c.GelfAddr != ""),
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
