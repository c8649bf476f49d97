package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"lunchdesk/internal/services"
)

var AppEnv Config

type Config struct {
	MongoURI  string
	DBName    string
	JWTSecret string
	Port      string

	Timezone         string
	OrderCutoffHour  int
	DailyOrderLimit  int
	DefaultUnitPrice int64
	Currency         string
	OrderRateLimit   int
	PricingRulesPath string

	LogLevel  string
	LogPath   string
	LogFormat string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug(".env not loaded")
	}
	AppEnv = FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() Config {
	return Config{
		MongoURI:  getEnvOrDefault("MONGO_URI", ""),
		DBName:    getEnvOrDefault("DB_NAME", "lunchdesk"),
		JWTSecret: getEnvOrDefault("JWT_SECRET", ""),
		Port:      getEnvOrDefault("PORT", "8080"),

		Timezone:         getEnvOrDefault("TIMEZONE", "Asia/Tbilisi"),
		OrderCutoffHour:  getIntEnv("ORDER_CUTOFF_HOUR", services.DefaultCutoffHour, 0, 23),
		DailyOrderLimit:  getIntEnv("DAILY_ORDER_LIMIT", 4, 1, 100),
		DefaultUnitPrice: int64(getIntEnv("DEFAULT_PRICE", 1500, 1, 1_000_000)),
		Currency:         strings.ToUpper(getEnvOrDefault("CURRENCY", "GEL")),
		OrderRateLimit:   getIntEnv("ORDER_RATE_LIMIT", 5, 0, 10_000),
		PricingRulesPath: getEnvOrDefault("PRICING_RULES_PATH", ""),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogPath:   getEnvOrDefault("LOG_PATH", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

// Location resolves the operating timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks the settings the HTTP server cannot start without.
func (c Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	_, err := c.Location()
	return err
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv falls back to defaultValue when the variable is missing,
// malformed or outside [minValue, maxValue].
func getIntEnv(key string, defaultValue, minValue, maxValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < minValue || parsed > maxValue {
		log.WithFields(log.Fields{"key": key, "value": value}).Warn("ignoring invalid integer setting")
		return defaultValue
	}
	return parsed
}
