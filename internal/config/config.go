package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Market    MarketConfig
	Redis     RedisConfig
	Planning  PlanningConfig
	Reconcile ReconcileConfig
	Security  SecurityConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int // seconds browsers may cache a preflight response
}

// MarketConfig controls the market data gateway.
type MarketConfig struct {
	BaseURL         string        // Yahoo Finance chart API base URL
	Timeout         time.Duration // Per-call upstream timeout
	CacheTTL        time.Duration // How long a cached quote counts as fresh
	RequestsPerSec  float64       // Outbound requests per second
	Burst           int
	BenchmarkTicker string
	Currency        string
}

// RedisConfig holds the optional shared price cache location.
// An empty Addr selects the in-process cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PlanningConfig holds FIRE projection defaults.
type PlanningConfig struct {
	HorizonYears   int
	ExpectedReturn decimal.Decimal
	WithdrawalRate decimal.Decimal // used to derive a FIRE target from expenses
}

// ReconcileConfig holds the candidate matching tolerance.
type ReconcileConfig struct {
	Tolerance decimal.Decimal
}

// SecurityConfig holds key material for encrypting aggregator tokens.
type SecurityConfig struct {
	AccountTokenKey string
}

// SchedulerConfig holds cron schedules for background jobs.
type SchedulerConfig struct {
	PriceRefresh string
	Enabled      bool
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	marketTimeout, err := getDuration("MARKET_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getDuration("MARKET_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	rps, err := getFloat("MARKET_REQUESTS_PER_SEC", 5)
	if err != nil {
		return nil, err
	}
	burst, err := getInt("MARKET_BURST", 5)
	if err != nil {
		return nil, err
	}
	redisDB, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	horizon, err := getInt("FIRE_HORIZON_YEARS", 100)
	if err != nil {
		return nil, err
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("FIRE_HORIZON_YEARS must be positive, got %d", horizon)
	}
	expectedReturn, err := getDecimal("FIRE_EXPECTED_RETURN", "0.07")
	if err != nil {
		return nil, err
	}
	withdrawalRate, err := getDecimal("FIRE_WITHDRAWAL_RATE", "0.04")
	if err != nil {
		return nil, err
	}
	if !withdrawalRate.IsPositive() {
		return nil, fmt.Errorf("FIRE_WITHDRAWAL_RATE must be positive, got %s", withdrawalRate)
	}
	tolerance, err := getDecimal("RECONCILE_TOLERANCE", "0.05")
	if err != nil {
		return nil, err
	}
	if tolerance.IsNegative() || tolerance.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("RECONCILE_TOLERANCE must be within [0,1], got %s", tolerance)
	}
	corsMaxAge, err := getInt("CORS_MAX_AGE", 300)
	if err != nil {
		return nil, err
	}
	schedulerEnabled, err := getBool("SCHEDULER_ENABLED", true)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/income_clarity.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
			MaxAge:         corsMaxAge,
		},
		Market: MarketConfig{
			BaseURL:         getEnv("MARKET_BASE_URL", "https://query1.finance.yahoo.com"),
			Timeout:         marketTimeout,
			CacheTTL:        cacheTTL,
			RequestsPerSec:  rps,
			Burst:           burst,
			BenchmarkTicker: strings.ToUpper(getEnv("MARKET_BENCHMARK", "SPY")),
			Currency:        strings.ToUpper(getEnv("CURRENCY", "USD")),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Planning: PlanningConfig{
			HorizonYears:   horizon,
			ExpectedReturn: expectedReturn,
			WithdrawalRate: withdrawalRate,
		},
		Reconcile: ReconcileConfig{
			Tolerance: tolerance,
		},
		Security: SecurityConfig{
			AccountTokenKey: getEnv("ACCOUNT_TOKEN_KEY", ""),
		},
		Scheduler: SchedulerConfig{
			PriceRefresh: getEnv("PRICE_REFRESH_SCHEDULE", "@every 15m"),
			Enabled:      schedulerEnabled,
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDecimal(key, defaultValue string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, defaultValue))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
