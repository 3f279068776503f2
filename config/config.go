package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"capitalGainsTracker/internal/adapters/logger"
	"capitalGainsTracker/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	// Strategies
	BuyStrategy  domain.BuyStrategy
	SellStrategy domain.SellStrategy

	// Randomized strategies
	RandomSeed       uint64
	UseSystemEntropy bool // Ignore RandomSeed and seed from the runtime

	// Trader
	InitialBalance float64

	// Transaction generator
	GeneratorSymbols      []string
	GeneratorTransactions int
	GeneratorMinQuantity  int
	GeneratorMaxQuantity  int
	MarketProfilePath     string // Empty uses DefaultMarketProfile

	// Results archive, disabled when empty
	DBPath string

	// Logging
	LogLevel  logger.LogLevel
	LogFormat string // "text" or "json"

	// Tracing
	TracingEnabled bool
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Strategies
	buyStr := getEnv("BUY_STRATEGY", domain.BuyFifo.String())
	if s, ok := domain.ParseBuyStrategy(buyStr); ok {
		cfg.BuyStrategy = s
	} else {
		errs = append(errs, fmt.Sprintf("invalid BUY_STRATEGY '%s'", buyStr))
	}
	sellStr := getEnv("SELL_STRATEGY", domain.SellFifo.String())
	if s, ok := domain.ParseSellStrategy(sellStr); ok {
		cfg.SellStrategy = s
	} else {
		errs = append(errs, fmt.Sprintf("invalid SELL_STRATEGY '%s'", sellStr))
	}

	cfg.RandomSeed, err = getEnvAsUint64Required("RANDOM_SEED", 1)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RANDOM_SEED: %v", err))
	}
	cfg.UseSystemEntropy = getEnvAsBool("USE_SYSTEM_ENTROPY", false)

	cfg.InitialBalance, err = getEnvAsFloatRequired("INITIAL_BALANCE", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid INITIAL_BALANCE: %v", err))
	}

	// Generator
	cfg.GeneratorSymbols = splitSymbols(getEnv("GENERATOR_SYMBOLS", "AAPL,MSFT,NVDA"))
	if len(cfg.GeneratorSymbols) == 0 {
		errs = append(errs, "GENERATOR_SYMBOLS must list at least one symbol")
	}

	cfg.GeneratorTransactions, err = getEnvAsIntRequired("GENERATOR_TRANSACTIONS", 1000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid GENERATOR_TRANSACTIONS: %v", err))
	} else if cfg.GeneratorTransactions < 0 {
		errs = append(errs, "GENERATOR_TRANSACTIONS cannot be negative")
	}

	cfg.GeneratorMinQuantity, err = getEnvAsIntRequired("GENERATOR_MIN_QUANTITY", 1)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid GENERATOR_MIN_QUANTITY: %v", err))
	} else if cfg.GeneratorMinQuantity <= 0 {
		errs = append(errs, "GENERATOR_MIN_QUANTITY must be positive")
	}

	cfg.GeneratorMaxQuantity, err = getEnvAsIntRequired("GENERATOR_MAX_QUANTITY", 100)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid GENERATOR_MAX_QUANTITY: %v", err))
	} else if cfg.GeneratorMaxQuantity < cfg.GeneratorMinQuantity {
		errs = append(errs, "GENERATOR_MAX_QUANTITY must not be less than GENERATOR_MIN_QUANTITY")
	}

	cfg.MarketProfilePath = getEnv("MARKET_PROFILE_PATH", "")

	// Database
	cfg.DBPath = getEnv("DB_PATH", "")

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr)

	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "text"))
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, "LOG_FORMAT must be 'text' or 'json'")
	}

	cfg.TracingEnabled = getEnvAsBool("TRACING_ENABLED", false)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

func splitSymbols(s string) []string {
	var symbols []string
	for _, part := range strings.Split(s, ",") {
		if sym := strings.ToUpper(strings.TrimSpace(part)); sym != "" {
			symbols = append(symbols, sym)
		}
	}
	return symbols
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsUint64Required(key string, defaultValue uint64) (uint64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid unsigned value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
