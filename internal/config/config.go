package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/pythocooks/onlyagents-backend/pkg/validation"
)

type Config struct {
	Development bool
	// API configuration
	APIPort int
	// Postgres configuration
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	// Chain configuration
	RPCURL     string
	Commitment string
	// Payment token configuration
	TokenMint     string
	TokenDecimals int
	// FeeRate is the platform share of every tip, as a fraction.
	FeeRate decimal.Decimal
	// VerifyTimeout bounds the one-to-three round trips of a verification.
	VerifyTimeout time.Duration

	// Notification configuration
	TelegramBotToken  string
	TelegramOpsChatID string
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development:      getEnvAsBool("DEVELOPMENT", false),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvAsInt("POSTGRES_PORT", 5432),
		PostgresDB:       getEnv("POSTGRES_DB", "onlyagents"),
		RPCURL:           getEnv("RPC_URL", "https://api.mainnet-beta.solana.com"),
		Commitment:       getEnv("COMMITMENT", "confirmed"),
		TokenMint:        getEnv("TOKEN_MINT", ""),
		TokenDecimals:    getEnvAsInt("TOKEN_DECIMALS", 6),
		FeeRate:          getEnvAsDecimal("FEE_RATE", decimal.RequireFromString("0.10")),
		VerifyTimeout:    time.Duration(getEnvAsInt("VERIFY_TIMEOUT_SECONDS", 5)) * time.Second,

		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramOpsChatID: getEnv("TELEGRAM_OPS_CHAT_ID", ""),

		APIPort: getEnvAsInt("API_PORT", 6841),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("RPC_URL is required")
	}

	if c.TokenMint == "" {
		return fmt.Errorf("TOKEN_MINT is required")
	}
	if err := validation.ValidateAddress(c.TokenMint); err != nil {
		return fmt.Errorf("invalid TOKEN_MINT format: %w", err)
	}

	switch c.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("COMMITMENT must be processed, confirmed or finalized, got %q", c.Commitment)
	}

	if c.TokenDecimals < 0 || c.TokenDecimals > 9 {
		return fmt.Errorf("TOKEN_DECIMALS must be between 0 and 9, got %d", c.TokenDecimals)
	}

	if c.FeeRate.IsNegative() || c.FeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("FEE_RATE must be in [0, 1), got %s", c.FeeRate)
	}

	if c.PostgresDB == "" {
		return fmt.Errorf("POSTGRES_DB is required")
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}

	if c.TelegramBotToken != "" && c.TelegramOpsChatID == "" {
		return fmt.Errorf("TELEGRAM_OPS_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDecimal(name string, defaultValue decimal.Decimal) decimal.Decimal {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := decimal.NewFromString(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
