package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"branch-ledger/internal/domain"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

type Config struct {
	// HTTP Server
	ServerPort string

	// Storage
	StorageBackend string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string

	// Checking account policy
	WithdrawalLimit  decimal.Decimal
	MaxWithdrawals   int
	WithdrawalWindow string

	// Events; publishing is disabled when AMQPURL is empty
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
}

// Load reads the configuration from the environment. Values from a .env file
// in the working directory are used when the variable is not already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		StorageBackend: getEnv("STORAGE_BACKEND", BackendMemory),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "password"),
		DBName:         getEnv("DB_NAME", "branch_ledger"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),

		WithdrawalLimit:  getEnvDecimal("WITHDRAWAL_LIMIT", decimal.NewFromInt(domain.DefaultWithdrawalLimit)),
		MaxWithdrawals:   getEnvInt("MAX_WITHDRAWALS", domain.DefaultMaxWithdrawals),
		WithdrawalWindow: getEnv("WITHDRAWAL_WINDOW", string(domain.WindowAllTime)),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "branch_ledger"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "transactions"),
	}
}

// GetDBConnectionString returns a lib/pq key/value DSN.
func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// CheckingPolicy builds the policy applied to newly opened checking accounts.
func (c *Config) CheckingPolicy() (domain.CheckingPolicy, error) {
	window, err := domain.ParseWithdrawalWindow(c.WithdrawalWindow)
	if err != nil {
		return domain.CheckingPolicy{}, err
	}
	return domain.CheckingPolicy{
		Limit:          c.WithdrawalLimit,
		MaxWithdrawals: c.MaxWithdrawals,
		Window:         window,
	}, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Port 0 lets the OS pick a free port.
	if port, err := strconv.Atoi(c.ServerPort); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.ServerPort))
	} else if port < 0 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 0 and 65535", port))
	}

	switch c.StorageBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DBHost == "" || c.DBName == "" || c.DBUser == "" {
			errors = append(errors, "DB_HOST, DB_NAME and DB_USER are required when using the postgres backend")
		}
		if _, err := strconv.Atoi(c.DBPort); err != nil {
			errors = append(errors, fmt.Sprintf("invalid database port '%s': must be a number", c.DBPort))
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid storage backend '%s': must be one of [%s %s]",
			c.StorageBackend, BackendMemory, BackendPostgres))
	}

	if !c.WithdrawalLimit.IsPositive() {
		errors = append(errors, fmt.Sprintf("invalid withdrawal limit %s: must be positive", c.WithdrawalLimit))
	}
	if c.MaxWithdrawals < 0 {
		errors = append(errors, fmt.Sprintf("invalid max withdrawals %d: must not be negative", c.MaxWithdrawals))
	}
	if _, err := domain.ParseWithdrawalWindow(c.WithdrawalWindow); err != nil {
		errors = append(errors, fmt.Sprintf("invalid withdrawal window '%s': must be '%s' or '%s'",
			c.WithdrawalWindow, domain.WindowAllTime, domain.WindowDaily))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
