package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API     APIConfig
	State   StateConfig
	Gateway GatewayConfig
}

type APIConfig struct {
	BaseURL            string
	RequestTimeout     time.Duration
	RequestsPerSecond  int
	RequestBurst       int
	BreakerMaxFailures int
	BreakerResetAfter  time.Duration
}

type StateConfig struct {
	Path       string
	Passphrase string
}

type GatewayConfig struct {
	Host         string
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func Load() *Config {
	// Missing .env is fine; the environment may already be populated.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	config := &Config{
		API: APIConfig{
			BaseURL:            getEnv("BANKDESK_API_BASE_URL", "http://localhost:8000"),
			RequestTimeout:     getDurationEnv("BANKDESK_API_TIMEOUT", 15*time.Second),
			RequestsPerSecond:  getIntEnv("BANKDESK_API_RATE_LIMIT", 10),
			RequestBurst:       getIntEnv("BANKDESK_API_RATE_BURST", 20),
			BreakerMaxFailures: getIntEnv("BANKDESK_BREAKER_MAX_FAILURES", 5),
			BreakerResetAfter:  getDurationEnv("BANKDESK_BREAKER_RESET_AFTER", 30*time.Second),
		},
		State: StateConfig{
			Path:       getEnv("BANKDESK_STATE_PATH", defaultStatePath()),
			Passphrase: getEnv("BANKDESK_STATE_PASSPHRASE", ""),
		},
		Gateway: GatewayConfig{
			Host:         getEnv("BANKDESK_GATEWAY_HOST", "127.0.0.1"),
			Port:         getEnv("BANKDESK_GATEWAY_PORT", "8090"),
			Environment:  getEnv("APP_ENV", "development"),
			ReadTimeout:  getDurationEnv("BANKDESK_GATEWAY_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("BANKDESK_GATEWAY_WRITE_TIMEOUT", 15*time.Second),
		},
	}

	return config
}

func (c *Config) IsDevelopment() bool {
	return c.Gateway.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Gateway.Environment == "production"
}

func (c *GatewayConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "bankdesk.db"
	}
	return home + "/.bankdesk/state.db"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
