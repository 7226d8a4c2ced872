// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvConfig         = "CRABUL_CONFIG"
	EnvHost           = "CRABUL_HOST"
	EnvSecure         = "CRABUL_SECURE"
	EnvName           = "CRABUL_NAME"
	EnvRoom           = "CRABUL_ROOM"
	EnvLogLevel       = "CRABUL_LOG_LEVEL"
	EnvLogJSON        = "CRABUL_LOG_JSON"
	EnvStartCountdown = "CRABUL_START_COUNTDOWN"
)

var (
	ErrMissingHost = errors.New("config: host is required")
	ErrMissingName = errors.New("config: player name is required")
)

// Config holds everything the client needs to join a room.
type Config struct {
	Host           string        `yaml:"host"`
	Secure         bool          `yaml:"secure"`
	PlayerName     string        `yaml:"player_name"`
	RoomCode       string        `yaml:"room_code"`
	LogLevel       string        `yaml:"log_level"`
	LogJSON        bool          `yaml:"log_json"`
	StartCountdown int           `yaml:"start_countdown"` // seconds
	DialTimeout    time.Duration `yaml:"dial_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host:           "localhost:5000",
		LogLevel:       "info",
		StartCountdown: 3,
		DialTimeout:    10 * time.Second,
	}
}

// Load builds a Config from defaults, then .env, then the YAML file at path
// (or $CRABUL_CONFIG when path is empty), then CRABUL_* environment
// variables. A missing .env is not an error; a missing explicit file is.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("Warning: .env file not loaded: %v", err)
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Host = getEnv(EnvHost, c.Host)
	c.Secure = getEnvAsBool(EnvSecure, c.Secure)
	c.PlayerName = getEnv(EnvName, c.PlayerName)
	c.RoomCode = getEnv(EnvRoom, c.RoomCode)
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)
	c.LogJSON = getEnvAsBool(EnvLogJSON, c.LogJSON)
	c.StartCountdown = getEnvAsInt(EnvStartCountdown, c.StartCountdown)
}

// Validate reports the first missing required field.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return ErrMissingHost
	}
	if strings.TrimSpace(c.PlayerName) == "" {
		return ErrMissingName
	}
	if c.StartCountdown < 0 {
		return fmt.Errorf("config: start_countdown must not be negative, got %d", c.StartCountdown)
	}
	return nil
}

// Level parses LogLevel, falling back to info.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warnf("Warning: %s=%q is not an integer, using %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Warnf("Warning: %s=%q is not a boolean, using %t", key, value, defaultValue)
	}
	return defaultValue
}
