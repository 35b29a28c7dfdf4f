package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yaoapp/filmgraph/types"
	"github.com/yaoapp/kun/log"
)

// DefaultCredentialsFile is loaded when no credentials file is named
const DefaultCredentialsFile = "credentials.txt"

// Config the runtime settings
type Config struct {
	Neo4j Neo4jConfig
	App   AppConfig
}

// Neo4jConfig the graph store connection settings
type Neo4jConfig struct {
	URI               string
	Username          string
	Password          string
	Database          string
	MaxPoolSize       int
	ConnectionTimeout time.Duration
}

// AppConfig the application settings
type AppConfig struct {
	LogLevel string
}

// Load reads the credentials file into the environment, then builds the config from it.
// Variables already set in the environment win over the file. An empty file name loads
// DefaultCredentialsFile if it exists.
func Load(file string) (*Config, error) {
	if err := loadCredentials(file); err != nil {
		return nil, err
	}

	cfg := &Config{
		Neo4j: Neo4jConfig{
			URI:               getEnv("NEO4J_URI", ""),
			Username:          getEnv("NEO4J_USERNAME", ""),
			Password:          getEnv("NEO4J_PASSWORD", ""),
			Database:          getEnv("NEO4J_DATABASE", "neo4j"),
			MaxPoolSize:       getEnvAsInt("NEO4J_MAX_POOL_SIZE", 0),
			ConnectionTimeout: getEnvAsDuration("NEO4J_CONNECTION_TIMEOUT", 0),
		},
		App: AppConfig{
			LogLevel: LogLevel(),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadCredentials(file string) error {
	if file == "" {
		if _, err := os.Stat(DefaultCredentialsFile); errors.Is(err, os.ErrNotExist) {
			log.Debug("[config] no %s found, using environment variables", DefaultCredentialsFile)
			return nil
		}
		file = DefaultCredentialsFile
	}

	if err := godotenv.Load(file); err != nil {
		return types.NewError(types.ConfigurationError, "load credentials", fmt.Errorf("%s: %w", file, err))
	}
	log.Debug("[config] loaded credentials from %s", file)
	return nil
}

// Validate checks that every required setting is present
func (c *Config) Validate() error {
	missing := []string{}
	if c.Neo4j.URI == "" {
		missing = append(missing, "NEO4J_URI")
	}
	if c.Neo4j.Username == "" {
		missing = append(missing, "NEO4J_USERNAME")
	}
	if c.Neo4j.Password == "" {
		missing = append(missing, "NEO4J_PASSWORD")
	}
	if len(missing) > 0 {
		return types.NewError(types.ConfigurationError, "", fmt.Errorf("%s is required", strings.Join(missing, ", ")))
	}

	if _, err := ParseLevel(c.App.LogLevel); err != nil {
		return types.NewError(types.ConfigurationError, "", err)
	}
	return nil
}

// StoreConfig returns the settings the graph store connects with
func (c *Config) StoreConfig() types.GraphStoreConfig {
	return types.GraphStoreConfig{
		URI:                   c.Neo4j.URI,
		Username:              c.Neo4j.Username,
		Password:              c.Neo4j.Password,
		Database:              c.Neo4j.Database,
		MaxConnectionPoolSize: c.Neo4j.MaxPoolSize,
		ConnectionTimeout:     c.Neo4j.ConnectionTimeout,
	}
}

// LogLevel returns the level named by FILMGRAPH_LOG_LEVEL, info if unset.
// It reads the environment only, so it works without a credentials file.
func LogLevel() string {
	return getEnv("FILMGRAPH_LOG_LEVEL", "info")
}

// ParseLevel converts a level name to a log level
func ParseLevel(name string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return log.TraceLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return log.InfoLevel, fmt.Errorf("unknown log level %q", name)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn("[config] invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Warn("[config] invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
