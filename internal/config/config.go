package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration, read from the environment.
type Config struct {
	// Server
	ServerPort int

	// Store
	StoreType string // "mongo" or "memory"

	// MongoDB
	MongoURI string
	MongoDB  string

	// InfluxDB (optional run-metrics recorder)
	InfluxURL      string
	InfluxToken    string
	InfluxDatabase string

	// Import
	VendorConfigPath string
	DataDir          string
	HTTPTimeout      int // seconds, per fetch request
	DefaultBatchSize int

	// Logging
	LogLevel string
	LogDir   string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		StoreType:  getEnv("STORE_TYPE", "mongo"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DATABASE", "product_importer"),

		InfluxURL:      getEnv("INFLUXDB_URL", ""),
		InfluxToken:    getEnv("INFLUXDB_TOKEN", ""),
		InfluxDatabase: getEnv("INFLUXDB_DATABASE", "import_metrics"),

		VendorConfigPath: getEnv("VENDOR_CONFIG", "./vendors.json"),
		DataDir:          getEnv("DATA_DIRECTORY", "./data"),
		HTTPTimeout:      getEnvInt("HTTP_TIMEOUT", 120),
		DefaultBatchSize: getEnvInt("BATCH_SIZE", 100),

		LogLevel: getEnv("LOG_LEVEL", "INFO"),
		LogDir:   getEnv("LOG_DIRECTORY", "./logs"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if configuration is valid.
func (c *Config) Validate() error {
	if c.StoreType != "mongo" && c.StoreType != "memory" {
		return fmt.Errorf("invalid STORE_TYPE: %s (use 'mongo' or 'memory')", c.StoreType)
	}

	if c.DefaultBatchSize < 1 || c.DefaultBatchSize > 10000 {
		return fmt.Errorf("invalid BATCH_SIZE: %d (must be 1-10000)", c.DefaultBatchSize)
	}

	if c.HTTPTimeout < 1 || c.HTTPTimeout > 600 {
		return fmt.Errorf("invalid HTTP_TIMEOUT: %d (must be 1-600s)", c.HTTPTimeout)
	}

	return nil
}

// MetricsEnabled reports whether an InfluxDB recorder should be wired.
func (c *Config) MetricsEnabled() bool {
	return c.InfluxURL != "" && c.InfluxToken != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
