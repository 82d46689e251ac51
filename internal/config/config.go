package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	ServerAddress string        `json:"serverAddress"`
	Storage       Storage       `json:"storage"`
	ImageGen      ImageGen      `json:"imageGen"`
	Ingestion     Ingestion     `json:"ingestion"`
	WebSocket     WebSocketOpts `json:"webSocket"`
}

// Storage selects and configures the key-value backend
type Storage struct {
	// Driver is one of "memory", "filesystem", "sqlite", "postgres".
	Driver string `json:"driver"`
	// BasePath is the directory for the filesystem driver.
	BasePath string `json:"basePath"`
	// DatabasePath is the sqlite file path.
	DatabasePath string `json:"databasePath"`
	// DatabaseURL is the postgres connection string.
	DatabaseURL string `json:"databaseUrl"`
}

// ImageGen configures the recipe image generator
type ImageGen struct {
	// Provider is "mock" or "local".
	Provider  string        `json:"provider"`
	Delay     time.Duration `json:"delay"`
	OutputDir string        `json:"outputDir"`
	BaseURL   string        `json:"baseUrl"`
}

// Ingestion configures the recipe parsers
type Ingestion struct {
	Delay time.Duration `json:"delay"`
}

// WebSocketOpts configures the live-update hub
type WebSocketOpts struct {
	Enabled bool `json:"enabled"`
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		ServerAddress: ":5000",
		Storage: Storage{
			Driver:       "sqlite",
			BasePath:     "./data",
			DatabasePath: "chameleon.db",
		},
		ImageGen: ImageGen{
			Provider:  "mock",
			Delay:     time.Second,
			OutputDir: "./images",
			BaseURL:   "/images",
		},
		Ingestion: Ingestion{
			Delay: 1500 * time.Millisecond,
		},
		WebSocket: WebSocketOpts{
			Enabled: true,
		},
	}
}

// Load loads configuration from file or environment
func Load() (*Config, error) {
	cfg := defaultConfig()

	// Try to load from config file
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override from environment variables
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		cfg.ServerAddress = addr
	}
	if driver := os.Getenv("STORAGE_DRIVER"); driver != "" {
		cfg.Storage.Driver = driver
	}
	if basePath := os.Getenv("STORAGE_PATH"); basePath != "" {
		cfg.Storage.BasePath = basePath
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.Storage.DatabasePath = dbPath
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Storage.DatabaseURL = dbURL
		if cfg.Storage.Driver == "" || cfg.Storage.Driver == "sqlite" {
			cfg.Storage.Driver = "postgres"
		}
	}

	if provider := os.Getenv("IMAGE_GEN_PROVIDER"); provider != "" {
		cfg.ImageGen.Provider = provider
	}
	if delay := os.Getenv("IMAGE_GEN_DELAY_MS"); delay != "" {
		if ms, err := strconv.Atoi(delay); err == nil && ms >= 0 {
			cfg.ImageGen.Delay = time.Duration(ms) * time.Millisecond
		}
	}
	if dir := os.Getenv("IMAGE_GEN_OUTPUT_DIR"); dir != "" {
		cfg.ImageGen.OutputDir = dir
	}

	if delay := os.Getenv("INGESTION_DELAY_MS"); delay != "" {
		if ms, err := strconv.Atoi(delay); err == nil && ms >= 0 {
			cfg.Ingestion.Delay = time.Duration(ms) * time.Millisecond
		}
	}

	if enabled := os.Getenv("WEBSOCKET_ENABLED"); enabled != "" {
		cfg.WebSocket.Enabled = enabled == "true" || enabled == "1"
	}

	return cfg, nil
}
