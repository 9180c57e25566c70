// Package config loads the predictor service configuration from an optional
// YAML file, an optional .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"houseprice/logger"
)

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	ML struct {
		ModelType string `yaml:"model_type"`
		ModelPath string `yaml:"model_path"`
		// WatchArtifact logs a warning when the artifact changes on disk.
		WatchArtifact bool `yaml:"watch_artifact"`
	} `yaml:"ml"`
	Predict struct {
		CacheSize        int  `yaml:"cache_size"`
		StrictFurnishing bool `yaml:"strict_furnishing"`
	} `yaml:"predict"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log logger.Config `yaml:"log"`
}

func Default() *Config {
	var cfg Config
	cfg.Http.Port = 5000
	cfg.Http.Timeout = 30 * time.Second
	cfg.Http.AllowedOrigins = []string{"*"}
	cfg.Http.MaxBodyBytes = 1 << 20
	cfg.ML.ModelType = "linear_regression"
	cfg.ML.ModelPath = "house_price_model.json"
	cfg.ML.WatchArtifact = true
	cfg.Predict.CacheSize = 1024
	cfg.Log = logger.DefaultConfig()
	return &cfg
}

// Load applies, in order: defaults, the YAML file at path (skipped when it
// does not exist), .env, and environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
		}
	}

	// .env is optional
	_ = godotenv.Load()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	port, err := getEnvAsInt("PORT", cfg.Http.Port)
	if err != nil {
		return err
	}
	cfg.Http.Port = port
	cfg.ML.ModelPath = getEnv("MODEL_PATH", cfg.ML.ModelPath)
	cfg.Database.Path = getEnv("DATABASE_PATH", cfg.Database.Path)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	return nil
}

func (c *Config) Validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.Http.Port)
	}
	if c.Http.Timeout < 0 {
		return errors.New("http.timeout must not be negative")
	}
	if c.Http.MaxBodyBytes <= 0 {
		return errors.New("http.max_body_bytes must be positive")
	}
	if c.Predict.CacheSize < 0 {
		return errors.New("predict.cache_size must not be negative")
	}
	if c.ML.ModelPath == "" {
		return errors.New("ml.model_path is required")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value %q for %s", valueStr, key)
	}
	return value, nil
}
