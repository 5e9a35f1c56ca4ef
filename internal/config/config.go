// Package config loads service settings from an optional TOML or YAML file,
// .env files and environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"marith/internal/params"
	"marith/internal/task"
)

// Environment variables read by Load.
const (
	EnvHTTPAddr     = "MARITH_HTTP_ADDR"
	EnvGRPCAddr     = "MARITH_GRPC_ADDR"
	EnvDBPath       = "MARITH_DB_PATH"
	EnvTemplatePath = "MARITH_TEMPLATE_PATH"
	EnvJWTSecret    = "JWT_SECRET"
	EnvTokenTTL     = "MARITH_TOKEN_TTL_MINUTES"
)

// Config holds everything the servers need.
type Config struct {
	HTTPAddr        string `toml:"http_addr" yaml:"http_addr"`
	GRPCAddr        string `toml:"grpc_addr" yaml:"grpc_addr"`
	DBPath          string `toml:"db_path" yaml:"db_path"`
	TemplatePath    string `toml:"template_path" yaml:"template_path"`
	JWTSecret       string `toml:"jwt_secret" yaml:"jwt_secret"`
	TokenTTLMinutes int    `toml:"token_ttl_minutes" yaml:"token_ttl_minutes"`

	// Worksheet is the configuration used when a request supplies none or
	// an invalid one.
	Worksheet task.Config `toml:"worksheet" yaml:"worksheet"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		HTTPAddr:        "127.0.0.1:8014",
		GRPCAddr:        "127.0.0.1:8015",
		DBPath:          "./marith.db",
		JWTSecret:       "default-jwt-secret-for-marith",
		TokenTTLMinutes: 60,
		Worksheet:       task.DefaultConfig(),
	}
}

// envFiles are tried in order; the first one that loads wins.
var envFiles = []string{".env", "../.env", "../../.env"}

// LoadEnvFiles loads the first readable .env file into the environment.
// Variables that are already set are not overridden.
func LoadEnvFiles(logger *slog.Logger) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err == nil {
			logger.Debug("loaded env file", "file", file)
			return
		}
	}
}

// Load builds the configuration: defaults, then the file at path (if any),
// then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if !cfg.Worksheet.IsValid() {
		return Config{}, fmt.Errorf("config %s: worksheet defaults are not valid", path)
	}
	if !params.Safe(cfg.Worksheet) {
		return Config{}, fmt.Errorf("config %s: worksheet range needs integral int32 bounds with min < max and num_tasks at most %d",
			path, params.MaxTaskCount)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to parse TOML config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString(EnvHTTPAddr, &cfg.HTTPAddr)
	setString(EnvGRPCAddr, &cfg.GRPCAddr)
	setString(EnvDBPath, &cfg.DBPath)
	setString(EnvTemplatePath, &cfg.TemplatePath)
	setString(EnvJWTSecret, &cfg.JWTSecret)

	if v := os.Getenv(EnvTokenTTL); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid %s %q", EnvTokenTTL, v)
		}
		cfg.TokenTTLMinutes = n
	}
	return nil
}
