package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration. Values are resolved as
// defaults <- optional YAML file <- environment variables.
type Config struct {
	Port         string
	UseHTTPS     bool
	LogLevel     string
	DatabasePath string
	UploadDir    string

	SessionLifetime time.Duration

	OIDCIssuerURL    string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCCallbackURL  string

	JWTPrivateKeyPEM string
	JWTPublicKeyPEM  string
	JWTTokenTTL      time.Duration

	RedisURL     string
	StatsCacheTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string
}

type configFile struct {
	Server struct {
		Port     string `yaml:"port"`
		UseHTTPS bool   `yaml:"use_https"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"server"`
	Storage struct {
		DatabasePath string `yaml:"database_path"`
		UploadDir    string `yaml:"upload_dir"`
	} `yaml:"storage"`
	Auth struct {
		OIDCIssuerURL    string `yaml:"oidc_issuer_url"`
		OIDCClientID     string `yaml:"oidc_client_id"`
		OIDCClientSecret string `yaml:"oidc_client_secret"`
		OIDCCallbackURL  string `yaml:"oidc_callback_url"`
	} `yaml:"auth"`
	Dependencies struct {
		RedisURL     string   `yaml:"redis_url"`
		KafkaBrokers []string `yaml:"kafka_brokers"`
		KafkaTopic   string   `yaml:"kafka_topic"`
	} `yaml:"dependencies"`
}

// Load resolves the configuration. A .env file is honored when present;
// CONFIG_FILE may point at a YAML file for non-secret settings.
func Load() (Config, error) {
	// Missing .env is fine outside local development
	_ = godotenv.Load()

	cfg := Config{
		Port:            "8080",
		LogLevel:        "info",
		DatabasePath:    "scenario_hub.db",
		UploadDir:       "uploads",
		SessionLifetime: time.Hour,
		JWTTokenTTL:     12 * time.Hour,
		StatsCacheTTL:   30 * time.Second,
		KafkaTopic:      "scenario.request.transitions",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file configFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&cfg.Port, file.Server.Port)
	if file.Server.UseHTTPS {
		cfg.UseHTTPS = true
	}
	setString(&cfg.LogLevel, file.Server.LogLevel)
	setString(&cfg.DatabasePath, file.Storage.DatabasePath)
	setString(&cfg.UploadDir, file.Storage.UploadDir)
	setString(&cfg.OIDCIssuerURL, file.Auth.OIDCIssuerURL)
	setString(&cfg.OIDCClientID, file.Auth.OIDCClientID)
	setString(&cfg.OIDCClientSecret, file.Auth.OIDCClientSecret)
	setString(&cfg.OIDCCallbackURL, file.Auth.OIDCCallbackURL)
	setString(&cfg.RedisURL, file.Dependencies.RedisURL)
	if len(file.Dependencies.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = file.Dependencies.KafkaBrokers
	}
	setString(&cfg.KafkaTopic, file.Dependencies.KafkaTopic)

	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Port, os.Getenv("PORT"))
	if os.Getenv("USE_HTTPS") == "true" {
		cfg.UseHTTPS = true
	}
	setString(&cfg.LogLevel, os.Getenv("LOG_LEVEL"))
	setString(&cfg.DatabasePath, os.Getenv("DATABASE_PATH"))
	setString(&cfg.UploadDir, os.Getenv("UPLOAD_DIR"))

	if raw := os.Getenv("SESSION_LIFETIME_SECONDS"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			cfg.SessionLifetime = time.Duration(seconds) * time.Second
		}
	}

	setString(&cfg.OIDCIssuerURL, os.Getenv("OIDC_ISSUER_URL"))
	setString(&cfg.OIDCClientID, os.Getenv("OIDC_CLIENT_ID"))
	setString(&cfg.OIDCClientSecret, os.Getenv("OIDC_CLIENT_SECRET"))
	setString(&cfg.OIDCCallbackURL, os.Getenv("OIDC_CALLBACK_URL"))

	setString(&cfg.JWTPrivateKeyPEM, os.Getenv("JWT_PRIVATE_KEY_PEM"))
	setString(&cfg.JWTPublicKeyPEM, os.Getenv("JWT_PUBLIC_KEY_PEM"))
	if raw := os.Getenv("JWT_TOKEN_TTL"); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil && ttl > 0 {
			cfg.JWTTokenTTL = ttl
		}
	}

	setString(&cfg.RedisURL, os.Getenv("REDIS_URL"))
	if raw := os.Getenv("STATS_CACHE_TTL"); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil && ttl > 0 {
			cfg.StatsCacheTTL = ttl
		}
	}

	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		var brokers []string
		for _, broker := range strings.Split(raw, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				brokers = append(brokers, broker)
			}
		}
		cfg.KafkaBrokers = brokers
	}
	setString(&cfg.KafkaTopic, os.Getenv("KAFKA_TOPIC"))
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// OIDCEnabled reports whether browser OIDC login is configured
func (c Config) OIDCEnabled() bool {
	return c.OIDCIssuerURL != "" && c.OIDCClientID != "" && c.OIDCClientSecret != "" && c.OIDCCallbackURL != ""
}
