// Package config loads the service configuration: defaults, then an optional
// TOML file, then environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"ytquiz/models"

	"github.com/BurntSushi/toml"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port        string `toml:"port"`
	BindAddress string `toml:"bind_address"`
	Debug       bool   `toml:"debug"`

	DBDriver   string `toml:"db_driver"`
	DBHost     string `toml:"db_host"`
	DBPort     string `toml:"db_port"`
	DBUser     string `toml:"db_user"`
	DBPassword string `toml:"db_password"`
	DBName     string `toml:"db_name"`
	SQLitePath string `toml:"sqlite_path"`
	RedisURL   string `toml:"redis_url"`

	JWTSecret       string        `toml:"jwt_secret"`
	AccessTokenTTL  time.Duration `toml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `toml:"refresh_token_ttl"`
	CookieSecure    bool          `toml:"cookie_secure"`

	GeminiAPIKey       string        `toml:"gemini_api_key"`
	GeminiModel        string        `toml:"gemini_model"`
	WhisperModel       string        `toml:"whisper_model"`
	FFmpegDir          string        `toml:"ffmpeg_dir"`
	ScratchDir         string        `toml:"tmp_dir"`
	MaxDurationSec     int           `toml:"max_duration_sec"`
	NumQuestions       int           `toml:"num_questions"`
	TranscriptCacheTTL time.Duration `toml:"transcript_cache_ttl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:               "8080",
		BindAddress:        "localhost",
		DBDriver:           "postgres",
		DBHost:             "localhost",
		DBPort:             "5432",
		DBUser:             "ytquiz",
		DBPassword:         "ytquiz123",
		DBName:             "ytquiz",
		SQLitePath:         "ytquiz.db",
		JWTSecret:          "your-secret-key-change-in-production",
		AccessTokenTTL:     30 * time.Minute,
		RefreshTokenTTL:    7 * 24 * time.Hour,
		GeminiModel:        "gemini-2.5-flash",
		WhisperModel:       "small",
		ScratchDir:         os.TempDir(),
		NumQuestions:       10,
		TranscriptCacheTTL: 24 * time.Hour,
	}
}

// Load merges defaults < TOML file named by YTQUIZ_CONFIG < environment.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("YTQUIZ_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.BindAddress = getEnv("BIND_ADDRESS", c.BindAddress)
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiModel = getEnv("GEMINI_MODEL", c.GeminiModel)
	c.WhisperModel = getEnv("WHISPER_MODEL", c.WhisperModel)
	c.FFmpegDir = getEnv("FFMPEG_DIR", c.FFmpegDir)
	c.ScratchDir = getEnv("QUIZ_TMP_DIR", c.ScratchDir)

	var err error
	if c.Debug, err = getEnvBool("DEBUG", c.Debug); err != nil {
		return err
	}
	if c.CookieSecure, err = getEnvBool("COOKIE_SECURE", c.CookieSecure); err != nil {
		return err
	}
	if c.MaxDurationSec, err = getEnvInt("QUIZ_MAX_DURATION_SEC", c.MaxDurationSec); err != nil {
		return err
	}
	if c.NumQuestions, err = getEnvInt("QUIZ_NUM_QUESTIONS", c.NumQuestions); err != nil {
		return err
	}
	if c.AccessTokenTTL, err = getEnvDuration("ACCESS_TOKEN_TTL", c.AccessTokenTTL); err != nil {
		return err
	}
	if c.RefreshTokenTTL, err = getEnvDuration("REFRESH_TOKEN_TTL", c.RefreshTokenTTL); err != nil {
		return err
	}
	if c.TranscriptCacheTTL, err = getEnvDuration("TRANSCRIPT_CACHE_TTL", c.TranscriptCacheTTL); err != nil {
		return err
	}
	return nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DBDriver) {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported db driver %q (valid: postgres, sqlite)", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("jwt secret cannot be empty")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.MaxDurationSec < 0 {
		return fmt.Errorf("max duration %d must not be negative", c.MaxDurationSec)
	}
	if c.NumQuestions < 1 {
		return fmt.Errorf("question count %d must be at least 1", c.NumQuestions)
	}
	if c.WhisperModel == "" {
		return errors.New("whisper model cannot be empty")
	}
	if c.ScratchDir == "" {
		return errors.New("scratch directory cannot be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{}
	if !cfg.Debug {
		gcfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	var dialector gorm.Dialector
	switch strings.ToLower(cfg.DBDriver) {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath + "?_foreign_keys=on")
	default:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// InitRedis connects to REDIS_URL. A nil client means Redis-backed features
// (transcript cache, token blacklist) are disabled for this process.
func InitRedis(cfg *Config) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Warn("redis: invalid url, disabled", slog.Any("error", err))
		return nil
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis: unreachable, disabled", slog.String("addr", opts.Addr), slog.Any("error", err))
		_ = client.Close()
		return nil
	}
	slog.Info("redis: connected", slog.String("addr", opts.Addr))
	return client
}

// AutoMigrate creates or updates the schema for every persisted model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Quiz{},
		&models.Question{},
	)
}
