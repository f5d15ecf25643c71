package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/scandine-backend/internal/data/db"
	"github.com/yungbote/scandine-backend/internal/platform/envutil"
)

// Config is resolved as defaults, then the optional YAML file named by
// SCANDINE_CONFIG_PATH, then environment variables.
type Config struct {
	HTTPAddr        string        `yaml:"http_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	PublicBaseURL   string        `yaml:"public_base_url"`

	JWTSecretKey     string        `yaml:"jwt_secret_key"`
	AccessTokenTTL   time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL  time.Duration `yaml:"refresh_token_ttl"`
	PasswordResetTTL time.Duration `yaml:"password_reset_ttl"`

	TrialDays          int           `yaml:"trial_days"`
	InviteDefaultDays  int           `yaml:"invite_default_days"`
	TrialSweepInterval time.Duration `yaml:"trial_sweep_interval"`
	MenuCacheTTL       time.Duration `yaml:"menu_cache_ttl"`
	LogoFontPath       string        `yaml:"logo_font_path"`

	DB DBConfig `yaml:"db"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	ObjectStorageMode   string `yaml:"object_storage_mode"`
	StorageEmulatorHost string `yaml:"storage_emulator_host"`
}

type DBConfig struct {
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	SSLMode    string `yaml:"sslmode"`
}

func defaultConfig() Config {
	return Config{
		HTTPAddr:           ":8080",
		ShutdownTimeout:    15 * time.Second,
		PublicBaseURL:      "http://localhost:3000",
		JWTSecretKey:       "defaultsecret",
		AccessTokenTTL:     time.Hour,
		RefreshTokenTTL:    30 * 24 * time.Hour,
		PasswordResetTTL:   time.Hour,
		TrialDays:          7,
		InviteDefaultDays:  7,
		TrialSweepInterval: 15 * time.Minute,
		MenuCacheTTL:       5 * time.Minute,
		DB: DBConfig{
			Driver:     db.DriverPostgres,
			SQLitePath: "scandine.db",
			Host:       "localhost",
			Port:       "5432",
			User:       "postgres",
			Name:       "scandine",
			SSLMode:    "disable",
		},
	}
}

func LoadConfig() (Config, error) {
	cfg := defaultConfig()
	if path := strings.TrimSpace(os.Getenv("SCANDINE_CONFIG_PATH")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if cfg.TrialSweepInterval < time.Minute {
		cfg.TrialSweepInterval = time.Minute
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = envutil.String("HTTP_ADDR", c.HTTPAddr)
	c.ShutdownTimeout = envutil.Duration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.CORSOrigins = envutil.List("CORS_ORIGINS", c.CORSOrigins)
	c.PublicBaseURL = envutil.String("PUBLIC_BASE_URL", c.PublicBaseURL)

	c.JWTSecretKey = envutil.String("JWT_SECRET_KEY", c.JWTSecretKey)
	c.AccessTokenTTL = envutil.Duration("ACCESS_TOKEN_TTL", c.AccessTokenTTL)
	c.RefreshTokenTTL = envutil.Duration("REFRESH_TOKEN_TTL", c.RefreshTokenTTL)
	c.PasswordResetTTL = envutil.Duration("PASSWORD_RESET_TTL", c.PasswordResetTTL)

	c.TrialDays = envutil.Int("TRIAL_DAYS", c.TrialDays)
	c.InviteDefaultDays = envutil.Int("INVITE_DEFAULT_DAYS", c.InviteDefaultDays)
	c.TrialSweepInterval = envutil.Duration("TRIAL_SWEEP_INTERVAL", c.TrialSweepInterval)
	c.MenuCacheTTL = envutil.Duration("MENU_CACHE_TTL", c.MenuCacheTTL)
	c.LogoFontPath = envutil.String("LOGO_FONT_PATH", c.LogoFontPath)

	c.DB.Driver = strings.ToLower(envutil.String("DB_DRIVER", c.DB.Driver))
	c.DB.SQLitePath = envutil.String("SQLITE_PATH", c.DB.SQLitePath)
	c.DB.Host = envutil.String("POSTGRES_HOST", c.DB.Host)
	c.DB.Port = envutil.String("POSTGRES_PORT", c.DB.Port)
	c.DB.User = envutil.String("POSTGRES_USER", c.DB.User)
	c.DB.Password = envutil.String("POSTGRES_PASSWORD", c.DB.Password)
	c.DB.Name = envutil.String("POSTGRES_NAME", c.DB.Name)
	c.DB.SSLMode = envutil.String("POSTGRES_SSLMODE", c.DB.SSLMode)

	c.RedisAddr = envutil.String("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = envutil.String("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = envutil.Int("REDIS_DB", c.RedisDB)

	c.ObjectStorageMode = envutil.String("OBJECT_STORAGE_MODE", c.ObjectStorageMode)
	c.StorageEmulatorHost = envutil.String("STORAGE_EMULATOR_HOST", c.StorageEmulatorHost)
}

func (c Config) dbConfig() db.Config {
	base := db.ConfigFromEnv()
	base.Driver = c.DB.Driver
	base.SQLitePath = c.DB.SQLitePath
	base.Host = c.DB.Host
	base.Port = c.DB.Port
	base.User = c.DB.User
	base.Password = c.DB.Password
	base.Name = c.DB.Name
	base.SSLMode = c.DB.SSLMode
	return base
}
