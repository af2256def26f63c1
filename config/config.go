package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	OAuth     OAuthConfig
	Firebase  FirebaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Seed      SeedConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

type DatabaseConfig struct {
	Driver          string // mysql | postgres | sqlite
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type FirebaseConfig struct {
	ServiceAccountPath string
}

// RedisConfig is optional; an empty Addr keeps rate limiting in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type LogConfig struct {
	Level  string
	Format string // json | console
}

// SeedConfig describes the facility and admin created on first start.
type SeedConfig struct {
	FacilityName  string
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

func Load() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:         "8080",
			Env:          "development",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			CORSOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Database: DatabaseConfig{
			Driver:          "mysql",
			DSN:             "carehub:carehub@tcp(localhost:3306)/carehub?charset=utf8mb4&parseTime=True&loc=Local",
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  "change-me-in-production",
			RefreshSecret: "change-me-refresh",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "carehub",
		},
		RateLimit: RateLimitConfig{
			Requests: 100,
			Window:   time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Seed: SeedConfig{
			FacilityName: "Main Facility",
			AdminName:    "Facility Admin",
		},
	}
	cfg.loadFromEnv()
	return cfg
}

func (c *Config) loadFromEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.Env, "APP_ENV")
	setDuration(&c.Server.ReadTimeout, "SERVER_READ_TIMEOUT")
	setDuration(&c.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = strings.Split(v, ",")
	}

	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DB_DSN")
	setInt(&c.Database.MaxIdleConns, "DB_MAX_IDLE_CONNS")
	setInt(&c.Database.MaxOpenConns, "DB_MAX_OPEN_CONNS")

	setString(&c.JWT.AccessSecret, "JWT_ACCESS_SECRET")
	setString(&c.JWT.RefreshSecret, "JWT_REFRESH_SECRET")
	setDuration(&c.JWT.AccessExpiry, "JWT_ACCESS_EXPIRY")
	setDuration(&c.JWT.RefreshExpiry, "JWT_REFRESH_EXPIRY")

	setString(&c.OAuth.GoogleClientID, "GOOGLE_CLIENT_ID")
	setString(&c.OAuth.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&c.OAuth.GoogleRedirectURL, "GOOGLE_REDIRECT_URL")

	setString(&c.Firebase.ServiceAccountPath, "FIREBASE_SERVICE_ACCOUNT_PATH")

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")

	setInt(&c.RateLimit.Requests, "RATE_LIMIT_REQUESTS")
	setDuration(&c.RateLimit.Window, "RATE_LIMIT_WINDOW")

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	setString(&c.Seed.FacilityName, "SEED_FACILITY_NAME")
	setString(&c.Seed.AdminEmail, "SEED_ADMIN_EMAIL")
	setString(&c.Seed.AdminPassword, "SEED_ADMIN_PASSWORD")
	setString(&c.Seed.AdminName, "SEED_ADMIN_NAME")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
