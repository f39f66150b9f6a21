// Package config loads runtime settings for the admin panel server and its
// command-line tools. Values come from built-in defaults, then a local .env
// file, then the process environment.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime settings.
type Config struct {
	HTTPAddr      string
	DatabaseDSN   string
	AutoMigrate   bool
	RecordStore   string // "postgres" or "memory"
	JWTSecret     string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	AdminPassword string

	RedisAddr     string
	RedisPassword string

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
	MaxUploadMB     int64
}

// LoadDefaults populates c with development defaults.
// NOTE: the JWT secret and admin password are insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8081"
	c.AutoMigrate = true
	c.RecordStore = "postgres"
	c.JWTSecret = "dev-insecure-secret-change"
	c.AccessTTL = 24 * time.Hour
	c.RefreshTTL = 30 * 24 * time.Hour
	c.AdminPassword = "admin123"
	c.S3Bucket = "community-files"
	c.S3Region = "us-east-1"
	c.MaxUploadMB = 50
}

// Load builds a Config from defaults, the optional ./.env file and the environment.
func Load() *Config {
	LoadDotEnv(".env")
	c := &Config{}
	c.LoadDefaults()
	c.applyEnv()
	return c
}

func (c *Config) applyEnv() {
	str(&c.HTTPAddr, "HTTP_ADDR")
	str(&c.DatabaseDSN, "DB_DSN")
	str(&c.RecordStore, "RECORD_STORE")
	str(&c.JWTSecret, "JWT_SECRET")
	str(&c.AdminPassword, "ADMIN_PASSWORD")
	str(&c.RedisAddr, "REDIS_ADDR")
	str(&c.RedisPassword, "REDIS_PASSWORD")
	str(&c.S3Bucket, "S3_BUCKET")
	str(&c.S3Region, "S3_REGION")
	str(&c.S3Endpoint, "S3_ENDPOINT")
	str(&c.S3AccessKey, "S3_ACCESS_KEY")
	str(&c.S3SecretKey, "S3_SECRET_KEY")
	str(&c.S3PublicBaseURL, "S3_PUBLIC_BASE_URL")

	// DB_AUTO_MIGRATE defaults to true; false/0/no disable it.
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		switch strings.ToLower(v) {
		case "false", "0", "no":
			c.AutoMigrate = false
		default:
			c.AutoMigrate = true
		}
	}
	dur(&c.AccessTTL, "ACCESS_TOKEN_TTL")
	dur(&c.RefreshTTL, "REFRESH_TOKEN_TTL")
	if v := os.Getenv("VAULT_MAX_UPLOAD_MB"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.MaxUploadMB = n
		}
	}
}

func str(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

// dur accepts Go duration strings ("15m") or plain minutes ("15").
func dur(dst *time.Duration, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(n) * time.Minute
	}
}

// LoadDotEnv loads key=value pairs from path into the environment without
// overwriting variables that are already set. Lines starting with # are ignored.
func LoadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// split on first '='
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			val := strings.Trim(strings.TrimSpace(line[eq+1:]), `"`)
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
	}
}
