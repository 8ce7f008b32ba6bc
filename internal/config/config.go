package config

import (
	"fmt"
	"time"
)

// Config represents the server configuration
type Config struct {
	Server      ServerConfig   `yaml:"server"`
	GRPC        GRPCConfig     `yaml:"grpc"`
	Database    DatabaseConfig `yaml:"database"`
	Redis       RedisConfig    `yaml:"redis"`
	Auth        AuthConfig     `yaml:"auth"`
	JobSearch   JobSearch      `yaml:"job_search"`
	Upload      UploadConfig   `yaml:"upload"`
	Environment string         `yaml:"environment" default:"local"` // local, dev, prod
	NodeID      int64          `yaml:"node_id" default:"1"`         // snowflake node, unique per replica
}

// ServerConfig holds the HTTP API listener
type ServerConfig struct {
	Host        string `yaml:"host" default:"localhost"`
	Port        int    `yaml:"port" default:"8080"`
	MetricsPort int    `yaml:"metrics_port" default:"9090"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string         `yaml:"driver" default:"postgres"` // postgres, memory
	Postgres PostgresConfig `yaml:"postgres"`
}

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// PostgresConfig holds PostgreSQL-specific configuration
type PostgresConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"5432"`
	Database string `yaml:"database" default:"jobfinder"`
	User     string `yaml:"user" default:"postgres"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode" default:"disable"` // disable, require, verify-ca, verify-full
}

// GRPCConfig holds the gRPC health endpoint listener
type GRPCConfig struct {
	Host string `yaml:"host" default:"localhost"`
	Port int    `yaml:"port" default:"9091"`
}

// RedisConfig holds the cache connection. An empty address disables caching.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl" default:"15m"` // search result lifetime
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWT     JWTConfig     `yaml:"jwt"`
	Cookies CookiesConfig `yaml:"cookies"`
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	SigningKey string        `yaml:"signing_key"`             // Secret key for signing JWTs
	Lifetime   time.Duration `yaml:"lifetime" default:"168h"` // Default 7 days
}

// CookiesConfig holds the browser session cookie settings
type CookiesConfig struct {
	SessionKey string `yaml:"session_key"` // HMAC key for the session cookie
	Secure     bool   `yaml:"secure"`      // set Secure on cookies (requires HTTPS)
}

// JobSearch holds the remote job search API settings
type JobSearch struct {
	BaseURL string        `yaml:"base_url" default:"https://jsearch.p.rapidapi.com"`
	Host    string        `yaml:"host" default:"jsearch.p.rapidapi.com"`
	APIKey  string        `yaml:"api_key"`
	Country string        `yaml:"country" default:"in"`
	Timeout time.Duration `yaml:"timeout" default:"15s"`
}

// UploadConfig holds the image CDN settings for avatars
type UploadConfig struct {
	BaseURL      string `yaml:"base_url" default:"https://api.cloudinary.com"`
	CloudName    string `yaml:"cloud_name"`
	UploadPreset string `yaml:"upload_preset"`
	Folder       string `yaml:"folder" default:"avatars"`
}

// ConnectionString returns the PostgreSQL connection string
func (p *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// Enabled reports whether a Redis address is configured
func (r *RedisConfig) Enabled() bool {
	return r.Addr != ""
}
