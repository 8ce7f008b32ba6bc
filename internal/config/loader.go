package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

// DefaultConfigPaths defines the default locations to search for configuration files
var DefaultConfigPaths = []string{
	"./config.yaml",
	"./config.yml",
	"./configs/config.yaml",
	"./configs/config.yml",
	"/etc/jobfinder/config.yaml",
	"/etc/jobfinder/config.yml",
}

// Defaults returns the configuration used when no file overrides a value
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "localhost",
			Port:        8080,
			MetricsPort: 9090,
		},
		GRPC: GRPCConfig{
			Host: "localhost",
			Port: 9091,
		},
		Database: DatabaseConfig{
			Driver: DriverPostgres,
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "jobfinder",
				User:     "postgres",
				SSLMode:  "disable",
			},
		},
		Redis: RedisConfig{
			CacheTTL: 15 * time.Minute,
		},
		Auth: AuthConfig{
			JWT: JWTConfig{Lifetime: 168 * time.Hour},
		},
		JobSearch: JobSearch{
			BaseURL: "https://jsearch.p.rapidapi.com",
			Host:    "jsearch.p.rapidapi.com",
			Country: "in",
			Timeout: 15 * time.Second,
		},
		Upload: UploadConfig{
			BaseURL: "https://api.cloudinary.com",
			Folder:  "avatars",
		},
		Environment: "local",
		NodeID:      1,
	}
}

// Load loads the configuration from the specified file or default locations
func Load(configPath string) (*Config, error) {
	config := Defaults()

	// If no config path is provided, search in default locations
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" && fileExists(configPath) {
		fmt.Fprintf(os.Stderr, "[CONFIG] Loading config from: %s\n", configPath)
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if configPath != "" {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	} else {
		fmt.Fprintf(os.Stderr, "[CONFIG] No config file found, using defaults\n")
	}

	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// findConfigFile searches for a configuration file in default locations
func findConfigFile() string {
	for _, path := range DefaultConfigPaths {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// validate performs basic validation on the configuration
func validate(config *Config) error {
	switch config.Database.Driver {
	case DriverPostgres:
		if config.Database.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if config.Database.Postgres.Database == "" {
			return fmt.Errorf("postgres database name is required")
		}
		if config.Database.Postgres.User == "" {
			return fmt.Errorf("postgres user is required")
		}
	case DriverMemory:
		if config.Environment == "prod" {
			return fmt.Errorf("database.driver memory is not allowed in prod")
		}
	default:
		return fmt.Errorf("unknown database.driver %q (must be postgres or memory)", config.Database.Driver)
	}

	for name, port := range map[string]int{
		"server.port":         config.Server.Port,
		"server.metrics_port": config.Server.MetricsPort,
		"grpc.port":           config.GRPC.Port,
	} {
		if port < 1 || port > 65535 {
			return fmt.Errorf("%s must be between 1 and 65535", name)
		}
	}

	if config.Auth.JWT.Lifetime <= 0 {
		return fmt.Errorf("auth.jwt.lifetime must be positive")
	}
	if config.Environment == "prod" && len(config.Auth.JWT.SigningKey) < 32 {
		return fmt.Errorf("auth.jwt.signing_key must be at least 32 bytes in prod")
	}
	if config.NodeID < 0 || config.NodeID > 1023 {
		return fmt.Errorf("node_id must be between 0 and 1023")
	}

	return nil
}
