package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the service.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Import     ImportConfig     `yaml:"import"`
	DropFolder DropFolderConfig `yaml:"drop_folder"`
	CORS       CORSConfig       `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds redis settings for import progress tracking.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ImportConfig holds CSV upload limits.
type ImportConfig struct {
	// MaxFileSizeMB caps uploaded CSV files. 0 means the built-in 10 MiB.
	MaxFileSizeMB int `yaml:"max_file_size_mb"`
}

// DropFolderConfig holds S3 drop-folder ingestion settings.
type DropFolderConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Bucket      string `yaml:"bucket"`
	Region      string `yaml:"region"`
	AWSProfile  string `yaml:"aws_profile"`
	Schedule    string `yaml:"schedule"` // cron expression
	Concurrency int    `yaml:"concurrency"`
	MaxRetries  int    `yaml:"max_retries"`
	ForceCreate bool   `yaml:"force_create"`
}

// CORSConfig holds allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads and parses the configuration file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.DropFolder.Schedule == "" {
		cfg.DropFolder.Schedule = "*/5 * * * *"
	}
	if cfg.DropFolder.Concurrency == 0 {
		cfg.DropFolder.Concurrency = 4
	}
	if cfg.DropFolder.MaxRetries == 0 {
		cfg.DropFolder.MaxRetries = 3
	}
	if cfg.DropFolder.Region == "" {
		cfg.DropFolder.Region = "us-east-1"
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	}
}

// LoadFromEnv loads the config file (if present), then overlays
// environment variables, loading .env first. Missing config files are
// not an error: an env-only deployment is fine.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}
	if bucket := os.Getenv("DROP_FOLDER_BUCKET"); bucket != "" {
		cfg.DropFolder.Bucket = bucket
		cfg.DropFolder.Enabled = true
	}
	if region := os.Getenv("DROP_FOLDER_REGION"); region != "" {
		cfg.DropFolder.Region = region
	}
	if profile := os.Getenv("AWS_PROFILE_OVERRIDE"); profile != "" {
		cfg.DropFolder.AWSProfile = profile
	}
	if schedule := os.Getenv("DROP_FOLDER_SCHEDULE"); schedule != "" {
		cfg.DropFolder.Schedule = schedule
	}

	cfg.applyDefaults()
	return cfg, nil
}
