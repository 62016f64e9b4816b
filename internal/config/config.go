package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port        int
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type CORSConfig struct {
	// AllowedOrigins is the parsed origin list; a single "*" entry means
	// allow all callers.
	AllowedOrigins []string
}

type CaptureConfig struct {
	FFmpegPath string
	Timeout    time.Duration
}

type LogConfig struct {
	Level string
}

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Capture  CaptureConfig
	Log      LogConfig
}

// Load reads configuration from environment variables with defaults suitable
// for local development.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "alpr")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("FFMPEG_PATH", "ffmpeg")
	v.SetDefault("CAPTURE_TIMEOUT_SECONDS", 10)
	v.SetDefault("LOG_LEVEL", "info")

	return &Config{
		Server: ServerConfig{
			Port:        v.GetInt("SERVER_PORT"),
			Environment: v.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseOrigins(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Capture: CaptureConfig{
			FFmpegPath: v.GetString("FFMPEG_PATH"),
			Timeout:    time.Duration(v.GetInt("CAPTURE_TIMEOUT_SECONDS")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}
}

// DSN renders the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Name, c.Database.SSLMode,
	)
}

// AllowAllOrigins reports whether the origin list permits any caller.
func (c *Config) AllowAllOrigins() bool {
	for _, origin := range c.CORS.AllowedOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func parseOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}
