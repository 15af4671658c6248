package config

import (
	"errors"
	"fmt"
	"os"

	"roombook/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Booking    BookingConfig    `yaml:"booking"`
	Users      []models.User    `yaml:"users"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type BookingConfig struct {
	OpenTime       string `yaml:"open_time"`
	CloseTime      string `yaml:"close_time"`
	StoreTimeoutMS int    `yaml:"store_timeout_ms"`
}

type APIConfig struct {
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled bool       `yaml:"enabled"`
	Tokens  []APIToken `yaml:"tokens"`
}

// APIToken binds a bearer token to a verified user in the directory.
type APIToken struct {
	Token       string   `yaml:"token"`
	Name        string   `yaml:"name"`
	UserID      int64    `yaml:"user_id"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; environment wins over file values either way
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if _, err := models.NewWindow(c.Booking.OpenTime, c.Booking.CloseTime); err != nil {
		return fmt.Errorf("booking operating window: %w", err)
	}

	seen := make(map[string]bool, len(c.API.Auth.Tokens))
	for _, t := range c.API.Auth.Tokens {
		if t.Token == "" {
			return fmt.Errorf("api token for %q is empty", t.Name)
		}
		if seen[t.Token] {
			return fmt.Errorf("duplicate api token for %q", t.Name)
		}
		if t.UserID == 0 {
			return fmt.Errorf("api token %q has no user_id", t.Name)
		}
		seen[t.Token] = true
	}

	return ValidateUsers(c.Users)
}

func ValidateUsers(users []models.User) error {
	ids := make(map[int64]bool, len(users))
	emails := make(map[string]bool, len(users))
	for _, u := range users {
		if u.Email == "" {
			return fmt.Errorf("user '%s' has no email", u.Name)
		}
		if emails[u.Email] {
			return fmt.Errorf("duplicate user email: %s", u.Email)
		}
		emails[u.Email] = true
		if u.ID != 0 {
			if ids[u.ID] {
				return fmt.Errorf("duplicate user ID found: %d", u.ID)
			}
			ids[u.ID] = true
		}
	}
	return nil
}

// ValidateRooms checks the catalog loaded from rooms.yaml.
func ValidateRooms(rooms []models.Room) error {
	ids := make(map[int64]bool, len(rooms))
	for _, room := range rooms {
		if room.ID == 0 {
			return fmt.Errorf("room '%s' has invalid ID 0", room.Name)
		}
		if ids[room.ID] {
			return fmt.Errorf("duplicate room ID found: %d", room.ID)
		}
		if room.PricePerHour < 0 {
			return fmt.Errorf("room '%s' has negative hourly rate", room.Name)
		}
		ids[room.ID] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = models.RateLimitRPS
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = models.RateLimitBurst
	}

	// Booking defaults
	if c.Booking.OpenTime == "" {
		c.Booking.OpenTime = models.DefaultOpenTime
	}
	if c.Booking.CloseTime == "" {
		c.Booking.CloseTime = models.DefaultCloseTime
	}
	if c.Booking.StoreTimeoutMS == 0 {
		c.Booking.StoreTimeoutMS = models.DefaultStoreTimeout
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
