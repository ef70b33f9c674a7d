package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Line      LineConfig      `mapstructure:"line"`
	Store     StoreConfig     `mapstructure:"store"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Reminder  ReminderConfig  `mapstructure:"reminder"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// LineConfig holds LINE Messaging API credentials
type LineConfig struct {
	ChannelSecret string `mapstructure:"channel_secret"`
	ChannelToken  string `mapstructure:"channel_token"`
	// ChannelID is only needed when ChannelToken is empty and a
	// short-lived token is issued via the OAuth endpoint instead.
	ChannelID string `mapstructure:"channel_id"`
	// SkipSignatureValidation disables webhook signature checks.
	// Development only; verification fails closed otherwise.
	SkipSignatureValidation bool `mapstructure:"skip_signature_validation"`
}

// StoreConfig holds restaurant business rules
type StoreConfig struct {
	ID          string `mapstructure:"id"`
	Phone       string `mapstructure:"phone"`
	OpenHour    int    `mapstructure:"open_hour"`
	CloseHour   int    `mapstructure:"close_hour"`
	HorizonDays int    `mapstructure:"horizon_days"`
}

// RateLimitConfig holds per-sender rate limiting configuration
type RateLimitConfig struct {
	Window     time.Duration `mapstructure:"window"`
	Max        int           `mapstructure:"max"`
	MaxSenders int           `mapstructure:"max_senders"`
}

// ReminderConfig holds the reminder scheduler configuration
type ReminderConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// LoadConfig loads configuration from environment variables and config file
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	setDefaults()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	viper.AutomaticEnv()

	// Bind environment variables
	bindEnvVars()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.allowed_origins", []string{"*"})

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)

	viper.SetDefault("line.skip_signature_validation", false)

	viper.SetDefault("store.id", "restaurant-001")
	viper.SetDefault("store.phone", "03-1234-5678")
	viper.SetDefault("store.open_hour", 11)
	viper.SetDefault("store.close_hour", 22)
	viper.SetDefault("store.horizon_days", 90)

	viper.SetDefault("rate_limit.window", "60s")
	viper.SetDefault("rate_limit.max", 10)
	viper.SetDefault("rate_limit.max_senders", 1000)

	viper.SetDefault("reminder.enabled", true)
	viper.SetDefault("reminder.schedule", "0 0 18 * * *")
}

// bindEnvVars binds environment variables to configuration keys
func bindEnvVars() {
	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	viper.BindEnv("server.allowed_origins", "ALLOWED_ORIGINS")

	// Database
	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.dbname", "DB_NAME")

	// LINE
	viper.BindEnv("line.channel_secret", "LINE_CHANNEL_SECRET")
	viper.BindEnv("line.channel_token", "LINE_CHANNEL_ACCESS_TOKEN")
	viper.BindEnv("line.channel_id", "LINE_CHANNEL_ID")
	viper.BindEnv("line.skip_signature_validation", "SKIP_SIGNATURE_VALIDATION")

	// Store
	viper.BindEnv("store.id", "STORE_ID")
	viper.BindEnv("store.phone", "STORE_PHONE")
	viper.BindEnv("store.open_hour", "OPEN_HOUR")
	viper.BindEnv("store.close_hour", "CLOSE_HOUR")
	viper.BindEnv("store.horizon_days", "ADVANCE_BOOKING_DAYS")

	// Rate limiting
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("rate_limit.max", "RATE_LIMIT_MAX")
	viper.BindEnv("rate_limit.max_senders", "RATE_LIMIT_MAX_SENDERS")

	// Reminder
	viper.BindEnv("reminder.enabled", "REMINDER_ENABLED")
	viper.BindEnv("reminder.schedule", "REMINDER_SCHEDULE")
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return fmt.Errorf("database host, user, and dbname are required")
	}

	if !c.Line.SkipSignatureValidation && c.Line.ChannelSecret == "" {
		return fmt.Errorf("LINE channel secret is required unless signature validation is explicitly skipped")
	}

	if c.Line.ChannelToken == "" && (c.Line.ChannelID == "" || c.Line.ChannelSecret == "") {
		return fmt.Errorf("LINE channel token, or channel id and secret for token issuance, are required")
	}

	if c.Store.ID == "" {
		return fmt.Errorf("store id is required")
	}

	if c.Store.OpenHour < 0 || c.Store.CloseHour > 24 || c.Store.OpenHour >= c.Store.CloseHour {
		return fmt.Errorf("store hours are invalid: open=%d close=%d", c.Store.OpenHour, c.Store.CloseHour)
	}

	if c.Store.HorizonDays <= 0 {
		return fmt.Errorf("advance booking horizon must be greater than 0")
	}

	if c.RateLimit.Window <= 0 || c.RateLimit.Max <= 0 || c.RateLimit.MaxSenders <= 0 {
		return fmt.Errorf("rate limit window, max, and max_senders must be greater than 0")
	}

	return nil
}
