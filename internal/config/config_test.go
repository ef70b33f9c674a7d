package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Database: DatabaseConfig{
			Host:   "localhost",
			User:   "test",
			DBName: "test",
		},
		Line: LineConfig{
			ChannelSecret: "secret",
			ChannelToken:  "token",
		},
		Store: StoreConfig{
			ID:          "restaurant-001",
			OpenHour:    11,
			CloseHour:   22,
			HorizonDays: 90,
		},
		RateLimit: RateLimitConfig{
			Window:     time.Minute,
			Max:        10,
			MaxSenders: 1000,
		},
	}
}

func TestConfigValidation(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	invalid := &Config{
		Server: ServerConfig{Port: ""},
	}
	assert.Error(t, invalid.Validate())
}

func TestConfigRequiresChannelSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Line.ChannelSecret = ""
	assert.Error(t, cfg.Validate(), "missing secret must fail closed")

	// Explicit insecure mode plus a static token is acceptable.
	cfg.Line.SkipSignatureValidation = true
	assert.NoError(t, cfg.Validate())
}

func TestConfigTokenIssuanceFallback(t *testing.T) {
	cfg := validConfig()
	cfg.Line.ChannelToken = ""
	assert.Error(t, cfg.Validate(), "no token and no channel id must fail")

	cfg.Line.ChannelID = "1234567890"
	assert.NoError(t, cfg.Validate())
}

func TestConfigRejectsBadHours(t *testing.T) {
	cfg := validConfig()
	cfg.Store.OpenHour = 22
	cfg.Store.CloseHour = 11
	assert.Error(t, cfg.Validate())
}

func TestConfigRejectsBadRateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.Max = 0
	assert.Error(t, cfg.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     3306,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	}

	dsn := cfg.GetDSN()
	expected := "testuser:testpass@tcp(localhost:3306)/testdb?charset=utf8mb4&parseTime=True&loc=Local"
	assert.Equal(t, expected, dsn)
}
