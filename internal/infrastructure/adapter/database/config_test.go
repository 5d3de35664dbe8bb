package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/config"
)

func validConfig() *Config {
	return &Config{
		Host:          "localhost",
		Port:          5432,
		Username:      "ledger",
		Password:      "secret",
		Database:      "ledger",
		SSLMode:       "disable",
		MaxOpenConns:  10,
		MaxIdleConns:  5,
		QueryTimeout:  time.Second,
		RetryAttempts: 1,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"discrete fields", func(*Config) {}, ""},
		{"url wins over missing host", func(c *Config) {
			c.Host = ""
			c.URL = "postgresql://ledger:secret@db:5432/ledger"
		}, ""},
		{"unsupported scheme", func(c *Config) { c.URL = "mysql://db/ledger" }, "unsupported datasource scheme"},
		{"url without host", func(c *Config) { c.URL = "postgres:///ledger" }, "no host"},
		{"missing host", func(c *Config) { c.Host = "" }, "url or host is required"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "invalid port"},
		{"bad ssl mode", func(c *Config) { c.SSLMode = "always" }, "invalid SSL mode"},
		{"no pool", func(c *Config) { c.MaxOpenConns = 0 }, "max open connections"},
		{"no timeout", func(c *Config) { c.QueryTimeout = 0 }, "query timeout"},
		{"no attempts", func(c *Config) { c.RetryAttempts = 0 }, "retry attempts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_DSNAndRedacted(t *testing.T) {
	c := validConfig()
	assert.Equal(t, "host=localhost port=5432 user=ledger password=secret dbname=ledger sslmode=disable", c.DSN())
	assert.NotContains(t, c.Redacted(), "secret")

	c.URL = "postgres://ledger:secret@db:5432/ledger?sslmode=require"
	assert.Equal(t, c.URL, c.DSN())
	assert.Equal(t, "postgres://ledger:xxxxx@db:5432/ledger?sslmode=require", c.Redacted())
}

func TestCreateConfigFromViperConfig(t *testing.T) {
	t.Setenv("FL_DATABASE_URL", "")
	app := &config.Config{Database: config.DatabaseConfig{
		URL:           "postgres://ledger@db/ledger",
		Port:          "6543",
		MaxOpenConns:  40,
		QueryTimeout:  3 * time.Second,
		RetryAttempts: 5,
		RetryDelay:    2 * time.Second,
	}}

	c := CreateConfigFromViperConfig(app)
	assert.Equal(t, "postgres://ledger@db/ledger", c.URL)
	assert.Equal(t, 6543, c.Port)
	assert.Equal(t, 40, c.MaxOpenConns)
	assert.Equal(t, 3*time.Second, c.QueryTimeout)
	assert.Equal(t, 5, c.RetryAttempts)
	assert.Equal(t, 2*time.Second, c.RetryDelay)
	assert.NoError(t, c.Validate())
}

func TestParsePort(t *testing.T) {
	assert.Equal(t, 5432, ParsePort("5432"))
	assert.Zero(t, ParsePort("0"))
	assert.Zero(t, ParsePort("port"))
	assert.Zero(t, ParsePort("70000"))
}
