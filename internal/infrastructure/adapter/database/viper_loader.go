package database

import (
	"fmt"

	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/config"
)

// CreateConfigFromViperConfig adapts the application configuration to
// database configuration. Environment defaults from DefaultConfig fill the
// settings the file leaves empty.
func CreateConfigFromViperConfig(conf *config.Config) *Config {
	dbConf := DefaultConfig()
	src := conf.Database

	if src.URL != "" {
		dbConf.URL = src.URL
	}
	if src.Host != "" {
		dbConf.Host = src.Host
	}
	if port := ParsePort(src.Port); port != 0 {
		dbConf.Port = port
	}
	if src.Username != "" {
		dbConf.Username = src.Username
	}
	if src.Password != "" {
		dbConf.Password = src.Password
	}
	if src.Name != "" {
		dbConf.Database = src.Name
	}
	if src.SSLMode != "" {
		dbConf.SSLMode = src.SSLMode
	}
	if src.MaxOpenConns > 0 {
		dbConf.MaxOpenConns = src.MaxOpenConns
	}
	if src.MaxIdleConns > 0 {
		dbConf.MaxIdleConns = src.MaxIdleConns
	}
	if src.ConnMaxLifetime > 0 {
		dbConf.ConnMaxLifetime = src.ConnMaxLifetime
	}
	if src.ConnMaxIdleTime > 0 {
		dbConf.ConnMaxIdleTime = src.ConnMaxIdleTime
	}
	if src.QueryTimeout > 0 {
		dbConf.QueryTimeout = src.QueryTimeout
	}
	if src.RetryAttempts > 0 {
		dbConf.RetryAttempts = src.RetryAttempts
	}
	if src.RetryDelay > 0 {
		dbConf.RetryDelay = src.RetryDelay
	}
	return dbConf
}

// ParsePort converts a port string to an int
func ParsePort(port string) int {
	var p int
	_, err := fmt.Sscanf(port, "%d", &p)
	if err != nil || p <= 0 || p > 65535 {
		return 0 // Return 0 to signal not set instead of defaulting
	}
	return p
}
