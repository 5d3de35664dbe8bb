package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
)

// Config holds all configuration for the application
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Client      ClientConfig   `mapstructure:"client"`
	Logger      LoggerConfig   `mapstructure:"logger"`
	Import      ImportConfig   `mapstructure:"import"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings. URL takes
// precedence over the discrete fields.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
	AutoMigrate     bool          `mapstructure:"autoMigrate"`
}

// ClientConfig configures the data access client
type ClientConfig struct {
	// Log enables log levels and routes each to stdout or to event subscribers.
	Log []core.LogRoute `mapstructure:"log"`
	// ErrorFormat is pretty, colorless or minimal.
	ErrorFormat string            `mapstructure:"errorFormat"`
	Transaction TransactionConfig `mapstructure:"transaction"`
}

// TransactionConfig holds the defaults of interactive transactions
type TransactionConfig struct {
	MaxWait        time.Duration `mapstructure:"maxWait"` // milliseconds
	Timeout        time.Duration `mapstructure:"timeout"` // milliseconds
	IsolationLevel string        `mapstructure:"isolationLevel"`
	MaxRetries     int           `mapstructure:"maxRetries"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// ImportConfig limits statement uploads
type ImportConfig struct {
	MaxFileBytes int64 `mapstructure:"maxFileBytes"`
	MaxRows      int   `mapstructure:"maxRows"`
}

// ErrorFormats lists the accepted values of client.errorFormat
var ErrorFormats = []string{"pretty", "colorless", "minimal"}

// IsolationLevels lists the accepted values of client.transaction.isolationLevel
var IsolationLevels = []string{"", "ReadUncommitted", "ReadCommitted", "RepeatableRead", "Serializable"}

// Validate checks the settings that have a closed set of values
func (c *Config) Validate() error {
	var errs []error
	for _, r := range c.Client.Log {
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("client.log: %w", err))
		}
	}
	if !slices.Contains(ErrorFormats, c.Client.ErrorFormat) {
		errs = append(errs, fmt.Errorf("client.errorFormat: %q is not one of %v", c.Client.ErrorFormat, ErrorFormats))
	}
	if !slices.Contains(IsolationLevels, c.Client.Transaction.IsolationLevel) {
		errs = append(errs, fmt.Errorf("client.transaction.isolationLevel: %q is not one of %v", c.Client.Transaction.IsolationLevel, IsolationLevels[1:]))
	}
	if c.Client.Transaction.MaxWait < 0 || c.Client.Transaction.Timeout < 0 {
		errs = append(errs, errors.New("client.transaction: maxWait and timeout must be non-negative"))
	}
	if c.Client.Transaction.MaxRetries < 0 {
		errs = append(errs, errors.New("client.transaction.maxRetries must be non-negative"))
	}
	if c.Database.URL == "" && c.Database.Host == "" {
		errs = append(errs, errors.New("database: url or host is required"))
	}
	return errors.Join(errs...)
}
