package client

import (
	"fmt"

	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/errorformat"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/config"
)

// Options configures a Client
type Options struct {
	// Log enables log levels and routes each to stdout or to subscribers.
	Log []coreport.LogRoute
	// ErrorFormat selects how FormatError renders errors.
	ErrorFormat errorformat.Format
	// Transaction holds the defaults of Transaction and Batch.
	Transaction persistence.TxOptions

	Logger       coreport.Logger
	TimeProvider coreport.TimeProvider
}

// OptionsFromConfig converts the client section of the application
// configuration
func OptionsFromConfig(c config.ClientConfig) (Options, error) {
	for _, r := range c.Log {
		if err := r.Validate(); err != nil {
			return Options{}, fmt.Errorf("client.log: %w", err)
		}
	}
	format, err := errorformat.Parse(c.ErrorFormat)
	if err != nil {
		return Options{}, fmt.Errorf("client.errorFormat: %w", err)
	}
	return Options{
		Log:         c.Log,
		ErrorFormat: format,
		Transaction: persistence.TxOptions{
			Isolation:  persistence.IsolationLevel(c.Transaction.IsolationLevel),
			MaxWait:    c.Transaction.MaxWait,
			Timeout:    c.Transaction.Timeout,
			MaxRetries: c.Transaction.MaxRetries,
		},
	}, nil
}
