package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/value-finder/internal/models"
)

// OddsSource provides the bookmaker odds snapshot for one run
type OddsSource interface {
	// FetchOdds retrieves every quote currently offered
	FetchOdds(ctx context.Context) (models.OddsSnapshot, error)

	// Name returns the name of the data source
	Name() string
}

// HistorySource provides finished match results
type HistorySource interface {
	// FetchResults retrieves the played matches of the configured league and season
	FetchResults(ctx context.Context) ([]models.MatchResult, error)

	// Name returns the name of the data source
	Name() string
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// Error constructors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsDataSourceError reports whether err carries the given code
func IsDataSourceError(err error, code string) bool {
	var dsErr DataSourceError
	return errors.As(err, &dsErr) && dsErr.Code == code
}
