package models

import (
	"errors"
	"fmt"
)

// Fatal run errors
var (
	ErrNoHistoricalData  = errors.New("no usable historical match data")
	ErrNoOddsData        = errors.New("no usable odds data")
	ErrUnsupportedMarket = errors.New("unsupported market")
)

// InsufficientDataError signals too few historical matches for a team.
// It is recoverable: callers fall back to league averages or skip the match.
type InsufficientDataError struct {
	Team string
	Role Role
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	if e.Team == "" {
		return fmt.Sprintf("insufficient league data: have %d matches, need %d", e.Have, e.Need)
	}
	if e.Role == "" {
		return fmt.Sprintf("insufficient data for %s: have %d matches, need %d", e.Team, e.Have, e.Need)
	}
	return fmt.Sprintf("insufficient %s data for %s: have %d matches, need %d", e.Role, e.Team, e.Have, e.Need)
}

// InvalidOddsError signals a quote that cannot be priced (price <= 1 or missing fields)
type InvalidOddsError struct {
	MatchID   string
	Bookmaker string
	Selection string
	Price     float64
	Reason    string
}

func (e *InvalidOddsError) Error() string {
	return fmt.Sprintf("invalid odds for %s/%s/%s (price %.3f): %s", e.MatchID, e.Bookmaker, e.Selection, e.Price, e.Reason)
}

// UnmatchedSelectionError signals an odds outcome with no probability estimate
type UnmatchedSelectionError struct {
	MatchID   string
	MarketKey string
	Selection string
}

func (e *UnmatchedSelectionError) Error() string {
	return fmt.Sprintf("no estimate for selection %q in market %s of match %s", e.Selection, e.MarketKey, e.MatchID)
}

// IsRecoverable reports whether err only affects a single match or quote
func IsRecoverable(err error) bool {
	var insufficient *InsufficientDataError
	var invalid *InvalidOddsError
	var unmatched *UnmatchedSelectionError
	return errors.As(err, &insufficient) || errors.As(err, &invalid) || errors.As(err, &unmatched)
}
