// Package publisher hands value bets to downstream consumers over Redis streams.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/value-finder/internal/config"
	"github.com/yourusername/value-finder/internal/logger"
	"github.com/yourusername/value-finder/internal/models"
)

// Entries kept per stream; older ones are trimmed approximately
const defaultMaxLen = 10000

// StreamAdder is the subset of the Redis client the publisher needs
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// StreamPublisher publishes value bets to a Redis stream, one entry per bet
type StreamPublisher struct {
	client StreamAdder
	stream string
	audit  *logger.AuditLogger
}

// NewStreamPublisher creates a new stream publisher. audit may be nil.
func NewStreamPublisher(client StreamAdder, stream string, audit *logger.AuditLogger) *StreamPublisher {
	return &StreamPublisher{
		client: client,
		stream: stream,
		audit:  audit,
	}
}

// NewRedisClient builds a client from configuration
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Name returns the sink name
func (p *StreamPublisher) Name() string {
	return "redis"
}

// PublishValueBet publishes a single bet of a run
func (p *StreamPublisher) PublishValueBet(ctx context.Context, runID string, bet models.ValueBetCandidate) error {
	data, err := json.Marshal(bet)
	if err != nil {
		return fmt.Errorf("marshaling value bet: %w", err)
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: defaultMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":      string(data),
			"run_id":    runID,
			"match_id":  bet.MatchID,
			"market":    bet.MarketKey,
			"selection": bet.Selection,
			"bookmaker": bet.Bookmaker,
		},
	}).Err()
}

// Deliver publishes every bet of the report in rank order
func (p *StreamPublisher) Deliver(ctx context.Context, report *models.ValueBetReport) error {
	runID := report.RunID.String()
	for i, bet := range report.Bets {
		if err := p.PublishValueBet(ctx, runID, bet); err != nil {
			return fmt.Errorf("publishing bet %d of run %s: %w", i, runID, err)
		}
	}
	if p.audit != nil {
		p.audit.LogReportPublished(runID, p.stream, len(report.Bets))
	}
	return nil
}
