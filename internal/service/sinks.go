package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-finder/internal/models"
)

// ReportSink receives finished reports (file, stream, database)
type ReportSink interface {
	Name() string
	Deliver(ctx context.Context, report *models.ValueBetReport) error
}

// Dispatcher hands a report to every sink. One failing sink does not stop the others.
type Dispatcher struct {
	sinks  []ReportSink
	logger *logrus.Logger
}

// NewDispatcher creates a dispatcher over sinks
func NewDispatcher(logger *logrus.Logger, sinks ...ReportSink) *Dispatcher {
	return &Dispatcher{sinks: sinks, logger: logger}
}

// Add registers another sink
func (d *Dispatcher) Add(sink ReportSink) {
	d.sinks = append(d.sinks, sink)
}

// Deliver sends the report to every sink and joins their errors
func (d *Dispatcher) Deliver(ctx context.Context, report *models.ValueBetReport) error {
	var errs []error
	for _, sink := range d.sinks {
		if err := sink.Deliver(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			if d.logger != nil {
				d.logger.WithFields(logrus.Fields{
					"sink":   sink.Name(),
					"run_id": report.RunID.String(),
				}).WithError(err).Error("Failed to deliver report")
			}
		}
	}
	return errors.Join(errs...)
}
