// Package storage writes and reads value bet reports on disk.
package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/value-finder/internal/logger"
	"github.com/yourusername/value-finder/internal/models"
)

// Output formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Places every probability, price and statistic is rounded to on output
const outputPlaces = 4

// CSVColumns is the header of CSV reports
var CSVColumns = []string{
	"commence_time", "match", "market", "selection", "bookmaker", "odds",
	"implied_probability", "real_probability", "edge", "expected_value", "confidence",
}

func round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(outputPlaces).InexactFloat64()
}

func formatDecimal(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(outputPlaces)
}

// Rounded returns a copy of the report with every float rounded for output
func Rounded(report *models.ValueBetReport) *models.ValueBetReport {
	out := *report
	out.Bets = make([]models.ValueBetCandidate, len(report.Bets))
	for i, b := range report.Bets {
		b.Odds = round(b.Odds)
		b.ImpliedProbability = round(b.ImpliedProbability)
		b.RealProbability = round(b.RealProbability)
		b.Edge = round(b.Edge)
		b.ExpectedValue = round(b.ExpectedValue)
		b.Confidence = round(b.Confidence)
		out.Bets[i] = b
	}
	out.Stats.AverageOdds = round(report.Stats.AverageOdds)
	out.Stats.AverageEdge = round(report.Stats.AverageEdge)
	out.Stats.AverageConfidence = round(report.Stats.AverageConfidence)
	if report.Stats.MarketShare != nil {
		out.Stats.MarketShare = make(map[string]float64, len(report.Stats.MarketShare))
		for k, v := range report.Stats.MarketShare {
			out.Stats.MarketShare[k] = round(v)
		}
	}
	return &out
}

// WriteJSON encodes the rounded report
func WriteJSON(w io.Writer, report *models.ValueBetReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Rounded(report))
}

// WriteCSV writes one row per bet with fixed four-decimal values
func WriteCSV(w io.Writer, report *models.ValueBetReport) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVColumns); err != nil {
		return err
	}
	for _, b := range report.Bets {
		row := []string{
			b.CommenceTime.UTC().Format(time.RFC3339),
			b.Match,
			b.MarketKey,
			b.Selection,
			b.Bookmaker,
			formatDecimal(b.Odds),
			formatDecimal(b.ImpliedProbability),
			formatDecimal(b.RealProbability),
			formatDecimal(b.Edge),
			formatDecimal(b.ExpectedValue),
			formatDecimal(b.Confidence),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// LoadJSON reads a report written by WriteJSON
func LoadJSON(path string) (*models.ValueBetReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	var report models.ValueBetReport
	if err := json.NewDecoder(f).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", path, err)
	}
	return &report, nil
}

// PathForProfile inserts the profile before the extension: value_bets.csv -> value_bets_balanced.csv
func PathForProfile(path, profile string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + profile + ext
}

// FileSink writes each delivered report to a file
type FileSink struct {
	Path       string
	Format     string
	PerProfile bool
	audit      *logger.AuditLogger
}

// NewFileSink creates a file sink. audit may be nil.
func NewFileSink(path, format string, perProfile bool, audit *logger.AuditLogger) *FileSink {
	return &FileSink{Path: path, Format: format, PerProfile: perProfile, audit: audit}
}

// Name returns the sink name
func (s *FileSink) Name() string {
	return "file"
}

// Deliver writes the report atomically via a temporary file
func (s *FileSink) Deliver(ctx context.Context, report *models.ValueBetReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path
	if s.PerProfile {
		path = PathForProfile(path, report.Profile)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".value_bets-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	switch s.Format {
	case FormatCSV:
		err = WriteCSV(tmp, report)
	case FormatJSON, "":
		err = WriteJSON(tmp, report)
	default:
		err = fmt.Errorf("unknown output format %q", s.Format)
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move report into place: %w", err)
	}

	if s.audit != nil {
		s.audit.LogReportWritten(report.RunID.String(), path, s.Format, len(report.Bets))
	}
	return nil
}
