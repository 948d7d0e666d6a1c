package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-finder/internal/models"
)

const csvSourceName = "csv"

// CSVHeader is the column layout of history files
var CSVHeader = []string{"date", "home_team", "away_team", "home_score", "away_score"}

var csvDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type csvRow struct {
	Date      string `validate:"required"`
	HomeTeam  string `validate:"required"`
	AwayTeam  string `validate:"required,nefield=HomeTeam"`
	HomeScore string `validate:"omitempty,numeric"`
	AwayScore string `validate:"omitempty,numeric"`
}

// CSVHistorySource implements HistorySource over a results CSV file
type CSVHistorySource struct {
	path   string
	logger *logrus.Logger
}

// NewCSVHistorySource creates a CSV history source
func NewCSVHistorySource(path string, logger *logrus.Logger) *CSVHistorySource {
	return &CSVHistorySource{path: path, logger: logger}
}

// Name returns the data source name
func (s *CSVHistorySource) Name() string {
	return csvSourceName
}

// FetchResults reads every row of the file. Malformed rows are logged and skipped.
func (s *CSVHistorySource) FetchResults(ctx context.Context) ([]models.MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, NewDataSourceError(csvSourceName, ErrCodeNotFound, s.path, err)
	}
	defer f.Close()

	results, rowErrs, err := ReadResultsCSV(f)
	if err != nil {
		return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, "failed to parse "+s.path, err)
	}
	if s.logger != nil {
		for _, rowErr := range rowErrs {
			s.logger.WithField("file", s.path).WithError(rowErr).Warn("Skipping malformed history row")
		}
	}
	return results, nil
}

// ReadResultsCSV parses a history CSV. Columns are located by header name.
// Row-level problems are returned separately and do not stop the read.
func ReadResultsCSV(r io.Reader) ([]models.MatchResult, []error, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, col := range CSVHeader {
		if _, ok := index[col]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", col)
		}
	}

	validate := validator.New()
	var results []models.MatchResult
	var rowErrs []error
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("line %d: %w", line, err))
			continue
		}

		get := func(col string) string {
			i := index[col]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		row := csvRow{
			Date:      get("date"),
			HomeTeam:  get("home_team"),
			AwayTeam:  get("away_team"),
			HomeScore: get("home_score"),
			AwayScore: get("away_score"),
		}
		result, err := row.toResult(validate)
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		results = append(results, result)
	}
	return results, rowErrs, nil
}

func (row csvRow) toResult(validate *validator.Validate) (models.MatchResult, error) {
	if err := validate.Struct(row); err != nil {
		return models.MatchResult{}, err
	}
	date, err := parseCSVDate(row.Date)
	if err != nil {
		return models.MatchResult{}, err
	}
	result := models.MatchResult{Date: date, HomeTeam: row.HomeTeam, AwayTeam: row.AwayTeam}
	if row.HomeScore == "" || row.AwayScore == "" {
		return result, nil
	}
	home, err := parseScore(row.HomeScore)
	if err != nil {
		return models.MatchResult{}, err
	}
	away, err := parseScore(row.AwayScore)
	if err != nil {
		return models.MatchResult{}, err
	}
	result.HomeGoals = &home
	result.AwayGoals = &away
	return result, nil
}

func parseCSVDate(s string) (time.Time, error) {
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// parseScore accepts "2" as well as the "2.0" spreadsheets tend to write
func parseScore(s string) (int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid score %q: %w", s, err)
	}
	if d.IsNegative() || !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("invalid score %q", s)
	}
	return int(d.IntPart()), nil
}

// WriteResultsCSV writes results in the layout ReadResultsCSV expects
func WriteResultsCSV(w io.Writer, results []models.MatchResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return err
	}
	for _, m := range results {
		home, away := "", ""
		if m.Played() {
			home = strconv.Itoa(*m.HomeGoals)
			away = strconv.Itoa(*m.AwayGoals)
		}
		if err := writer.Write([]string{m.Date.UTC().Format(time.RFC3339), m.HomeTeam, m.AwayTeam, home, away}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
