package logger

import (
	"github.com/sirupsen/logrus"
)

// AuditLogger records where reports went and which settings produced them.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogReportWritten logs a report written to disk.
func (al *AuditLogger) LogReportWritten(runID, path, format string, bets int) {
	al.WithFields(logrus.Fields{
		"run_id": runID,
		"path":   path,
		"format": format,
		"bets":   bets,
	}).Info("Report written")
}

// LogReportPublished logs a report pushed to a stream.
func (al *AuditLogger) LogReportPublished(runID, stream string, bets int) {
	al.WithFields(logrus.Fields{
		"run_id": runID,
		"stream": stream,
		"bets":   bets,
	}).Info("Report published")
}

// LogReportPersisted logs a report stored in the database.
func (al *AuditLogger) LogReportPersisted(runID string, bets int) {
	al.WithFields(logrus.Fields{
		"run_id": runID,
		"bets":   bets,
	}).Info("Report persisted")
}

// LogFilterOverride logs a threshold overriding the profile default.
func (al *AuditLogger) LogFilterOverride(profile, parameter string, profileValue, override float64) {
	al.WithFields(logrus.Fields{
		"profile":       profile,
		"parameter":     parameter,
		"profile_value": profileValue,
		"override":      override,
	}).Info("Filter threshold overridden")
}
