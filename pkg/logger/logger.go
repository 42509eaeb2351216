package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus.Logger with additional functionality
type Logger struct {
	*logrus.Logger
}

// New creates a new logger instance
func New(level string) *Logger {
	log := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	log.SetOutput(os.Stdout)

	return &Logger{Logger: log}
}

// WithFields creates a new logger entry with the specified fields
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	return l.Logger.WithFields(fields)
}

// WithComponent creates a new logger entry with component name field
func (l *Logger) WithComponent(component string) *logrus.Entry {
	return l.Logger.WithField("component", component)
}

// WithSession creates a new logger entry with conversation session field
func (l *Logger) WithSession(sessionID string) *logrus.Entry {
	return l.Logger.WithField("conversation_id", sessionID)
}

// Turn logs one dispatcher invocation with structured routing fields
func (l *Logger) Turn(sessionID string, intent string, escalated bool, durationMs int64) {
	l.Logger.WithFields(logrus.Fields{
		"turn":            true,
		"conversation_id": sessionID,
		"intent":          intent,
		"escalated":       escalated,
		"duration_ms":     durationMs,
	}).Info("Turn processed")
}

// Scheduling logs scheduling engine operations
func (l *Logger) Scheduling(operation, appointmentID string, success bool, details map[string]interface{}) {
	entry := l.Logger.WithFields(logrus.Fields{
		"scheduling":     true,
		"operation":      operation,
		"appointment_id": appointmentID,
		"success":        success,
		"details":        details,
	})

	if success {
		entry.Info("Scheduling operation completed")
	} else {
		entry.Warn("Scheduling operation failed")
	}
}

// LLMCall logs classification backend calls
func (l *Logger) LLMCall(purpose string, durationMs int64, success bool) {
	entry := l.Logger.WithFields(logrus.Fields{
		"llm":         true,
		"purpose":     purpose,
		"duration_ms": durationMs,
		"success":     success,
	})

	if success {
		entry.Debug("LLM call completed")
	} else {
		entry.Warn("LLM call failed")
	}
}
