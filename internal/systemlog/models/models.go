package models

import (
	"strings"
	"time"

	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
)

// Level is the severity of a system log entry.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelDebug   Level = "debug"
)

func (l Level) IsValid() bool {
	switch l {
	case LevelInfo, LevelWarning, LevelError, LevelDebug:
		return true
	}
	return false
}

const maxMessageLength = 1000

// Entry is an append-only log record. Entries are never updated.
type Entry struct {
	ID        id.SystemLogID `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Message   string         `json:"message"`
	Details   *string        `json:"details"`
	Component *string        `json:"component"`
	UserID    *id.UserID     `json:"user_id"`
}

// Event is what components hand to the recorder; the recorder assigns the
// identifier and timestamp.
type Event struct {
	Level     Level
	Component string
	Message   string
	Details   string
	UserID    *id.UserID
}

// NewEntry validates event and stamps it with entryID and now.
func NewEntry(entryID id.SystemLogID, event Event, now time.Time) (*Entry, error) {
	message := strings.TrimSpace(event.Message)
	if message == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "log message is required")
	}
	if len(message) > maxMessageLength {
		message = message[:maxMessageLength]
	}
	level := event.Level
	if level == "" {
		level = LevelInfo
	}
	if !level.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "log level must be one of info, warning, error, debug")
	}
	entry := &Entry{
		ID:        entryID,
		Timestamp: now.UTC(),
		Level:     level,
		Message:   message,
		UserID:    event.UserID,
	}
	if event.Details != "" {
		details := event.Details
		entry.Details = &details
	}
	if event.Component != "" {
		component := event.Component
		entry.Component = &component
	}
	return entry, nil
}
