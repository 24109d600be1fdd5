// Package audit records changes staff make to the catalogue.
package audit

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Entry is one audited staff action.
type Entry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Action     string            `json:"action"`
	AccountID  int64             `json:"account_id"`
	Role       string            `json:"role,omitempty"`
	ResourceID string            `json:"resource_id,omitempty"`
	IPAddress  string            `json:"ip_address,omitempty"`
	Status     string            `json:"status"`
	HTTPStatus int               `json:"http_status,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

// Logger writes entries as zerolog events under an "audit" key, so they can
// be routed apart from request logs.
type Logger struct {
	logger zerolog.Logger
	now    func() time.Time
}

func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{
		logger: logger.With().Str("component", "audit").Logger(),
		now:    time.Now,
	}
}

func (l *Logger) Log(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now().UTC()
	}
	event := l.logger.Info()
	if entry.Status == StatusFailure {
		event = l.logger.Warn()
	}
	event.Interface("audit", entry).Msg(entry.Action)
}

func (l *Logger) LogSuccess(action string, accountID int64, resourceID string, details map[string]string) {
	l.Log(Entry{
		Action:     action,
		AccountID:  accountID,
		ResourceID: resourceID,
		Status:     StatusSuccess,
		Details:    details,
	})
}

func (l *Logger) LogFailure(action string, accountID int64, resourceID string, details map[string]string) {
	l.Log(Entry{
		Action:     action,
		AccountID:  accountID,
		ResourceID: resourceID,
		Status:     StatusFailure,
		Details:    details,
	})
}
