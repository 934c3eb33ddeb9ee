package logging

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	SourceField   = "source"
	defaultSource = "system"
)

// Entry is one operator-facing log line.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
}

// Journal is a logrus hook that keeps the most recent entries in memory so
// the control API can show them without reading log files.
type Journal struct {
	mu      sync.RWMutex
	entries []Entry
	limit   int
}

func NewJournal(limit int) *Journal {
	if limit < 1 {
		limit = 1
	}
	return &Journal{limit: limit}
}

func (j *Journal) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
	}
}

func (j *Journal) Fire(e *logrus.Entry) error {
	source := defaultSource
	if s, ok := e.Data[SourceField].(string); ok && s != "" {
		source = s
	}
	message := e.Message
	if err, ok := e.Data[logrus.ErrorKey].(error); ok && err != nil {
		message += ": " + err.Error()
	}

	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: e.Time,
		Level:     levelName(e.Level),
		Message:   message,
		Source:    source,
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
	if over := len(j.entries) - j.limit; over > 0 {
		j.entries = append([]Entry(nil), j.entries[over:]...)
	}
	return nil
}

// Entries returns a copy of the retained entries, oldest first.
func (j *Journal) Entries() []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return append([]Entry{}, j.entries...)
}

func (j *Journal) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = nil
}

func levelName(l logrus.Level) string {
	switch l {
	case logrus.WarnLevel:
		return "WARNING"
	case logrus.PanicLevel, logrus.FatalLevel:
		return "ERROR"
	default:
		return strings.ToUpper(l.String())
	}
}
