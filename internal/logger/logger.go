package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is the logging facade used across the discovery pipeline. Field
// chaining returns a new Logger so components can carry context without
// sharing mutable state.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string, err error)
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

type logrusLogger struct {
	logger *logrus.Logger
	entry  *logrus.Entry
}

// New returns a logrus-backed logger writing to w at the given level.
// Unknown level strings fall back to info.
func New(w io.Writer, level string) Logger {
	l := logrus.New()
	l.SetOutput(w)
	if parsed, err := logrus.ParseLevel(level); err == nil {
		l.SetLevel(parsed)
	}
	return &logrusLogger{logger: l, entry: logrus.NewEntry(l)}
}

// NewDefault returns a logger with logrus defaults (stderr, info level).
func NewDefault() Logger {
	l := logrus.New()
	return &logrusLogger{logger: l, entry: logrus.NewEntry(l)}
}

func (l *logrusLogger) Debug(msg string) {
	l.entry.Debug(msg)
}

func (l *logrusLogger) Info(msg string) {
	l.entry.Info(msg)
}

func (l *logrusLogger) Warn(msg string) {
	l.entry.Warn(msg)
}

func (l *logrusLogger) Error(msg string, err error) {
	l.entry.WithError(err).Error(msg)
}

func (l *logrusLogger) WithField(key string, value interface{}) Logger {
	return &logrusLogger{logger: l.logger, entry: l.entry.WithField(key, value)}
}

func (l *logrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &logrusLogger{logger: l.logger, entry: l.entry.WithFields(fields)}
}
