package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

type logrusLogger struct {
	logger logrus.Ext1FieldLogger
}

// NewLogrusLogger builds the process-wide logger. An unknown level falls
// back to info instead of failing startup.
func NewLogrusLogger(level string, filePath string) Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		DisableQuote:    true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		l.WithField("log_level", level).Warn("Log level not found. Fallback to 'info'")
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err == nil {
			l.SetOutput(file)
		} else {
			l.Info("Failed to log to file, using default stderr")
		}
	}

	return &logrusLogger{logger: l}
}

func (l *logrusLogger) Debug(args ...any) {
	l.logger.Debug(args...)
}

func (l *logrusLogger) Info(args ...any) {
	l.logger.Info(args...)
}

func (l *logrusLogger) Warn(args ...any) {
	l.logger.Warn(args...)
}

func (l *logrusLogger) Error(args ...any) {
	l.logger.Error(args...)
}

func (l *logrusLogger) Fatal(args ...any) {
	l.logger.Fatal(args...)
}

func (l *logrusLogger) WithFields(fields Fields) Logger {
	return &logrusLogger{logger: l.logger.WithFields(logrus.Fields(fields))}
}

func (l *logrusLogger) WithField(key string, value any) Logger {
	return &logrusLogger{logger: l.logger.WithField(key, value)}
}

func (l *logrusLogger) WithError(err error) Logger {
	return &logrusLogger{logger: l.logger.WithError(err)}
}
