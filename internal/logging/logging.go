package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ent0n29/flightdesk/internal/policy"
)

// New builds the process logger. format is "json" or "text".
func New(level, format string) (*logrus.Logger, error) {
	return NewWithOutput(os.Stdout, level, format)
}

func NewWithOutput(out io.Writer, level, format string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}

	if strings.TrimSpace(level) == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(lvl)
	return logger, nil
}

// Discard returns a logger that writes nowhere. Used by tests and tools.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// WithTurn scopes a logger to one conversation turn. The email is redacted.
func WithTurn(logger logrus.FieldLogger, conversationID, userEmail string) *logrus.Entry {
	if logger == nil {
		logger = Discard()
	}
	redacted, _ := policy.RedactPII(userEmail)
	return logger.WithFields(logrus.Fields{
		"conversation_id": conversationID,
		"user":            redacted,
	})
}

// Preview returns redacted, length-capped user text suitable for log fields.
func Preview(text string) string {
	return policy.ForLog(text, 120)
}
