package logging

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tdh8316/acclookup/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds a logger from cfg. Output goes to cfg.LogFile when set, otherwise
// to fallback. The returned closer releases the log file.
func New(cfg config.Config, fallback io.Writer) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	switch cfg.LogFormat {
	case config.LogFormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: cfg.NoColor})
	}

	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open log file")
		}
		logger.SetOutput(f)
		closer = f
	} else {
		if fallback == nil {
			fallback = io.Discard
		}
		logger.SetOutput(fallback)
	}

	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	return logger, closer, nil
}
