package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdh8316/acclookup/internal/config"
)

func TestNewTextToFallback(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(config.Config{LogLevel: logrus.InfoLevel, LogFormat: config.LogFormatText, NoColor: true}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug("hidden")
	logger.WithField("platform", "GitHub").Info("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "platform=GitHub")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(config.Config{LogLevel: logrus.InfoLevel, LogFormat: config.LogFormatJSON}, &buf)
	require.NoError(t, err)

	logger.WithField("search", "abc").Info("done")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["search"])
	assert.Equal(t, "done", entry["msg"])
}

func TestNewEmitsConfigWarnings(t *testing.T) {
	var buf bytes.Buffer
	_, _, err := New(config.Config{
		LogLevel: logrus.WarnLevel,
		NoColor:  true,
		Warnings: []string{"unable to parse log level: bogus"},
	}, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "unable to parse log level")
}

func TestNewLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acclookup.log")
	var buf bytes.Buffer

	logger, closer, err := New(config.Config{LogLevel: logrus.InfoLevel, LogFile: path, NoColor: true}, &buf)
	require.NoError(t, err)
	logger.Info("to file")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "to file"))
	assert.Empty(t, buf.String())

	_, _, err = New(config.Config{LogFile: filepath.Join(t.TempDir(), "no", "such", "dir.log")}, nil)
	assert.Error(t, err)
}

func TestNewNilFallbackDiscards(t *testing.T) {
	logger, _, err := New(config.Config{LogLevel: logrus.InfoLevel}, nil)
	require.NoError(t, err)
	assert.NotPanics(t, func() { logger.Info("nowhere") })
}
