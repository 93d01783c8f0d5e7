package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tdh8316/acclookup/internal/history"
	"github.com/tdh8316/acclookup/internal/httpx"
)

const envPrefix = "ACCLOOKUP"

// Keys double as flag names with '_' replaced by '-'.
const (
	KeyTimeout      = "timeout"
	KeyUserAgent    = "user_agent"
	KeyProxy        = "proxy"
	KeyProxyURL     = "proxy_url"
	KeyRegistryFile = "registry_file"
	KeyHistoryFile  = "history_file"
	KeyHistoryLimit = "history_limit"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
	KeyLogFile      = "log_file"
	KeyNoColor      = "no_color"
)

type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

type Config struct {
	// Zero means requests are not bounded by a client timeout.
	Timeout   time.Duration
	UserAgent string
	UseProxy  bool
	ProxyURL  string

	RegistryFile string
	HistoryFile  string
	HistoryLimit int

	LogLevel  logrus.Level
	LogFormat LogFormat
	LogFile   string
	NoColor   bool

	// Warnings collected while loading, to be logged once logging is set up.
	Warnings []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyTimeout, time.Duration(0))
	v.SetDefault(KeyUserAgent, httpx.DefaultUserAgent)
	v.SetDefault(KeyProxy, false)
	v.SetDefault(KeyProxyURL, httpx.DefaultProxyURL)
	v.SetDefault(KeyRegistryFile, "")
	v.SetDefault(KeyHistoryFile, history.DefaultPath())
	v.SetDefault(KeyHistoryLimit, history.DefaultLimit)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, string(LogFormatText))
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyNoColor, false)
}

// FlagName maps a config key to its command line flag.
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// Load merges defaults, the config file, ACCLOOKUP_* environment variables and
// any flags in flags that were set explicitly, in increasing precedence.
// With an empty path, $HOME/.acclookup.yaml is read when it exists.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		defaultPath := filepath.Join(home, ".acclookup.yaml")
		if _, err := os.Stat(defaultPath); err == nil {
			v.SetConfigFile(defaultPath)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, errors.Wrapf(err, "read config %s", defaultPath)
			}
		}
	}

	if flags != nil {
		for _, key := range v.AllKeys() {
			if f := flags.Lookup(FlagName(key)); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, errors.Wrapf(err, "bind flag %s", f.Name)
				}
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Timeout:      v.GetDuration(KeyTimeout),
		UserAgent:    v.GetString(KeyUserAgent),
		UseProxy:     v.GetBool(KeyProxy),
		ProxyURL:     v.GetString(KeyProxyURL),
		RegistryFile: v.GetString(KeyRegistryFile),
		HistoryFile:  v.GetString(KeyHistoryFile),
		HistoryLimit: v.GetInt(KeyHistoryLimit),
		LogFile:      v.GetString(KeyLogFile),
		NoColor:      v.GetBool(KeyNoColor),
	}

	if cfg.Timeout < 0 {
		return Config{}, errors.Errorf("%s must not be negative (got %s)", KeyTimeout, cfg.Timeout)
	}
	if cfg.HistoryLimit < 0 {
		return Config{}, errors.Errorf("%s must not be negative (got %d)", KeyHistoryLimit, cfg.HistoryLimit)
	}

	level, err := logrus.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		cfg.Warnings = append(cfg.Warnings, "unable to parse log level: "+err.Error())
		level = logrus.WarnLevel
	}
	cfg.LogLevel = level

	format, err := parseLogFormat(v.GetString(KeyLogFormat))
	if err != nil {
		cfg.Warnings = append(cfg.Warnings, "unable to parse log format: "+err.Error())
		format = LogFormatText
	}
	cfg.LogFormat = format

	return cfg, nil
}

func parseLogFormat(raw string) (LogFormat, error) {
	switch LogFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case LogFormatJSON:
		return LogFormatJSON, nil
	case LogFormatText:
		return LogFormatText, nil
	default:
		return "", errors.Errorf("unidentified log format: %s", raw)
	}
}
