package cli

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tdh8316/acclookup/internal/config"
	"github.com/tdh8316/acclookup/internal/httpx"
)

// ErrUsage matches every error caused by invalid command line input.
var ErrUsage = errors.New("usage error")

type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

func (e *UsageError) Is(target error) bool { return target == ErrUsage }

func usageError(err error) error {
	return &UsageError{Err: err}
}

// UsageErrorf reports invalid input found after flag parsing.
func UsageErrorf(format string, args ...any) error {
	return usageError(errors.Errorf(format, args...))
}

// Common holds flags shared by every command.
type Common struct {
	ConfigFile string
}

type LookupOptions struct {
	Common

	Platforms []string
	Match     string
	Export    string
	FoundOnly bool
	NoHistory bool
}

type PlatformsOptions struct {
	Common

	FetchURL string
}

type HistoryOptions struct {
	Common

	Clear bool
}

// Handlers are invoked once flags are parsed. Each receives the command so it
// can reach the parsed flag set and context.
type Handlers struct {
	Lookup    func(cmd *cobra.Command, opts LookupOptions, usernames []string) error
	Platforms func(cmd *cobra.Command, opts PlatformsOptions) error
	History   func(cmd *cobra.Command, opts HistoryOptions) error
	TUI       func(cmd *cobra.Command, opts LookupOptions) error
	Version   func(cmd *cobra.Command) error
}

const rootLong = `acclookup checks whether a username exists on a list of web platforms.

For every selected platform it requests the profile URL once. A 404 answer
means the account does not exist; any other answer means it exists. Network
failures are reported per platform and never stop the search.`

const rootExample = `  acclookup alice
  acclookup --platforms github,reddit alice bob
  acclookup --match '^t' --export results.txt alice
  acclookup tui`

func NewRootCommand(h Handlers) *cobra.Command {
	var lookupOpts LookupOptions
	var platformsCSV string

	root := &cobra.Command{
		Use:           "acclookup [flags] USERNAME [USERNAMES...]",
		Short:         "Check whether a username exists across social platforms",
		Long:          rootLong,
		Example:       rootExample,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			lookupOpts.Platforms = splitCSV(platformsCSV)
			return h.Lookup(cmd, lookupOpts, args)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&lookupOpts.ConfigFile, "config", "", "config file (default is $HOME/.acclookup.yaml)")
	pf.Duration(config.FlagName(config.KeyTimeout), 0, "per-request timeout, e.g. 30s (default: none)")
	pf.String(config.FlagName(config.KeyUserAgent), httpx.DefaultUserAgent, "User-Agent header sent with every request")
	pf.BoolP(config.FlagName(config.KeyProxy), "t", false, "route requests through a SOCKS5 proxy such as tor")
	pf.String(config.FlagName(config.KeyProxyURL), httpx.DefaultProxyURL, "proxy URL used with --proxy")
	pf.String(config.FlagName(config.KeyRegistryFile), "", "platform registry file (default: built-in list)")
	pf.String(config.FlagName(config.KeyHistoryFile), "", "search history file")
	pf.Int(config.FlagName(config.KeyHistoryLimit), 0, "number of usernames kept in history")
	pf.String(config.FlagName(config.KeyLogLevel), "warn", "log level (debug, info, warn, error)")
	pf.String(config.FlagName(config.KeyLogFormat), "text", "log format (text, json)")
	pf.String(config.FlagName(config.KeyLogFile), "", "write logs to this file instead of stderr")
	pf.Bool(config.FlagName(config.KeyNoColor), false, "disable colored output")

	addSelectionFlags(root, &lookupOpts, &platformsCSV)
	root.Flags().StringVarP(&lookupOpts.Export, "export", "o", "", "write displayed results to a file (.xlsx for a spreadsheet)")
	root.Flags().BoolVar(&lookupOpts.FoundOnly, "found-only", false, "only show platforms where the username exists")
	root.Flags().BoolVar(&lookupOpts.NoHistory, "no-history", false, "do not record usernames in the search history")

	root.AddCommand(
		newTUICommand(h, &lookupOpts.Common),
		newPlatformsCommand(h, &lookupOpts.Common),
		newHistoryCommand(h, &lookupOpts.Common),
		newVersionCommand(h),
	)
	return root
}

func addSelectionFlags(cmd *cobra.Command, opts *LookupOptions, platformsCSV *string) {
	cmd.Flags().StringVar(platformsCSV, "platforms", "", "comma-separated platforms to check (default: all)")
	cmd.Flags().StringVar(&opts.Match, "match", "", "check platforms whose name matches this regular expression")
}

func newTUICommand(h Handlers, common *Common) *cobra.Command {
	var opts LookupOptions
	var platformsCSV string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive search with platform checklist, history and export",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Common = *common
			opts.Platforms = splitCSV(platformsCSV)
			return h.TUI(cmd, opts)
		},
	}
	addSelectionFlags(cmd, &opts, &platformsCSV)
	cmd.Flags().StringVarP(&opts.Export, "export", "o", "", "default export file name")
	return cmd
}

func newPlatformsCommand(h Handlers, common *Common) *cobra.Command {
	var opts PlatformsOptions

	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "List the platform registry",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Common = *common
			return h.Platforms(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.FetchURL, "fetch", "", "download a registry file from URL into --registry-file first")
	return cmd
}

func newHistoryCommand(h Handlers, common *Common) *cobra.Command {
	var opts HistoryOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear previously searched usernames",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Common = *common
			return h.History(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "remove every entry")
	return cmd
}

func newVersionCommand(h Handlers) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.Version(cmd)
		},
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return usageError(err)
	}
	return nil
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
