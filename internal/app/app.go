package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tdh8316/acclookup/internal/cli"
	"github.com/tdh8316/acclookup/internal/config"
	"github.com/tdh8316/acclookup/internal/export"
	"github.com/tdh8316/acclookup/internal/history"
	"github.com/tdh8316/acclookup/internal/httpx"
	"github.com/tdh8316/acclookup/internal/logging"
	"github.com/tdh8316/acclookup/internal/lookup"
	"github.com/tdh8316/acclookup/internal/output"
	"github.com/tdh8316/acclookup/internal/platform"
	"github.com/tdh8316/acclookup/internal/tui"
)

const banner = "acclookup - Look up usernames across social platforms."

// Run executes the command line in args and returns the process exit code:
// 0 on success, 1 on runtime failure, 2 on invalid usage.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &application{stdin: stdin, stdout: stdout, stderr: stderr}

	root := cli.NewRootCommand(cli.Handlers{
		Lookup:    a.lookup,
		Platforms: a.platforms,
		History:   a.history,
		TUI:       a.tui,
		Version:   a.version,
	})
	if args == nil {
		// cobra falls back to os.Args on nil.
		args = []string{}
	}
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cli.ErrUsage):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", root.Name())
		return 2
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

type application struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// env is the state every command builds from configuration.
type env struct {
	cfg      config.Config
	logger   *logrus.Logger
	closer   io.Closer
	client   *http.Client
	registry *platform.Registry
	history  *history.Store
}

func (e *env) Close() error {
	return e.closer.Close()
}

func (a *application) setup(cmd *cobra.Command, common cli.Common, logFallback io.Writer) (*env, error) {
	cfg, err := config.Load(common.ConfigFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	if cfg.NoColor {
		color.NoColor = true
	}

	logger, closer, err := logging.New(cfg, logFallback)
	if err != nil {
		return nil, err
	}

	client, err := httpx.NewClient(httpx.ClientConfig{
		Timeout:  cfg.Timeout,
		UseProxy: cfg.UseProxy,
		ProxyURL: cfg.ProxyURL,
	})
	if err != nil {
		closer.Close()
		return nil, errors.Wrap(err, "failed to initialize HTTP client")
	}

	logger.WithFields(logrus.Fields{
		"timeout":  cfg.Timeout,
		"proxy":    cfg.UseProxy,
		"registry": cfg.RegistryFile,
	}).Debug("configuration loaded")

	return &env{
		cfg:     cfg,
		logger:  logger,
		closer:  closer,
		client:  client,
		history: history.NewStore(cfg.HistoryFile, cfg.HistoryLimit, logger),
	}, nil
}

// loadRegistry reads the configured registry file, or the built-in list.
func (e *env) loadRegistry() error {
	registry, err := platform.Load(e.cfg.RegistryFile)
	if err != nil {
		return errors.Wrap(err, "platform registry")
	}
	e.registry = registry
	return nil
}

func (a *application) lookup(cmd *cobra.Command, opts cli.LookupOptions, usernames []string) error {
	e, err := a.setup(cmd, opts.Common, a.stderr)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.loadRegistry(); err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, banner)

	printer := output.NewPrinter(a.stdout, e.cfg.NoColor, opts.FoundOnly)

	selected, err := selectPlatforms(e.registry, opts, printer)
	if err != nil {
		return err
	}

	if len(usernames) == 0 {
		usernames = promptUsernames(a.stdout, a.stdin)
		if len(usernames) == 0 {
			return cli.UsageErrorf(output.MsgEmptyUsername)
		}
	}

	ctx := cmd.Context()
	exec := lookup.NewExecutor(e.client, e.registry, lookup.Config{UserAgent: e.cfg.UserAgent}, e.logger)
	worker := lookup.NewWorker(exec, e.logger)
	indicator := output.NewIndicator(a.stdout, isTerminal(a.stdout) && !e.cfg.NoColor)

	for _, username := range usernames {
		if ctx.Err() != nil {
			break
		}

		username = strings.TrimSpace(username)
		if username == "" {
			printer.Notice(output.MsgEmptyUsername)
			continue
		}

		if !opts.NoHistory {
			if err := e.history.Add(username); err != nil {
				e.logger.WithError(err).Warn("unable to save search history")
			}
		}

		printer.Header(username)

		indicator.Start()
		_, done := worker.Start(ctx, username, selected)
		completion := <-done
		indicator.Stop()

		printer.Results(completion.Results)
	}

	if opts.Export != "" {
		if err := export.ToFile(opts.Export, printer.Lines()); err != nil {
			return err
		}
		printer.Info("Results exported to " + opts.Export)
	}

	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "search interrupted")
	}
	return nil
}

// selectPlatforms applies --platforms and --match. Without either, every
// platform is selected. Unknown names are reported and skipped.
func selectPlatforms(r *platform.Registry, opts cli.LookupOptions, printer *output.Printer) (platform.Selection, error) {
	if len(opts.Platforms) == 0 && opts.Match == "" {
		return platform.All(r), nil
	}

	selected, unknown := platform.Select(r, opts.Platforms)
	if len(unknown) > 0 {
		printer.Warn("Unknown platforms ignored: " + strings.Join(unknown, ", "))
	}

	if opts.Match != "" {
		matched, err := platform.Match(r, opts.Match)
		if err != nil {
			return nil, cli.UsageErrorf("invalid --match expression: %v", err)
		}
		selected = selected.Union(matched)
	}

	if len(selected) == 0 {
		return nil, cli.UsageErrorf("no platforms selected")
	}

	printer.Info(fmt.Sprintf("Using %d platform(s)", len(selected)))
	return selected, nil
}

func promptUsernames(stdout io.Writer, stdin io.Reader) []string {
	fmt.Fprint(stdout, "Enter usernames to look up separated by a space: ")
	r := bufio.NewReader(stdin)
	line, _ := r.ReadString('\n')
	return strings.Fields(line)
}

func (a *application) platforms(cmd *cobra.Command, opts cli.PlatformsOptions) error {
	e, err := a.setup(cmd, opts.Common, a.stderr)
	if err != nil {
		return err
	}
	defer e.Close()

	printer := output.NewPrinter(a.stdout, e.cfg.NoColor, false)

	if opts.FetchURL != "" {
		if e.cfg.RegistryFile == "" {
			return cli.UsageErrorf("--fetch needs --%s to know where to save", config.FlagName(config.KeyRegistryFile))
		}
		e.registry, err = platform.Fetch(cmd.Context(), e.client, e.cfg.UserAgent, opts.FetchURL, e.cfg.RegistryFile)
		if err != nil {
			return err
		}
		printer.Info(fmt.Sprintf("Saved %d platform(s) to %s", e.registry.Len(), e.cfg.RegistryFile))
	} else if err := e.loadRegistry(); err != nil {
		return err
	}

	registry := e.registry

	width := 0
	for _, name := range registry.Names() {
		width = max(width, len(name))
	}
	for _, p := range registry.All() {
		if e.cfg.NoColor {
			fmt.Fprintf(a.stdout, "%-*s  %s\n", width, p.Name, p.Template)
		} else {
			fmt.Fprintf(a.stdout, "%s  %s\n", color.HiWhiteString("%-*s", width, p.Name), p.Template)
		}
	}
	return nil
}

func (a *application) history(cmd *cobra.Command, opts cli.HistoryOptions) error {
	e, err := a.setup(cmd, opts.Common, a.stderr)
	if err != nil {
		return err
	}
	defer e.Close()

	printer := output.NewPrinter(a.stdout, e.cfg.NoColor, false)

	if opts.Clear {
		if err := e.history.Clear(); err != nil {
			return err
		}
		printer.Info("Search history cleared")
		return nil
	}

	names := e.history.Load()
	if len(names) == 0 {
		printer.Info("Search history is empty")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(a.stdout, name)
	}
	return nil
}

func (a *application) tui(cmd *cobra.Command, opts cli.LookupOptions) error {
	// The terminal belongs to the TUI; logs go to the log file or nowhere.
	e, err := a.setup(cmd, opts.Common, io.Discard)
	if err != nil {
		return err
	}
	defer e.Close()

	notices := output.NewPrinter(a.stderr, e.cfg.NoColor, false)
	if e.cfg.LogFile == "" {
		// Otherwise they would only reach the discarded log.
		for _, w := range e.cfg.Warnings {
			notices.Warn(w)
		}
	}

	if err := e.loadRegistry(); err != nil {
		return err
	}

	selected := platform.All(e.registry)
	if len(opts.Platforms) > 0 || opts.Match != "" {
		selected, err = selectPlatforms(e.registry, opts, notices)
		if err != nil {
			return err
		}
	}

	exec := lookup.NewExecutor(e.client, e.registry, lookup.Config{UserAgent: e.cfg.UserAgent}, e.logger)

	return tui.Run(cmd.Context(), tui.Options{
		Worker:     lookup.NewWorker(exec, e.logger),
		Registry:   e.registry,
		Selected:   selected,
		History:    e.history,
		ExportPath: opts.Export,
		NoColor:    e.cfg.NoColor,
		Logger:     e.logger,
		Input:      a.stdin,
		Output:     a.stdout,
	})
}

func (a *application) version(cmd *cobra.Command) error {
	fmt.Fprintf(a.stdout, "acclookup %s\n", platform.AppVersion)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
