package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"doc-search/config"
	"doc-search/render"
	"doc-search/search"
)

var version = "0.3"

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitUsage   = 1
	ExitRuntime = 2
)

const envPrefix = "DOCSEARCH_"

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatHTML = "html"
)

func env(name string) []string { return []string{envPrefix + name} }

// NewApp builds the command-line application.
func NewApp() *cli.App {
	return &cli.App{
		Name:      "doc-search",
		Usage:     "Search PDF, TXT and DOCX documents for terms, with context",
		UsageText: "doc-search [flags] PATH TERM [TERM...]",
		Version:   version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "case-sensitive",
				Aliases: []string{"c"},
				Usage:   "Match case exactly",
				EnvVars: env("CASE_SENSITIVE"),
			},
			&cli.BoolFlag{
				Name:    "whole-word",
				Aliases: []string{"w"},
				Usage:   "Match whole words only (ignored with --regex)",
				EnvVars: env("WHOLE_WORD"),
			},
			&cli.BoolFlag{
				Name:    "regex",
				Aliases: []string{"r"},
				Usage:   "Treat terms as regular expressions",
				EnvVars: env("REGEX"),
			},
			&cli.BoolFlag{
				Name:    "fuzzy",
				Aliases: []string{"f"},
				Usage:   "Match words similar to the terms",
				EnvVars: env("FUZZY"),
			},
			&cli.IntFlag{
				Name:    "threshold",
				Usage:   "Minimum fuzzy similarity score (0-100)",
				Value:   search.DefaultFuzzyThreshold,
				EnvVars: env("THRESHOLD"),
			},
			&cli.IntFlag{
				Name:    "context",
				Aliases: []string{"C"},
				Usage:   "Lines of context before and after each match",
				Value:   search.DefaultContextWindow,
				EnvVars: env("CONTEXT"),
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Documents searched concurrently",
				Value:   runtime.NumCPU(),
				EnvVars: env("WORKERS"),
			},
			&cli.StringFlag{
				Name:    "format",
				Usage:   "Output format: text, json or html",
				Value:   FormatText,
				EnvVars: env("FORMAT"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write results to `FILE` instead of stdout",
			},
			&cli.BoolFlag{
				Name:    "no-recursive",
				Usage:   "Do not descend into subdirectories",
				EnvVars: env("NO_RECURSIVE"),
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip files and directories matching `GLOB` (repeatable)",
			},
			&cli.BoolFlag{
				Name:    "extended",
				Usage:   "Also search md, log, csv, html, eml, mbox and msg files",
				EnvVars: env("EXTENDED"),
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Also list documents without matches, skipped and failed documents",
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Usage:   "Disable colored output (also disabled by a non-empty NO_COLOR)",
				EnvVars: env("NO_COLOR"),
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Browse results interactively",
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Load defaults from TOML `FILE`",
				EnvVars: env("CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
				EnvVars: env("LOG_LEVEL"),
			},
		},
		UseShortOptionHandling: true,
		HideHelpCommand:        true,
		Before:                 setupLogger,
		Action:                 searchCommand,
		ExitErrHandler:         func(*cli.Context, error) {},
	}
}

// Run executes the CLI with args (including the program name) and returns a
// process exit code.
func Run(args []string) int {
	return run(NewApp(), args)
}

func run(a *cli.App, args []string) int {
	err := a.Run(args)
	if err == nil {
		return ExitOK
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(errWriter(a), "Error:", msg)
	}
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return ExitUsage
}

func errWriter(a *cli.App) io.Writer {
	if a.ErrWriter != nil {
		return a.ErrWriter
	}
	return os.Stderr
}

// setupLogger configures the default slog logger from --log-level.
func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))
	if !c.IsSet("log-level") {
		if fileLevel := peekFileLogLevel(c); fileLevel != "" {
			levelStr = strings.ToLower(fileLevel)
		}
	}

	level, err := parseLevel(levelStr)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(errWriter(c.App), &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", s)
	}
}

// peekFileLogLevel returns log_level from the config file, ignoring errors;
// loadConfig reports them later.
func peekFileLogLevel(c *cli.Context) string {
	cfg, err := loadConfig(c)
	if err != nil {
		return ""
	}
	return cfg.LogLevel
}

func loadConfig(c *cli.Context) (*config.FileConfig, error) {
	if c.IsSet("config") {
		return config.LoadFile(c.String("config"), false)
	}
	return config.LoadFile(config.DefaultPath(), true)
}

// options is the merged view of flags, environment and config file.
type options struct {
	root      string
	request   *search.SearchRequest
	workers   int
	format    string
	output    string
	recursive bool
	extended  bool
	exclude   []string
	color     bool
	showAll   bool
	tui       bool
}

// resolveOptions merges command-line values over the config file. A flag set
// on the command line or through its environment variable always wins.
func resolveOptions(c *cli.Context, fc *config.FileConfig) (*options, error) {
	if c.NArg() < 2 {
		return nil, errors.New("a PATH and at least one TERM are required")
	}

	boolOpt := func(flag string, file *bool) bool {
		if !c.IsSet(flag) && file != nil {
			return *file
		}
		return c.Bool(flag)
	}
	intOpt := func(flag string, file *int) int {
		if !c.IsSet(flag) && file != nil {
			return *file
		}
		return c.Int(flag)
	}

	req := search.NewSearchRequest(c.Args().Slice()[1:]...)
	req.CaseSensitive = boolOpt("case-sensitive", fc.CaseSensitive)
	req.WholeWord = boolOpt("whole-word", fc.WholeWord)
	req.UseRegex = boolOpt("regex", fc.Regex)
	req.UseFuzzy = boolOpt("fuzzy", fc.Fuzzy)
	req.FuzzyThreshold = intOpt("threshold", fc.FuzzyThreshold)
	req.ContextWindow = intOpt("context", fc.Context)

	o := &options{
		root:     c.Args().First(),
		request:  req,
		workers:  intOpt("workers", fc.Workers),
		format:   strings.ToLower(c.String("format")),
		output:   c.String("output"),
		extended: boolOpt("extended", fc.Extended),
		exclude:  c.StringSlice("exclude"),
		showAll:  c.Bool("all"),
		tui:      c.Bool("tui"),
	}
	if !c.IsSet("format") && fc.Format != "" {
		o.format = strings.ToLower(fc.Format)
	}

	o.recursive = !c.Bool("no-recursive")
	if !c.IsSet("no-recursive") && fc.Recursive != nil {
		o.recursive = *fc.Recursive
	}

	o.color = !c.Bool("no-color")
	if !c.IsSet("no-color") {
		switch {
		case os.Getenv("NO_COLOR") != "":
			o.color = false
		case fc.Color != nil:
			o.color = *fc.Color
		}
	}

	if len(o.exclude) == 0 {
		o.exclude = fc.Exclude
	}

	switch o.format {
	case FormatText, FormatJSON, FormatHTML:
	default:
		return nil, fmt.Errorf("invalid format %q: must be one of text, json, html", o.format)
	}
	return o, nil
}

func searchCommand(c *cli.Context) error {
	fc, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitUsage)
	}
	opts, err := resolveOptions(c, fc)
	if err != nil {
		return cli.Exit(err.Error(), ExitUsage)
	}

	registry := search.NewExtractorRegistry()
	if opts.extended {
		registry.RegisterExtended()
	}
	walker := search.NewFileWalker(config.SupportedTypes(opts.extended),
		search.WithRecursion(opts.recursive),
		search.WithExclude(opts.exclude...),
	)
	engine, err := search.NewSearchEngine(opts.request, walker,
		search.WithWorkers(opts.workers),
		search.WithRegistry(registry),
		search.WithLogger(slog.Default()),
	)
	if err != nil {
		return cli.Exit(err.Error(), ExitUsage)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.tui {
		return runTUI(ctx, engine, opts)
	}

	result, runErr := engine.Execute(ctx, opts.root)
	if runErr != nil && result == nil {
		if errors.Is(runErr, search.ErrPathNotFound) || errors.Is(runErr, search.ErrUnsupportedFormat) {
			return cli.Exit(runErr.Error(), ExitUsage)
		}
		return cli.Exit(runErr.Error(), ExitRuntime)
	}

	if err := writeResult(c, result, opts); err != nil {
		return cli.Exit(err.Error(), ExitRuntime)
	}
	if runErr != nil {
		if interrupted(runErr) {
			return cli.Exit(fmt.Sprintf("search interrupted: %v", runErr), ExitRuntime)
		}
		return cli.Exit(runErr.Error(), ExitRuntime)
	}
	return nil
}

func writeResult(c *cli.Context, result *search.SearchResult, opts *options) error {
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		if err := writeFormatted(f, result, opts); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close output: %w", err)
		}
		return nil
	}

	out := c.App.Writer
	if out == nil {
		out = os.Stdout
	}
	return writeFormatted(out, result, opts)
}

// writeFormatted renders result in the selected format to out.
func writeFormatted(out io.Writer, result *search.SearchResult, opts *options) error {
	var data []byte
	switch opts.format {
	case FormatJSON:
		b, err := render.JSON(result, true)
		if err != nil {
			return err
		}
		data = append(b, '\n')
	case FormatHTML:
		s, err := render.HTML(result, render.HTMLOptions{
			Title:   "doc-search: " + strings.Join(opts.request.Terms, ", "),
			Request: opts.request,
			Verbose: opts.showAll,
		})
		if err != nil {
			return err
		}
		data = []byte(s)
	default:
		textOpts := render.TextOptions{
			Request: opts.request,
			Verbose: opts.showAll,
			Summary: true,
		}
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			if width, _, err := term.GetSize(int(f.Fd())); err == nil {
				textOpts.Width = width
			}
			if opts.color {
				textOpts.Styles = render.NewStyles(lipgloss.NewRenderer(f))
			}
		}
		data = []byte(render.Text(result, textOpts))
	}

	_, err := out.Write(data)
	return err
}

// interrupted reports whether err came from a cancelled search.
func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
