// Package commands wires the stages into the wikiapi command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/lysyi3m/wiki-api-connector/app/catalog"
	"github.com/lysyi3m/wiki-api-connector/app/cfg"
	"github.com/lysyi3m/wiki-api-connector/app/commons"
	"github.com/lysyi3m/wiki-api-connector/app/database"
	"github.com/lysyi3m/wiki-api-connector/app/fetch"
	"github.com/lysyi3m/wiki-api-connector/app/unit"
)

// App holds the global options and the collaborators built from them for
// the command being run.
type App struct {
	Options cfg.Options

	cfg     *cfg.Cfg
	ctx     context.Context
	stdout  io.Writer
	stderr  io.Writer
	cached  *fetch.Client
	cache   *database.ResponseRepository
	closers []func() error
}

// Run parses args, runs the selected command and returns the exit status.
func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	app := &App{stdout: stdout, stderr: stderr}

	parser := flags.NewParser(&app.Options, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "wikiapi"
	parser.ShortDescription = "Wiki API Connector"
	parser.LongDescription = "Moves digitized museum records from institutional metadata APIs to Wikimedia Commons."
	app.register(parser)
	parser.CommandHandler = app.handle

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) {
			if flagsErr.Type == flags.ErrHelp {
				fmt.Fprintln(stdout, flagsErr.Message)
				return 0
			}
			fmt.Fprintln(stderr, flagsErr.Message)
			parser.WriteHelp(stderr)
			return 1
		}
		slog.Error("Command failed", "error", err)
		return 1
	}
	return 0
}

func (a *App) register(parser *flags.Parser) {
	commands := []struct {
		name, short, long string
		data              any
	}{
		{"search", "Collect identifiers from search result pages",
			"Walks a paginated search listing and writes one identifier per line.",
			&SearchCommand{app: a}},
		{"generate", "Map identifiers to upload records",
			"Looks up each identifier in the unit's catalog API and writes upload records as CSV or url2commons links.",
			&GenerateCommand{app: a}},
		{"upload", "Upload records to the destination repository",
			"Downloads each record's image, skips files already present by SHA-1 and uploads the rest.",
			&UploadCommand{app: a}},
		{"run", "Search, generate and upload in one go",
			"Runs search, generate and upload, keeping BASE.txt and BASE.csv as intermediate files.",
			&RunCommand{app: a}},
		{"claims", "Print structured-data claims for identifiers",
			"Prints wbcreateclaim form data as JSON lines and optionally submits it.",
			&ClaimsCommand{app: a}},
		{"serve", "Serve a mapping preview over HTTP",
			"Starts an HTTP server previewing mapped records for the configured units.",
			&ServeCommand{app: a}},
	}

	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			panic(fmt.Sprintf("failed to register command %s: %v", c.name, err))
		}
	}
}

// handle prepares configuration, logging and the run context, then executes
// cmd.
func (a *App) handle(cmd flags.Commander, args []string) error {
	if cmd == nil {
		return nil
	}

	c, err := a.Options.Cfg()
	if err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	a.cfg = c
	setupLogging(a.stderr, c.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	a.ctx = ctx

	defer a.close()
	return cmd.Execute(args)
}

func setupLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("Failed to release resource", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) fetchOptions() fetch.Options {
	return fetch.Options{
		UserAgent: a.cfg.UserAgent,
		Timeout:   a.cfg.Timeout,
		RateLimit: a.cfg.RateLimit,
	}
}

// cachedFetcher returns the client used for catalog API and search pages,
// backed by the response cache unless caching is disabled.
func (a *App) cachedFetcher() (*fetch.Client, error) {
	if a.cached != nil {
		return a.cached, nil
	}

	opts := a.fetchOptions()
	if !a.cfg.NoCache {
		db, err := database.NewConnection(a.cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open response cache: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		a.cache = database.NewResponseRepository(db)
		if n, err := a.cache.PurgeExpired(a.ctx, time.Now()); err != nil {
			slog.Warn("Failed to purge expired responses", "error", err)
		} else if n > 0 {
			slog.Debug("Expired responses purged", "count", n)
		}

		opts.Cache = a.cache
		opts.CacheTTL = a.cfg.CacheTTL
	}

	a.cached = fetch.NewClient(opts)
	return a.cached, nil
}

// directFetcher returns an uncached client for image downloads and the
// destination API.
func (a *App) directFetcher() *fetch.Client {
	return fetch.NewClient(a.fetchOptions())
}

func (a *App) catalogClient() (*catalog.Client, error) {
	fetcher, err := a.cachedFetcher()
	if err != nil {
		return nil, err
	}
	return catalog.NewClient(fetcher), nil
}

func (a *App) commonsClient(fetcher *fetch.Client) *commons.Client {
	return commons.NewClient(a.cfg.CommonsAPI, fetcher.HTTPClient(), a.cfg.UserAgent, a.cfg.CommonsToken)
}

func loadUnit(configPath, name string) (*unit.Unit, error) {
	registry, err := unit.Load(configPath)
	if err != nil {
		return nil, err
	}
	return registry.Get(name)
}
