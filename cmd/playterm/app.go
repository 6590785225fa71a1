package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/unkn0wn-root/playterm/internal/config"
	"github.com/unkn0wn-root/playterm/internal/dispatch"
	"github.com/unkn0wn-root/playterm/internal/errdef"
	"github.com/unkn0wn-root/playterm/internal/gist"
	"github.com/unkn0wn-root/playterm/internal/history"
	"github.com/unkn0wn-root/playterm/internal/logging"
	"github.com/unkn0wn-root/playterm/internal/output"
	"github.com/unkn0wn-root/playterm/internal/playground"
	"github.com/unkn0wn-root/playterm/internal/settings"
	"github.com/unkn0wn-root/playterm/internal/telemetry"
	"github.com/unkn0wn-root/playterm/internal/transport"
)

type rootOptions struct {
	configDir string
	serverURL string
	file      string
	channel   string
	mode      string
	crateType string
	tests     bool
	testsSet  bool
	set       []string
	noColor   bool
	logLevel  string
	noHistory bool
}

// app holds the collaborators shared by the TUI and headless commands.
type app struct {
	settings   config.Settings
	logger     *slog.Logger
	telemetry  *telemetry.Provider
	history    *history.Store
	dispatcher *dispatch.Dispatcher

	closers []io.Closer
}

func newApp(ctx context.Context, opts rootOptions) (*app, error) {
	if opts.configDir != "" {
		if err := os.Setenv("PLAYTERM_CONFIG_DIR", opts.configDir); err != nil {
			return nil, errdef.Wrap(errdef.CodeConfig, err, "set config dir")
		}
	}
	s, _, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	cfg, err := resolveConfiguration(&s, opts)
	if err != nil {
		return nil, err
	}

	a := &app{settings: s}

	level := s.Log.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger, logCloser, err := logging.New(logging.Options{Dir: config.LogDir(), Level: level, Format: s.Log.Format})
	if err != nil {
		return nil, err
	}
	a.logger = logger
	a.closers = append(a.closers, logCloser)

	tcfg := telemetry.ConfigFromEnv(os.Getenv)
	tcfg.Version = version
	provider, err := telemetry.Setup(ctx, tcfg)
	if err != nil {
		logger.Warn("telemetry disabled", "error", err)
		provider = telemetry.Noop()
	}
	a.telemetry = provider

	var recorder dispatch.Recorder
	if !opts.noHistory && !s.History.Disabled {
		store, err := history.Open(config.HistoryPath(), s.History.MaxEntries)
		if err != nil {
			logger.Warn("history disabled", "error", err)
		} else {
			writer := history.NewWriter(store, 0, logger)
			a.history = store
			a.closers = append(a.closers, store, writer)
			recorder = writer
		}
	}

	serverOpts := clientOptions(s)
	serverOpts.BaseURL = s.ServerURL()
	client, err := transport.NewClient(serverOpts)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	gistAPI, err := gist.NewAPIClient(s.Gist.APIURL, s.Gist.Token, userAgent(), clientOptions(s))
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	code := playground.DefaultCode
	if src, ok, err := readSource(opts.file); err != nil {
		a.Close(ctx)
		return nil, err
	} else if ok {
		code = src
	}

	a.dispatcher = dispatch.New(dispatch.Config{
		Store:     output.NewStore(),
		Session:   playground.NewSession(code, cfg),
		Transport: client,
		Snippets:  gist.NewClient(gistAPI),
		Logger:    logger,
		Tracer:    provider.Tracer(),
		Recorder:  recorder,
	})
	return a, nil
}

// clientOptions holds the network settings shared by the playground and
// gist clients.
func clientOptions(s config.Settings) transport.Options {
	return transport.Options{
		Timeout:            s.Timeout(),
		InsecureSkipVerify: s.Server.Insecure,
		ProxyURL:           s.Server.Proxy,
		RootCAs:            s.Server.CACerts,
		UserAgent:          userAgent(),
	}
}

// resolveConfiguration layers --set pairs and explicit flags over the
// settings file.
func resolveConfiguration(s *config.Settings, opts rootOptions) (playground.Configuration, error) {
	cfg := s.Configuration()
	pairs, err := settings.ParsePairs(opts.set)
	if err != nil {
		return cfg, err
	}
	applier := settings.New(
		settings.SessionHandler(&cfg),
		settings.ServerHandler(&s.Server),
		settings.GistHandler(&s.Gist),
		settings.LogHandler(&s.Log),
	)
	if err := applier.Strict(pairs); err != nil {
		return cfg, err
	}

	if opts.serverURL != "" {
		s.Server.URL = opts.serverURL
	}
	if opts.channel != "" {
		ch, err := playground.ParseChannel(opts.channel)
		if err != nil {
			return cfg, err
		}
		cfg.Channel = ch
	}
	if opts.mode != "" {
		m, err := playground.ParseMode(opts.mode)
		if err != nil {
			return cfg, err
		}
		cfg.Mode = m
	}
	if opts.crateType != "" {
		cfg.CrateType = playground.ParseCrateType(opts.crateType)
	}
	if opts.testsSet {
		cfg.Tests = opts.tests
	}
	return cfg, nil
}

// readSource reads path, or stdin for "-". An empty path reads nothing.
func readSource(path string) (string, bool, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", false, nil
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", false, errdef.Wrap(errdef.CodeConfig, err, "read source %s", path)
	}
	return string(data), true, nil
}

func (a *app) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.dispatcher != nil {
		a.dispatcher.Wait()
	}
	if a.telemetry != nil {
		if err := a.telemetry.Shutdown(ctx); err != nil && a.logger != nil {
			a.logger.Warn("telemetry shutdown", "error", err)
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}

func userAgent() string {
	return "playterm/" + version
}
