// Package app is the composition root: it turns a Config into wired
// services and runs the HTTP server until the context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/winemesh/assembler"
	"github.com/hupe1980/winemesh/auth"
	"github.com/hupe1980/winemesh/chat"
	"github.com/hupe1980/winemesh/internal/config"
	"github.com/hupe1980/winemesh/internal/database"
	"github.com/hupe1980/winemesh/internal/httpapi"
	"github.com/hupe1980/winemesh/logging"
	"github.com/hupe1980/winemesh/model"
	"github.com/hupe1980/winemesh/model/provider"
	"github.com/hupe1980/winemesh/sqlgen"
	"github.com/hupe1980/winemesh/summary"
	"github.com/hupe1980/winemesh/wine"
)

// Version is reported by /ping.
var Version = "0.1.0"

// App holds the wired services.
type App struct {
	Config *config.Config
	Logger logging.Logger
	Model  model.Model

	Chat    *chat.Service
	Summary *summary.Summarizer
	SQLGen  *sqlgen.Generator
	DB      *database.DB
	Wines   *wine.Store

	closers []io.Closer
}

// Option customizes New.
type Option func(a *App)

// WithModel replaces the configured provider, mainly for tests.
func WithModel(m model.Model) Option {
	return func(a *App) { a.Model = m }
}

// WithDB uses an already opened database instead of connecting.
func WithDB(db *database.DB) Option {
	return func(a *App) { a.DB = db }
}

// New wires all services from cfg. The database is optional: when its
// settings are incomplete the SQL backed endpoints answer 503.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	logger, closer := logging.New(cfg.Log)
	a := &App{Config: cfg, Logger: logger, closers: []io.Closer{closer}}
	for _, opt := range opts {
		opt(a)
	}

	if a.Model == nil {
		if err := cfg.Validate(); err != nil {
			a.Close()
			return nil, err
		}
		m, err := provider.New(ctx, cfg.Provider)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Model = m
	}

	if a.DB == nil && cfg.DatabaseEnabled() {
		db, err := database.Open(ctx, cfg.Database, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.DB = db
		a.closers = append(a.closers, db)
	}
	if a.DB == nil {
		logger.Warn("app.database.disabled", "missing", cfg.Database.Missing())
	}

	chatOpts := func(o *chat.Options) {
		o.Model = cfg.TriageModel
		o.Assembler = assembler.New(assembler.WithSegmenter(Segmenter(cfg.ChunkPolicy, cfg.ChunkSize)))
		o.Callbacks = auditCallbacks(logger)
		o.Logger = logger
	}
	if a.DB != nil {
		a.Wines = wine.NewStore(a.DB)
		chatOpts = chain(chatOpts, func(o *chat.Options) { o.Collections = a.Wines })
	}

	a.Chat = chat.New(a.Model, chatOpts)
	a.Summary = summary.New(a.Model, func(o *summary.Options) {
		o.Model = cfg.SummaryModel
		o.Logger = logger
	})
	a.SQLGen = sqlgen.New(a.Model, func(o *sqlgen.Options) {
		o.Model = cfg.SQLGenModel
		o.Logger = logger
	})

	info := a.Model.Info()
	logger.Info("app.ready", "provider", info.Provider, "triage_model", cfg.TriageModel, "database", a.DB != nil)
	return a, nil
}

func chain(fns ...func(o *chat.Options)) func(o *chat.Options) {
	return func(o *chat.Options) {
		for _, fn := range fns {
			fn(o)
		}
	}
}

// Segmenter maps a chunk policy name to a strategy.
func Segmenter(policy string, size int) assembler.Strategy {
	switch policy {
	case "fixed":
		return assembler.FixedSize(size)
	case "whole":
		return assembler.WholeMessage()
	default:
		return assembler.TurnBoundary()
	}
}

// Handler builds the HTTP handler.
func (a *App) Handler() http.Handler {
	return httpapi.New(func(o *httpapi.Options) {
		o.Chat = a.Chat
		o.Summary = a.Summary
		o.SQLGen = a.SQLGen
		if a.DB != nil {
			o.SQL = a.DB
			o.Collections = a.Wines
			o.Ready = a.DB.Ping
		}
		if a.Config.JWTSecret != "" {
			o.Verifier = auth.NewVerifier(a.Config.JWTSecret)
		}
		o.CORSOrigins = a.Config.CORSOrigins
		o.Version = Version
		o.Logger = a.Logger
	})
}

// Serve runs the HTTP server until ctx is done, then shuts it down
// gracefully within the configured timeout.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.HTTPAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("http.listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
		defer cancel()
		a.Logger.Info("http.shutdown")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases the database pool and the log file.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
