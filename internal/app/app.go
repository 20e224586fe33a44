package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/gridetl/internal/compute"
	"github.com/specialistvlad/gridetl/internal/config"
	"github.com/specialistvlad/gridetl/internal/ctxlog"
	"github.com/specialistvlad/gridetl/internal/pipeline"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	ctx    context.Context
	config *Config
	model  *config.Model
	def    pipeline.Definition

	warehouse pipeline.Warehouse
	submitter compute.Submitter
	clock     pipeline.Clock
	closers   []func() error

	httpServer *http.Server
}

// Option overrides a backend the App would otherwise connect from the
// pipeline file.
type Option func(*App)

// WithWarehouse replaces the warehouse connection.
func WithWarehouse(w pipeline.Warehouse) Option {
	return func(a *App) { a.warehouse = w }
}

// WithSubmitter replaces the compute connection.
func WithSubmitter(s compute.Submitter) Option {
	return func(a *App) { a.submitter = s }
}

// WithClock replaces the wall clock used for partition keys and ticks.
func WithClock(c pipeline.Clock) Option {
	return func(a *App) { a.clock = c }
}

// NewApp is the constructor for the main application. It loads and validates
// the pipeline file. Connections are opened lazily by Run.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, opts ...Option) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	def := definition(model)
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline %q: %w", model.Pipeline.ID, err)
	}

	a := &App{
		outW:   outW,
		logger: logger,
		ctx:    ctx,
		config: appConfig,
		model:  model,
		def:    def,
		clock:  pipeline.SystemClock,
	}
	for _, opt := range opts {
		opt(a)
	}
	logger.Debug("Application initialized.", "pipeline", model.Pipeline.ID, "table", def.Table.Name, "transform", def.Transform.Name)
	return a, nil
}

// Definition returns the pipeline the app runs.
func (a *App) Definition() pipeline.Definition {
	return a.def
}

// Model returns the loaded configuration.
func (a *App) Model() *config.Model {
	return a.model
}

func (a *App) workers() int {
	if a.config.WorkerCount > 0 {
		return a.config.WorkerCount
	}
	return a.model.Pipeline.Workers
}
