package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/gridlaunch/internal/config"
	"github.com/vk/gridlaunch/internal/ctxlog"
	"github.com/vk/gridlaunch/internal/notify"
	"github.com/vk/gridlaunch/internal/registry"
	"github.com/vk/gridlaunch/internal/runrecord"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle. Rendered scripts go to outW; logs go to errW so render
// output stays clean when piped.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	registry  *registry.Registry
	model     *config.Model
	converter config.Converter
	notifier  *notify.Notifier
	records   *runrecord.Store
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Startup failures are fatal and reported by panicking; the entrypoint
// recovers and turns them into a clean exit.
func NewApp(outW, errW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, errW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, converter, err := loader.Load(ctx, appConfig.JobPath)
	if err != nil {
		// A failure to load job files is a fatal startup error.
		panic(fmt.Errorf("failed to load job configuration: %w", err))
	}
	logger.Debug("Job files loaded and translated into unified model.", "jobs", len(model.Jobs))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreSteps
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All step modules registered.", "count", len(modules))

	if err := reg.Validate(ctx); err != nil {
		// A definition/handler mismatch is a programmer error.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:      outW,
		logger:    logger,
		registry:  reg,
		model:     model,
		converter: converter,
		notifier:  notify.New(),
		records:   runrecord.NewStore(appConfig.ResultsDir),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
