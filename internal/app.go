// Package internal provides the App struct that wires all components of the
// Decision Quality Evaluation Engine together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/valter-silva-au/decision-quality/internal/cli"
	"github.com/valter-silva-au/decision-quality/internal/core"
	"github.com/valter-silva-au/decision-quality/internal/logging"
	"github.com/valter-silva-au/decision-quality/internal/observability"
	"github.com/valter-silva-au/decision-quality/internal/storage"
	"github.com/valter-silva-au/decision-quality/pkg/models"
)

// HomeEnv overrides the base path lookup.
const HomeEnv = "DQE_HOME"

// App holds all service dependencies of the engine.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig
	Logger    *zap.Logger

	// Storage layer
	Loader storage.WorkspaceLoader

	// Core services
	Catalog    *core.MethodCatalog
	Evaluator  core.Evaluator
	Aggregator core.Aggregator
	Gatekeeper core.Gatekeeper

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components of the engine. basePath is the
// directory holding .dqeconfig; relative paths in the config resolve
// against it.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Logging ---
	lvl, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	cli.LogLevel.SetLevel(lvl)
	app.Logger, err = logging.Build(cli.LogLevel, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	// --- Core services ---
	app.Catalog, err = core.NewMethodCatalog(cfg.Methods)
	if err != nil {
		return nil, fmt.Errorf("building method catalog: %w", err)
	}
	app.Evaluator, err = core.NewEvaluator(app.Catalog, core.EvaluatorConfigFrom(cfg))
	if err != nil {
		return nil, err
	}
	app.Aggregator = core.NewAggregator(app.Evaluator)

	// --- Storage layer ---
	app.Loader = storage.NewWorkspaceLoader(resolvePath(basePath, cfg.WorkspaceDir), logging.Component(app.Logger, "storage"))

	// --- Observability ---
	if cfg.EventLog.Enabled {
		app.EventLog, err = observability.NewJSONLEventLog(resolvePath(basePath, cfg.EventLog.Path))
		if err != nil {
			// Non-fatal: run without history.
			app.Logger.Warn("event log disabled", zap.Error(err))
			app.EventLog = nil
		}
	}
	var events core.EventLogger
	if app.EventLog != nil {
		app.AlertEngine = observability.NewAlertEngine(app.EventLog, alertThresholds(cfg.Alerts))
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
		events = &eventLogAdapter{log: app.EventLog}
	}
	app.Gatekeeper = core.NewGatekeeper(app.Evaluator, events, logging.Component(app.Logger, "gate"))

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Logger = app.Logger
	cli.Loader = app.Loader
	cli.Evaluator = app.Evaluator
	cli.Aggregator = app.Aggregator
	cli.Gatekeeper = app.Gatekeeper
	cli.Events = events

	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc

	app.Logger.Debug("engine initialized",
		zap.String("base_path", basePath),
		zap.String("workspace", app.Loader.Dir()),
		zap.Int("methods", app.Catalog.Len()),
		zap.Bool("event_log", app.EventLog != nil),
	)
	return app, nil
}

// Close releases resources held by the App, such as the event log file
// handle, and flushes the logger. It is safe to call Close on an App whose
// EventLog is nil.
func (a *App) Close() error {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// alertThresholds maps the alert config onto observability thresholds;
// non-positive windows keep the default.
func alertThresholds(cfg models.AlertConfig) observability.AlertThresholds {
	t := observability.DefaultAlertThresholds()
	t.MaxBlocked = cfg.MaxBlocked
	t.MinAvgCoverage = cfg.MinAvgCoverage
	t.MaxOverrides = cfg.MaxOverrides
	if cfg.OverrideWindowDays > 0 {
		t.OverrideWindowDays = cfg.OverrideWindowDays
	}
	return t
}

func resolvePath(basePath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(basePath, p)
}

// ResolveBasePath determines the directory holding .dqeconfig. It checks
// the DQE_HOME env var, then walks up from the current directory, then
// falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv(HomeEnv); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		for _, name := range []string{core.ConfigFileName, core.ConfigFileName + ".yaml"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   "INFO",
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}
