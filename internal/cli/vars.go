package cli

import (
	"go.uber.org/zap"

	"github.com/valter-silva-au/decision-quality/internal/core"
	"github.com/valter-silva-au/decision-quality/internal/observability"
	"github.com/valter-silva-au/decision-quality/internal/storage"
)

// Engine service instances, set during app initialization in app.go.
var (
	BasePath   string
	Loader     storage.WorkspaceLoader
	Evaluator  core.Evaluator
	Aggregator core.Aggregator
	Gatekeeper core.Gatekeeper

	// Events receives workspace.evaluated summaries. It is nil when the
	// event log is disabled.
	Events core.EventLogger
)

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
)

// Logger is the root logger; LogLevel controls its verbosity.
var (
	Logger   = zap.NewNop()
	LogLevel = zap.NewAtomicLevel()
)
