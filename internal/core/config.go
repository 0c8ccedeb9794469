// Package core contains the decision-quality logic: the method catalog,
// the entity status evaluator, the cross-entity aggregator, the gating
// contract and configuration loading.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/valter-silva-au/decision-quality/pkg/models"
)

// ConfigFileName is the name (without extension) of the configuration file
// looked up in the base path.
const ConfigFileName = ".dqeconfig"

// ConfigurationManager loads and validates .dqeconfig.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the directory where .dqeconfig resides.
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with the built-in
// catalog, the 80/50/top-2 thresholds and default alert limits.
func DefaultGlobalConfig() *models.GlobalConfig {
	ec := DefaultEvaluatorConfig()
	return &models.GlobalConfig{
		Methods: DefaultMethodDefinitions(),
		Thresholds: models.ThresholdConfig{
			SafeCoverage: ec.SafeCoverage,
			RiskCoverage: ec.RiskCoverage,
			TopMethods:   ec.TopMethods,
		},
		Alerts: models.AlertConfig{
			MaxBlocked:         0,
			MinAvgCoverage:     50,
			MaxOverrides:       3,
			OverrideWindowDays: 7,
		},
		WorkspaceDir: "workspace",
		Logging: models.LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		EventLog: models.EventLogConfig{
			Enabled: true,
			Path:    ".dqe_events.jsonl",
		},
	}
}

// LoadGlobalConfig reads .dqeconfig from the base path using Viper. If the
// file does not exist, defaults are returned. The result is validated.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("thresholds.safe_coverage", cfg.Thresholds.SafeCoverage)
	v.SetDefault("thresholds.risk_coverage", cfg.Thresholds.RiskCoverage)
	v.SetDefault("thresholds.top_methods", cfg.Thresholds.TopMethods)
	v.SetDefault("alerts.max_blocked", cfg.Alerts.MaxBlocked)
	v.SetDefault("alerts.min_avg_coverage", cfg.Alerts.MinAvgCoverage)
	v.SetDefault("alerts.max_overrides", cfg.Alerts.MaxOverrides)
	v.SetDefault("alerts.override_window_days", cfg.Alerts.OverrideWindowDays)
	v.SetDefault("workspace_dir", cfg.WorkspaceDir)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("event_log.enabled", cfg.EventLog.Enabled)
	v.SetDefault("event_log.path", cfg.EventLog.Path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
	}

	cfg.Thresholds.SafeCoverage = v.GetInt("thresholds.safe_coverage")
	cfg.Thresholds.RiskCoverage = v.GetInt("thresholds.risk_coverage")
	cfg.Thresholds.TopMethods = v.GetInt("thresholds.top_methods")
	cfg.Alerts.MaxBlocked = v.GetInt("alerts.max_blocked")
	cfg.Alerts.MinAvgCoverage = v.GetInt("alerts.min_avg_coverage")
	cfg.Alerts.MaxOverrides = v.GetInt("alerts.max_overrides")
	cfg.Alerts.OverrideWindowDays = v.GetInt("alerts.override_window_days")
	cfg.WorkspaceDir = v.GetString("workspace_dir")
	cfg.Logging.Level = v.GetString("logging.level")
	cfg.Logging.Format = v.GetString("logging.format")
	cfg.EventLog.Enabled = v.GetBool("event_log.enabled")
	cfg.EventLog.Path = v.GetString("event_log.path")

	// A methods section replaces the built-in catalog entirely.
	if v.IsSet("methods") {
		var defs []models.MethodDefinition
		if err := v.UnmarshalKey("methods", &defs); err != nil {
			return nil, fmt.Errorf("parsing methods in %s: %w", ConfigFileName, err)
		}
		cfg.Methods = defs
	}

	if err := cm.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateConfig checks cfg for invalid values and reports every problem
// found in one error.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if len(cfg.Methods) == 0 {
		errs = append(errs, "methods must define at least one research method")
	} else if _, err := NewMethodCatalog(cfg.Methods); err != nil {
		errs = append(errs, "methods: "+err.Error())
	}

	if err := EvaluatorConfigFrom(cfg).Validate(); err != nil {
		errs = append(errs, "thresholds: "+err.Error())
	}

	if cfg.Alerts.MaxBlocked < 0 {
		errs = append(errs, fmt.Sprintf("alerts.max_blocked must be non-negative, got %d", cfg.Alerts.MaxBlocked))
	}
	if cfg.Alerts.MinAvgCoverage < 0 || cfg.Alerts.MinAvgCoverage > 100 {
		errs = append(errs, fmt.Sprintf("alerts.min_avg_coverage must be between 0 and 100, got %d", cfg.Alerts.MinAvgCoverage))
	}
	if cfg.Alerts.OverrideWindowDays < 0 {
		errs = append(errs, fmt.Sprintf("alerts.override_window_days must be non-negative, got %d", cfg.Alerts.OverrideWindowDays))
	}

	switch cfg.Logging.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("logging.format %q is invalid, must be console or json", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// EvaluatorConfigFrom extracts the evaluator thresholds from cfg.
func EvaluatorConfigFrom(cfg *models.GlobalConfig) EvaluatorConfig {
	return EvaluatorConfig{
		SafeCoverage: cfg.Thresholds.SafeCoverage,
		RiskCoverage: cfg.Thresholds.RiskCoverage,
		TopMethods:   cfg.Thresholds.TopMethods,
	}
}
