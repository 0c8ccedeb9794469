package models

// MethodDefinition describes one catalog entry: a method type, its display
// label and its strategic-priority rank (lower is more important).
type MethodDefinition struct {
	Type  MethodType `yaml:"type" mapstructure:"type" json:"type"`
	Label string     `yaml:"label" mapstructure:"label" json:"label"`
	Rank  int        `yaml:"rank" mapstructure:"rank" json:"rank"`
}

// ThresholdConfig holds the evaluator thresholds.
type ThresholdConfig struct {
	SafeCoverage int `yaml:"safe_coverage" mapstructure:"safe_coverage"`
	RiskCoverage int `yaml:"risk_coverage" mapstructure:"risk_coverage"`
	TopMethods   int `yaml:"top_methods" mapstructure:"top_methods"`
}

// AlertConfig holds the alert thresholds read from .dqeconfig.
type AlertConfig struct {
	MaxBlocked         int `yaml:"max_blocked" mapstructure:"max_blocked"`
	MinAvgCoverage     int `yaml:"min_avg_coverage" mapstructure:"min_avg_coverage"`
	MaxOverrides       int `yaml:"max_overrides" mapstructure:"max_overrides"`
	OverrideWindowDays int `yaml:"override_window_days" mapstructure:"override_window_days"`
}

// LoggingConfig selects the log level and encoder.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// EventLogConfig controls the JSONL event log.
type EventLogConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// GlobalConfig holds settings read from .dqeconfig via Viper.
type GlobalConfig struct {
	Methods      []MethodDefinition `yaml:"methods" mapstructure:"methods"`
	Thresholds   ThresholdConfig    `yaml:"thresholds" mapstructure:"thresholds"`
	Alerts       AlertConfig        `yaml:"alerts" mapstructure:"alerts"`
	WorkspaceDir string             `yaml:"workspace_dir" mapstructure:"workspace_dir"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
	EventLog     EventLogConfig     `yaml:"event_log" mapstructure:"event_log"`
}
