package models

// MethodType identifies a research activity (workshop, interviews, ...).
// The set is open: types missing from the method catalog are accepted and
// ranked last.
type MethodType string

const (
	MethodWorkshop      MethodType = "workshop"
	MethodInterviews    MethodType = "interviews"
	MethodQuestionnaire MethodType = "questionnaire"
	MethodAIExploration MethodType = "ai-exploration"
)

// MethodStatus represents the lifecycle state of a research method.
type MethodStatus string

const (
	MethodNotStarted MethodStatus = "not-started"
	MethodInProgress MethodStatus = "in-progress"
	MethodCompleted  MethodStatus = "completed"
)

// Completed reports whether the status counts towards coverage. Unknown
// status strings are never completed.
func (s MethodStatus) Completed() bool {
	return s == MethodCompleted
}

// Advancement orders statuses from least to most advanced. Unknown values
// sort below not-started.
func (s MethodStatus) Advancement() int {
	switch s {
	case MethodNotStarted:
		return 1
	case MethodInProgress:
		return 2
	case MethodCompleted:
		return 3
	default:
		return 0
	}
}

// ResearchMethod is one research activity attached to a strategic entity.
// Progress is informational only and never feeds coverage.
type ResearchMethod struct {
	Type     MethodType   `yaml:"type" json:"type"`
	Status   MethodStatus `yaml:"status" json:"status"`
	Progress *int         `yaml:"progress,omitempty" json:"progress,omitempty"`
}

// ResearchItem is anything that carries a list of research methods.
// Implementations must not expect the evaluator to modify the returned slice.
type ResearchItem interface {
	ResearchMethods() []ResearchMethod
}

// Methods is a bare ResearchItem, handy for ad-hoc evaluation.
type Methods []ResearchMethod

// ResearchMethods implements ResearchItem.
func (m Methods) ResearchMethods() []ResearchMethod {
	return m
}
