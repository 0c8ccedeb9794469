package cli

import (
	"context"
	"testing"
	"time"

	"github.com/valter-silva-au/decision-quality/internal/core"
	"github.com/valter-silva-au/decision-quality/internal/observability"
	"github.com/valter-silva-au/decision-quality/pkg/models"
)

// fakeLoader returns a fixed workspace.
type fakeLoader struct {
	ws  *models.Workspace
	err error
}

func (f *fakeLoader) Load(_ context.Context) (*models.Workspace, error) { return f.ws, f.err }
func (f *fakeLoader) Dir() string                                       { return "/tmp/workspace" }

// recordingEvents captures logged events.
type recordingEvents struct {
	types []string
	data  []map[string]any
}

func (r *recordingEvents) LogEvent(eventType string, data map[string]any) error {
	r.types = append(r.types, eventType)
	r.data = append(r.data, data)
	return nil
}

// metricsMock implements observability.MetricsCalculator.
type metricsMock struct {
	calcFn func(since time.Time) (*observability.Metrics, error)
}

func (m *metricsMock) Calculate(since time.Time) (*observability.Metrics, error) {
	return m.calcFn(since)
}

// alertsMock implements observability.AlertEngine.
type alertsMock struct {
	alerts []observability.Alert
	err    error
}

func (m *alertsMock) Evaluate() ([]observability.Alert, error) {
	return m.alerts, m.err
}

func method(t models.MethodType, s models.MethodStatus) models.ResearchMethod {
	return models.ResearchMethod{Type: t, Status: s}
}

// sampleWorkspace holds one entity per status:
// mission is safe (100), vision is blocked (0) and cfo is at risk (67).
func sampleWorkspace() *models.Workspace {
	return &models.Workspace{
		Assets: []models.BrandAsset{
			{ID: "mission", Name: "Mission", Methods: []models.ResearchMethod{
				method(models.MethodWorkshop, models.MethodCompleted),
				method(models.MethodInterviews, models.MethodCompleted),
				method(models.MethodQuestionnaire, models.MethodCompleted),
			}},
			{ID: "vision", Name: "Vision"},
		},
		Personas: []models.Persona{
			{ID: "cfo", Name: "CFO", Methods: []models.ResearchMethod{
				method(models.MethodWorkshop, models.MethodCompleted),
				method(models.MethodInterviews, models.MethodInProgress),
				method(models.MethodQuestionnaire, models.MethodCompleted),
			}},
		},
		Campaigns: []models.Campaign{
			{ID: "spring", Name: "Spring launch", AssetIDs: []string{"mission"}, PersonaIDs: []string{"cfo"}},
			{ID: "safe-only", AssetIDs: []string{"mission"}},
		},
	}
}

// withEngine wires the engine package vars to ws for the duration of the
// test and returns the event recorder.
func withEngine(t *testing.T, ws *models.Workspace) *recordingEvents {
	t.Helper()
	origLoader, origEval, origAgg, origGate, origEvents := Loader, Evaluator, Aggregator, Gatekeeper, Events
	t.Cleanup(func() {
		Loader, Evaluator, Aggregator, Gatekeeper, Events = origLoader, origEval, origAgg, origGate, origEvents
	})

	events := &recordingEvents{}
	ev := core.NewDefaultEvaluator()
	Loader = &fakeLoader{ws: ws}
	Evaluator = ev
	Aggregator = core.NewAggregator(ev)
	Gatekeeper = core.NewGatekeeper(ev, events, nil)
	Events = events
	return events
}
