package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/decision-quality/pkg/models"
)

// Dashboard panel indices.
const (
	panelDecisions = iota
	panelGates
	panelAlerts
	panelCount
)

// dashboardQueueSize caps the urgency queue shown in the decisions panel.
const dashboardQueueSize = 5

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	summary     *models.AggregateSummary
	metricsData *metricsSnapshot
	alerts      []alertSnapshot

	// State.
	loading bool
	err     error
}

type metricsSnapshot struct {
	gateDecisions int
	proceeded     int
	warned        int
	blocked       int
	overrides     int
	eventCount    int
}

type alertSnapshot struct {
	severity string
	message  string
	time     string
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	summary *models.AggregateSummary
	metrics *metricsSnapshot
	alerts  []alertSnapshot
	err     error
}

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activePanel: panelDecisions,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadData
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.summary = msg.summary
		m.metricsData = msg.metrics
		m.alerts = msg.alerts
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Decision Quality ")
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	decisionsPanel := m.renderDecisionsPanel()
	gatesPanel := m.renderGatesPanel()
	alertsPanel := m.renderAlertsPanel()

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		colWidth := availableWidth / 3
		decisionsPanel = m.applyPanelStyle(panelDecisions, decisionsPanel, colWidth-4)
		gatesPanel = m.applyPanelStyle(panelGates, gatesPanel, colWidth-4)
		alertsPanel = m.applyPanelStyle(panelAlerts, alertsPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, decisionsPanel, gatesPanel, alertsPanel)
	} else {
		panelWidth := max(availableWidth-4, 20)
		decisionsPanel = m.applyPanelStyle(panelDecisions, decisionsPanel, panelWidth)
		gatesPanel = m.applyPanelStyle(panelGates, gatesPanel, panelWidth)
		alertsPanel = m.applyPanelStyle(panelAlerts, alertsPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, decisionsPanel, gatesPanel, alertsPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderDecisionsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Decisions"))
	b.WriteString("\n")

	if m.summary == nil || m.summary.Total == 0 {
		b.WriteString("  No entities found.")
		return b.String()
	}

	s := m.summary
	counts := []struct {
		status models.DecisionStatus
		count  int
	}{
		{models.StatusSafeToDecide, s.SafeCount},
		{models.StatusDecisionAtRisk, s.AtRiskCount},
		{models.StatusBlocked, s.BlockedCount},
	}
	for _, c := range counts {
		label := fmt.Sprintf("  %-18s %d", c.status, c.count)
		b.WriteString(styleForStatus(c.status).Render(label))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n  Average coverage: %d%%\n", s.AvgCoverage)

	if len(s.UrgencyQueue) > 0 {
		b.WriteString("\n  Most urgent:\n")
		for i, e := range s.UrgencyQueue {
			if i == dashboardQueueSize {
				fmt.Fprintf(&b, "  ... and %d more\n", len(s.UrgencyQueue)-dashboardQueueSize)
				break
			}
			fmt.Fprintf(&b, "  %s %3d%% %s\n", statusBadge(e.Verdict.Status), e.Verdict.Coverage, e.Ref.Label)
		}
	}

	return b.String()
}

func (m dashboardModel) renderGatesPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Gates (7d)"))
	b.WriteString("\n")

	if m.metricsData == nil {
		b.WriteString("  No metrics available.")
		return b.String()
	}

	md := m.metricsData
	lines := []struct {
		label string
		value int
	}{
		{"Events", md.eventCount},
		{"Decisions", md.gateDecisions},
		{"Proceeded", md.proceeded},
		{"Warned", md.warned},
		{"Blocked", md.blocked},
		{"Overridden", md.overrides},
	}

	for _, l := range lines {
		fmt.Fprintf(&b, "  %-14s %d\n", l.label, l.value)
	}

	return b.String()
}

func (m dashboardModel) renderAlertsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Alerts"))
	b.WriteString("\n")

	if len(m.alerts) == 0 {
		b.WriteString("  No active alerts.")
		return b.String()
	}

	for _, a := range m.alerts {
		sev := styleForSeverity(a.severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(a.severity)))
		fmt.Fprintf(&b, "  %s %s\n", sev, a.message)
	}

	fmt.Fprintf(&b, "\n  Total: %d alert(s)", len(m.alerts))

	return b.String()
}

func loadData() tea.Msg {
	var result dataLoadedMsg

	// Evaluate the workspace.
	if Loader != nil && Aggregator != nil {
		ws, err := Loader.Load(context.Background())
		if err != nil {
			result.err = fmt.Errorf("loading workspace: %w", err)
			return result
		}
		summary := Aggregator.Aggregate(ws.Subjects())
		result.summary = &summary
	}

	// Load gate metrics from MetricsCalc.
	if MetricsCalc != nil {
		since := time.Now().UTC().AddDate(0, 0, -7)
		metrics, err := MetricsCalc.Calculate(since)
		if err != nil {
			result.err = fmt.Errorf("loading metrics: %w", err)
			return result
		}
		result.metrics = &metricsSnapshot{
			gateDecisions: metrics.GateDecisions,
			proceeded:     metrics.Proceeded,
			warned:        metrics.Warned,
			blocked:       metrics.Blocked,
			overrides:     metrics.Overrides,
			eventCount:    metrics.EventCount,
		}
	}

	// Load alerts from AlertEngine.
	if AlertEngine != nil {
		alerts, err := AlertEngine.Evaluate()
		if err != nil {
			result.err = fmt.Errorf("loading alerts: %w", err)
			return result
		}
		result.alerts = make([]alertSnapshot, 0, len(alerts))

		// Sort alerts by severity: high first, then medium, then low.
		sort.SliceStable(alerts, func(i, j int) bool {
			return severityRank(string(alerts[i].Severity)) < severityRank(string(alerts[j].Severity))
		})

		for _, a := range alerts {
			result.alerts = append(result.alerts, alertSnapshot{
				severity: string(a.Severity),
				message:  a.Message,
				time:     a.TriggeredAt.Format("2006-01-02 15:04 UTC"),
			})
		}
	}

	return result
}

func severityRank(s string) int {
	switch s {
	case "high":
		return 0
	case "medium":
		return 1
	case "low":
		return 2
	default:
		return 3
	}
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for decision safety, gates and alerts",
	Long: `Launch an interactive terminal dashboard showing entity decision
statuses, the most urgent entities, recent gate outcomes and alerts.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}
		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
