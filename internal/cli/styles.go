package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/valter-silva-au/decision-quality/pkg/models"
)

// Style definitions shared by the dashboard, the gate prompt and the
// verdict printers.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	statusSafe    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusAtRisk  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusBlocked = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func styleForStatus(status models.DecisionStatus) lipgloss.Style {
	switch status {
	case models.StatusSafeToDecide:
		return statusSafe
	case models.StatusDecisionAtRisk:
		return statusAtRisk
	case models.StatusBlocked:
		return statusBlocked
	default:
		return lipgloss.NewStyle()
	}
}

func styleForOutcome(outcome models.GateOutcome) lipgloss.Style {
	switch outcome {
	case models.GateProceed:
		return statusSafe
	case models.GateWarn:
		return statusAtRisk
	default:
		return statusBlocked
	}
}

func styleForSeverity(severity string) lipgloss.Style {
	switch strings.ToLower(severity) {
	case "high":
		return severityHigh
	case "medium":
		return severityMedium
	case "low":
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}

// statusBadge renders a short colored label for a decision status.
func statusBadge(status models.DecisionStatus) string {
	var label string
	switch status {
	case models.StatusSafeToDecide:
		label = "SAFE"
	case models.StatusDecisionAtRisk:
		label = "AT RISK"
	case models.StatusBlocked:
		label = "BLOCKED"
	default:
		label = strings.ToUpper(string(status))
	}
	return styleForStatus(status).Render("[" + label + "]")
}

// outcomeBadge renders a short colored label for a gate outcome.
func outcomeBadge(outcome models.GateOutcome) string {
	return styleForOutcome(outcome).Render("[" + strings.ToUpper(string(outcome)) + "]")
}
