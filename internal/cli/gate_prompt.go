package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/valter-silva-au/decision-quality/internal/core"
)

// gatePromptModel asks the user to acknowledge a risk warning and give a
// reason before a gated action proceeds.
type gatePromptModel struct {
	decision  core.GateDecision
	reason    []rune
	hint      string
	confirmed bool
}

func newGatePromptModel(d core.GateDecision) gatePromptModel {
	return gatePromptModel{decision: d}
}

func (m gatePromptModel) Init() tea.Cmd {
	return nil
}

func (m gatePromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.confirmed = false
		return m, tea.Quit
	case tea.KeyEnter:
		if strings.TrimSpace(string(m.reason)) == "" {
			m.hint = "a reason is required to proceed"
			return m, nil
		}
		m.confirmed = true
		return m, tea.Quit
	case tea.KeyBackspace:
		if len(m.reason) > 0 {
			m.reason = m.reason[:len(m.reason)-1]
		}
	case tea.KeyRunes, tea.KeySpace:
		m.reason = append(m.reason, key.Runes...)
		m.hint = ""
	}
	return m, nil
}

func (m gatePromptModel) View() string {
	d := m.decision
	var b strings.Builder

	b.WriteString(titleStyle.Render(" Decision at risk "))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "  %s %s\n", outcomeBadge(d.Outcome), d.Action)
	if d.Deciding.ID != "" {
		fmt.Fprintf(&b, "  %s %s: %d%% research coverage\n", statusBadge(d.Verdict.Status), d.Deciding.Label, d.Verdict.Coverage)
	}
	fmt.Fprintf(&b, "\n  %s\n", d.Verdict.Recommendation)
	fmt.Fprintf(&b, "  Risk: %s\n", d.Verdict.Risk)
	for _, step := range d.Verdict.NextSteps {
		fmt.Fprintf(&b, "    - %s\n", step)
	}

	fmt.Fprintf(&b, "\n  Reason for proceeding anyway: %s_\n", string(m.reason))
	if m.hint != "" {
		b.WriteString("  " + statusBlocked.Render(m.hint) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("enter: proceed | esc: cancel"))
	return b.String()
}

// reasonText returns the trimmed reason typed by the user.
func (m gatePromptModel) reasonText() string {
	return strings.TrimSpace(string(m.reason))
}

// acknowledgeWarning runs the interactive prompt. It reports the reason and
// whether the user chose to proceed. Tests replace it.
var acknowledgeWarning = func(d core.GateDecision) (string, bool, error) {
	final, err := tea.NewProgram(newGatePromptModel(d)).Run()
	if err != nil {
		return "", false, fmt.Errorf("running gate prompt: %w", err)
	}
	m, ok := final.(gatePromptModel)
	if !ok || !m.confirmed {
		return "", false, nil
	}
	return m.reasonText(), true, nil
}
