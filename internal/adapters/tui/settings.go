package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/claude-usage-tracker/internal/domain"
)

// ErrCanceled is returned when the user backs out of the settings wizard.
// Nothing has been saved in that case.
var ErrCanceled = errors.New("settings canceled")

type settingsStage int

const (
	stageInstructions settingsStage = iota
	stageSessionKey
	stageOrgID
)

// SettingsModel is the staged credential wizard: an instructions screen,
// then two sequential prompts. Esc at any point cancels without mutating
// anything; an empty submission is rejected in place. It never emits
// tea.Quit itself so it can run embedded inside the watch model.
type SettingsModel struct {
	stage        settingsStage
	sessionInput textinput.Model
	orgInput     textinput.Model
	errText      string
	open         func(string) error

	creds    *domain.Credentials
	canceled bool
	done     bool
}

func NewSettings() SettingsModel {
	session := textinput.New()
	session.Prompt = "Session key: "
	session.Placeholder = "sk-ant-sid01-..."
	session.EchoMode = textinput.EchoPassword
	session.EchoCharacter = '•'

	org := textinput.New()
	org.Prompt = "Organization ID: "
	org.Placeholder = "00000000-0000-0000-0000-000000000000"

	return SettingsModel{
		stage:        stageInstructions,
		sessionInput: session,
		orgInput:     org,
		open:         openBrowser,
	}
}

func (m SettingsModel) Init() tea.Cmd {
	return nil
}

// Done reports whether the wizard has finished; Credentials returns the
// collected pair, or ErrCanceled.
func (m SettingsModel) Done() bool {
	return m.done
}

func (m SettingsModel) Credentials() (domain.Credentials, error) {
	if m.canceled || m.creds == nil {
		return domain.Credentials{}, ErrCanceled
	}

	return *m.creds, nil
}

func (m SettingsModel) Update(msg tea.Msg) (SettingsModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateInputs(msg)
	}

	switch keyMsg.String() {
	case "esc", "ctrl+c":
		m.canceled = true
		m.done = true
		return m, nil
	}

	switch m.stage {
	case stageInstructions:
		switch keyMsg.String() {
		case "o":
			if err := m.open(SettingsURL); err != nil {
				m.errText = fmt.Sprintf("could not open browser: %v", err)
			}
			return m, nil
		case "enter":
			m.stage = stageSessionKey
			m.errText = ""
			m.sessionInput.Focus()
			return m, textinput.Blink
		case "q":
			m.canceled = true
			m.done = true
			return m, nil
		}
		return m, nil

	case stageSessionKey:
		if keyMsg.String() == "enter" {
			if strings.TrimSpace(m.sessionInput.Value()) == "" {
				m.errText = "Session key must not be empty."
				return m, nil
			}
			m.stage = stageOrgID
			m.errText = ""
			m.sessionInput.Blur()
			m.orgInput.Focus()
			return m, textinput.Blink
		}

	case stageOrgID:
		if keyMsg.String() == "enter" {
			if strings.TrimSpace(m.orgInput.Value()) == "" {
				m.errText = "Organization ID must not be empty."
				return m, nil
			}
			m.creds = &domain.Credentials{
				SessionKey: strings.TrimSpace(m.sessionInput.Value()),
				OrgID:      strings.TrimSpace(m.orgInput.Value()),
			}
			m.done = true
			return m, nil
		}
	}

	return m.updateInputs(msg)
}

func (m SettingsModel) updateInputs(msg tea.Msg) (SettingsModel, tea.Cmd) {
	var cmd tea.Cmd
	switch m.stage {
	case stageSessionKey:
		m.sessionInput, cmd = m.sessionInput.Update(msg)
	case stageOrgID:
		m.orgInput, cmd = m.orgInput.Update(msg)
	}

	return m, cmd
}

func (m SettingsModel) View() string {
	var b strings.Builder

	switch m.stage {
	case stageInstructions:
		b.WriteString("Configure Claude usage credentials\n\n")
		b.WriteString("  1. Open claude.ai/settings/usage in your browser\n")
		b.WriteString("  2. Open DevTools (Cmd+Option+I) and pick the Network tab\n")
		b.WriteString("  3. Find the 'usage' request and look at its Cookie header\n")
		b.WriteString("  4. Copy the sessionKey value (starts with sk-ant-sid01-)\n")
		b.WriteString("  5. Copy the Organization ID from the URL or Settings > Account\n\n")
		b.WriteString("enter continue · o open settings page · esc cancel\n")
	case stageSessionKey:
		b.WriteString("Paste your sessionKey:\n\n")
		b.WriteString(m.sessionInput.View())
		b.WriteString("\n\nenter next · esc cancel\n")
	case stageOrgID:
		b.WriteString("Paste your Organization ID:\n\n")
		b.WriteString(m.orgInput.View())
		b.WriteString("\n\nenter save · esc cancel\n")
	}

	if m.errText != "" {
		b.WriteString("\n" + m.errText + "\n")
	}

	return b.String()
}

type settingsRunner struct {
	child SettingsModel
}

func (r settingsRunner) Init() tea.Cmd {
	return r.child.Init()
}

func (r settingsRunner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	r.child, cmd = r.child.Update(msg)
	if r.child.Done() {
		return r, tea.Quit
	}

	return r, cmd
}

func (r settingsRunner) View() string {
	if r.child.Done() {
		return ""
	}

	return r.child.View()
}

// RunSettings drives the wizard as a standalone program and returns the
// entered credentials, or ErrCanceled.
func RunSettings() (domain.Credentials, error) {
	p := tea.NewProgram(settingsRunner{child: NewSettings()})

	finalModel, err := p.Run()
	if err != nil {
		return domain.Credentials{}, err
	}

	runner, ok := finalModel.(settingsRunner)
	if !ok {
		return domain.Credentials{}, fmt.Errorf("unexpected final settings model type %T", finalModel)
	}

	return runner.child.Credentials()
}
