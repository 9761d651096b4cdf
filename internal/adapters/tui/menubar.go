package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/claude-usage-tracker/internal/application"
	"github.com/bnema/claude-usage-tracker/internal/domain"
	"github.com/bnema/claude-usage-tracker/internal/ports"
)

const (
	barWidth        = 30
	refreshDebounce = 2 * time.Second
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	sentinelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("203"))

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	missingStyle = lipgloss.NewStyle().
			Faint(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(1, 2)
)

type tickMsg time.Time

type refreshDoneMsg struct {
	err error
}

type settingsSavedMsg struct {
	err error
}

// rowBuffer collects one Push from the service. It is the MenuSurface the
// watch host hands to the refresh cycle.
type rowBuffer struct {
	title string
	rows  map[ports.RowID]string
}

var _ ports.MenuSurface = (*rowBuffer)(nil)

func newRowBuffer() *rowBuffer {
	return &rowBuffer{rows: map[ports.RowID]string{}}
}

func (b *rowBuffer) SetTitle(title string) {
	b.title = title
}

func (b *rowBuffer) SetRow(id ports.RowID, text string) {
	b.rows[id] = text
}

// Model is the watch host: it owns the periodic timer, dispatches refresh
// cycles to the application service, and renders the resulting title and
// rows. Exactly one refresh is in flight at a time.
type Model struct {
	service  *application.Service
	interval time.Duration

	title    string
	rows     map[ports.RowID]string
	snapshot *domain.UsageSnapshot

	sessionBar progress.Model
	weeklyBar  progress.Model
	sonnetBar  progress.Model
	spin       spinner.Model

	loading     bool
	inFlight    bool
	lastErr     error
	lastRefresh time.Time
	width       int

	settings *SettingsModel
}

func newBar() progress.Model {
	return progress.New(
		progress.WithScaledGradient("#76EEC6", "#FF6347"),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
}

func NewModel(service *application.Service, interval time.Duration) Model {
	if interval <= 0 {
		interval = 60 * time.Second
	}

	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))),
	)

	return Model{
		service:    service,
		interval:   interval,
		rows:       map[ports.RowID]string{},
		sessionBar: newBar(),
		weeklyBar:  newBar(),
		sonnetBar:  newBar(),
		spin:       s,
		loading:    true,
		inFlight:   true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		refreshCmd(m.service),
		tickCmd(m.interval),
	)
}

func refreshCmd(service *application.Service) tea.Cmd {
	return func() tea.Msg {
		_, err := service.Refresh(context.Background())
		return refreshDoneMsg{err: err}
	}
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func saveCredentialsCmd(service *application.Service, creds domain.Credentials) tea.Cmd {
	return func() tea.Msg {
		return settingsSavedMsg{err: service.SaveCredentials(context.Background(), creds)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.settings != nil {
		return m.updateSettings(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.inFlight {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tickMsg:
		if m.inFlight {
			return m, tickCmd(m.interval)
		}
		m.inFlight = true
		return m, tea.Batch(refreshCmd(m.service), m.spin.Tick, tickCmd(m.interval))

	case refreshDoneMsg:
		m.inFlight = false
		m.loading = false
		m.lastErr = msg.err
		m.lastRefresh = time.Now()

		buffer := newRowBuffer()
		m.service.Push(buffer)
		m.title = buffer.title
		m.rows = buffer.rows
		m.snapshot = m.service.Snapshot()
		return m, nil

	case settingsSavedMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			return m, nil
		}
		m.inFlight = true
		return m, tea.Batch(refreshCmd(m.service), m.spin.Tick)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.inFlight || time.Since(m.lastRefresh) < refreshDebounce {
				return m, nil
			}
			m.inFlight = true
			return m, tea.Batch(refreshCmd(m.service), m.spin.Tick)
		case "s":
			settings := NewSettings()
			m.settings = &settings
			return m, settings.Init()
		}
	}

	return m, nil
}

func (m Model) updateSettings(msg tea.Msg) (tea.Model, tea.Cmd) {
	child, cmd := m.settings.Update(msg)
	m.settings = &child

	if !child.Done() {
		return m, cmd
	}

	creds, err := child.Credentials()
	m.settings = nil
	if errors.Is(err, ErrCanceled) {
		return m, nil
	}

	return m, saveCredentialsCmd(m.service, creds)
}

func (m Model) View() string {
	if m.settings != nil {
		return borderStyle.Render(m.settings.View())
	}

	var b strings.Builder

	switch {
	case m.loading:
		b.WriteString(fmt.Sprintf("%s Fetching usage...\n", m.spin.View()))
	default:
		b.WriteString(m.renderTitle())
		b.WriteString("\n\n")
		b.WriteString(m.renderRow(ports.RowSession, m.sessionBar, m.windowFor(ports.RowSession)))
		b.WriteString("\n")
		b.WriteString(m.renderRow(ports.RowWeekly, m.weeklyBar, m.windowFor(ports.RowWeekly)))
		b.WriteString("\n")
		b.WriteString(m.renderRow(ports.RowSonnet, m.sonnetBar, m.windowFor(ports.RowSonnet)))
		b.WriteString("\n")

		if m.lastErr != nil && !errors.Is(m.lastErr, domain.ErrNotConfigured) {
			b.WriteString("\n" + errorStyle.Render(m.lastErr.Error()) + "\n")
		}
	}

	b.WriteString("\n" + footerStyle.Render(m.footer()))

	return borderStyle.Render(b.String())
}

func (m Model) renderTitle() string {
	title := m.title
	if title == "" {
		title = "Claude: --%"
	}

	if title == domain.TitleSetup || title == domain.TitleError {
		suffix := ""
		if m.inFlight {
			suffix = " " + m.spin.View()
		}
		return sentinelStyle.Render(title) + suffix
	}

	return titleStyle.Render(title)
}

func (m Model) renderRow(id ports.RowID, bar progress.Model, window *domain.UsageWindow) string {
	text := m.rows[id]
	if text == "" {
		text = "—"
	}

	style := rowStyle
	if strings.HasSuffix(text, "N/A") || strings.HasSuffix(text, "Not configured") {
		style = missingStyle
	}

	if window == nil {
		return style.Render(text)
	}

	return bar.ViewAs(window.Percent()/100.0) + "  " + style.Render(text)
}

func (m Model) windowFor(id ports.RowID) *domain.UsageWindow {
	if m.snapshot == nil {
		return nil
	}

	switch id {
	case ports.RowSession:
		return m.snapshot.FiveHour
	case ports.RowWeekly:
		return m.snapshot.SevenDay
	case ports.RowSonnet:
		return m.snapshot.SevenDaySonnet
	default:
		return nil
	}
}

func (m Model) footer() string {
	return "r refresh · s settings · q quit"
}

// Run starts the watch host and blocks until the user quits.
func Run(service *application.Service, interval time.Duration) error {
	p := tea.NewProgram(NewModel(service, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
