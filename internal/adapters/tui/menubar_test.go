package tui

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/claude-usage-tracker/internal/application"
	"github.com/bnema/claude-usage-tracker/internal/domain"
	"github.com/bnema/claude-usage-tracker/internal/ports"
)

type memoryStore struct {
	secrets map[string]string
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	value, ok := m.secrets[key]
	if !ok {
		return "", fmt.Errorf("memory secret %q: %w", key, domain.ErrSecretNotFound)
	}
	return value, nil
}

func (m *memoryStore) Put(_ context.Context, key string, value string) error {
	if m.secrets == nil {
		m.secrets = map[string]string{}
	}
	m.secrets[key] = value
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	delete(m.secrets, key)
	return nil
}

type fakeSource struct {
	snapshot domain.UsageSnapshot
	err      error
}

func (f *fakeSource) Fetch(context.Context) (domain.UsageSnapshot, error) {
	if f.err != nil {
		return domain.UsageSnapshot{}, f.err
	}
	return f.snapshot, nil
}

func watchFixture(t *testing.T) (*application.Service, *fakeSource) {
	t.Helper()

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{snapshot: domain.UsageSnapshot{
		FiveHour: &domain.UsageWindow{PercentUsed: 73.4, ResetsAt: now.Add(125 * time.Minute).Format(time.RFC3339)},
		SevenDay: &domain.UsageWindow{PercentUsed: 10, ResetsAt: now.Add(50 * time.Minute).Format(time.RFC3339)},
	}}
	factory := func(domain.Credentials) ports.UsageSource { return source }
	service := application.NewService(&memoryStore{}, factory, nil)
	require.NoError(t, service.UseCredentials(domain.Credentials{SessionKey: "sk", OrgID: "org"}))

	return service, source
}

func runRefresh(t *testing.T, m Model) Model {
	t.Helper()

	msg := refreshCmd(m.service)()
	updated, _ := m.Update(msg)
	next, ok := updated.(Model)
	require.True(t, ok)
	return next
}

func TestRefreshDoneFillsTitleAndRowsFromService(t *testing.T) {
	t.Parallel()

	service, _ := watchFixture(t)
	m := NewModel(service, time.Minute)

	m = runRefresh(t, m)

	assert.False(t, m.inFlight)
	assert.Equal(t, "Claude: 73%", m.title)
	assert.Contains(t, m.rows[ports.RowSession], "Session: 73%")
	assert.Contains(t, m.rows[ports.RowWeekly], "Weekly: 10%")
	assert.Equal(t, "Sonnet: N/A", m.rows[ports.RowSonnet])
	require.NotNil(t, m.snapshot)

	view := m.View()
	assert.Contains(t, view, "Claude: 73%")
	assert.Contains(t, view, "Sonnet: N/A")
	assert.Contains(t, view, "r refresh")
}

func TestFetchFailureShowsErrorTitleAndKeepsRows(t *testing.T) {
	t.Parallel()

	service, source := watchFixture(t)
	m := NewModel(service, time.Minute)
	m = runRefresh(t, m)
	require.Equal(t, "Claude: 73%", m.title)

	source.err = fmt.Errorf("%w: status 503", domain.ErrFetchFailed)
	m = runRefresh(t, m)

	assert.Equal(t, domain.TitleError, m.title)
	assert.Contains(t, m.rows[ports.RowSession], "Session: 73%")
	assert.Contains(t, m.View(), "status 503")
}

func TestTickSchedulesRefreshWhenIdle(t *testing.T) {
	t.Parallel()

	service, _ := watchFixture(t)
	m := NewModel(service, time.Minute)
	m = runRefresh(t, m)

	updated, cmd := m.Update(tickMsg(time.Now()))
	next := updated.(Model)
	assert.True(t, next.inFlight)
	assert.NotNil(t, cmd)
}

func TestTickWhileRefreshInFlightOnlyReschedules(t *testing.T) {
	t.Parallel()

	service, _ := watchFixture(t)
	m := NewModel(service, time.Minute)
	require.True(t, m.inFlight)

	updated, cmd := m.Update(tickMsg(time.Now()))
	next := updated.(Model)
	assert.True(t, next.inFlight)
	assert.NotNil(t, cmd)
}

func TestManualRefreshIsDebounced(t *testing.T) {
	t.Parallel()

	service, _ := watchFixture(t)
	m := NewModel(service, time.Minute)
	m = runRefresh(t, m)
	m.lastRefresh = time.Now()

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	next := updated.(Model)
	assert.False(t, next.inFlight)
	assert.Nil(t, cmd)

	next.lastRefresh = time.Now().Add(-time.Minute)
	updated, cmd = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.True(t, updated.(Model).inFlight)
	assert.NotNil(t, cmd)
}

func TestQuitKey(t *testing.T) {
	t.Parallel()

	service, _ := watchFixture(t)
	m := NewModel(service, time.Minute)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestSettingsFlowSavesAndTriggersRefresh(t *testing.T) {
	t.Parallel()

	store := &memoryStore{}
	factory := func(domain.Credentials) ports.UsageSource { return &fakeSource{} }
	service := application.NewService(store, factory, nil)

	m := NewModel(service, time.Minute)
	m.loading = false
	m.inFlight = false

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = updated.(Model)
	require.NotNil(t, m.settings)
	assert.Contains(t, m.View(), "Configure Claude usage credentials")

	// walk the wizard
	steps := []tea.Msg{keyPress("enter")}
	for _, r := range "sk-ant-sid01-abc" {
		steps = append(steps, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	steps = append(steps, keyPress("enter"))
	for _, r := range "org-42" {
		steps = append(steps, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	for _, step := range steps {
		updated, _ = m.Update(step)
		m = updated.(Model)
	}

	updated, cmd := m.Update(keyPress("enter"))
	m = updated.(Model)
	assert.Nil(t, m.settings)
	require.NotNil(t, cmd)

	msg := cmd()
	saved, ok := msg.(settingsSavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.err)
	assert.Equal(t, "sk-ant-sid01-abc", store.secrets[application.KeySessionKey])
	assert.Equal(t, "org-42", store.secrets[application.KeyOrgID])
}

func TestSettingsCancelLeavesStoreUntouched(t *testing.T) {
	t.Parallel()

	store := &memoryStore{}
	factory := func(domain.Credentials) ports.UsageSource { return &fakeSource{} }
	service := application.NewService(store, factory, nil)

	m := NewModel(service, time.Minute)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = updated.(Model)
	require.NotNil(t, m.settings)

	updated, cmd := m.Update(keyPress("esc"))
	m = updated.(Model)
	assert.Nil(t, m.settings)
	assert.Nil(t, cmd)
	assert.Empty(t, store.secrets)
}
