package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/claude-usage-tracker/internal/domain"
	"github.com/bnema/claude-usage-tracker/internal/ports"
)

type memoryStore struct {
	mu      sync.Mutex
	secrets map[string]string
	putErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{secrets: map[string]string{}}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.secrets[key]
	if !ok {
		return "", fmt.Errorf("memory secret %q: %w", key, domain.ErrSecretNotFound)
	}
	return value, nil
}

func (m *memoryStore) Put(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.putErr != nil {
		return m.putErr
	}
	m.secrets[key] = value
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.secrets, key)
	return nil
}

type fakeSource struct {
	snapshot domain.UsageSnapshot
	err      error
	calls    int
}

func (f *fakeSource) Fetch(context.Context) (domain.UsageSnapshot, error) {
	f.calls++
	if f.err != nil {
		return domain.UsageSnapshot{}, f.err
	}
	return f.snapshot, nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type recordingSurface struct {
	title string
	rows  map[ports.RowID]string
}

func (r *recordingSurface) SetTitle(title string) {
	r.title = title
}

func (r *recordingSurface) SetRow(id ports.RowID, text string) {
	if r.rows == nil {
		r.rows = map[ports.RowID]string{}
	}
	r.rows[id] = text
}

func testService(store ports.SecretStore, source ports.UsageSource, now time.Time) *Service {
	factory := func(domain.Credentials) ports.UsageSource { return source }
	return NewService(store, factory, fixedClock{now: now})
}

func TestRefreshWithoutCredentialsRendersSetupState(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	service := testService(newMemoryStore(), &fakeSource{}, now)

	require.NoError(t, service.LoadCredentials(context.Background()))
	assert.False(t, service.Configured())

	state, err := service.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.Equal(t, domain.TitleSetup, state.Title)
	assert.Equal(t, "Session: Not configured", state.Session)
	assert.Equal(t, "Weekly: Not configured", state.Weekly)
	assert.Equal(t, "Sonnet: Not configured", state.Sonnet)
}

func TestSaveCredentialsThenRefresh(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	store := newMemoryStore()
	source := &fakeSource{snapshot: domain.UsageSnapshot{
		FiveHour: &domain.UsageWindow{PercentUsed: 73.4, ResetsAt: now.Add(125 * time.Minute).Format(time.RFC3339)},
		SevenDay: &domain.UsageWindow{PercentUsed: 10, ResetsAt: now.Add(50 * time.Minute).Format(time.RFC3339)},
	}}
	service := testService(store, source, now)

	err := service.SaveCredentials(context.Background(), domain.Credentials{
		SessionKey: "sk-ant-sid01-abc",
		OrgID:      "org-123",
	})
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-sid01-abc", store.secrets[KeySessionKey])
	assert.Equal(t, "org-123", store.secrets[KeyOrgID])
	assert.True(t, service.Configured())

	state, err := service.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Claude: 73%", state.Title)
	assert.Equal(t, "Session: 73% (resets in 2h 5m)", state.Session)
	assert.Equal(t, "Weekly: 10% (resets in 50m)", state.Weekly)
	assert.Equal(t, "Sonnet: N/A", state.Sonnet)
	assert.Equal(t, 1, source.calls)
}

func TestSaveCredentialsRejectsEmptyFieldsWithoutStoreWrite(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	service := testService(store, &fakeSource{}, time.Now())

	err := service.SaveCredentials(context.Background(), domain.Credentials{SessionKey: "sk-only"})
	assert.ErrorIs(t, err, domain.ErrEmptyCredentials)
	assert.Empty(t, store.secrets)
	assert.False(t, service.Configured())
}

func TestLoadCredentialsBuildsSourceFromStore(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.secrets[KeySessionKey] = "sk-ant-sid01-abc"
	store.secrets[KeyOrgID] = "org-123"

	var got domain.Credentials
	factory := func(creds domain.Credentials) ports.UsageSource {
		got = creds
		return &fakeSource{}
	}
	service := NewService(store, factory, nil)

	require.NoError(t, service.LoadCredentials(context.Background()))
	assert.True(t, service.Configured())
	assert.Equal(t, "sk-ant-sid01-abc", got.SessionKey)
	assert.Equal(t, "org-123", got.OrgID)
}

func TestLoadCredentialsTreatsPartialStoreAsUnconfigured(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.secrets[KeySessionKey] = "sk-ant-sid01-abc"

	service := testService(store, &fakeSource{}, time.Now())
	require.NoError(t, service.LoadCredentials(context.Background()))
	assert.False(t, service.Configured())
}

func TestRefreshFailureKeepsStaleRowsAndSnapshot(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{snapshot: domain.UsageSnapshot{
		FiveHour: &domain.UsageWindow{PercentUsed: 40, ResetsAt: now.Add(time.Hour).Format(time.RFC3339)},
	}}
	service := testService(newMemoryStore(), source, now)
	require.NoError(t, service.UseCredentials(domain.Credentials{SessionKey: "sk", OrgID: "org"}))

	first, err := service.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Claude: 40%", first.Title)

	source.err = fmt.Errorf("%w: status 503", domain.ErrFetchFailed)
	second, err := service.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Equal(t, domain.TitleError, second.Title)
	assert.Equal(t, first.Session, second.Session)
	assert.Equal(t, first.Weekly, second.Weekly)

	require.NotNil(t, service.Snapshot())
	assert.InDelta(t, 40, service.Snapshot().FiveHour.Percent(), 0.001)
}

func TestPushWritesStateToSurface(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	service := testService(newMemoryStore(), &fakeSource{}, now)
	_, _ = service.Refresh(context.Background())

	surface := &recordingSurface{}
	service.Push(surface)

	assert.Equal(t, domain.TitleSetup, surface.title)
	assert.Equal(t, "Session: Not configured", surface.rows[ports.RowSession])
	assert.Equal(t, "Weekly: Not configured", surface.rows[ports.RowWeekly])
	assert.Equal(t, "Sonnet: Not configured", surface.rows[ports.RowSonnet])
}
