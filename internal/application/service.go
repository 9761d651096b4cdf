package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/claude-usage-tracker/internal/domain"
	"github.com/bnema/claude-usage-tracker/internal/ports"
)

// Secret store keys. Both live under the fixed ServiceName namespace.
const (
	ServiceName   = "claude-usage-tracker"
	KeySessionKey = "session_key"
	KeyOrgID      = "org_id"
)

// SourceFactory builds a usage source for a set of credentials. Injected so
// the service can be tested without any network access.
type SourceFactory func(domain.Credentials) ports.UsageSource

// Service owns the refresh cycle and the credential lifecycle. It holds the
// only mutable cells in the system: the current usage source, the last
// rendered DisplayState, and the last successful snapshot. A mutex guards
// them because terminal hosts run fetch commands on their own goroutines.
type Service struct {
	store     ports.SecretStore
	clock     ports.Clock
	newSource SourceFactory

	mu       sync.Mutex
	source   ports.UsageSource
	state    domain.DisplayState
	snapshot *domain.UsageSnapshot
}

func NewService(store ports.SecretStore, newSource SourceFactory, clock ports.Clock) *Service {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Service{
		store:     store,
		clock:     clock,
		newSource: newSource,
	}
}

// LoadCredentials reads both credential keys from the secret store and
// rebuilds the usage source. Missing credentials leave the service in the
// not-configured state; that is not an error.
func (s *Service) LoadCredentials(ctx context.Context) error {
	sessionKey, err := s.store.Get(ctx, KeySessionKey)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			s.setSource(nil)
			return nil
		}
		return fmt.Errorf("load session key: %w", err)
	}

	orgID, err := s.store.Get(ctx, KeyOrgID)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			s.setSource(nil)
			return nil
		}
		return fmt.Errorf("load organization id: %w", err)
	}

	creds := domain.Credentials{SessionKey: sessionKey, OrgID: orgID}
	if creds.Validate() != nil {
		s.setSource(nil)
		return nil
	}

	s.setSource(s.newSource(creds))
	return nil
}

// SaveCredentials validates, persists both keys, and rebuilds the usage
// source. Validation failure writes nothing.
func (s *Service) SaveCredentials(ctx context.Context, creds domain.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	if err := s.store.Put(ctx, KeySessionKey, creds.SessionKey); err != nil {
		return fmt.Errorf("store session key: %w", err)
	}
	if err := s.store.Put(ctx, KeyOrgID, creds.OrgID); err != nil {
		return fmt.Errorf("store organization id: %w", err)
	}

	s.setSource(s.newSource(creds))
	return nil
}

// UseCredentials configures the usage source without touching the secret
// store. Used for environment-variable overrides.
func (s *Service) UseCredentials(creds domain.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	s.setSource(s.newSource(creds))
	return nil
}

func (s *Service) Configured() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.source != nil
}

// Refresh runs one cycle: fetch (when configured), reduce, remember. The
// returned error is informational; the DisplayState already encodes the
// failure for presentation, and the next tick is the retry mechanism.
func (s *Service) Refresh(ctx context.Context) (domain.DisplayState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()

	if s.source == nil {
		s.state = domain.Reduce(domain.Result{Err: domain.ErrNotConfigured}, s.state, now)
		return s.state, domain.ErrNotConfigured
	}

	snapshot, err := s.source.Fetch(ctx)
	if err != nil {
		s.state = domain.Reduce(domain.Result{Err: err}, s.state, now)
		return s.state, err
	}

	s.snapshot = &snapshot
	s.state = domain.Reduce(domain.Result{Snapshot: &snapshot}, s.state, now)
	return s.state, nil
}

func (s *Service) State() domain.DisplayState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Snapshot returns the last successfully fetched snapshot, nil before the
// first success. It is kept across fetch failures (stale-but-visible).
func (s *Service) Snapshot() *domain.UsageSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot
}

// Push writes the current state onto a menu surface.
func (s *Service) Push(surface ports.MenuSurface) {
	state := s.State()

	surface.SetTitle(state.Title)
	surface.SetRow(ports.RowSession, state.Session)
	surface.SetRow(ports.RowWeekly, state.Weekly)
	surface.SetRow(ports.RowSonnet, state.Sonnet)
}

func (s *Service) setSource(source ports.UsageSource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.source = source
}
