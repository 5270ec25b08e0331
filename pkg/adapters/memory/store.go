// Package memory provides in-memory implementations of the Gangway ports,
// used in tests and as reference implementations of the contracts.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gangway-io/gangway/pkg/adapters/record"
	"github.com/gangway-io/gangway/pkg/domain"
	"github.com/gangway-io/gangway/pkg/ports"
)

// Store implements ports.EntityStore in memory. Safe for concurrent use.
// Values are copied on read and write so callers never share state with the
// store.
type Store struct {
	mu   sync.RWMutex
	data map[string]*domain.EntityState
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{data: make(map[string]*domain.EntityState)}
}

// Initialize creates the record, failing on conflict.
func (s *Store) Initialize(ctx context.Context, entityID, workflowID, initialStepID string) (*domain.EntityState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[entityID]; exists {
		return nil, domain.ErrStateExists
	}
	state := domain.NewEntityState(entityID, workflowID, initialStepID)
	s.data[entityID] = state.Clone()
	return state, nil
}

// Load retrieves a copy of the record.
func (s *Store) Load(ctx context.Context, entityID string) (*domain.EntityState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[entityID]
	if !ok {
		return nil, domain.ErrStateNotFound
	}
	return state.Clone(), nil
}

// Save replaces the record wholesale, refreshing UpdatedAt.
func (s *Store) Save(ctx context.Context, entityID string, state *domain.EntityState) error {
	if err := record.Validate(state); err != nil {
		return err
	}

	stored := state.Clone()
	stored.EntityID = entityID
	stored.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[entityID] = stored
	return nil
}

// Update shallow-merges the given fields over the existing record.
func (s *Store) Update(ctx context.Context, entityID string, fields map[string]any) (*domain.EntityState, error) {
	current, err := s.Load(ctx, entityID)
	if err != nil {
		return nil, err
	}
	merged, err := record.Merge(current, fields)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, entityID, merged); err != nil {
		return nil, err
	}
	return s.Load(ctx, entityID)
}

// Delete removes the record; absent records are a no-op.
func (s *Store) Delete(ctx context.Context, entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, entityID)
	return nil
}

// Exists reports record presence.
func (s *Store) Exists(ctx context.Context, entityID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[entityID]
	return ok, nil
}

// List returns all entity IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

var _ ports.EntityStore = (*Store)(nil)
