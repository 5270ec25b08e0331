package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gangway-io/gangway/internal/logging"
	"github.com/gangway-io/gangway/pkg/domain"
	"github.com/gangway-io/gangway/pkg/ports"
)

// lockEntry holds the mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates entity-state access, ensuring safe concurrent
// read-modify-write sequences. Lock entries are reference counted so the map
// never grows with dead entities.
type Manager struct {
	store ports.EntityStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking on top of the in-process mutex.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides the distributed-lock TTL (default 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for deferred errors.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over the given store.
func NewManager(store ports.EntityStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release(entityID) after unlocking.
func (m *Manager) acquire(entityID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[entityID]
	if !exists {
		entry = &lockEntry{}
		m.locks[entityID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and drops the entry at zero.
func (m *Manager) release(entityID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[entityID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, entityID)
	}
}

// WithLock executes fn while holding the entity's lock (and the distributed
// lock, when configured).
func (m *Manager) WithLock(ctx context.Context, entityID string, fn func(context.Context) error) error {
	entry := m.acquire(entityID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(entityID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, entityID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("acquiring distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"entity_id", entityID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Initialize creates the entity record under lock.
func (m *Manager) Initialize(ctx context.Context, entityID, workflowID, initialStepID string) (*domain.EntityState, error) {
	var state *domain.EntityState
	err := m.WithLock(ctx, entityID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Initialize(ctx, entityID, workflowID, initialStepID)
		return err
	})
	return state, err
}

// LoadOrInitialize loads an entity's record, creating it at the given step
// when absent. Unlike Initialize it is idempotent.
func (m *Manager) LoadOrInitialize(ctx context.Context, entityID, workflowID, initialStepID string) (*domain.EntityState, error) {
	var state *domain.EntityState
	err := m.WithLock(ctx, entityID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, entityID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrStateNotFound) {
			return fmt.Errorf("checking entity existence: %w", err)
		}
		state, err = m.store.Initialize(ctx, entityID, workflowID, initialStepID)
		return err
	})
	return state, err
}

// Load retrieves the record under lock.
func (m *Manager) Load(ctx context.Context, entityID string) (*domain.EntityState, error) {
	var state *domain.EntityState
	err := m.WithLock(ctx, entityID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, entityID)
		return err
	})
	return state, err
}

// Save persists a full record under lock.
func (m *Manager) Save(ctx context.Context, entityID string, state *domain.EntityState) error {
	return m.WithLock(ctx, entityID, func(ctx context.Context) error {
		return m.store.Save(ctx, entityID, state)
	})
}

// Update applies a partial merge under lock.
func (m *Manager) Update(ctx context.Context, entityID string, fields map[string]any) (*domain.EntityState, error) {
	var state *domain.EntityState
	err := m.WithLock(ctx, entityID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Update(ctx, entityID, fields)
		return err
	})
	return state, err
}

// Delete removes the record under lock.
func (m *Manager) Delete(ctx context.Context, entityID string) error {
	return m.WithLock(ctx, entityID, func(ctx context.Context) error {
		return m.store.Delete(ctx, entityID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying entity store.
func (m *Manager) Store() ports.EntityStore {
	return m.store
}
