// Package redis implements the EntityStore and DistributedLocker ports on
// Redis, for deployments where several replicas share onboarding state.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/gangway-io/gangway/internal/logging"
	"github.com/gangway-io/gangway/pkg/adapters/record"
	"github.com/gangway-io/gangway/pkg/domain"
	"github.com/gangway-io/gangway/pkg/ports"
)

// noExpiry is the index score used when records never expire.
const noExpiry = 4102444800 // 2100-01-01

// Store implements ports.EntityStore using Redis. Records are JSON values
// with an accompanying ZSET index scored by expiry, pruned lazily on List.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithTTL sets an expiration for entity records.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithLogger sets the logger used for corruption warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store from an existing client.
func NewStore(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: "gangway:entity:",
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(entityID string) string {
	return s.prefix + entityID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Initialize creates the record via SET NX, which makes the conflict check
// atomic even across replicas.
func (s *Store) Initialize(ctx context.Context, entityID, workflowID, initialStepID string) (*domain.EntityState, error) {
	state := domain.NewEntityState(entityID, workflowID, initialStepID)
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("marshaling state: %w", err)
	}

	created, err := s.client.SetNX(ctx, s.key(entityID), data, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("initializing state in redis: %w", err)
	}
	if !created {
		return nil, domain.ErrStateExists
	}

	if err := s.index(ctx, entityID); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *Store) index(ctx context.Context, entityID string) error {
	score := float64(noExpiry)
	if s.ttl > 0 {
		score = float64(time.Now().Add(s.ttl).Unix())
	}
	if err := s.client.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: entityID}).Err(); err != nil {
		return fmt.Errorf("indexing entity: %w", err)
	}
	return nil
}

// Load retrieves the record. Unparsable content is logged and reported as
// not found, matching the file store's leniency.
func (s *Store) Load(ctx context.Context, entityID string) (*domain.EntityState, error) {
	val, err := s.client.Get(ctx, s.key(entityID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("loading state from redis: %w", err)
	}

	var state domain.EntityState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		s.logger.Warn("corrupted state record treated as not found",
			"entity_id", entityID,
			"err", err,
		)
		return nil, domain.ErrStateNotFound
	}
	state.Normalize()
	return &state, nil
}

// Save replaces the record wholesale, refreshing UpdatedAt. The value write
// and index update go through one pipeline.
func (s *Store) Save(ctx context.Context, entityID string, state *domain.EntityState) error {
	if err := record.Validate(state); err != nil {
		return err
	}

	saved := state.Clone()
	saved.EntityID = entityID
	saved.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	score := float64(noExpiry)
	if s.ttl > 0 {
		score = float64(time.Now().Add(s.ttl).Unix())
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(entityID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: entityID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("saving state to redis: %w", err)
	}
	return nil
}

// Update loads, shallow-merges, and re-saves the record.
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

// Delete removes the record and its index entry. Absent records are a no-op.
func (s *Store) Delete(ctx context.Context, entityID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(entityID))
	pipe.ZRem(ctx, s.indexKey(), entityID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deleting state from redis: %w", err)
	}
	return nil
}

// Exists reports record presence.
func (s *Store) Exists(ctx context.Context, entityID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(entityID)).Result()
	if err != nil {
		return false, fmt.Errorf("checking state in redis: %w", err)
	}
	return n > 0, nil
}

// List returns known entity IDs, lazily pruning expired index entries first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("pruning expired entities: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	return ids, nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

var _ ports.EntityStore = (*Store)(nil)
