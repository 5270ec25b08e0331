// Package file implements the durable EntityStore on the local filesystem:
// one JSON file per entity in a dedicated state directory, written atomically
// via a temporary sibling file and rename.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gangway-io/gangway/internal/logging"
	"github.com/gangway-io/gangway/pkg/adapters/record"
	"github.com/gangway-io/gangway/pkg/domain"
	"github.com/gangway-io/gangway/pkg/ports"
)

const stateExt = ".json"

// Store implements ports.EntityStore using the local filesystem.
//
// Writes are atomic (no reader ever observes a partial file) but concurrent
// writers to the same entity are NOT serialized: last writer wins. Wrap the
// store in session.Manager for multi-writer deployments.
type Store struct {
	basePath string
	logger   *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger used for corruption warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store rooted at basePath. If basePath is empty it defaults
// to ".gangway/state".
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = filepath.Join(".gangway", "state")
	}
	s := &Store{basePath: basePath, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) path(entityID string) string {
	return filepath.Join(s.basePath, entityID+stateExt)
}

// Initialize creates the record for an entity, failing with
// domain.ErrStateExists when one is already present. Callers needing an
// idempotent start go through session.Manager.LoadOrInitialize.
func (s *Store) Initialize(ctx context.Context, entityID, workflowID, initialStepID string) (*domain.EntityState, error) {
	if entityID == "" {
		return nil, fmt.Errorf("entityID cannot be empty")
	}

	if _, err := os.Stat(s.path(entityID)); err == nil {
		return nil, domain.ErrStateExists
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking existing state: %w", err)
	}

	state := domain.NewEntityState(entityID, workflowID, initialStepID)
	if err := s.write(entityID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Load retrieves the record. A missing file maps to domain.ErrStateNotFound;
// unparsable content is logged and treated the same way rather than
// propagated, so one corrupted record never wedges its entity permanently.
func (s *Store) Load(ctx context.Context, entityID string) (*domain.EntityState, error) {
	if entityID == "" {
		return nil, fmt.Errorf("entityID cannot be empty")
	}

	data, err := os.ReadFile(s.path(entityID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	var state domain.EntityState
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("corrupted state file treated as not found",
			"entity_id", entityID,
			"err", err,
		)
		return nil, domain.ErrStateNotFound
	}

	state.Normalize()
	return &state, nil
}

// Save replaces the record wholesale via the atomic write path. WorkflowID
// and CurrentStepID must be present; UpdatedAt is always refreshed.
func (s *Store) Save(ctx context.Context, entityID string, state *domain.EntityState) error {
	if entityID == "" {
		return fmt.Errorf("entityID cannot be empty")
	}
	if err := record.Validate(state); err != nil {
		return err
	}

	saved := state.Clone()
	saved.EntityID = entityID
	return s.write(entityID, saved)
}

// write serializes to a temporary sibling file, fsyncs, and renames it into
// the canonical path in one step so no concurrent reader ever observes a
// partial write. On failure the temp file is removed and the error propagates.
func (s *Store) write(entityID string, state *domain.EntityState) error {
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return fmt.Errorf("ensuring state directory: %w", err)
	}

	state.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	// Same directory as the destination so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(s.basePath, "tmp-"+entityID+"-*"+stateExt)
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp state file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path(entityID)); err != nil {
		return fmt.Errorf("renaming temp state file: %w", err)
	}
	return nil
}

// Update loads the record, shallow-merges the partial fields over it, and
// re-saves through the atomic path.
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

// Delete removes the record. Deleting an absent record is a silent no-op.
func (s *Store) Delete(ctx context.Context, entityID string) error {
	if entityID == "" {
		return fmt.Errorf("entityID cannot be empty")
	}
	if err := os.Remove(s.path(entityID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting state file: %w", err)
	}
	return nil
}

// Exists reports whether a record file is present.
func (s *Store) Exists(ctx context.Context, entityID string) (bool, error) {
	_, err := os.Stat(s.path(entityID))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("checking state file: %w", err)
}

// List returns all entity IDs. An absent backing directory yields an empty
// list. Transient temp files never show up as records.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("listing state directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != stateExt || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, stateExt))
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

var _ ports.EntityStore = (*Store)(nil)
