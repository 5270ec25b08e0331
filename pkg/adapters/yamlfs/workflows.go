package yamlfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gangway-io/gangway/internal/logging"
	"github.com/gangway-io/gangway/pkg/domain"
	"github.com/gangway-io/gangway/pkg/ports"
)

// WorkflowLoader implements ports.WorkflowLoader over a directory of YAML
// files, one workflow definition per file.
type WorkflowLoader struct {
	dir      string
	validate *validator.Validate
	cache    *Cache
	logger   *slog.Logger
}

// WorkflowLoaderOption configures the WorkflowLoader.
type WorkflowLoaderOption func(*WorkflowLoader)

// WithWorkflowCache installs a definition cache.
func WithWorkflowCache(cache *Cache) WorkflowLoaderOption {
	return func(l *WorkflowLoader) {
		l.cache = cache
	}
}

// WithWorkflowLogger sets the loader's logger.
func WithWorkflowLogger(logger *slog.Logger) WorkflowLoaderOption {
	return func(l *WorkflowLoader) {
		l.logger = logger
	}
}

// NewWorkflowLoader creates a loader over the given workflow directory.
func NewWorkflowLoader(dir string, opts ...WorkflowLoaderOption) *WorkflowLoader {
	l := &WorkflowLoader{
		dir:      dir,
		validate: validator.New(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadAll reads every workflow definition in the directory, in file-name
// order. A missing directory yields an empty list, not an error; a malformed
// definition aborts the load with enough context to fix the source.
func (l *WorkflowLoader) LoadAll(ctx context.Context) ([]domain.WorkflowDefinition, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.WorkflowDefinition{}, nil
		}
		return nil, fmt.Errorf("listing workflow directory: %w", err)
	}

	defs := make([]domain.WorkflowDefinition, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		def, err := l.loadOne(filepath.Join(l.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}

	l.logger.Debug("workflow definitions loaded", "dir", l.dir, "count", len(defs))
	return defs, nil
}

func (l *WorkflowLoader) loadOne(path string) (*domain.WorkflowDefinition, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("workflow %q: %w", path, domain.ErrDefinitionNotFound)
	}

	if cached, ok := l.cache.get(path, info.ModTime()); ok {
		if def, ok := cached.(*domain.WorkflowDefinition); ok {
			copied := *def
			return &copied, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow %q: %w", path, err)
	}

	var def domain.WorkflowDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, &domain.SchemaError{Ref: path, Reasons: []string{fmt.Sprintf("not valid YAML: %v", err)}}
	}
	if err := l.validate.Struct(&def); err != nil {
		return nil, &domain.SchemaError{Ref: path, Reasons: schemaReasons(err)}
	}

	cachedCopy := def
	l.cache.put(path, &cachedCopy, info.ModTime())
	return &def, nil
}

func isYAML(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}

var _ ports.WorkflowLoader = (*WorkflowLoader)(nil)
