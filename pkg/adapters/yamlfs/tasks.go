// Package yamlfs loads task and workflow definitions from YAML files, one
// document per file, and validates their mandatory fields on load.
package yamlfs

import (
	"context"
	"errors"
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

// TaskLoader implements ports.TaskLoader over a directory of YAML files.
// References are paths relative to the base directory; the ".yaml" / ".yml"
// extension may be omitted.
type TaskLoader struct {
	baseDir  string
	validate *validator.Validate
	cache    *Cache
	logger   *slog.Logger
}

// TaskLoaderOption configures the TaskLoader.
type TaskLoaderOption func(*TaskLoader)

// WithTaskCache installs a definition cache.
func WithTaskCache(cache *Cache) TaskLoaderOption {
	return func(l *TaskLoader) {
		l.cache = cache
	}
}

// WithTaskLogger sets the loader's logger.
func WithTaskLogger(logger *slog.Logger) TaskLoaderOption {
	return func(l *TaskLoader) {
		l.logger = logger
	}
}

// NewTaskLoader creates a loader rooted at baseDir.
func NewTaskLoader(baseDir string, opts ...TaskLoaderOption) *TaskLoader {
	l := &TaskLoader{
		baseDir:  baseDir,
		validate: validator.New(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadTask parses the definition at ref. It fails with a wrapped
// domain.ErrDefinitionNotFound when the source is absent and with
// *domain.SchemaError when mandatory fields (id, name, component) are
// missing. The returned value is the caller's to keep.
func (l *TaskLoader) LoadTask(ctx context.Context, ref string) (*domain.TaskDefinition, error) {
	path, info, err := l.resolve(ref)
	if err != nil {
		return nil, err
	}

	if cached, ok := l.cache.get(path, info.ModTime()); ok {
		if task, ok := cached.(*domain.TaskDefinition); ok {
			return task.Clone(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task %q: %w", ref, err)
	}

	var task domain.TaskDefinition
	if err := yaml.Unmarshal(data, &task); err != nil {
		return nil, &domain.SchemaError{Ref: ref, Reasons: []string{fmt.Sprintf("not valid YAML: %v", err)}}
	}

	if err := l.validate.Struct(&task); err != nil {
		return nil, &domain.SchemaError{Ref: ref, Reasons: schemaReasons(err)}
	}

	l.cache.put(path, task.Clone(), info.ModTime())
	l.logger.Debug("task definition loaded", "ref", ref, "id", task.ID)

	return &task, nil
}

// resolve maps a reference to an existing file path, trying the bare ref
// first and then the known YAML extensions.
func (l *TaskLoader) resolve(ref string) (string, os.FileInfo, error) {
	candidates := []string{ref}
	if filepath.Ext(ref) == "" {
		candidates = []string{ref + ".yaml", ref + ".yml"}
	}

	for _, cand := range candidates {
		path := filepath.Join(l.baseDir, cand)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, info, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", nil, fmt.Errorf("resolving task %q: %w", ref, err)
		}
	}
	return "", nil, fmt.Errorf("task %q: %w", ref, domain.ErrDefinitionNotFound)
}

// schemaReasons flattens validator errors into stable human-readable reasons.
func schemaReasons(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			reasons = append(reasons, fmt.Sprintf("missing mandatory field %q", fe.Field()))
		case "min":
			reasons = append(reasons, fmt.Sprintf("field %q must not be empty", fe.Field()))
		default:
			reasons = append(reasons, fmt.Sprintf("field %q fails %q", fe.Field(), fe.Tag()))
		}
	}
	return reasons
}

var _ ports.TaskLoader = (*TaskLoader)(nil)
