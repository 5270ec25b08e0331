package gangway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gangway-io/gangway/internal/compiler"
	"github.com/gangway-io/gangway/internal/logging"
	"github.com/gangway-io/gangway/internal/runtime"
	"github.com/gangway-io/gangway/pkg/adapters/file"
	"github.com/gangway-io/gangway/pkg/adapters/yamlfs"
	"github.com/gangway-io/gangway/pkg/domain"
	"github.com/gangway-io/gangway/pkg/expr"
	"github.com/gangway-io/gangway/pkg/ports"
	"github.com/gangway-io/gangway/pkg/session"
)

// ErrNoWorkflows is returned when no workflow definitions are available for
// selection.
var ErrNoWorkflows = errors.New("no workflow definitions available")

// ErrWorkflowComplete is returned when advancing an entity that has already
// reached the terminal step.
var ErrWorkflowComplete = errors.New("workflow already complete")

// Engine is the high-level entry point for the Gangway library. It wires the
// definition loaders, compiler, transition engine and state store, and
// exposes the service-level operations the request layer consumes.
type Engine struct {
	tasks     ports.TaskLoader
	workflows ports.WorkflowLoader
	store     ports.EntityStore
	locker    ports.DistributedLocker
	sessions  *session.Manager
	compiler  *compiler.Compiler
	runtime   *runtime.Engine
	evaluator *expr.Evaluator
	hooks     domain.LifecycleHooks
	logger    *slog.Logger

	mu       sync.RWMutex
	machines map[string]*domain.Machine
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithTaskLoader injects a custom task loader, bypassing the default
// filesystem initialization.
func WithTaskLoader(l ports.TaskLoader) Option {
	return func(e *Engine) {
		e.tasks = l
	}
}

// WithWorkflowLoader injects a custom workflow loader.
func WithWorkflowLoader(l ports.WorkflowLoader) Option {
	return func(e *Engine) {
		e.workflows = l
	}
}

// WithStore injects a custom entity store (redis, memory, or a middleware
// chain around one).
func WithStore(s ports.EntityStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker enables distributed locking on the session manager.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a Gangway engine rooted at a definitions directory with
// the layout rootDir/tasks, rootDir/workflows and rootDir/state. Any of the
// three backends can be replaced via options; rootDir may be empty when all
// of them are injected.
func New(rootDir string, opts ...Option) (*Engine, error) {
	eng := &Engine{machines: make(map[string]*domain.Machine)}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	if (eng.tasks == nil || eng.workflows == nil || eng.store == nil) && rootDir == "" {
		return nil, fmt.Errorf("rootDir is required unless loaders and store are injected")
	}

	if eng.tasks == nil {
		eng.tasks = yamlfs.NewTaskLoader(filepath.Join(rootDir, "tasks"),
			yamlfs.WithTaskLogger(eng.logger))
	}
	if eng.workflows == nil {
		eng.workflows = yamlfs.NewWorkflowLoader(filepath.Join(rootDir, "workflows"),
			yamlfs.WithWorkflowLogger(eng.logger))
	}
	if eng.store == nil {
		eng.store = file.New(filepath.Join(rootDir, "state"), file.WithLogger(eng.logger))
	}

	sessionOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}
	eng.sessions = session.NewManager(eng.store, sessionOpts...)

	eng.evaluator = expr.New(expr.WithLogger(eng.logger))
	eng.compiler = compiler.New(eng.tasks, compiler.WithLogger(eng.logger))
	eng.runtime = runtime.NewEngine(eng.evaluator,
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
	)

	return eng, nil
}

// Workflows returns every loadable workflow definition.
func (e *Engine) Workflows(ctx context.Context) ([]domain.WorkflowDefinition, error) {
	return e.workflows.LoadAll(ctx)
}

// MachineFor selects the workflow applicable to the profile and compiles it.
// Compiled machines are cached by workflow ID and version.
func (e *Engine) MachineFor(ctx context.Context, profile domain.Profile) (*domain.Machine, error) {
	defs, err := e.workflows.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	def := domain.SelectWorkflow(defs, profile)
	if def == nil {
		return nil, ErrNoWorkflows
	}
	return e.compileCached(ctx, def)
}

// Compile compiles a single definition, bypassing selection and the cache.
func (e *Engine) Compile(ctx context.Context, def *domain.WorkflowDefinition) (*domain.Machine, error) {
	return e.compiler.Compile(ctx, def)
}

func (e *Engine) compileCached(ctx context.Context, def *domain.WorkflowDefinition) (*domain.Machine, error) {
	key := def.ID + "@" + def.Version

	e.mu.RLock()
	cached, ok := e.machines[key]
	e.mu.RUnlock()
	if ok {
		return cached, nil
	}

	machine, err := e.compiler.Compile(ctx, def)
	if err != nil {
		if e.hooks.OnCompileError != nil {
			e.hooks.OnCompileError(ctx, &domain.CompileErrorEvent{
				Timestamp:  time.Now().UTC(),
				Type:       domain.EventCompileError,
				WorkflowID: def.ID,
				Err:        err.Error(),
			})
		}
		return nil, err
	}

	e.mu.Lock()
	e.machines[key] = machine
	e.mu.Unlock()
	return machine, nil
}

// machineByID compiles the machine for a stored workflow ID.
func (e *Engine) machineByID(ctx context.Context, workflowID string) (*domain.Machine, error) {
	defs, err := e.workflows.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range defs {
		if defs[i].ID == workflowID {
			return e.compileCached(ctx, &defs[i])
		}
	}
	return nil, fmt.Errorf("workflow %q: %w", workflowID, domain.ErrDefinitionNotFound)
}

// Begin selects and compiles the applicable workflow, then initializes the
// entity's record at the machine's initial step, snapshotting the profile.
// It fails with domain.ErrStateExists if the entity already has a record.
func (e *Engine) Begin(ctx context.Context, entityID string, profile domain.Profile) (*domain.EntityState, *domain.Machine, error) {
	machine, err := e.MachineFor(ctx, profile)
	if err != nil {
		return nil, nil, err
	}

	var state *domain.EntityState
	err = e.sessions.WithLock(ctx, entityID, func(ctx context.Context) error {
		state, err = e.store.Initialize(ctx, entityID, machine.WorkflowID, machine.InitialStepID)
		if err != nil {
			return err
		}
		state.Profile = &profile
		if first, ok := machine.Step(machine.InitialStepID); ok {
			state.CurrentStageID = first.Stage
		}
		return e.store.Save(ctx, entityID, state)
	})
	if err != nil {
		return nil, nil, err
	}
	return state, machine, nil
}

// Advance merges the submitted inputs into the entity's record and executes
// its current step's transition under the entity lock: the store-level
// read-modify-write and the engine-level validate-then-advance happen as one
// serialized sequence.
func (e *Engine) Advance(ctx context.Context, entityID string, inputs map[string]any) (*runtime.TransitionResult, *domain.EntityState, error) {
	var (
		result *runtime.TransitionResult
		state  *domain.EntityState
	)

	err := e.sessions.WithLock(ctx, entityID, func(ctx context.Context) error {
		var err error
		state, err = e.store.Load(ctx, entityID)
		if err != nil {
			return err
		}
		if state.CurrentStepID == domain.TerminalStep {
			return ErrWorkflowComplete
		}

		machine, err := e.machineByID(ctx, state.WorkflowID)
		if err != nil {
			return err
		}
		step, ok := machine.Step(state.CurrentStepID)
		if !ok {
			return fmt.Errorf("entity %q: current step %q not in workflow %q",
				entityID, state.CurrentStepID, machine.WorkflowID)
		}

		for k, v := range inputs {
			state.Inputs[k] = v
		}

		result, err = e.runtime.ExecuteTransition(ctx, machine, step, state.Inputs)
		if err != nil {
			return err
		}

		e.applyTransition(state, machine, step, result)
		return e.store.Save(ctx, entityID, state)
	})
	if err != nil {
		return nil, nil, err
	}
	return result, state, nil
}

// applyTransition folds a transition result into the entity record:
// completion lists, current step and stage.
func (e *Engine) applyTransition(state *domain.EntityState, machine *domain.Machine, step *domain.CompiledStep, result *runtime.TransitionResult) {
	if !state.HasCompletedStep(step.ID) {
		state.CompletedSteps = append(state.CompletedSteps, step.ID)
	}

	state.CurrentStepID = result.NextStepID
	if result.NextStep != nil {
		state.CurrentStageID = result.NextStep.Stage
	} else {
		state.CurrentStageID = ""
	}

	for _, stage := range machine.Stages {
		if !domain.StageCompleted(machine, stage.ID, state.CompletedSteps) {
			continue
		}
		seen := false
		for _, id := range state.CompletedStages {
			if id == stage.ID {
				seen = true
				break
			}
		}
		if !seen {
			state.CompletedStages = append(state.CompletedStages, stage.ID)
		}
	}
}

// Progress reports the workflow- and stage-level completion ratios for an
// entity. Purely read-only; never consulted by transitions.
func (e *Engine) Progress(ctx context.Context, entityID string) (domain.Progress, []domain.StageReport, error) {
	state, err := e.sessions.Load(ctx, entityID)
	if err != nil {
		return domain.Progress{}, nil, err
	}
	machine, err := e.machineByID(ctx, state.WorkflowID)
	if err != nil {
		return domain.Progress{}, nil, err
	}
	return domain.WorkflowProgress(machine, state.CompletedSteps),
		domain.StageProgress(machine, state.CompletedSteps),
		nil
}

// ValidateInputs runs the per-field checks of an entity's current step
// against candidate inputs, for diagnostics endpoints.
func (e *Engine) ValidateInputs(step *domain.CompiledStep, inputs map[string]any) runtime.ValidationResult {
	return e.runtime.ValidateInputs(step, inputs)
}

// Runtime exposes the transition engine for callers that manage machines and
// state themselves.
func (e *Engine) Runtime() *runtime.Engine {
	return e.runtime
}

// Sessions exposes the session manager for direct state CRUD.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}
