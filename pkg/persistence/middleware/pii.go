package middleware

import (
	"context"
	"regexp"

	"github.com/gangway-io/gangway/pkg/domain"
	"github.com/gangway-io/gangway/pkg/ports"
)

type piiMiddleware struct {
	next     ports.EntityStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks input values whose keys
// match any of the given patterns before they reach the underlying store.
// The in-memory state used by the engine is left untouched.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.EntityStore) ports.EntityStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Initialize(ctx context.Context, entityID, workflowID, initialStepID string) (*domain.EntityState, error) {
	return m.next.Initialize(ctx, entityID, workflowID, initialStepID)
}

func (m *piiMiddleware) Load(ctx context.Context, entityID string) (*domain.EntityState, error) {
	return m.next.Load(ctx, entityID)
}

func (m *piiMiddleware) Save(ctx context.Context, entityID string, state *domain.EntityState) error {
	return m.next.Save(ctx, entityID, m.masked(state))
}

// Update delegates to the inner store after masking the incoming fields, so
// a merge never reintroduces a plaintext value for a masked key.
func (m *piiMiddleware) Update(ctx context.Context, entityID string, fields map[string]any) (*domain.EntityState, error) {
	if inputs, ok := fields["inputs"].(map[string]any); ok {
		masked := deepCopyMap(inputs)
		maskMap(masked, m.patterns)
		fields = deepCopyMap(fields)
		fields["inputs"] = masked
	}
	return m.next.Update(ctx, entityID, fields)
}

func (m *piiMiddleware) Delete(ctx context.Context, entityID string) error {
	return m.next.Delete(ctx, entityID)
}

func (m *piiMiddleware) Exists(ctx context.Context, entityID string) (bool, error) {
	return m.next.Exists(ctx, entityID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) masked(state *domain.EntityState) *domain.EntityState {
	cloned := state.Clone()
	// Clone copies the inputs map one level deep; nested maps are still
	// shared with the caller, so copy them before masking in place.
	cloned.Inputs = deepCopyMap(state.Inputs)
	maskMap(cloned.Inputs, m.patterns)
	return cloned
}

// Helpers

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = "***"
				break
			}
		}

		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
