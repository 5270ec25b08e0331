// Package middleware provides composable wrappers around an EntityStore,
// adding behavior such as at-rest encryption and PII masking of the
// collected onboarding inputs.
package middleware

import "github.com/gangway-io/gangway/pkg/ports"

// Middleware wraps an EntityStore to add behavior.
type Middleware func(ports.EntityStore) ports.EntityStore

// Chain applies middlewares outermost-first: Chain(store, A, B) returns
// A(B(store)).
func Chain(store ports.EntityStore, mws ...Middleware) ports.EntityStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
