/*
Package gangway is a deterministic onboarding workflow engine. It compiles
declarative task and workflow definitions into an executable graph, advances
entities (corporate or individual onboarding profiles) through data-collection
steps via ordered condition evaluation, and persists per-entity progress
durably so execution survives restarts and page reloads.

# Concept

A workflow is an ordered list of steps grouped into organizational stages.
Each step references a task: a reusable, inheritable schema describing the
fields to collect. The compiler resolves every task (merging its ancestor
chain), denormalizes it onto the step, and validates every transition target,
producing an immutable Machine. Given a machine, a step and the collected
inputs, the transition engine computes the next step deterministically: the
first matching condition wins, otherwise the default target applies.

Stages never gate execution; they exist only for progress reporting.

# Usage

	eng, err := gangway.New("./definitions")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	profile := domain.Profile{EntityType: "corporate", Jurisdiction: "DE"}

	state, machine, err := eng.Begin(ctx, "entity-42", profile)
	if err != nil {
		log.Fatal(err)
	}

	// The request layer renders machine.Step(state.CurrentStepID) externally,
	// collects input, then advances:
	result, state, err := eng.Advance(ctx, "entity-42", map[string]any{
		"legal_name": "Acme Holdings GmbH",
		"email":      "ops@acme.example",
	})

Every caller advances entities through Advance (which routes through the
single authoritative ExecuteTransition), never by computing transitions
locally.
*/
package gangway
