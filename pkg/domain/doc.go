/*
Package domain contains the core domain models and business logic for the Gangway engine.

It defines the fundamental entities of the onboarding process: task and workflow
definitions (the declarative source material), the compiled runtime machine, and
the per-entity persisted state. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - TaskDefinition: A reusable, inheritable schema for one unit of data collection.
  - WorkflowDefinition: An ordered sequence of steps, grouped into stages.
  - CompiledStep / Machine: The denormalized, validated runtime graph.
  - EntityState: The durable snapshot of one entity's progress.

Pure algorithms that operate only on these models also live here: workflow
selection (SelectWorkflow) and progress calculation (WorkflowProgress,
StageProgress, StageCompleted).
*/
package domain
