package component

import (
	"context"

	"github.com/kbukum/statekit/state"
)

// StatefulComponent publishes an observable, aggregated state.
type StatefulComponent interface {
	// Name returns the domain label of the component.
	Name() string

	// ComponentState returns the replaying stream of published snapshots.
	ComponentState() Stream

	// GetState returns the latest published snapshot.
	GetState(ctx context.Context) state.Info

	// UpdateState merges changes into the component's own record and
	// returns the snapshot published as a result.
	UpdateState(ctx context.Context, changes ...state.Change) state.Info
}

// ManageableComponent has an idempotent, concurrency-safe lifecycle.
type ManageableComponent interface {
	Initialize(ctx context.Context) error
	IsReady(ctx context.Context) bool
	Shutdown(ctx context.Context) error
}

// Component is what a Container accepts as a subcomponent.
type Component interface {
	StatefulComponent
	ManageableComponent
}

// Container owns an ordered set of subcomponents.
type Container interface {
	RegisterSubcomponent(c Component) error
	UnregisterSubcomponent(c Component) (bool, error)
	Subcomponents() []Component
}

// Initializer is implemented by components with setup logic.
type Initializer interface {
	OnInitialize(ctx context.Context) error
}

// Finalizer is implemented by components with teardown logic.
type Finalizer interface {
	OnShutdown(ctx context.Context) error
}

// Layer is a previously applied lifecycle layer that runs before the
// engine's own steps.
type Layer interface {
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// LayerFuncs adapts plain functions to Layer. Nil functions are no-ops.
type LayerFuncs struct {
	InitializeFunc func(ctx context.Context) error
	ShutdownFunc   func(ctx context.Context) error
}

// Initialize implements Layer.
func (l LayerFuncs) Initialize(ctx context.Context) error {
	if l.InitializeFunc == nil {
		return nil
	}
	return l.InitializeFunc(ctx)
}

// Shutdown implements Layer.
func (l LayerFuncs) Shutdown(ctx context.Context) error {
	if l.ShutdownFunc == nil {
		return nil
	}
	return l.ShutdownFunc(ctx)
}
