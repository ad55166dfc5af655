// Package component turns any Go type into a tree-aware, lifecycle-managed
// component with an observable, aggregated health state.
//
// A component embeds *Base and hands itself to New so the engine can find
// its lifecycle hooks:
//
//	type UserRepository struct {
//	    *component.Base
//	    db *sql.DB
//	}
//
//	func NewUserRepository(db *sql.DB) *UserRepository {
//	    r := &UserRepository{db: db}
//	    r.Base = component.New(r)
//	    return r
//	}
//
//	func (r *UserRepository) OnInitialize(ctx context.Context) error {
//	    return r.db.PingContext(ctx)
//	}
//
// # Lifecycle
//
// Initialize and Shutdown are idempotent and coalesced: concurrent callers
// share one run and observe the same outcome. The own hook runs before or
// after the subcomponents depending on the configured Strategy, and
// subcomponents are driven in parallel or in registration order depending
// on the SubcomponentStrategy.
//
// A failing hook marks its own component FAILED and returns an error to the
// caller of that component. Failures of subcomponents are not returned by
// the parent; they surface through the published state, where a healthy
// parent with an unhealthy child is DEGRADED.
//
// # State
//
// Every component publishes a state.Info snapshot on a replaying Stream.
// Leaves publish their own record; parents publish the aggregate of their
// own record and the latest snapshot of each subcomponent. Children notify
// parents, never the reverse.
package component
