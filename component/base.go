package component

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/kbukum/statekit/errors"
	"github.com/kbukum/statekit/logger"
	"github.com/kbukum/statekit/observability"
	"github.com/kbukum/statekit/state"
)

// linkMu serializes parent/child link changes across all components so
// concurrent registrations cannot close a cycle.
var linkMu sync.Mutex

// Base is the lifecycle and state engine. Embed it in a component type and
// pass the component itself to New so its hooks are found.
type Base struct {
	impl      any
	id        string
	typeName  string
	opts      Options
	layer     Layer
	aggregate state.Aggregator
	log       *logger.Logger
	metrics   *observability.Metrics

	mu       sync.Mutex
	own      state.Info
	children []*entry
	parent   *Base

	// publishMu orders recompute and store for this node. Delivery to
	// subscribers happens after it is released.
	publishMu sync.Mutex
	stream    *stream

	runMu  sync.Mutex
	flight singleflight.Group
}

type entry struct {
	component Component
	key       any
	cancel    func()
	removed   bool
}

// holder is satisfied by *Base and by every type embedding it.
type holder interface {
	componentBase() *Base
}

var (
	_ Component = (*Base)(nil)
	_ Container = (*Base)(nil)
)

// New creates an engine for impl. impl may implement Initializer and
// Finalizer; it is usually the struct that embeds the returned *Base.
func New(impl any, opts ...Option) *Base {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	typeName := "Component"
	if impl != nil {
		typeName = reflect.TypeOf(impl).String()
	}
	if s.options.Domain == "" {
		s.options.Domain = domainOf(impl)
	}

	b := &Base{
		impl:      impl,
		id:        uuid.NewString(),
		typeName:  typeName,
		layer:     s.layer,
		aggregate: s.aggregator,
		metrics:   observability.DefaultMetrics(),
	}
	if b.aggregate == nil {
		b.aggregate = state.Aggregate
	}

	log := s.logger
	if log == nil {
		log = logger.Get("component")
	}
	b.log = log.WithFields(logger.Fields(
		logger.FieldDomain, s.options.Domain,
		logger.FieldInstanceID, b.id,
	))

	b.opts = sanitize(s.options, b.log)

	b.own = state.Info{
		Name:      b.opts.Domain,
		State:     state.Uninitialized,
		UpdatedOn: time.Now(),
	}
	b.stream = newStream(b.aggregate(b.own, nil))
	return b
}

// sanitize applies defaults and resets strategies it does not recognize.
func sanitize(o Options, log *logger.Logger) Options {
	o.ApplyDefaults()
	if err := o.Validate(); err == nil {
		return o
	}
	if o.InitializationStrategy != ParentFirst && o.InitializationStrategy != ChildrenFirst {
		log.Warn("unknown initialization strategy, using default", logger.Fields(logger.FieldStrategy, string(o.InitializationStrategy)))
		o.InitializationStrategy = ParentFirst
	}
	if o.ShutdownStrategy != ParentFirst && o.ShutdownStrategy != ChildrenFirst {
		log.Warn("unknown shutdown strategy, using default", logger.Fields(logger.FieldStrategy, string(o.ShutdownStrategy)))
		o.ShutdownStrategy = ParentFirst
	}
	if o.SubcomponentStrategy != Parallel && o.SubcomponentStrategy != Sequential {
		log.Warn("unknown subcomponent strategy, using default", logger.Fields(logger.FieldStrategy, string(o.SubcomponentStrategy)))
		o.SubcomponentStrategy = Parallel
	}
	return o
}

func domainOf(impl any) string {
	if impl == nil {
		return "Component"
	}
	t := reflect.TypeOf(impl)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "Component"
	}
	return t.Name()
}

func (b *Base) componentBase() *Base { return b }

// Name returns the domain label.
func (b *Base) Name() string { return b.opts.Domain }

// Domain returns the domain label.
func (b *Base) Domain() string { return b.opts.Domain }

// ID returns the instance id.
func (b *Base) ID() string { return b.id }

// Options returns the effective options.
func (b *Base) Options() Options { return b.opts }

// Logger returns the component's logger.
func (b *Base) Logger() *logger.Logger { return b.log }

// Parent returns the engine this component is registered under, or nil.
func (b *Base) Parent() *Base {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.parent
}

// OwnState returns the component's own record, without subcomponents.
func (b *Base) OwnState() state.Info {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.own
}

// ComponentState implements StatefulComponent.
func (b *Base) ComponentState() Stream { return b.stream }

// Snapshot returns the latest published aggregate.
func (b *Base) Snapshot() state.Info { return b.stream.Latest() }

// GetState implements StatefulComponent.
func (b *Base) GetState(_ context.Context) state.Info { return b.stream.Latest() }

// UpdateState implements StatefulComponent. The name of the record cannot be
// changed.
func (b *Base) UpdateState(_ context.Context, changes ...state.Change) state.Info {
	b.publishMu.Lock()

	b.mu.Lock()
	prev := b.own.State
	b.own = b.own.Apply(time.Now(), changes...)
	b.own.Name = b.opts.Domain
	own := b.own
	b.mu.Unlock()

	if prev != own.State {
		b.transitioned(prev, own)
	}
	agg, deliver := b.recomputeLocked()
	b.publishMu.Unlock()

	deliver()
	return agg
}

func (b *Base) transitioned(prev state.State, own state.Info) {
	fields := logger.Fields(
		logger.FieldPrevious, prev.String(),
		logger.FieldState, own.State.String(),
	)
	if own.Reason != "" {
		fields[logger.FieldReason] = own.Reason
	}
	if own.State == state.Failed {
		b.log.Warn("component state changed", fields)
	} else {
		b.log.Debug("component state changed", fields)
	}
	if b.metrics != nil {
		b.metrics.RecordTransition(context.Background(), b.opts.Domain, prev.String(), own.State.String())
	}
}

func (b *Base) recompute() state.Info {
	b.publishMu.Lock()
	agg, deliver := b.recomputeLocked()
	b.publishMu.Unlock()

	deliver()
	return agg
}

// recomputeLocked folds the own record with each child's latest snapshot and
// stores the result. Callers hold publishMu and call deliver after
// releasing it.
func (b *Base) recomputeLocked() (state.Info, func()) {
	b.mu.Lock()
	own := b.own
	entries := make([]*entry, len(b.children))
	copy(entries, b.children)
	b.mu.Unlock()

	var children []state.Info
	for _, e := range entries {
		info := e.component.ComponentState().Latest()
		if !info.State.Valid() {
			err := errors.AggregationInconsistency(info.Name, info.State.String())
			b.log.Warn("subcomponent reported an unknown state", logger.ErrorFields("aggregate", err))
		}
		children = append(children, info)
	}

	agg := b.aggregate(own, children)
	if len(children) == 0 {
		agg.Components = nil
	}
	return agg, b.stream.store(agg)
}

// RegisterSubcomponent implements Container.
func (b *Base) RegisterSubcomponent(c Component) error {
	if isNil(c) {
		return errors.Configuration("cannot register a nil subcomponent on %s", b.Name())
	}
	key, err := identity(c)
	if err != nil {
		return err
	}
	cb := baseOf(c)

	if err := b.link(cb, c); err != nil {
		return err
	}

	b.mu.Lock()
	for _, e := range b.children {
		if e.key == key {
			b.mu.Unlock()
			b.unlink(cb)
			return errors.Configuration("%s is already registered on %s", c.Name(), b.Name())
		}
	}
	e := &entry{component: c, key: key}
	b.children = append(b.children, e)
	b.mu.Unlock()

	cancel := c.ComponentState().Subscribe(func(state.Info) { b.recompute() })

	b.mu.Lock()
	if e.removed {
		b.mu.Unlock()
		cancel()
		return nil
	}
	e.cancel = cancel
	b.mu.Unlock()

	b.log.Debug("subcomponent registered", logger.Fields(logger.FieldComponent, c.Name()))
	return nil
}

// link claims cb for b, rejecting self links, cycles and second parents.
func (b *Base) link(cb *Base, c Component) error {
	if cb == nil {
		return nil
	}
	if cb == b {
		return errors.Configuration("%s cannot register itself", b.Name())
	}

	linkMu.Lock()
	defer linkMu.Unlock()

	for p := b.Parent(); p != nil; p = p.Parent() {
		if p == cb {
			return errors.Configuration("registering %s on %s would create a cycle", c.Name(), b.Name())
		}
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.parent {
	case nil:
		cb.parent = b
		return nil
	case b:
		return errors.Configuration("%s is already registered on %s", c.Name(), b.Name())
	default:
		return errors.Configuration("%s is already registered on %s", c.Name(), cb.parent.Name())
	}
}

func (b *Base) unlink(cb *Base) {
	if cb == nil {
		return
	}
	linkMu.Lock()
	defer linkMu.Unlock()
	cb.mu.Lock()
	if cb.parent == b {
		cb.parent = nil
	}
	cb.mu.Unlock()
}

// UnregisterSubcomponent implements Container. It reports whether c was
// registered.
func (b *Base) UnregisterSubcomponent(c Component) (bool, error) {
	if isNil(c) {
		return false, errors.Configuration("cannot unregister a nil subcomponent from %s", b.Name())
	}
	key, err := identity(c)
	if err != nil {
		return false, err
	}

	b.mu.Lock()
	idx := -1
	for i, e := range b.children {
		if e.key == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.mu.Unlock()
		return false, nil
	}
	e := b.children[idx]
	b.children = append(b.children[:idx:idx], b.children[idx+1:]...)
	e.removed = true
	cancel := e.cancel
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	b.unlink(baseOf(c))
	b.recompute()

	b.log.Debug("subcomponent unregistered", logger.Fields(logger.FieldComponent, c.Name()))
	return true, nil
}

// Subcomponents implements Container. The slice is in registration order.
func (b *Base) Subcomponents() []Component {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Component, len(b.children))
	for i, e := range b.children {
		out[i] = e.component
	}
	return out
}

func baseOf(c Component) *Base {
	if h, ok := c.(holder); ok {
		return h.componentBase()
	}
	return nil
}

func identity(c Component) (any, error) {
	if cb := baseOf(c); cb != nil {
		return cb, nil
	}
	if !reflect.TypeOf(c).Comparable() {
		return nil, errors.Configuration("subcomponent of type %T cannot be compared by identity", c)
	}
	return c, nil
}

func isNil(c Component) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		if v.IsNil() {
			return true
		}
	}
	if h, ok := c.(holder); ok {
		return h.componentBase() == nil
	}
	return false
}
