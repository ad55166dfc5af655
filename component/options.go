package component

import (
	"github.com/kbukum/statekit/logger"
	"github.com/kbukum/statekit/state"
	"github.com/kbukum/statekit/validation"
)

// Strategy orders a component's own step relative to its subcomponents.
type Strategy string

const (
	ParentFirst   Strategy = "parent-first"
	ChildrenFirst Strategy = "children-first"
)

// SubcomponentStrategy decides how subcomponents are driven.
type SubcomponentStrategy string

const (
	// Parallel starts every subcomponent concurrently. The first failure
	// cancels the context handed to the siblings.
	Parallel SubcomponentStrategy = "parallel"
	// Sequential drives subcomponents one at a time in registration order.
	Sequential SubcomponentStrategy = "sequential"
)

// Options is the per-instance configuration of a component.
type Options struct {
	Domain                 string               `yaml:"domain" mapstructure:"domain" json:"domain,omitempty"`
	InitializationStrategy Strategy             `yaml:"initialization_strategy" mapstructure:"initialization_strategy" json:"initializationStrategy" validate:"omitempty,oneof=parent-first children-first"`
	ShutdownStrategy       Strategy             `yaml:"shutdown_strategy" mapstructure:"shutdown_strategy" json:"shutDownStrategy" validate:"omitempty,oneof=parent-first children-first"`
	SubcomponentStrategy   SubcomponentStrategy `yaml:"subcomponent_strategy" mapstructure:"subcomponent_strategy" json:"subcomponentStrategy" validate:"omitempty,oneof=parallel sequential"`
	LazyStartup            bool                 `yaml:"lazy_startup" mapstructure:"lazy_startup" json:"lazyStartup,omitempty"`
}

// ApplyDefaults fills unset strategies.
func (o *Options) ApplyDefaults() {
	if o.InitializationStrategy == "" {
		o.InitializationStrategy = ParentFirst
	}
	if o.ShutdownStrategy == "" {
		o.ShutdownStrategy = ParentFirst
	}
	if o.SubcomponentStrategy == "" {
		o.SubcomponentStrategy = Parallel
	}
}

// Validate rejects unknown strategy names.
func (o *Options) Validate() error {
	return validation.Validate(o)
}

// merge copies the set fields of other into o.
func (o *Options) merge(other Options) {
	if other.Domain != "" {
		o.Domain = other.Domain
	}
	if other.InitializationStrategy != "" {
		o.InitializationStrategy = other.InitializationStrategy
	}
	if other.ShutdownStrategy != "" {
		o.ShutdownStrategy = other.ShutdownStrategy
	}
	if other.SubcomponentStrategy != "" {
		o.SubcomponentStrategy = other.SubcomponentStrategy
	}
	if other.LazyStartup {
		o.LazyStartup = true
	}
}

// settings collects everything New accepts.
type settings struct {
	options    Options
	layer      Layer
	aggregator state.Aggregator
	logger     *logger.Logger
}

// Option configures a component during creation.
type Option func(*settings)

// WithDomain sets the domain label. Defaults to the type name of the value
// passed to New.
func WithDomain(domain string) Option {
	return func(s *settings) { s.options.Domain = domain }
}

// WithInitializationStrategy sets whether the own hook runs before or after
// subcomponents on Initialize.
func WithInitializationStrategy(st Strategy) Option {
	return func(s *settings) { s.options.InitializationStrategy = st }
}

// WithShutdownStrategy sets whether the own hook runs before or after
// subcomponents on Shutdown.
func WithShutdownStrategy(st Strategy) Option {
	return func(s *settings) { s.options.ShutdownStrategy = st }
}

// WithSubcomponentStrategy sets how subcomponents are driven.
func WithSubcomponentStrategy(st SubcomponentStrategy) Option {
	return func(s *settings) { s.options.SubcomponentStrategy = st }
}

// WithLazyStartup makes IsReady initialize an uninitialized component.
func WithLazyStartup() Option {
	return func(s *settings) { s.options.LazyStartup = true }
}

// WithOptions merges a whole Options value, typically loaded from config.
// Empty fields leave the current values untouched.
func WithOptions(o Options) Option {
	return func(s *settings) { s.options.merge(o) }
}

// WithLayer chains a previously applied lifecycle layer. Its Initialize and
// Shutdown run before the engine's own steps.
func WithLayer(l Layer) Option {
	return func(s *settings) { s.layer = l }
}

// WithAggregator replaces the aggregation policy.
func WithAggregator(a state.Aggregator) Option {
	return func(s *settings) { s.aggregator = a }
}

// WithLogger sets the logger used by the component.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.logger = l }
}
