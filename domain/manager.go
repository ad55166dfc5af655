package domain

import (
	"path/filepath"
	"runtime"

	"github.com/kbukum/statekit/component"
)

// StateManager is a domain manager as seen by discovery and wiring.
type StateManager interface {
	component.Component
	component.Container

	// SourceLocation is the file that constructed the manager.
	SourceLocation() string

	// VirtualPath is an explicitly declared hierarchical path, or "".
	VirtualPath() string
}

// Manager is the engine specialization embedded by domain managers.
type Manager struct {
	*component.Base

	source      string
	virtualPath string
}

var _ StateManager = (*Manager)(nil)

type settings struct {
	source      string
	virtualPath string
	component   []component.Option
}

// Option configures a Manager.
type Option func(*settings)

// WithVirtualPath declares the manager's position in the tree, for example
// "app.user.profile". It takes precedence over source inference.
func WithVirtualPath(path string) Option {
	return func(s *settings) { s.virtualPath = path }
}

// WithSource overrides the recorded source location.
func WithSource(file string) Option {
	return func(s *settings) { s.source = file }
}

// WithComponent passes options through to the underlying engine.
func WithComponent(opts ...component.Option) Option {
	return func(s *settings) { s.component = append(s.component, opts...) }
}

// NewManager creates a manager for impl, recording the file of the calling
// function as its source location. impl is usually the struct embedding the
// returned *Manager; nil makes the manager its own implementation.
func NewManager(impl any, opts ...Option) *Manager {
	var s settings
	if _, file, _, ok := runtime.Caller(1); ok {
		s.source = filepath.ToSlash(file)
	}
	for _, opt := range opts {
		opt(&s)
	}

	m := &Manager{source: s.source, virtualPath: s.virtualPath}
	if impl == nil {
		impl = m
	}
	m.Base = component.New(impl, s.component...)
	return m
}

// SourceLocation implements StateManager.
func (m *Manager) SourceLocation() string { return m.source }

// VirtualPath implements StateManager.
func (m *Manager) VirtualPath() string { return m.virtualPath }
