package domain_test

import (
	"context"
	"strings"
	"testing"

	"github.com/kbukum/statekit/component"
	"github.com/kbukum/statekit/domain"
	"github.com/kbukum/statekit/errors"
	"github.com/kbukum/statekit/logger"
	"github.com/kbukum/statekit/state"
)

type repository struct {
	*component.Base
}

func newRepository(name string) *repository {
	r := &repository{}
	r.Base = component.New(r, component.WithDomain(name), component.WithLogger(logger.Nop()))
	return r
}

type userManager struct {
	*domain.Manager
	repo *repository
}

func newUserManager(opts ...domain.Option) *userManager {
	m := &userManager{repo: newRepository("userRepository")}
	opts = append([]domain.Option{domain.WithComponent(component.WithLogger(logger.Nop()))}, opts...)
	m.Manager = domain.NewManager(m, opts...)
	return m
}

func (m *userManager) OnInitialize(context.Context) error {
	return m.RegisterSubcomponent(m.repo)
}

func TestNewManager_RecordsCaller(t *testing.T) {
	m := newUserManager()

	if m.Name() != "userManager" {
		t.Errorf("expected domain 'userManager', got %q", m.Name())
	}
	if !strings.HasSuffix(m.SourceLocation(), "domain/domain_test.go") {
		t.Errorf("expected source in domain_test.go, got %q", m.SourceLocation())
	}
	if m.VirtualPath() != "" {
		t.Errorf("expected no virtual path, got %q", m.VirtualPath())
	}
}

func TestNewManager_Options(t *testing.T) {
	m := newUserManager(
		domain.WithVirtualPath("app.user"),
		domain.WithSource("/src/app-user/manager.go"),
		domain.WithComponent(component.WithDomain("user")),
	)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"virtual path", m.VirtualPath(), "app.user"},
		{"source", m.SourceLocation(), "/src/app-user/manager.go"},
		{"domain", m.Name(), "user"},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, tc.got)
		}
	}
}

func TestManager_RegistersInHook(t *testing.T) {
	ctx := context.Background()
	m := newUserManager()

	if err := m.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	info := m.GetState(ctx)
	if info.State != state.OK {
		t.Errorf("expected OK, got %s", info.State)
	}
	if len(info.Components) != 1 {
		t.Fatalf("expected 1 subcomponent, got %d", len(info.Components))
	}
	if info.Components[0].Name != "userRepository" {
		t.Errorf("expected 'userRepository', got %q", info.Components[0].Name)
	}

	m.repo.UpdateState(ctx, state.To(state.Failed), state.Because("timeout"))
	if got := m.Snapshot().State; got != state.Degraded {
		t.Errorf("expected DEGRADED after repository failure, got %s", got)
	}
}

func TestManager_NilImpl(t *testing.T) {
	m := domain.NewManager(nil, domain.WithComponent(component.WithLogger(logger.Nop())))
	if m.Name() != "Manager" {
		t.Errorf("expected domain 'Manager', got %q", m.Name())
	}
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if !m.IsReady(context.Background()) {
		t.Error("expected manager to be ready")
	}
}

func TestRegistry(t *testing.T) {
	r := domain.NewRegistry()
	user := newUserManager(domain.WithComponent(component.WithDomain("user")))
	billing := newUserManager(domain.WithComponent(component.WithDomain("billing")))

	if err := r.RegisterAll(user, billing); err != nil {
		t.Fatalf("RegisterAll failed: %v", err)
	}
	if r.Len() != 2 {
		t.Errorf("expected 2 managers, got %d", r.Len())
	}

	got, ok := r.Get("billing")
	if !ok {
		t.Fatal("expected to find 'billing'")
	}
	if got.(*userManager) != billing {
		t.Error("Get returned a different manager")
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("expected 'missing' to be absent")
	}

	all := r.All()
	if len(all) != 2 || all[0].Name() != "user" || all[1].Name() != "billing" {
		t.Errorf("expected registration order [user billing], got %v", names(all))
	}

	dup := newUserManager(domain.WithComponent(component.WithDomain("user")))
	if err := r.Register(dup); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("expected configuration error for duplicate, got %v", err)
	}
	if err := r.Register(nil); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("expected configuration error for nil, got %v", err)
	}
	if r.Len() != 2 {
		t.Errorf("expected failed registrations to be ignored, got %d", r.Len())
	}
}

func names(managers []domain.StateManager) []string {
	out := make([]string, len(managers))
	for i, m := range managers {
		out[i] = m.Name()
	}
	return out
}
