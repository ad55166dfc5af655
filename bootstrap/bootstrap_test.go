package bootstrap

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/statekit/component"
	"github.com/kbukum/statekit/config"
	"github.com/kbukum/statekit/domain"
	"github.com/kbukum/statekit/logger"
	"github.com/kbukum/statekit/state"
)

// testConfig is a minimal config for testing that satisfies the Config interface.
type testConfig struct {
	config.ServiceConfig
}

func newTestConfig(name, version string) *testConfig {
	return &testConfig{
		ServiceConfig: config.ServiceConfig{
			Name:        name,
			Version:     version,
			Environment: "development",
		},
	}
}

func newTestApp(t *testing.T, opts ...Option) *App[*testConfig] {
	t.Helper()
	opts = append([]Option{WithLogger(logger.Nop()), WithSummary(false)}, opts...)
	app, err := NewApp(newTestConfig("test-svc", "1.0.0"), opts...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func manager(name, path string) *domain.Manager {
	return domain.NewManager(nil,
		domain.WithVirtualPath(path),
		domain.WithComponent(component.WithDomain(name), component.WithLogger(logger.Nop())),
	)
}

// failingManager fails its own initialization.
type failingManager struct {
	*domain.Manager
}

func (f *failingManager) OnInitialize(context.Context) error {
	return fmt.Errorf("connection refused")
}

func newFailingManager(name, path string) *failingManager {
	f := &failingManager{}
	f.Manager = domain.NewManager(f,
		domain.WithVirtualPath(path),
		domain.WithComponent(component.WithDomain(name), component.WithLogger(logger.Nop())),
	)
	return f
}

func TestNewApp(t *testing.T) {
	cfg := newTestConfig("test-svc", "1.0.0")
	app, err := NewApp(cfg, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.Name != "test-svc" {
		t.Errorf("expected name 'test-svc', got %q", app.Name)
	}
	if app.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %q", app.Version)
	}
	if app.Registry == nil {
		t.Error("expected non-nil registry")
	}
	if app.Logger == nil {
		t.Error("expected non-nil logger")
	}
	if app.Summary == nil {
		t.Error("expected non-nil summary")
	}
	if app.Cfg.Hierarchy.RootName != "app" {
		t.Errorf("expected defaults applied, got root name %q", app.Cfg.Hierarchy.RootName)
	}
	if app.Root() != nil || app.Tree() != nil {
		t.Error("expected no tree before Start")
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := newTestConfig("", "1.0.0")
	if _, err := NewApp(cfg, WithLogger(logger.Nop())); err == nil {
		t.Fatal("expected validation error for empty name")
	}
}

func TestOptions(t *testing.T) {
	app := newTestApp(t, WithGracefulTimeout(3*time.Second))
	if app.gracefulTimeout != 3*time.Second {
		t.Errorf("expected 3s graceful timeout, got %s", app.gracefulTimeout)
	}
	if app.showSummary {
		t.Error("expected summary disabled")
	}
}

func TestLifecycleOption(t *testing.T) {
	cfg := newTestConfig("test-svc", "1.0.0")
	cfg.Lifecycle.SubcomponentStrategy = component.Sequential
	app, err := NewApp(cfg, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}

	m := domain.NewManager(nil, domain.WithComponent(app.Lifecycle(), component.WithDomain("users")))
	if got := m.Options().SubcomponentStrategy; got != component.Sequential {
		t.Errorf("expected sequential, got %q", got)
	}
	if m.Name() != "users" {
		t.Errorf("expected domain 'users', got %q", m.Name())
	}
}

func TestStartAndShutdown(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	root := manager("app", "app")
	users := manager("users", "app.users")
	profiles := manager("profiles", "app.users.profiles")
	billing := manager("billing", "app.billing")
	if err := app.Discover(profiles, billing, root, users); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	var mu sync.Mutex
	var order []string
	record := func(name string) Hook {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}
	app.OnStart(record("start"))
	app.OnReady(record("ready"))
	app.OnStop(record("stop"))

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if app.Root() != root {
		t.Fatal("expected the manager at path 'app' to be the root")
	}
	if parent, _ := app.Tree().Parent("app.users.profiles"); parent != "app.users" {
		t.Errorf("expected profiles under users, got %q", parent)
	}
	snap := root.Snapshot()
	if snap.State != state.OK {
		t.Fatalf("expected root OK, got %s (%s)", snap.State, snap.Reason)
	}
	if snap.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", snap.Depth())
	}
	if err := app.ReadyCheck(ctx); err != nil {
		t.Errorf("unexpected ready check error: %v", err)
	}
	if got := app.Summary.Paths(); len(got) != 4 || got[0] != "app" {
		t.Errorf("unexpected tracked paths %v", got)
	}

	if err := app.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if got := root.Snapshot().State; got != state.ShutDown {
		t.Errorf("expected root SHUT_DOWN, got %s", got)
	}
	if got := profiles.OwnState().State; got != state.ShutDown {
		t.Errorf("expected leaf SHUT_DOWN, got %s", got)
	}

	want := []string{"start", "ready", "stop"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("expected hooks %v, got %v", want, order)
	}
}

func TestStart_FailingChildDegradesRoot(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	root := manager("app", "app")
	db := newFailingManager("database", "app.database")
	if err := app.Discover(root, db); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	snap := root.Snapshot()
	if snap.State != state.Degraded {
		t.Fatalf("expected root DEGRADED, got %s", snap.State)
	}
	if !strings.Contains(snap.Reason, "database") {
		t.Errorf("expected reason to name the failing child, got %q", snap.Reason)
	}
	// DEGRADED can still serve traffic.
	if err := app.ReadyCheck(ctx); err != nil {
		t.Errorf("expected degraded root to be ready, got %v", err)
	}
	_ = app.Shutdown(ctx)
}

func TestStart_RootFailure(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	root := newFailingManager("app", "app")
	if err := app.Discover(root); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	err := app.Start(ctx)
	if err == nil || !strings.Contains(err.Error(), "initialization failed") {
		t.Fatalf("expected initialization error, got %v", err)
	}
	if err := app.ReadyCheck(ctx); err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected ready check to report the failure, got %v", err)
	}
}

func TestStart_WiringErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		app := newTestApp(t)
		if err := app.Discover(manager("users", "app.users")); err != nil {
			t.Fatalf("Discover failed: %v", err)
		}
		err := app.Start(context.Background())
		if err == nil || !strings.Contains(err.Error(), "hierarchy wiring failed") {
			t.Fatalf("expected wiring error, got %v", err)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		app := newTestApp(t)
		err := app.Discover(manager("users", "app.users"), manager("users", "app.people"))
		if err == nil {
			t.Fatal("expected duplicate registration error")
		}
	})

	t.Run("started twice", func(t *testing.T) {
		app := newTestApp(t)
		if err := app.Discover(manager("app", "app")); err != nil {
			t.Fatalf("Discover failed: %v", err)
		}
		if err := app.Start(context.Background()); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		if err := app.Start(context.Background()); err == nil {
			t.Error("expected second Start to fail")
		}
	})
}

func TestReadyCheck_NotStarted(t *testing.T) {
	app := newTestApp(t)
	if err := app.ReadyCheck(context.Background()); err == nil {
		t.Error("expected error before Start")
	}
}

func TestOnStartHookFailure(t *testing.T) {
	app := newTestApp(t)
	if err := app.Discover(manager("app", "app")); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	app.OnStart(func(context.Context) error { return fmt.Errorf("migrations pending") })

	err := app.Start(context.Background())
	if err == nil || !strings.Contains(err.Error(), "onStart hook failed") {
		t.Fatalf("expected hook error, got %v", err)
	}
}

func TestRunTask(t *testing.T) {
	app := newTestApp(t)
	root := manager("app", "app")
	if err := app.Discover(root); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	ran := false
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		ran = true
		if root.Snapshot().State != state.OK {
			return fmt.Errorf("root not ready during task")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if !ran {
		t.Error("task did not run")
	}
	if got := root.Snapshot().State; got != state.ShutDown {
		t.Errorf("expected SHUT_DOWN after task, got %s", got)
	}
}

func TestRunTask_ReturnsTaskError(t *testing.T) {
	app := newTestApp(t)
	if err := app.Discover(manager("app", "app")); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	taskErr := fmt.Errorf("batch failed")
	if err := app.RunTask(context.Background(), func(context.Context) error { return taskErr }); err != taskErr {
		t.Errorf("expected task error, got %v", err)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app := newTestApp(t)
	root := manager("app", "app")
	if err := app.Discover(root); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error {
		cancel()
		return nil
	})

	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := root.Snapshot().State; got != state.ShutDown {
		t.Errorf("expected SHUT_DOWN, got %s", got)
	}
}

func TestStart_ServesStateEndpoints(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	app.Cfg.Server.Enabled = true
	app.Cfg.Server.Host = "127.0.0.1"
	app.Cfg.Server.Port = 0

	if err := app.Discover(manager("app", "app"), manager("users", "app.users")); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	srv := app.Server()
	if srv == nil {
		t.Fatal("expected server to be started")
	}

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	if err := app.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if got := srv.Snapshot().State; got != state.ShutDown {
		t.Errorf("expected server SHUT_DOWN, got %s", got)
	}
}

func TestSummaryDisplay(t *testing.T) {
	s := NewSummary("test-svc", "1.0.0")
	s.SetStartupDuration(1500 * time.Millisecond)
	s.SetEndpoint("127.0.0.1:8080")
	s.TrackPath("app")
	s.TrackPath("app.users")

	tree := state.Info{
		Name:  "app",
		State: state.Degraded,
		Components: []state.Info{
			{Name: "users", State: state.OK},
			{Name: "database", State: state.Failed, Reason: "connection refused"},
		},
	}

	var buf bytes.Buffer
	s.Display(&buf, tree, logger.Nop())
	out := buf.String()

	for _, want := range []string{
		"test-svc v1.0.0 started in 1.50s",
		"127.0.0.1:8080",
		"Components (2 wired)",
		"users (ok)",
		"database (failed) - connection refused",
		"(2/3 healthy)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
