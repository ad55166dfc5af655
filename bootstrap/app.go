package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kbukum/statekit/component"
	"github.com/kbukum/statekit/domain"
	"github.com/kbukum/statekit/errors"
	"github.com/kbukum/statekit/hierarchy"
	"github.com/kbukum/statekit/logger"
	"github.com/kbukum/statekit/observability"
	"github.com/kbukum/statekit/server"
	"github.com/kbukum/statekit/state"
)

// App hosts a tree of domain state managers: it wires the discovered
// managers into a hierarchy, initializes the root, optionally serves the
// state endpoints and shuts everything down on a signal.
// The type parameter C is the config type, which must satisfy the Config interface.
//
// Example:
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.Discover(rootManager, userManager, billingManager)
//	app.Run(context.Background())
type App[C Config] struct {
	Name     string
	Version  string
	Cfg      C
	Registry *domain.Registry
	Logger   *logger.Logger
	Summary  *Summary

	gracefulTimeout time.Duration
	extractor       hierarchy.Extractor
	showSummary     bool

	onStart []Hook
	onReady []Hook
	onStop  []Hook

	mu        sync.Mutex
	tree      *hierarchy.Tree
	server    *server.Server
	providers []shutdownFunc
}

type shutdownFunc struct {
	name string
	fn   func(context.Context) error
}

// NewApp creates a new application instance from a typed config.
// It applies defaults, validates the config, and initializes the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Registry:        domain.NewRegistry(),
		gracefulTimeout: 15 * time.Second,
		showSummary:     true,
	}

	o := resolveOptions(opts)
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.summaryEnabled != nil {
		app.showSummary = *o.summaryEnabled
	}
	app.extractor = o.extractor

	// Logger: use custom if provided, otherwise init from config.
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	app.Summary = NewSummary(base.Name, base.Version)
	return app, nil
}

// Lifecycle returns the configured lifecycle options as a component option,
// for use when constructing domain managers.
//
//	m := domain.NewManager(impl, domain.WithComponent(app.Lifecycle()))
func (a *App[C]) Lifecycle() component.Option {
	return component.WithOptions(a.Cfg.GetServiceConfig().Lifecycle)
}

// Discover registers domain managers to be wired on Start.
func (a *App[C]) Discover(managers ...domain.StateManager) error {
	return a.Registry.RegisterAll(managers...)
}

// Tree returns the wired hierarchy, or nil before Start.
func (a *App[C]) Tree() *hierarchy.Tree {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tree
}

// Root returns the root domain manager, or nil before Start.
func (a *App[C]) Root() hierarchy.Node {
	if t := a.Tree(); t != nil {
		return t.Root
	}
	return nil
}

// Server returns the state endpoint server, or nil when it is disabled.
func (a *App[C]) Server() *server.Server {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.server
}

// Run executes the full application lifecycle for long-running services:
// Start → block on signal → graceful Shutdown.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		_ = a.shutdownProviders(context.Background())
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.Shutdown(ctx)
}

// RunTask executes a finite task with the full bootstrap lifecycle.
// Unlike Run, it does not block on shutdown signals: it runs the task
// and shuts down when the task completes or the context is canceled
// (e.g. via SIGINT/SIGTERM).
//
// Example:
//
//	app.RunTask(ctx, func(ctx context.Context) error {
//	    return processData(ctx)
//	})
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.Start(ctx); err != nil {
		_ = a.shutdownProviders(context.Background())
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.Shutdown(ctx); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}

	return taskErr
}

// Start wires the discovered managers, initializes the root and, when
// enabled, starts the state endpoint server. It is the startup half of Run
// for hosts that manage their own blocking.
func (a *App[C]) Start(ctx context.Context) error {
	start := time.Now()
	base := a.Cfg.GetServiceConfig()

	a.Logger.Info("Starting application", logger.Fields(
		"name", a.Name,
		"version", a.Version,
		logger.FieldCount, a.Registry.Len(),
	))

	if err := a.initTelemetry(ctx); err != nil {
		return fmt.Errorf("telemetry initialization failed: %w", err)
	}

	tree, err := a.wire()
	if err != nil {
		return fmt.Errorf("hierarchy wiring failed: %w", err)
	}

	if err := tree.Root.Initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	a.Logger.Info("Root domain manager initialized", logger.Fields(
		logger.FieldState, tree.Root.GetState(ctx).State,
	))

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if base.Server.Enabled {
		if err := a.startServer(ctx, tree.Root); err != nil {
			return fmt.Errorf("state endpoint server failed: %w", err)
		}
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	if a.showSummary {
		a.DisplaySummary(ctx)
	}
	return nil
}

// ReadyCheck reports an error when the root is not ready, naming every
// unhealthy node of the tree.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	root := a.Root()
	if root == nil {
		return errors.New(errors.ErrCodeLifecycle, "application has not been started")
	}
	if root.IsReady(ctx) {
		return nil
	}
	var unhealthy []string
	root.GetState(ctx).Walk(func(path string, node state.Info) {
		if !node.Healthy() {
			detail := path + "=" + node.State.String()
			if node.Reason != "" {
				detail += "(" + node.Reason + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	})
	return errors.New(errors.ErrCodeLifecycle, fmt.Sprintf("root is not ready: %v", unhealthy)).
		WithDetail("unhealthy", unhealthy)
}

// DisplaySummary prints the startup summary including the live state tree.
func (a *App[C]) DisplaySummary(ctx context.Context) {
	root := a.Root()
	if root == nil {
		return
	}
	a.Summary.Display(os.Stdout, root.GetState(ctx), a.Logger)
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal, graceful shutdown starting", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown runs the OnStop hooks, stops the server, shuts the component
// tree down and finally flushes the telemetry providers, all within the
// graceful timeout.
func (a *App[C]) Shutdown(ctx context.Context) error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error

	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.Fields(logger.FieldError, err.Error()))
		shutdownErr = err
	}

	if srv := a.Server(); srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			a.Logger.Error("State endpoint server shutdown error", logger.Fields(logger.FieldError, err.Error()))
			if shutdownErr == nil {
				shutdownErr = err
			}
		}
	}

	if root := a.Root(); root != nil {
		if err := root.Shutdown(ctx); err != nil {
			a.Logger.Error("Shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
			if shutdownErr == nil {
				shutdownErr = err
			}
		}
	}

	if err := a.shutdownProviders(ctx); err != nil && shutdownErr == nil {
		shutdownErr = err
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}

func (a *App[C]) wire() (*hierarchy.Tree, error) {
	if a.Tree() != nil {
		return nil, errors.Configuration("application %s was already started", a.Name)
	}
	opts := []hierarchy.Option{
		hierarchy.WithConfig(a.Cfg.GetServiceConfig().Hierarchy),
		hierarchy.WithLogger(a.Logger.WithComponent("hierarchy")),
	}
	if a.extractor != nil {
		opts = append(opts, hierarchy.WithExtractor(a.extractor))
	}
	tree, err := hierarchy.Wire(a.Registry.All(), opts...)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.tree = tree
	a.mu.Unlock()

	for _, p := range tree.Paths() {
		a.Summary.TrackPath(p)
	}
	return tree, nil
}

func (a *App[C]) startServer(ctx context.Context, root component.Component) error {
	base := a.Cfg.GetServiceConfig()
	srv := server.New(base.Server, a.Logger)
	srv.RegisterStateEndpoints(a.Name, root)
	if err := srv.Initialize(ctx); err != nil {
		return err
	}

	a.mu.Lock()
	a.server = srv
	a.mu.Unlock()
	a.Summary.SetEndpoint(srv.Addr())
	return nil
}

func (a *App[C]) initTelemetry(ctx context.Context) error {
	base := a.Cfg.GetServiceConfig()
	if !base.Observability.Enabled {
		return nil
	}

	tp, err := observability.InitTracer(ctx, base.Observability.TracerConfig(a.Name, a.Version, base.Environment))
	if err != nil {
		return err
	}
	a.addProvider("tracer", tp.Shutdown)

	mp, err := observability.InitMeter(ctx, base.Observability.MeterConfig(a.Name, a.Version, base.Environment))
	if err != nil {
		return err
	}
	a.addProvider("meter", mp.Shutdown)

	a.Logger.Info("Telemetry exporters started", logger.Fields("endpoint", base.Observability.Endpoint))
	return nil
}

func (a *App[C]) addProvider(name string, fn func(context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.providers = append(a.providers, shutdownFunc{name: name, fn: fn})
}

// shutdownProviders flushes telemetry providers in reverse order of start.
func (a *App[C]) shutdownProviders(ctx context.Context) error {
	a.mu.Lock()
	providers := a.providers
	a.providers = nil
	a.mu.Unlock()

	var firstErr error
	for i := len(providers) - 1; i >= 0; i-- {
		p := providers[i]
		if err := p.fn(ctx); err != nil {
			a.Logger.Error("Telemetry provider shutdown error", logger.Fields("provider", p.name, logger.FieldError, err.Error()))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
