package component

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/statekit/errors"
	"github.com/kbukum/statekit/logger"
	"github.com/kbukum/statekit/observability"
	"github.com/kbukum/statekit/state"
)

const (
	opInitialize = "initialize"
	opShutdown   = "shutdown"
)

// Initialize implements ManageableComponent. Concurrent callers share one
// run and its outcome. A healthy component returns immediately, a shut down
// one returns a lifecycle error.
func (b *Base) Initialize(ctx context.Context) error {
	_, err, _ := b.flight.Do(opInitialize, func() (any, error) {
		b.stream.hold()
		defer b.stream.release()
		return nil, b.initialize(ctx)
	})
	b.stream.flush()
	return err
}

// Shutdown implements ManageableComponent. Concurrent callers share one run;
// a component that is already shut down returns nil.
func (b *Base) Shutdown(ctx context.Context) error {
	_, err, _ := b.flight.Do(opShutdown, func() (any, error) {
		b.stream.hold()
		defer b.stream.release()
		return nil, b.shutdown(ctx)
	})
	b.stream.flush()
	return err
}

// IsReady implements ManageableComponent. With lazy startup an uninitialized
// component is initialized first.
func (b *Base) IsReady(ctx context.Context) bool {
	if b.opts.LazyStartup && b.OwnState().State == state.Uninitialized {
		if err := b.Initialize(ctx); err != nil {
			b.log.Debug("lazy initialization failed", logger.ErrorFields(opInitialize, err))
		}
	}
	return b.Snapshot().Healthy()
}

func (b *Base) initialize(ctx context.Context) error {
	b.runMu.Lock()
	defer b.runMu.Unlock()

	switch current := b.OwnState().State; {
	case current.Healthy():
		return nil
	case current == state.ShuttingDown || current == state.ShutDown:
		return errors.Lifecycle(b.Name(), opInitialize, fmt.Errorf("component is %s", current))
	}

	ctx, op := observability.StartOperation(ctx, b.metrics, b.Name(), opInitialize, observability.SpanInitialize)

	if b.layer != nil {
		if err := b.layer.Initialize(ctx); err != nil {
			return b.fail(ctx, op, err)
		}
	}

	b.UpdateState(ctx, state.To(state.Initializing), state.ClearReason())

	var err error
	if b.opts.InitializationStrategy == ChildrenFirst {
		b.forEachSubcomponent(ctx, opInitialize, ManageableComponent.Initialize)
		err = b.onInitialize(ctx)
	} else {
		err = b.onInitialize(ctx)
		if err == nil {
			b.forEachSubcomponent(ctx, opInitialize, ManageableComponent.Initialize)
		}
	}
	if err != nil {
		return b.fail(ctx, op, err)
	}

	// A hook may have settled the state itself, for example on DEGRADED.
	info := b.UpdateState(ctx, func(i *state.Info) {
		if i.State == state.Initializing {
			i.State = state.OK
		}
	})
	op.End(ctx, info.State.String(), nil)
	b.log.Info("component initialized", logger.Fields(
		logger.FieldState, info.State.String(),
		logger.FieldDuration, op.Duration().Milliseconds(),
	))
	return nil
}

func (b *Base) shutdown(ctx context.Context) error {
	b.runMu.Lock()
	defer b.runMu.Unlock()

	if b.OwnState().State == state.ShutDown {
		return nil
	}

	ctx, op := observability.StartOperation(ctx, b.metrics, b.Name(), opShutdown, observability.SpanShutdown)

	if b.layer != nil {
		if err := b.layer.Shutdown(ctx); err != nil {
			return b.fail(ctx, op, err)
		}
	}

	b.UpdateState(ctx, state.To(state.ShuttingDown), state.ClearReason())

	var err error
	if b.opts.ShutdownStrategy == ChildrenFirst {
		b.forEachSubcomponent(ctx, opShutdown, ManageableComponent.Shutdown)
		err = b.onShutdown(ctx)
	} else {
		err = b.onShutdown(ctx)
		if err == nil {
			b.forEachSubcomponent(ctx, opShutdown, ManageableComponent.Shutdown)
		}
	}
	if err != nil {
		return b.fail(ctx, op, err)
	}

	b.UpdateState(ctx, state.To(state.ShutDown))
	op.End(ctx, state.ShutDown.String(), nil)
	b.log.Info("component shut down", logger.DurationFields(opShutdown, op.Duration()))
	return nil
}

// fail marks the component FAILED and wraps err for the caller.
func (b *Base) fail(ctx context.Context, op *observability.Operation, err error) error {
	b.UpdateState(ctx, state.To(state.Failed), state.Because(err.Error()))
	lerr := errors.Lifecycle(b.Name(), op.Name, err)
	op.End(ctx, state.Failed.String(), lerr)
	b.log.Error("lifecycle hook failed", logger.ErrorFields(op.Name, err))
	return lerr
}

func (b *Base) onInitialize(ctx context.Context) error {
	if h, ok := b.impl.(Initializer); ok {
		return h.OnInitialize(ctx)
	}
	return nil
}

func (b *Base) onShutdown(ctx context.Context) error {
	if h, ok := b.impl.(Finalizer); ok {
		return h.OnShutdown(ctx)
	}
	return nil
}

// forEachSubcomponent drives every subcomponent through fn. Failures are
// logged and otherwise only visible through the published state.
//
// In parallel mode the first initialization failure cancels the context of
// the siblings still running. Shutdown never cancels siblings.
func (b *Base) forEachSubcomponent(ctx context.Context, operation string, fn func(ManageableComponent, context.Context) error) {
	children := b.Subcomponents()
	if len(children) == 0 {
		return
	}

	report := func(c Component, err error) {
		b.log.Warn("subcomponent failed", logger.Fields(
			logger.FieldComponent, c.Name(),
			logger.FieldOperation, operation,
			logger.FieldError, err.Error(),
		))
	}

	if b.opts.SubcomponentStrategy == Sequential {
		for _, c := range children {
			if err := fn(c, ctx); err != nil {
				report(c, err)
			}
		}
		return
	}

	g := &errgroup.Group{}
	gctx := ctx
	if operation == opInitialize {
		g, gctx = errgroup.WithContext(ctx)
	}
	for _, c := range children {
		g.Go(func() error {
			err := fn(c, gctx)
			if err != nil {
				report(c, err)
			}
			return err
		})
	}
	_ = g.Wait()
}
