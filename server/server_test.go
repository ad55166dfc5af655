package server_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/kbukum/statekit/component"
	"github.com/kbukum/statekit/logger"
	"github.com/kbukum/statekit/server"
	"github.com/kbukum/statekit/state"
)

func TestConfig(t *testing.T) {
	cfg := server.Config{}
	cfg.ApplyDefaults()
	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out-of-range port")
	}
}

func TestServerLifecycle(t *testing.T) {
	ctx := context.Background()
	cfg := server.Config{Host: "127.0.0.1", Port: 0}
	cfg.ApplyDefaults()
	cfg.Port = 0

	root := component.New(nil, component.WithDomain("app"), component.WithLogger(logger.Nop()))
	if err := root.Initialize(ctx); err != nil {
		t.Fatalf("root Initialize failed: %v", err)
	}

	srv := server.New(cfg, logger.Nop())
	srv.RegisterStateEndpoints("svc", root)
	if err := srv.Initialize(ctx); err != nil {
		t.Fatalf("server Initialize failed: %v", err)
	}
	if got := srv.Snapshot().State; got != state.OK {
		t.Errorf("expected server OK, got %s", got)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if got := srv.Snapshot().State; got != state.ShutDown {
		t.Errorf("expected server SHUT_DOWN, got %s", got)
	}

	if _, err := http.Get("http://" + srv.Addr() + "/health"); err == nil {
		t.Error("expected connection error after shutdown")
	}
}
