package lifecycle_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/docflow/pkg/lifecycle"
)

func TestNotReadyBeforeStartup(t *testing.T) {
	lc := lifecycle.New()
	if lc.Ready() {
		t.Error("should not be ready before WaitForStartup")
	}
}

func TestStartupHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var count atomic.Int32
	for range 3 {
		lc.OnStartup("counter", func(context.Context) error {
			count.Add(1)
			return nil
		})
	}

	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("startup failed: %v", err)
	}

	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks: got %d, want 3", got)
	}
	if !lc.Ready() {
		t.Error("should be ready after successful startup")
	}
}

func TestStartupHookFailure(t *testing.T) {
	lc := lifecycle.New()
	errCreds := errors.New("no credentials")

	lc.OnStartup("config", func(context.Context) error { return nil })
	lc.OnStartup("aws", func(context.Context) error { return errCreds })

	err := lc.WaitForStartup()
	if !errors.Is(err, errCreds) {
		t.Fatalf("got %v, want wrapped errCreds", err)
	}
	if !strings.Contains(err.Error(), "aws:") {
		t.Errorf("error %q does not name the failing hook", err)
	}
	if lc.Ready() {
		t.Error("should not be ready after a failed startup hook")
	}
}

func TestShutdownHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var cleaned atomic.Bool
	lc.OnShutdown("cleanup", func(ctx context.Context) error {
		if lc.Context().Err() == nil {
			t.Error("coordinator context should be cancelled before hooks run")
		}
		if _, ok := ctx.Deadline(); !ok {
			t.Error("hook context should carry the shutdown deadline")
		}
		cleaned.Store(true)
		return nil
	})

	if cleaned.Load() {
		t.Fatal("shutdown hook ran before Shutdown")
	}

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if !cleaned.Load() {
		t.Error("shutdown hook did not execute")
	}
}

func TestShutdownHookError(t *testing.T) {
	lc := lifecycle.New()
	errClose := errors.New("listener closed twice")

	lc.OnShutdown("http", func(context.Context) error { return errClose })

	err := lc.Shutdown(time.Second)
	if !errors.Is(err, errClose) {
		t.Fatalf("got %v, want wrapped errClose", err)
	}
	if !strings.Contains(err.Error(), "http:") {
		t.Errorf("error %q does not name the failing hook", err)
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()

	lc.OnShutdown("slow", func(context.Context) error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})

	if err := lc.Shutdown(50 * time.Millisecond); err == nil {
		t.Error("expected timeout error, got nil")
	}
}

func TestShutdownClearsReady(t *testing.T) {
	lc := lifecycle.New()
	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("startup failed: %v", err)
	}

	lc.Shutdown(time.Second)

	if lc.Ready() {
		t.Error("should not be ready after shutdown")
	}
}

func TestStartupHookSeesCancellation(t *testing.T) {
	lc := lifecycle.New()

	started := make(chan struct{})
	lc.OnStartup("blocking", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	<-started
	lc.Shutdown(time.Second)

	if err := lc.WaitForStartup(); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
