package dispatch

import (
	"errors"
	"testing"
)

// TestForwardRecursionLimit exercises scenario 6 and §7's "recursion
// limit exceeded" error kind: an action that forwards to itself must be
// aborted once RecursionLimit nested forwards have run.
func TestForwardRecursionLimit(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.RecursionLimit = 3
	e := NewEngine(cfg, nil)
	if _, err := e.RegisterController(&forwardController{}, forwardControllerClassInfo()); err != nil {
		t.Fatalf("RegisterController: %v", err)
	}
	if err := e.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	ctx := NewContext(newFakeRequest("GET", "/"), newFakeResponse())
	ctx.engine = e

	_, err := e.Forward(ctx, "/loop/Loop", nil)
	if !errors.Is(err, ErrRecursionExceeded) {
		t.Fatalf("Forward error = %v, want ErrRecursionExceeded", err)
	}
}

func TestForwardTargetNotFound(t *testing.T) {
	e := NewEngine(DefaultEngineConfig(), nil)
	if err := e.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	ctx := NewContext(newFakeRequest("GET", "/"), newFakeResponse())
	ctx.engine = e

	_, err := e.Forward(ctx, "/no/such/action", nil)
	if !errors.Is(err, ErrForwardTargetNotFound) {
		t.Fatalf("Forward error = %v, want ErrForwardTargetNotFound", err)
	}
}
