package dispatch

import "testing"

func newChainEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(DefaultEngineConfig(), nil)
	if _, err := e.RegisterController(&chainController{}, chainControllerClassInfo()); err != nil {
		t.Fatalf("RegisterController: %v", err)
	}
	if err := e.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	return e
}

// TestChainedDispatchComposition exercises property P3: a three-link
// chain whose variadic endpoint consumes any residual tail, and its
// sibling fixed Args=0 endpoint sharing the same PathPart.
func TestChainedDispatchComposition(t *testing.T) {
	e := newChainEngine(t)

	t.Run("variadic endpoint consumes the tail", func(t *testing.T) {
		req := newFakeRequest("GET", "/chain/midle/X/Y/end/P/Q/R")
		resp := newFakeResponse()
		ctx := e.HandleRequest(req, resp)
		if len(ctx.Errors) != 0 {
			t.Fatalf("unexpected errors: %v", ctx.Errors)
		}
		if got, want := ctx.Captures, []string{"X", "Y"}; !equalStrings(got, want) {
			t.Errorf("captures = %v, want %v", got, want)
		}
		if got, want := ctx.Args, []string{"P", "Q", "R"}; !equalStrings(got, want) {
			t.Errorf("args = %v, want %v", got, want)
		}
		if resp.body.String() != "chain/midle/X/Y/end" {
			t.Errorf("body = %q", resp.body.String())
		}
	})

	t.Run("fixed Args=0 endpoint matches with no residual segments", func(t *testing.T) {
		req := newFakeRequest("GET", "/chain/midle/X/Y/end")
		resp := newFakeResponse()
		ctx := e.HandleRequest(req, resp)
		if len(ctx.Errors) != 0 {
			t.Fatalf("unexpected errors: %v", ctx.Errors)
		}
		if resp.body.String() != "chain/midle/X/Y/end zero" {
			t.Errorf("body = %q", resp.body.String())
		}
	})
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
