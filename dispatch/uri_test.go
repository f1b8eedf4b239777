package dispatch

import "testing"

// TestURIForRoundTrip exercises property P4: inverting a matched
// (action, captures, args) reproduces a path that re-matches to the same
// triple.
func TestURIForRoundTrip(t *testing.T) {
	e := newChainEngine(t)

	req := newFakeRequest("GET", "/chain/midle/X/Y/end/P/Q/R")
	resp := newFakeResponse()
	ctx := e.HandleRequest(req, resp)
	if len(ctx.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}

	endpoint := ctx.Chain[len(ctx.Chain)-1].Action
	path, ok := e.URIFor(endpoint.PrivateName, ctx.Captures, ctx.Args, nil, "")
	if !ok {
		t.Fatalf("URIFor(%s) failed", endpoint.PrivateName)
	}
	if want := "/chain/midle/X/Y/end/P/Q/R"; path != want {
		t.Errorf("URIFor = %q, want %q", path, want)
	}

	// Re-dispatching the inverted path must reach the same endpoint.
	req2 := newFakeRequest("GET", path)
	resp2 := newFakeResponse()
	ctx2 := e.HandleRequest(req2, resp2)
	if len(ctx2.Errors) != 0 {
		t.Fatalf("unexpected errors on round trip: %v", ctx2.Errors)
	}
	if ctx2.Chain[len(ctx2.Chain)-1].Action != endpoint {
		t.Errorf("round trip resolved a different endpoint")
	}
}

func TestURIForLiteralPath(t *testing.T) {
	e := NewEngine(DefaultEngineConfig(), nil)
	if err := e.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	path, ok := e.URIFor("/root", nil, nil, nil, "")
	if !ok || path != "/root" {
		t.Errorf("URIFor(literal) = %q, %v, want /root, true", path, ok)
	}
}

// TestURIForAbsoluteURL exercises Property P4's literal examples:
// uri_for(path=/root) → http://host/root, and a trailing slash on the
// path attribute is preserved verbatim in the absolute form too.
func TestURIForAbsoluteURL(t *testing.T) {
	e := NewEngine(DefaultEngineConfig(), nil)
	if err := e.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	if path, ok := e.URIFor("/root", nil, nil, nil, "host"); !ok || path != "http://host/root" {
		t.Errorf("URIFor(/root, host) = %q, %v, want http://host/root, true", path, ok)
	}
	if path, ok := e.URIFor("/root/", nil, nil, nil, "host"); !ok || path != "http://host/root/" {
		t.Errorf("URIFor(/root/, host) = %q, %v, want http://host/root/, true", path, ok)
	}
	if path, ok := e.URIFor("/root", nil, nil, nil, "https://example.com"); !ok || path != "https://example.com/root" {
		t.Errorf("URIFor with explicit scheme host = %q, %v, want https://example.com/root, true", path, ok)
	}
}

func TestURIForWithQuery(t *testing.T) {
	e := NewEngine(DefaultEngineConfig(), nil)
	if _, err := e.RegisterController(&rootController{}, map[string]string{"Namespace": ""}); err != nil {
		t.Fatalf("RegisterController: %v", err)
	}
	if err := e.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	path, ok := e.URIFor("/Global", nil, nil, map[string]string{"b": "2", "a": "1"}, "")
	if !ok {
		t.Fatalf("URIFor failed")
	}
	if want := "/global?a=1&b=2"; path != want {
		t.Errorf("URIFor with query = %q, want %q", path, want)
	}
}
