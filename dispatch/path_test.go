package dispatch

import "testing"

// TestPathDispatchScenarios covers concrete end-to-end scenarios 1 and 2
// and property P2's arity rule, including the "trailing slash produces an
// extra empty segment" non-match case.
func TestPathDispatchScenarios(t *testing.T) {
	e := NewEngine(DefaultEngineConfig(), nil)
	if _, err := e.RegisterController(&rootController{}, nil); err != nil {
		t.Fatalf("RegisterController(root): %v", err)
	}
	if _, err := e.RegisterController(&testController{}, testControllerClassInfo()); err != nil {
		t.Fatalf("RegisterController(test): %v", err)
	}
	if err := e.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"scenario 1 global", "/global", 0, "path /global args "},
		{"scenario 2 variadic many", "/test/controller/many/1/2/3", 0, "path test/controller/many args 1/2/3"},
		{"fixed arity one matches", "/test/controller/one/1", 0, "path test/controller/one args 1"},
		{"trailing slash does not match fixed arity", "/test/controller/one/1/", 404, ""},
		{"scenario 3 unknown resource", "/test/unknown", 404, "Unknown resource 'test/unknown'."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newFakeRequest("GET", tt.path)
			resp := newFakeResponse()
			e.HandleRequest(req, resp)
			if tt.wantStatus != 0 && resp.Status() != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.Status(), tt.wantStatus)
			}
			if tt.wantBody != "" && resp.body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", resp.body.String(), tt.wantBody)
			}
		})
	}
}
