package dispatch

import "testing"

type invalidFirstParamController struct{}

func (c *invalidFirstParamController) Broken(id string) (bool, error) { return true, nil }

// TestRegistrationInvalidFirstParameter exercises §7's "action with
// invalid first parameter" diagnostic: the action is parsed but marked
// invalid, never reachable, and never registered with any DispatchType.
func TestRegistrationInvalidFirstParameter(t *testing.T) {
	e := NewEngine(DefaultEngineConfig(), nil)
	ctl, err := e.RegisterController(&invalidFirstParamController{}, nil)
	if err != nil {
		t.Fatalf("RegisterController: %v", err)
	}

	var broken *Action
	for _, a := range ctl.Actions {
		if a.Name == "Broken" {
			broken = a
		}
	}
	if broken == nil {
		t.Fatalf("Broken action not recorded on controller")
	}
	if broken.Valid {
		t.Errorf("Broken.Valid = true, want false")
	}
	if _, ok := e.Registry().Lookup(broken.PrivateName); ok {
		t.Errorf("invalid action should not be registered in the lookup table")
	}
}

func TestRegisterControllerAfterFreezeFails(t *testing.T) {
	e := NewEngine(DefaultEngineConfig(), nil)
	if err := e.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	if _, err := e.RegisterController(&rootController{}, nil); err == nil {
		t.Errorf("RegisterController after Freeze should fail")
	}
}

func TestPrivateActionNotPubliclyReachable(t *testing.T) {
	e := NewEngine(DefaultEngineConfig(), nil)
	if _, err := e.RegisterController(&lifecycleController{calls: &[]string{}, autoOK: true}, lifecycleControllerClassInfo()); err != nil {
		t.Fatalf("RegisterController: %v", err)
	}
	if err := e.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	begin, ok := e.Registry().Lookup("/lifecycle/controller/Begin")
	if !ok {
		t.Fatalf("Begin action not found by private name")
	}
	if !begin.Private {
		t.Errorf("Begin.Private = false, want true")
	}
}
