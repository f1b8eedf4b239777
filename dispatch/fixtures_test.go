package dispatch

import (
	"fmt"
	"strings"
)

// rootController exercises the Global marker (scenario 1): its Global
// action matches "/global" regardless of the controller's own namespace.
type rootController struct{}

func (c *rootController) Global(ctx *Context, _ Global) (bool, error) {
	ctx.Resp.WriteBody([]byte(fmt.Sprintf("path /global args %s", strings.Join(ctx.Args, "/"))))
	return true, nil
}

// testController exercises Path dispatch arity (property P2, scenario 2):
// a fixed-arity "one" action and a variadic "many" action, both under
// "test/controller".
type testController struct{}

func testControllerClassInfo() map[string]string {
	return map[string]string{
		"One_Path":  "test/controller/one",
		"Many_Path": "test/controller/many",
	}
}

func (c *testController) One(ctx *Context, id string, _ Args) (bool, error) {
	ctx.Resp.WriteBody([]byte(fmt.Sprintf("path test/controller/one args %s", strings.Join(ctx.Args, "/"))))
	return true, nil
}

func (c *testController) Many(ctx *Context, _ ArgsAny) (bool, error) {
	ctx.Resp.WriteBody([]byte(fmt.Sprintf("path test/controller/many args %s", strings.Join(ctx.Args, "/"))))
	return true, nil
}

// chainController exercises the Chained dispatcher (property P3): a root
// midpoint "chain", a capturing midpoint "midle" (CaptureArgs=2), and two
// endpoints sharing the PathPart "end" — one variadic, one fixed Args=0 —
// both hanging off the same parent, per §4.3's "multiple endpoints
// reachable at a node" tie-break.
type chainController struct{}

func chainControllerClassInfo() map[string]string {
	return map[string]string{
		"Namespace":    "",
		"Root_PathPart":  "chain",
		"Root_Chained":   "/",
		"Mid_PathPart":   "midle",
		"Mid_Chained":    "/Root",
		"EndAny_PathPart":   "end",
		"EndAny_Chained":    "/Mid",
		"EndZero_PathPart": "end",
		"EndZero_Chained":  "/Mid",
	}
}

func (c *chainController) Root(ctx *Context, _ CaptureArgs) (bool, error) { return true, nil }

func (c *chainController) Mid(ctx *Context, a string, b string, _ CaptureArgs) (bool, error) {
	return true, nil
}

func (c *chainController) EndAny(ctx *Context, _ ArgsAny) (bool, error) {
	ctx.Resp.WriteBody([]byte(ctx.MatchString))
	return true, nil
}

func (c *chainController) EndZero(ctx *Context, _ Args) (bool, error) {
	ctx.Resp.WriteBody([]byte(ctx.MatchString + " zero"))
	return true, nil
}

// lifecycleController exercises Begin/Auto/End ordering (property P5).
type lifecycleController struct {
	calls   *[]string
	autoOK  bool
	detach  bool
}

func lifecycleControllerClassInfo() map[string]string {
	return map[string]string{"Matched_Path": "lifecycle/matched"}
}

func (c *lifecycleController) Begin(ctx *Context, _ Args) (bool, error) {
	*c.calls = append(*c.calls, "Begin")
	return true, nil
}

func (c *lifecycleController) Auto(ctx *Context, _ Args) (bool, error) {
	*c.calls = append(*c.calls, "Auto")
	return c.autoOK, nil
}

func (c *lifecycleController) Matched(ctx *Context, _ Args) (bool, error) {
	*c.calls = append(*c.calls, "Matched")
	if c.detach {
		ctx.Detach()
	}
	return true, nil
}

func (c *lifecycleController) End(ctx *Context, _ Args) (bool, error) {
	*c.calls = append(*c.calls, "End")
	return true, nil
}

// indexOnlyController exercises the Index dispatcher (§4.4): its Index
// action carries a "vanity" Path attribute aliasing it under an unrelated
// path, which is enough to keep the action from being marked Private
// (every non-private action needs a Path or Chained attribute) without
// registering anything under the bare namespace itself — so the
// namespace-exact, zero-arg request can only be satisfied by
// IndexDispatchType, not shadowed by PathDispatchType the way
// controllers.Root.Index (whose PathAttr marker sets Path to its own
// namespace) would be.
type indexOnlyController struct{}

func indexOnlyControllerClassInfo() map[string]string {
	return map[string]string{
		"Namespace":  "gallery",
		"Index_Path": "gallery-vanity",
	}
}

func (c *indexOnlyController) Index(ctx *Context, _ ArgsAny) (bool, error) {
	ctx.Resp.WriteBody([]byte("gallery index"))
	return true, nil
}

// defaultOnlyController exercises the Default dispatcher (§4.4): same
// vanity-Path trick as indexOnlyController keeps its Default action
// non-private without satisfying Path/Chained at its own namespace, so
// it's reachable only as the last-resort fallback once Path, Chained,
// and Index have all failed at every prefix length down to the
// namespace itself.
type defaultOnlyController struct{}

func defaultOnlyControllerClassInfo() map[string]string {
	return map[string]string{
		"Namespace":    "catchall",
		"Default_Path": "catchall-vanity",
	}
}

func (c *defaultOnlyController) Default(ctx *Context, _ ArgsAny) (bool, error) {
	ctx.Resp.WriteBody([]byte(fmt.Sprintf("catchall default args %s", strings.Join(ctx.Args, "/"))))
	return true, nil
}

// forwardController exercises Forward's recursion guard (§4.5, scenario 6).
type forwardController struct{}

func forwardControllerClassInfo() map[string]string {
	return map[string]string{"Namespace": "loop", "Loop_Private": ""}
}

func (c *forwardController) Loop(ctx *Context, _ Args) (bool, error) {
	return ctx.Engine().Forward(ctx, "/loop/Loop", nil)
}
