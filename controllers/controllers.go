// Package controllers holds the demonstration controllers registered by
// the `eve serve`/`eve routes` commands: a root health controller and a
// chained widgets example, exercising the dispatch core's Path/Chained/
// Index pipeline end to end against a real binary rather than only
// against the dispatch package's own tests.
package controllers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evalgo-org/cutelyst-go/dispatch"
	"github.com/evalgo-org/cutelyst-go/plugins/session"
)

// Root exposes the service's health endpoint at "/" (Index) and an
// authenticated "/profile" endpoint demonstrating plugins/auth's "Auth"
// attribute convention.
type Root struct{}

// ClassInfo merges the "Profile_Auth" attribute onto the Profile action;
// see plugins/auth.Plugin for how a beforeDispatch hook reads it.
func (c *Root) ClassInfo() map[string]string {
	return map[string]string{
		"Namespace":   "",
		"Profile_Auth": "",
	}
}

// Index reports "ok" plus a per-session visit count, reading and writing
// through plugins/session's Get/Set when the session plugin is installed
// (both are no-ops against an empty stash otherwise).
func (c *Root) Index(ctx *dispatch.Context, _ dispatch.PathAttr) (bool, error) {
	visits := 0
	if raw, ok := session.Get(ctx, "visits"); ok {
		visits, _ = strconv.Atoi(raw)
	}
	visits++
	session.Set(ctx, "visits", strconv.Itoa(visits))

	ctx.Resp.WriteBody([]byte(fmt.Sprintf("ok (visit %d)", visits)))
	return true, nil
}

func (c *Root) Profile(ctx *dispatch.Context, _ dispatch.Global) (bool, error) {
	ctx.Resp.WriteBody([]byte("authenticated"))
	return true, nil
}

// Widgets demonstrates a two-level Chained dispatch: "/widgets/<id>/parts"
// captures the widget id at the root link and lists its parts at the
// endpoint, the same shape as chainController in the dispatch package's
// own tests but reachable over a real HTTP connection.
type Widgets struct{}

func (c *Widgets) ClassInfo() map[string]string {
	return map[string]string{
		"Namespace":      "widgets",
		"Root_PathPart":  "widgets",
		"Root_Chained":   "/",
		"Parts_PathPart": "parts",
		"Parts_Chained":  "/widgets/Root",
	}
}

func (c *Widgets) Root(ctx *dispatch.Context, id string, _ dispatch.CaptureArgs) (bool, error) {
	return true, nil
}

func (c *Widgets) Parts(ctx *dispatch.Context, _ dispatch.ArgsAny) (bool, error) {
	id := ""
	if len(ctx.Captures) > 0 {
		id = ctx.Captures[0]
	}
	ctx.Resp.WriteBody([]byte(fmt.Sprintf("widget %s parts %s", id, strings.Join(ctx.Args, ","))))
	return true, nil
}

// Register installs every demo controller onto engine, using each
// controller's own ClassInfo method rather than a single shared map, so
// each controller's attribute wiring stays colocated with its methods.
func Register(engine *dispatch.Engine) error {
	if _, err := engine.RegisterController(&Root{}, (&Root{}).ClassInfo()); err != nil {
		return err
	}
	if _, err := engine.RegisterController(&Widgets{}, (&Widgets{}).ClassInfo()); err != nil {
		return err
	}
	return nil
}
