package dispatch

import "strings"

// IndexDispatchType matches an empty residual path against a namespace's
// conventionally-named "index" action (§4.4). It is low precedence: the
// orchestrator only consults it after Path and Chained have both failed
// at the current prefix length.
type IndexDispatchType struct {
	byNamespace map[string]*Action
	order       []*Action
}

func NewIndexDispatchType() *IndexDispatchType {
	return &IndexDispatchType{byNamespace: make(map[string]*Action)}
}

func (d *IndexDispatchType) Name() string          { return "Index" }
func (d *IndexDispatchType) Precedence() int        { return 10 }
func (d *IndexDispatchType) IsLowPrecedence() bool { return true }

// RegisterAction accepts any non-private action named "Index" (compared
// case-insensitively), whatever its declared Args, registering it under
// its controller's namespace; Match only succeeds with no trailing args.
func (d *IndexDispatchType) RegisterAction(action *Action) bool {
	if action.Private {
		return false
	}
	if !strings.EqualFold(action.Name, "Index") {
		return false
	}
	d.byNamespace[action.Namespace] = action
	d.order = append(d.order, action)
	return true
}

func (d *IndexDispatchType) Freeze(reg *ActionRegistry) error { return nil }

// Match succeeds only when prefix names a registered namespace exactly
// and ctx.Args is empty — an Index action never consumes args.
func (d *IndexDispatchType) Match(ctx *Context, prefix []string) bool {
	if len(ctx.Args) != 0 {
		return false
	}
	ns := strings.Join(prefix, "/")
	action, ok := d.byNamespace[ns]
	if !ok {
		return false
	}
	ctx.Namespace = action.Namespace
	ctx.MatchString = ""
	ctx.Chain = []ChainStep{{Action: action}}
	return true
}

func (d *IndexDispatchType) URIFor(action *Action, captures []string, args []string) (string, bool) {
	for ns, a := range d.byNamespace {
		if a == action {
			return "/" + ns, true
		}
	}
	return "", false
}

func (d *IndexDispatchType) List() []RouteInfo {
	out := make([]RouteInfo, 0, len(d.order))
	for _, a := range d.order {
		out = append(out, RouteInfo{DispatchType: d.Name(), Pattern: "/" + a.Namespace, PrivateName: a.PrivateName})
	}
	return out
}

// DefaultDispatchType is the last-resort fallback: it walks the request
// path upward segment by segment looking for a "default" action
// registered at each candidate namespace prefix, preferring the longest
// matching prefix (§4.4).
type DefaultDispatchType struct {
	byNamespace map[string]*Action
	order       []*Action
}

func NewDefaultDispatchType() *DefaultDispatchType {
	return &DefaultDispatchType{byNamespace: make(map[string]*Action)}
}

func (d *DefaultDispatchType) Name() string          { return "Default" }
func (d *DefaultDispatchType) Precedence() int        { return 5 }
func (d *DefaultDispatchType) IsLowPrecedence() bool { return true }

func (d *DefaultDispatchType) RegisterAction(action *Action) bool {
	if action.Private {
		return false
	}
	if !strings.EqualFold(action.Name, "Default") {
		return false
	}
	d.byNamespace[action.Namespace] = action
	d.order = append(d.order, action)
	return true
}

func (d *DefaultDispatchType) Freeze(reg *ActionRegistry) error { return nil }

// Match tries prefix itself as a namespace first (the longest candidate
// the shortening loop has offered this iteration); the loop's outer
// iteration over successively shorter prefixes is what actually realizes
// "walk the path upward", so Match here only needs to test one prefix
// per call. The top-level namespace "" is only tried when the loop offers
// the empty prefix, after every longer prefix has failed.
func (d *DefaultDispatchType) Match(ctx *Context, prefix []string) bool {
	ns := strings.Join(prefix, "/")
	action, ok := d.byNamespace[ns]
	if !ok {
		return false
	}
	if !action.MatchesArgCount(len(ctx.Args)) {
		return false
	}
	ctx.Namespace = action.Namespace
	ctx.MatchString = ns
	ctx.Chain = []ChainStep{{Action: action}}
	return true
}

func (d *DefaultDispatchType) URIFor(action *Action, captures []string, args []string) (string, bool) {
	for ns, a := range d.byNamespace {
		if a == action {
			segs := append([]string{}, strings.Split(ns, "/")...)
			segs = append(segs, args...)
			return "/" + strings.Trim(strings.Join(segs, "/"), "/"), true
		}
	}
	return "", false
}

func (d *DefaultDispatchType) List() []RouteInfo {
	out := make([]RouteInfo, 0, len(d.order))
	for _, a := range d.order {
		out = append(out, RouteInfo{DispatchType: d.Name(), Pattern: "/" + a.Namespace + "/*", PrivateName: a.PrivateName})
	}
	return out
}
