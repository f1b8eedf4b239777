package dispatch

import "strings"

// pathEntry is one action registered under the Path strategy.
type pathEntry struct {
	path   string // normalized, leading-slash-stripped, no trailing slash
	action *Action
}

// PathDispatchType matches a request path against actions carrying an
// explicit "Path" attribute (Global/Local/PathAttr markers, or an
// explicit classInfo "Path" entry), per §4.2. It is high precedence:
// an exact Path match always wins over Index/Default at the same
// remaining-segment count.
type PathDispatchType struct {
	byPath map[string][]*Action
	list   []pathEntry
}

func NewPathDispatchType() *PathDispatchType {
	return &PathDispatchType{byPath: make(map[string][]*Action)}
}

func (d *PathDispatchType) Name() string          { return "Path" }
func (d *PathDispatchType) Precedence() int        { return 100 }
func (d *PathDispatchType) IsLowPrecedence() bool { return false }

func normalizePath(p string) string {
	p = strings.Trim(p, "/")
	return p
}

// RegisterAction accepts any action carrying a "Path" attribute.
func (d *PathDispatchType) RegisterAction(action *Action) bool {
	if action.Private || !action.Attrs.Has("Path") {
		return false
	}
	raw, _ := action.Attrs.Get("Path")
	key := normalizePath(raw)
	d.byPath[key] = append(d.byPath[key], action)
	d.list = append(d.list, pathEntry{path: key, action: action})
	return true
}

func (d *PathDispatchType) Freeze(reg *ActionRegistry) error {
	return nil
}

// Match requires prefix, joined with "/", to equal a registered Path
// exactly — the unified shortening loop (§4.5) already holds the
// candidate trailing segments in ctx.Args, so Match only needs to pick,
// among the actions sharing that Path, the one whose arity matches.
// "Longer path prefix preferred" (tie-break ii) falls out of the loop's
// own outer iteration order rather than being decided here: the caller
// tries progressively shorter prefixes, so a longer prefix match is
// always attempted, and therefore found, first.
func (d *PathDispatchType) Match(ctx *Context, prefix []string) bool {
	key := strings.Join(prefix, "/")
	candidates, ok := d.byPath[key]
	if !ok {
		return false
	}
	// (i) exact fixed Args preferred over variadic.
	var chosen *Action
	for _, a := range candidates {
		if a.ArgCount != ArgsVariadic && a.ArgCount == len(ctx.Args) {
			chosen = a
			break
		}
	}
	if chosen == nil {
		for _, a := range candidates {
			if a.ArgCount == ArgsVariadic {
				chosen = a
				break
			}
		}
	}
	if chosen == nil {
		return false
	}
	ctx.Namespace = chosen.Namespace
	ctx.MatchString = key
	ctx.Chain = []ChainStep{{Action: chosen, Captures: nil}}
	return true
}

// URIFor reverses a Path action back to "/<path>[/<args>...]".
func (d *PathDispatchType) URIFor(action *Action, captures []string, args []string) (string, bool) {
	for _, e := range d.list {
		if e.action == action {
			segs := []string{e.path}
			segs = append(segs, args...)
			return "/" + strings.Trim(strings.Join(segs, "/"), "/"), true
		}
	}
	return "", false
}

func (d *PathDispatchType) List() []RouteInfo {
	out := make([]RouteInfo, 0, len(d.list))
	for _, e := range d.list {
		out = append(out, RouteInfo{DispatchType: d.Name(), Pattern: "/" + e.path, PrivateName: e.action.PrivateName})
	}
	return out
}
