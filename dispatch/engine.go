package dispatch

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Engine ties the action registry, the frozen dispatcher pipeline, and the
// request lifecycle driver together. One Engine is built once at startup
// and handles every subsequent request (§5 Concurrency & Resource Model:
// read-only after Freeze, safe for concurrent use by multiple workers).
type Engine struct {
	reg   *ActionRegistry
	types []DispatchType // sorted by precedence descending, stable by Name within a tier
	cfg   EngineConfig
	log   *logrus.Entry
	hooks Hooks
}

// NewEngine constructs an Engine with the standard Path/Chained/Index/
// Default pipeline. Additional DispatchType implementations can be
// supplied via AddDispatchType before Freeze.
func NewEngine(cfg EngineConfig, log *logrus.Entry) *Engine {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	e := &Engine{
		reg: NewActionRegistry(log),
		cfg: cfg,
		log: log,
	}
	e.AddDispatchType(NewPathDispatchType())
	e.AddDispatchType(NewChainedDispatchType())
	e.AddDispatchType(NewIndexDispatchType())
	e.AddDispatchType(NewDefaultDispatchType())
	return e
}

// AddDispatchType registers an additional match strategy; it must be
// called before Freeze.
func (e *Engine) AddDispatchType(dt DispatchType) {
	e.types = append(e.types, dt)
	sort.SliceStable(e.types, func(i, j int) bool {
		if e.types[i].Precedence() != e.types[j].Precedence() {
			return e.types[i].Precedence() > e.types[j].Precedence()
		}
		return e.types[i].Name() < e.types[j].Name()
	})
}

// Hooks returns the engine's lifecycle hook registration surface.
func (e *Engine) Hooks() *Hooks { return &e.hooks }

// Registry exposes the frozen action registry, for diagnostics and the
// `eve routes` command.
func (e *Engine) Registry() *ActionRegistry { return e.reg }

// Routes aggregates every DispatchType's List() output, sorted by
// DispatchType name then Pattern for stable diagnostic output, for the
// `eve routes` command and diagnostics.Snapshot.
func (e *Engine) Routes() []RouteInfo {
	var out []RouteInfo
	for _, dt := range e.types {
		out = append(out, dt.List()...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DispatchType != out[j].DispatchType {
			return out[i].DispatchType < out[j].DispatchType
		}
		return out[i].Pattern < out[j].Pattern
	})
	return out
}

// RegisterController parses ctrl's action methods and offers each public
// action to every DispatchType, warning if none accepts it (§4.1 step 5).
func (e *Engine) RegisterController(ctrl interface{}, classInfo map[string]string) (*Controller, error) {
	ctl, err := e.reg.RegisterController(ctrl, classInfo)
	if err != nil {
		return nil, err
	}
	for _, action := range ctl.Actions {
		if !action.Valid || action.Private {
			continue
		}
		accepted := 0
		for _, dt := range e.types {
			if dt.RegisterAction(action) {
				accepted++
			}
		}
		if accepted == 0 {
			e.log.WithField("action", action.PrivateName).Warn("no dispatcher accepted this action")
		}
	}
	return ctl, nil
}

// Freeze finalizes registration: no further controllers may be added,
// and every DispatchType builds its secondary indexes.
func (e *Engine) Freeze() error {
	e.reg.frozen = true
	for _, dt := range e.types {
		if err := dt.Freeze(e.reg); err != nil {
			return fmt.Errorf("dispatch: freezing %s: %w", dt.Name(), err)
		}
	}
	return nil
}

// splitPath turns a raw (still percent-encoded) request path into
// segments, preserving a trailing empty segment for a trailing slash
// (§6 "trailing slash is significant for Path matching") and producing
// no segments at all for the bare root.
func splitPath(path string) []string {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// PrepareAction implements §4.5's prepare_action: it iteratively shortens
// the path, moving trailing segments into ctx.Args, trying every
// DispatchType (already precedence-sorted) at each length, until one
// matches or no segments remain. On success ctx.Chain/Namespace/
// MatchString/Captures are populated and ctx.Args is percent-decoded;
// on failure it returns an *UnknownResourceError.
func (e *Engine) PrepareAction(ctx *Context) error {
	segments := splitPath(ctx.Req.Path())

	for k := 0; k <= len(segments); k++ {
		prefixLen := len(segments) - k
		prefix := segments[:prefixLen]
		ctx.Args = segments[prefixLen:]

		for _, dt := range e.types {
			if dt.Match(ctx, prefix) {
				ctx.Args = decodeSegments(ctx.Args)
				ctx.Captures = decodeSegments(ctx.Captures)
				for i, step := range ctx.Chain {
					ctx.Chain[i].Captures = decodeSegments(step.Captures)
				}
				if len(ctx.Chain) > 0 {
					ctx.action = ctx.Chain[len(ctx.Chain)-1].Action
				}
				return nil
			}
		}
	}

	ctx.Args = nil
	return &UnknownResourceError{Path: strings.TrimPrefix(ctx.Req.Path(), "/")}
}

func decodeSegments(segs []string) []string {
	if segs == nil {
		return nil
	}
	out := make([]string, len(segs))
	for i, seg := range segs {
		if unescaped, err := url.PathUnescape(seg); err == nil {
			out[i] = unescaped
		} else {
			out[i] = seg
		}
	}
	return out
}

// Dispatch implements §4.5's dispatch: Begin (outermost first), Auto
// (outer to inner, stopping at the first false), the matched chain in
// order unless an Auto returned false, then End (inner to outer). detach
// short-circuits remaining user-phase actions but never skips End actions.
func (e *Engine) Dispatch(ctx *Context) error {
	if len(ctx.Chain) == 0 {
		return &UnknownResourceError{Path: ctx.Req.Path()}
	}

	controllers := controllerChain(ctx.Chain)

	for _, ctl := range controllers {
		if ctx.Detached() {
			break
		}
		if ctl.Begin == nil {
			continue
		}
		if err := e.invoke(ctx, ctl.Begin, nil); err != nil {
			ctx.AddError(err)
		}
	}

	autoOK := true
	for _, ctl := range controllers {
		if ctx.Detached() {
			break
		}
		if ctl.Auto == nil {
			continue
		}
		if err := e.invoke(ctx, ctl.Auto, nil); err != nil {
			ctx.AddError(err)
		}
		if !ctx.State() {
			autoOK = false
			break
		}
	}

	if autoOK && !ctx.Detached() {
		for _, step := range ctx.Chain {
			if ctx.Detached() {
				break
			}
			if err := e.invoke(ctx, step.Action, step.Captures); err != nil {
				ctx.AddError(err)
			}
		}
	}

	for i := len(controllers) - 1; i >= 0; i-- {
		ctl := controllers[i]
		if ctl.End == nil {
			continue
		}
		if err := e.invoke(ctx, ctl.End, nil); err != nil {
			ctx.AddError(err)
		}
	}

	return nil
}

// controllerChain returns the distinct controllers touched by chain, in
// first-seen order (outermost/root first for a Chained match).
func controllerChain(chain []ChainStep) []*Controller {
	var out []*Controller
	seen := make(map[*Controller]bool)
	for _, step := range chain {
		c := step.Action.Controller
		if c != nil && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func (e *Engine) invoke(ctx *Context, action *Action, captures []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ctx.SetState(false)
			err = fmt.Errorf("%s: %w: panic: %v", action.PrivateName, ErrActionFailed, r)
		}
	}()
	ctx.action = action
	args := ctx.Args
	if captures != nil {
		args = captures
	}
	ok, err := action.Handler(ctx, args)
	ctx.SetState(ok)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", action.PrivateName, ErrActionFailed, err)
	}
	return nil
}

// Forward looks up privateName and invokes it synchronously (§4.5),
// pushing it onto ctx's action stack so nested forwards are legal, and
// aborting with ErrRecursionExceeded once RecursionLimit is hit.
func (e *Engine) Forward(ctx *Context, privateName string, args []string) (bool, error) {
	if len(ctx.actionStack) >= e.cfg.RecursionLimit {
		return false, ErrRecursionExceeded
	}
	action, ok := e.reg.Lookup(privateName)
	if !ok {
		return false, fmt.Errorf("%s: %w", privateName, ErrForwardTargetNotFound)
	}

	ctx.actionStack = append(ctx.actionStack, privateName)
	defer func() { ctx.actionStack = ctx.actionStack[:len(ctx.actionStack)-1] }()

	result, err := action.Handler(ctx, args)
	ctx.SetState(result)
	if err != nil {
		return result, fmt.Errorf("%s: %w", privateName, err)
	}
	return result, nil
}

// URIFor reverses a private action name (or a literal path) into a URL
// (§4.7). Query parameters are percent-encoded and sorted by key for
// determinism. host, if non-empty, turns the result into an absolute URL
// (scheme+host+path, per Property P4's `uri_for(path=/root) → http://host/root`);
// an empty host returns a request-relative path, suitable where only a
// Location header value rather than a fully qualified link is needed.
// host may itself carry an explicit scheme
// (e.g. "https://example.com"); otherwise "http://" is assumed.
func (e *Engine) URIFor(nameOrPath string, captures []string, args []string, query map[string]string, host string) (string, bool) {
	var path string
	if strings.HasPrefix(nameOrPath, "/") {
		if _, ok := e.reg.Lookup(nameOrPath); !ok {
			path = nameOrPath
		}
	}
	if path == "" {
		action, ok := e.reg.Lookup(nameOrPath)
		if !ok {
			return "", false
		}
		found := false
		for _, dt := range e.types {
			if p, ok := dt.URIFor(action, captures, args); ok {
				path = p
				found = true
				break
			}
		}
		if !found {
			return "", false
		}
	}

	if len(query) != 0 {
		keys := make([]string, 0, len(query))
		for k := range query {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		q := url.Values{}
		for _, k := range keys {
			q.Set(k, query[k])
		}
		path = path + "?" + q.Encode()
	}

	if host == "" {
		return path, true
	}
	if strings.Contains(host, "://") {
		return host + path, true
	}
	return "http://" + host + path, true
}

// newRequestID generates a per-request correlation id (§6 transport
// interface; threaded through log fields by callers).
func newRequestID() string {
	return uuid.NewString()
}
