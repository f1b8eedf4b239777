package dispatch

// ChainStep is one resolved link of a matched Chained dispatch (or the
// single-element chain produced by Path/Index/Default): the action to
// invoke and the captures consumed specifically by that link.
type ChainStep struct {
	Action   *Action
	Captures []string
}

// Context is the mutable per-request object exclusively owned by the
// lifecycle driver for the duration of one request (§3 Data Model). It is
// never shared across requests and never outlives the request it was
// created for.
type Context struct {
	Req  Request
	Resp ResponseWriter

	engine *Engine

	// RequestID is a per-request correlation id, generated once during
	// CREATED->PREPARED and threaded through log fields.
	RequestID string

	// Namespace is the namespace prefix of the matched (or in-progress)
	// dispatch.
	Namespace string
	// MatchString is the literal path the winning DispatchType matched
	// against (empty for an Index match, per §4.4).
	MatchString string
	// Args are the trailing positional segments consumed by the
	// terminal action of Chain, percent-decoded.
	Args []string
	// Captures are the accumulated Chained captures across every
	// midpoint link, in link order.
	Captures []string
	// Chain is the ordered list of actions to invoke for this request:
	// a single element for Path/Index/Default matches, or the full
	// midpoint+endpoint sequence for a Chained match.
	Chain []ChainStep

	// action is the action currently executing (§3 invariant i: exactly
	// one current action pointer at any time).
	action *Action

	// Stash is shared, mutable, request-scoped state visible to every
	// action in the chain.
	Stash Stash
	// Plugins holds per-plugin private sub-mappings, keyed by plugin
	// name, so unrelated plugins never collide on stash keys.
	Plugins map[string]Stash

	// Errors accumulates every action failure; the chain continues
	// unless Detach was also called (§4.6 failure semantics).
	Errors []error

	// state is the boolean return of the last invoked action, read by
	// Auto-gating and by Forward's caller.
	state bool
	// detached is set by Detach; subsequent user-phase invocations
	// check it and return immediately.
	detached bool

	// actionStack tracks nested Forward invocations for the RECURSION
	// guard (§4.5, §8 scenario 6).
	actionStack []string

	skip bool // set by a beforePrepareAction hook to bypass dispatch entirely

	phase Phase // current lifecycle state machine position (§4.6)
}

// Phase returns the request's current position in the lifecycle state
// machine (CREATED, PREPARED, DISPATCHING, ...).
func (c *Context) Phase() Phase { return c.phase }

// NewContext constructs a fresh, empty Context bound to one request.
func NewContext(req Request, resp ResponseWriter) *Context {
	return &Context{
		Req:     req,
		Resp:    resp,
		Stash:   make(Stash),
		Plugins: make(map[string]Stash),
	}
}

// Action returns the action currently executing, or nil before dispatch.
func (c *Context) Action() *Action { return c.action }

// Arg returns the i-th trailing argument, or "" if i is out of range —
// preserving cutelystaction.cpp::dispatch's "never read past the end"
// ergonomics without that implementation's fixed eight-slot padding.
func (c *Context) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// State returns the boolean result of the most recently invoked action.
func (c *Context) State() bool { return c.state }

// SetState records the boolean result of the most recently invoked action.
func (c *Context) SetState(v bool) { c.state = v }

// Detached reports whether Detach has been called on this request.
func (c *Context) Detached() bool { return c.detached }

// Detach short-circuits remaining user-phase actions; End actions and
// finalization still run (§4.6, §5 Cancellation).
func (c *Context) Detach() { c.detached = true }

// AddError appends an error to the request's error list without stopping
// the chain (the caller decides separately whether to also Detach).
func (c *Context) AddError(err error) {
	if err != nil {
		c.Errors = append(c.Errors, err)
	}
}

// PluginStash returns (creating if necessary) the private stash
// sub-mapping for the named plugin.
func (c *Context) PluginStash(name string) Stash {
	s, ok := c.Plugins[name]
	if !ok {
		s = make(Stash)
		c.Plugins[name] = s
	}
	return s
}

// Engine returns the owning Engine, for plugins that need registry lookups
// (e.g. URIFor) without threading it through every call site.
func (c *Context) Engine() *Engine { return c.engine }
