package dispatch

// RouteInfo is one row of a DispatchType's List() output, used by
// ActionRegistry.DumpTable and the `eve routes` CLI command.
type RouteInfo struct {
	DispatchType string
	Pattern      string
	PrivateName  string
}

// DispatchType is a pluggable match strategy (§3 Data Model). The source's
// virtual base class is replaced, per §9 Design Notes, by a plain interface
// plus a closed set of variants (Path, Chained, Index, Default); precedence
// is a data field read by the orchestrator, not a virtual dispatch at match
// time.
type DispatchType interface {
	// Name identifies the strategy for diagnostics and stable tie-break
	// ordering among same-precedence dispatchers.
	Name() string

	// Precedence orders dispatchers highest-first; Path and Chained are
	// high precedence, Index and Default are low (IsLowPrecedence).
	Precedence() int

	// IsLowPrecedence reports whether this strategy is only attempted
	// after every high-precedence strategy has failed at a given path
	// length (Index, Default).
	IsLowPrecedence() bool

	// RegisterAction offers action to this dispatcher; it returns true
	// if the dispatcher accepted it (the action carries attributes this
	// strategy understands).
	RegisterAction(action *Action) bool

	// Freeze is called once, after every controller has been registered,
	// so the dispatcher can build any secondary index (chain tries,
	// sorted candidate lists) it needs for matching.
	Freeze(reg *ActionRegistry) error

	// Match attempts to resolve prefix (the path segments not yet
	// claimed as trailing args by the orchestrator's shortening loop)
	// against this dispatcher's registrations. ctx.Args already holds
	// the segments already stripped into trailing args by the caller;
	// on success Match populates ctx.Chain, ctx.Captures, ctx.Namespace
	// and ctx.MatchString and returns true.
	Match(ctx *Context, prefix []string) bool

	// URIFor reverses (action, captures, args) into a path (without
	// scheme/host), per §4.7. ok is false if this dispatcher did not
	// register action.
	URIFor(action *Action, captures []string, args []string) (path string, ok bool)

	// List returns every public route this dispatcher knows about, for
	// diagnostics.
	List() []RouteInfo
}
