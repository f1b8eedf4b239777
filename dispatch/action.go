package dispatch

import "fmt"

// ArgsVariadic is the sentinel stored in Action.ArgCount and
// Action.CaptureCount to mean "any number of segments", i.e. an Args or
// CaptureArgs attribute declared without a fixed value.
const ArgsVariadic = -1

// Attributes is an insertion-ordered, repeatable-value multimap of
// action/controller metadata, mirroring CutelystAction's QMultiHash<QString,
// QString> (see cutelystaction.cpp). Keys preserve first-seen order so
// diagnostic output (ActionRegistry.DumpTable, the `eve routes` CLI command)
// is stable across runs.
type Attributes struct {
	keys   []string
	values map[string][]string
}

// NewAttributes returns an empty, ready-to-use Attributes multimap.
func NewAttributes() *Attributes {
	return &Attributes{values: make(map[string][]string)}
}

// Add appends value under key, preserving insertion order of both keys and
// repeated values for the same key.
func (a *Attributes) Add(key, value string) {
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = append(a.values[key], value)
}

// Get returns the first value registered for key.
func (a *Attributes) Get(key string) (string, bool) {
	vs, ok := a.values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// All returns every value registered for key, in insertion order.
func (a *Attributes) All(key string) []string {
	return append([]string(nil), a.values[key]...)
}

// Has reports whether key was ever set, even with an empty value.
func (a *Attributes) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

// Keys returns every distinct key in first-seen order.
func (a *Attributes) Keys() []string {
	return append([]string(nil), a.keys...)
}

// HandlerFunc is the signature every registered action method must satisfy.
// args holds the positional segments consumed by this action (its own Args
// or CaptureArgs count); ret reports whether the chain should continue
// (mirrors CutelystAction::dispatch's boolean "methodRet" / ctx.setState).
type HandlerFunc func(ctx *Context, args []string) (ret bool, err error)

// Action is an immutable handler descriptor, constructed once during the
// registry's setup phase and never mutated afterward (§3 Data Model).
type Action struct {
	// PrivateName is the absolute, namespace-qualified path uniquely
	// identifying this action within the registry, e.g. "/users/detail".
	PrivateName string
	// Namespace is the owning controller's namespace.
	Namespace string
	// Name is the declared method identifier, e.g. "Detail".
	Name string
	// Controller is a non-owning back-reference to the owning controller.
	Controller *Controller
	// Attrs carries every decorated attribute parsed at registration time.
	Attrs *Attributes
	// ArgCount is the expected trailing argument count, or ArgsVariadic.
	ArgCount int
	// CaptureCount is the expected Chained capture count (0 if none).
	CaptureCount int
	// Valid is false when the first handler parameter was not *Context;
	// such actions are registered nowhere and are never dispatched.
	Valid bool
	// Private marks an action unreachable from any public DispatchType;
	// it remains callable via Forward by private name.
	Private bool
	// Handler is the bound invocation function.
	Handler HandlerFunc
}

// String renders the action the way CutelystDispatcher::printActions lists
// one row (private name, class, method).
func (a *Action) String() string {
	class := "?"
	if a.Controller != nil {
		class = a.Controller.Name
	}
	return fmt.Sprintf("%s | %s | %s", a.PrivateName, class, a.Name)
}

// MatchesArgCount reports whether n trailing segments satisfy this action's
// Args attribute: any n for a variadic Args, otherwise only n equal to
// ArgCount (which is 0 when no Args attribute was declared).
func (a *Action) MatchesArgCount(n int) bool {
	return a.ArgCount == ArgsVariadic || a.ArgCount == n
}

// MatchesCaptureCount reports whether n segments satisfy this action's
// CaptureArgs attribute.
func (a *Action) MatchesCaptureCount(n int) bool {
	return a.CaptureCount == ArgsVariadic || a.CaptureCount == n
}
