package dispatch

import "reflect"

// Marker parameter types translate CutelystAction's QMetaMethod parameter
// type scan (cutelystaction.cpp's constructor) into Go's reflect package: a
// handler method declares zero or more leading string parameters (each
// worth one path segment of arity), optionally followed by exactly one
// marker value that tells the registry which attribute that arity belongs
// to. A handler with no marker and no leading strings is a plain private
// action, reachable only via Forward.
//
//	func (c *Users) Detail(ctx *dispatch.Context, id string, _ dispatch.Args) (bool, error)
//	func (c *Users) Root(ctx *dispatch.Context, _ dispatch.Global) (bool, error)
//	func (c *Users) List(ctx *dispatch.Context, _ dispatch.Local) (bool, error)
type (
	// Global sets Path to "/" plus a segment derived from the method name
	// (split at case boundaries and lowercased, so "GetUser" gives
	// "/get/user"), ignoring the controller's namespace entirely.
	Global struct{}
	// Local sets Path to the same method-name-derived segment, resolved
	// under the controller's namespace.
	Local struct{}
	// PathAttr sets Path to the controller's own namespace (the bare
	// "Path" attribute of §6's schema table).
	PathAttr struct{}
	// Args records the preceding string-parameter count as this
	// action's Args attribute (a fixed arity endpoint).
	Args struct{}
	// ArgsAny records a variadic Args attribute (ArgsVariadic).
	ArgsAny struct{}
	// CaptureArgs records the preceding string-parameter count as this
	// action's CaptureArgs attribute (a Chained midpoint).
	CaptureArgs struct{}
)

var (
	typeContext     = reflect.TypeOf((*Context)(nil))
	typeGlobal      = reflect.TypeOf(Global{})
	typeLocal       = reflect.TypeOf(Local{})
	typePathAttr    = reflect.TypeOf(PathAttr{})
	typeArgs        = reflect.TypeOf(Args{})
	typeArgsAny     = reflect.TypeOf(ArgsAny{})
	typeCaptureArgs = reflect.TypeOf(CaptureArgs{})
	typeString      = reflect.TypeOf("")
)
