package dispatch

import (
	"errors"
	"fmt"
)

// Sentinel error kinds the core distinguishes (§7 Error Handling Design).
var (
	// ErrUnknownResource means no DispatchType matched the request path.
	ErrUnknownResource = errors.New("dispatch: unknown resource")
	// ErrRecursionExceeded means Forward/Detach recursion hit the
	// configured RECURSION limit.
	ErrRecursionExceeded = errors.New("dispatch: recursion limit exceeded")
	// ErrForwardTargetNotFound means Forward was called with a private
	// name not present in the ActionRegistry.
	ErrForwardTargetNotFound = errors.New("dispatch: forward target not found")
	// ErrActionFailed wraps an error returned by user action code.
	ErrActionFailed = errors.New("dispatch: action failed")
)

// UnknownResourceError carries the request path with its leading slash
// removed (as PrepareAction splits it), used to render the
// exact literal body required by property P7: "Unknown resource '<path>'.".
type UnknownResourceError struct {
	Path string
}

func (e *UnknownResourceError) Error() string {
	return fmt.Sprintf("Unknown resource '%s'.", e.Path)
}

func (e *UnknownResourceError) Unwrap() error { return ErrUnknownResource }
