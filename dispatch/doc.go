// Package dispatch implements the request dispatch core of a Cutelyst-style
// HTTP application framework: an Action registry populated by reflection over
// controller structs, a pluggable dispatcher pipeline (Path, Chained, Index,
// Default) evaluated in precedence order, a chained dispatch algorithm that
// composes multi-segment paths into call chains with captures, a request
// lifecycle state machine that drives before/after hooks and finalization,
// and a URI inversion function that regenerates a canonical URL from an
// action identifier and its captures.
//
// The package deliberately knows nothing about the wire protocol, the TCP/TLS
// server, view rendering, or any end-user plugin (authentication, sessions,
// CSRF, static files). Those sit above or beside the core and consume the
// Transport, DispatchType and hook interfaces this package exposes. See
// transport/echoadapter for the concrete adapter that package cli mounts on
// the echo server built by github.com/evalgo-org/cutelyst-go/http,
// and plugins/auth and plugins/session for examples of the kind of plugin
// this package is meant to support.
package dispatch
