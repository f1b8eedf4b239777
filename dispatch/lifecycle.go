package dispatch

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

// Phase is one position in the request lifecycle state machine (§4.6):
//
//	CREATED -> PREPARED -> DISPATCHING -> FINALIZING_HEADERS
//	                            | (error)        |
//	                       ERROR_FINALIZING -> FINALIZING_BODY -> DONE
type Phase int

const (
	PhaseCreated Phase = iota
	PhasePrepared
	PhaseDispatching
	PhaseFinalizingHeaders
	PhaseErrorFinalizing
	PhaseFinalizingBody
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "CREATED"
	case PhasePrepared:
		return "PREPARED"
	case PhaseDispatching:
		return "DISPATCHING"
	case PhaseFinalizingHeaders:
		return "FINALIZING_HEADERS"
	case PhaseErrorFinalizing:
		return "ERROR_FINALIZING"
	case PhaseFinalizingBody:
		return "FINALIZING_BODY"
	case PhaseDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// Skip bypasses prepare_action and dispatch for the remainder of this
// request; intended for a beforePrepareAction hook that has already
// written a response directly (e.g. a static file plugin).
func (c *Context) Skip() { c.skip = true }

// HandleRequest drives one request through the full lifecycle state
// machine (§4.6): hooks, prepare_action, dispatch, then header/body
// finalization against the transport collaborator. It returns no error to
// the caller — every failure, including a panic raised inside an action
// handler, is converted into an HTTP response on ctx.Resp, per §7's
// propagation policy.
func (e *Engine) HandleRequest(req Request, resp ResponseWriter) *Context {
	ctx := NewContext(req, resp)
	ctx.engine = e
	ctx.RequestID = newRequestID()
	ctx.phase = PhaseCreated

	log := e.log.WithField("request_id", ctx.RequestID).WithField("path", req.Path())

	for _, hook := range e.hooks.BeforePrepareAction {
		hook(ctx)
	}

	if !ctx.skip {
		if err := e.PrepareAction(ctx); err != nil {
			ctx.AddError(err)
		}
	}
	ctx.phase = PhasePrepared

	if !ctx.skip {
		for _, hook := range e.hooks.AfterPrepareAction {
			hook(ctx)
		}
		for _, hook := range e.hooks.BeforeDispatch {
			hook(ctx)
		}

		ctx.phase = PhaseDispatching
		if len(ctx.Errors) == 0 {
			if err := e.Dispatch(ctx); err != nil {
				ctx.AddError(err)
			}
		}

		for _, hook := range e.hooks.AfterDispatch {
			hook(ctx)
		}
	}

	ctx.phase = PhaseFinalizingHeaders
	if len(ctx.Errors) > 0 {
		ctx.phase = PhaseErrorFinalizing
		finalizeErrors(ctx, log)
	}

	ctx.phase = PhaseFinalizingBody
	finalizeBody(ctx)

	if err := resp.Finalize(); err != nil {
		log.WithError(err).Error("finalizing response")
	}
	ctx.phase = PhaseDone

	for _, err := range ctx.Errors {
		log.WithError(err).Warn("request completed with errors")
	}

	return ctx
}

// finalizeErrors renders the standardized error response for the first
// unaddressed error, per §7's error-kind table: an UnknownResourceError
// yields 404 with its exact literal body; anything else yields 500 with
// a generic body, and only when the response body is still empty (a
// handler that already wrote a body before failing keeps that body).
func finalizeErrors(ctx *Context, log *logrus.Entry) {
	var unknown *UnknownResourceError
	for _, err := range ctx.Errors {
		if errors.As(err, &unknown) {
			if ctx.Resp.Status() == 0 {
				ctx.Resp.SetStatus(404)
			}
			if ctx.Resp.BodyLen() == 0 {
				ctx.Resp.WriteBody([]byte(unknown.Error()))
			}
			return
		}
	}
	if ctx.Resp.Status() == 0 {
		ctx.Resp.SetStatus(500)
	}
	if ctx.Resp.BodyLen() == 0 {
		ctx.Resp.WriteBody([]byte("Internal Server Error"))
	}
}

// finalizeBody applies HEAD/204/3xx body suppression (§4.6, property P6):
// the transport collaborator is expected to have already set
// Content-Length from the body that was written; clearing the body here
// does not retroactively change that header, matching "preserving
// Content-Length".
func finalizeBody(ctx *Context) {
	if strings.EqualFold(ctx.Req.Method(), "HEAD") {
		ctx.Resp.WriteBody(nil)
		return
	}
	status := ctx.Resp.Status()
	if status == 204 || (status >= 300 && status < 400) {
		if ctx.Resp.Header("Location") != "" || status == 204 {
			ctx.Resp.WriteBody(nil)
		}
	}
}
