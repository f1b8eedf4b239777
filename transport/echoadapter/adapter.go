// Package echoadapter wires dispatch.Engine into an echo.Echo server: it
// adapts echo.Context to the dispatch.Request/dispatch.ResponseWriter
// collaborator interfaces (§6) and registers a catch-all route that hands
// every request to Engine.HandleRequest.
package echoadapter

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/evalgo-org/cutelyst-go/dispatch"
)

// echoRequest adapts echo.Context's inbound request to dispatch.Request.
type echoRequest struct {
	c echo.Context
}

func (r *echoRequest) Method() string     { return r.c.Request().Method }
func (r *echoRequest) Path() string       { return r.c.Request().URL.Path }
func (r *echoRequest) RawQuery() string   { return r.c.Request().URL.RawQuery }
func (r *echoRequest) RemoteAddr() string { return r.c.Request().RemoteAddr }
func (r *echoRequest) Body() io.Reader    { return r.c.Request().Body }

func (r *echoRequest) Header(name string) string {
	return r.c.Request().Header.Get(name)
}

func (r *echoRequest) Headers() map[string][]string {
	return map[string][]string(r.c.Request().Header)
}

func (r *echoRequest) Cookie(name string) (string, bool) {
	ck, err := r.c.Cookie(name)
	if err != nil {
		return "", false
	}
	return ck.Value, true
}

func (r *echoRequest) QueryParam(name string) string {
	return r.c.QueryParam(name)
}

func (r *echoRequest) FormValue(name string) string {
	return r.c.FormValue(name)
}

// echoResponse adapts echo.Context's response writer to
// dispatch.ResponseWriter. Unlike the request side, the body is buffered
// rather than streamed directly to the echo.Response writer, since
// dispatch.ResponseWriter.BodyLen/WriteBody(nil) (used by the HEAD/204
// body-suppression rule in lifecycle.go's finalizeBody) need to inspect
// and truncate what has been written so far before Finalize flushes it.
type echoResponse struct {
	c      echo.Context
	status int
	body   []byte
}

// SetStatus/Status intentionally preserve a zero value until a handler or
// finalizeErrors explicitly sets one (dispatch.ResponseWriter's contract:
// 0 means "nothing has chosen a status yet"). Finalize substitutes 200
// only at the point of writing to the real http.ResponseWriter.
func (r *echoResponse) SetStatus(code int) { r.status = code }
func (r *echoResponse) Status() int        { return r.status }

func (r *echoResponse) SetHeader(name, value string) {
	r.c.Response().Header().Set(name, value)
}

func (r *echoResponse) AddHeader(name, value string) {
	r.c.Response().Header().Add(name, value)
}

func (r *echoResponse) Header(name string) string {
	return r.c.Response().Header().Get(name)
}

func (r *echoResponse) WriteBody(b []byte) (int, error) {
	if b == nil {
		r.body = nil
		return 0, nil
	}
	r.body = append(r.body, b...)
	return len(b), nil
}

func (r *echoResponse) BodyLen() int { return len(r.body) }

// Finalize flushes the buffered status and body to the underlying
// echo.Response, the one point at which bytes actually leave the adapter
// (§4.6 FINALIZING_BODY -> DONE).
func (r *echoResponse) Finalize() error {
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	r.c.Response().WriteHeader(status)
	if r.body == nil {
		return nil
	}
	_, err := r.c.Response().Write(r.body)
	return err
}

// Handler returns an echo.HandlerFunc that drives engine's full request
// lifecycle (§4.6) for every matched route, surfacing any accumulated
// ctx.Errors through echo's error return so Recover/Logger middleware
// still observe them.
func Handler(engine *dispatch.Engine) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := &echoRequest{c: c}
		resp := &echoResponse{c: c}
		ctx := engine.HandleRequest(req, resp)
		if len(ctx.Errors) > 0 {
			return ctx.Errors[len(ctx.Errors)-1]
		}
		return nil
	}
}

// Mount registers a catch-all route on e so dispatch.Engine becomes the
// sole router for every method and path, matching Cutelyst's model of one
// dispatcher owning the whole request space.
func Mount(e *echo.Echo, engine *dispatch.Engine) {
	e.Any("/*", Handler(engine))
}
