package echoadapter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/evalgo-org/cutelyst-go/dispatch"
)

type pingController struct{}

func (c *pingController) Ping(ctx *dispatch.Context, _ dispatch.Global) (bool, error) {
	ctx.Resp.WriteBody([]byte("pong"))
	return true, nil
}

func newPingEngine(t *testing.T) *dispatch.Engine {
	t.Helper()
	e := dispatch.NewEngine(dispatch.DefaultEngineConfig(), nil)
	if _, err := e.RegisterController(&pingController{}, nil); err != nil {
		t.Fatalf("RegisterController: %v", err)
	}
	if err := e.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	return e
}

func TestMountServesMatchedRoute(t *testing.T) {
	engine := newPingEngine(t)
	srv := echo.New()
	Mount(srv, engine)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "pong" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "pong")
	}
}

func TestMountSurfacesUnknownResource(t *testing.T) {
	engine := dispatch.NewEngine(dispatch.DefaultEngineConfig(), nil)
	if err := engine.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	srv := echo.New()
	Mount(srv, engine)

	req := httptest.NewRequest(http.MethodGet, "/no/such/path", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
