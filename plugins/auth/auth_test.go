package auth

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/evalgo-org/cutelyst-go/dispatch"
	redisqueue "github.com/evalgo-org/cutelyst-go/queue/redis"
	"github.com/evalgo-org/cutelyst-go/security"
)

type protectedController struct{}

func (c *protectedController) Secret(ctx *dispatch.Context, _ dispatch.Global) (bool, error) {
	ctx.Resp.WriteBody([]byte("ok"))
	return true, nil
}

func classInfo() map[string]string {
	return map[string]string{"Secret_Auth": "", "Secret_RoleACL": "admin,editor"}
}

func newTestEngine(t *testing.T, jwtSvc *security.JWTService) *dispatch.Engine {
	t.Helper()
	e := dispatch.NewEngine(dispatch.DefaultEngineConfig(), nil)
	if _, err := e.RegisterController(&protectedController{}, classInfo()); err != nil {
		t.Fatalf("RegisterController: %v", err)
	}
	if err := e.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	New(jwtSvc, nil).Install(e)
	return e
}

// fakeRequest is a minimal dispatch.Request used only by this package's
// tests, standing in for the transport collaborator.
type fakeRequest struct {
	method string
	path   string
	auth   string
}

func (r *fakeRequest) Method() string   { return r.method }
func (r *fakeRequest) Path() string     { return r.path }
func (r *fakeRequest) RawQuery() string { return "" }
func (r *fakeRequest) Header(name string) string {
	if name == "Authorization" {
		return r.auth
	}
	return ""
}
func (r *fakeRequest) Headers() map[string][]string  { return nil }
func (r *fakeRequest) Cookie(string) (string, bool)   { return "", false }
func (r *fakeRequest) QueryParam(string) string       { return "" }
func (r *fakeRequest) FormValue(string) string        { return "" }
func (r *fakeRequest) Body() io.Reader                { return bytes.NewReader(nil) }
func (r *fakeRequest) RemoteAddr() string             { return "127.0.0.1:0" }

type fakeResponse struct {
	status int
	body   bytes.Buffer
}

func (w *fakeResponse) SetStatus(code int)           { w.status = code }
func (w *fakeResponse) Status() int                  { return w.status }
func (w *fakeResponse) SetHeader(string, string)     {}
func (w *fakeResponse) AddHeader(string, string)     {}
func (w *fakeResponse) Header(string) string         { return "" }
func (w *fakeResponse) WriteBody(b []byte) (int, error) {
	if b == nil {
		w.body.Reset()
		return 0, nil
	}
	return w.body.Write(b)
}
func (w *fakeResponse) BodyLen() int  { return w.body.Len() }
func (w *fakeResponse) Finalize() error { return nil }

func TestMissingBearerTokenRejected(t *testing.T) {
	jwtSvc := security.NewJWTService("secret")
	e := newTestEngine(t, jwtSvc)

	req := &fakeRequest{method: "GET", path: "/secret"}
	resp := &fakeResponse{}
	ctx := e.HandleRequest(req, resp)

	if resp.status != 401 {
		t.Errorf("status = %d, want 401", resp.status)
	}
	if !ctx.Detached() {
		t.Errorf("expected ctx to be detached")
	}
}

func TestValidTokenWithAllowedRolePasses(t *testing.T) {
	jwtSvc := security.NewJWTService("secret")
	e := newTestEngine(t, jwtSvc)

	token, err := jwtSvc.GenerateTokenWithClaims("user1", time.Hour, map[string]interface{}{"role": "admin"})
	if err != nil {
		t.Fatalf("GenerateTokenWithClaims: %v", err)
	}

	req := &fakeRequest{method: "GET", path: "/secret", auth: "Bearer " + token}
	resp := &fakeResponse{}
	e.HandleRequest(req, resp)

	if resp.body.String() != "ok" {
		t.Errorf("body = %q, want %q", resp.body.String(), "ok")
	}
}

func TestMissingBearerTokenEnqueuesAuditJob(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	defer mr.Close()

	q, err := redisqueue.NewQueue(context.Background(), redisqueue.Config{RedisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	defer q.Close()

	e := dispatch.NewEngine(dispatch.DefaultEngineConfig(), nil)
	if _, err := e.RegisterController(&protectedController{}, classInfo()); err != nil {
		t.Fatalf("RegisterController: %v", err)
	}
	if err := e.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	New(security.NewJWTService("secret"), nil).WithAuditQueue(q).Install(e)

	req := &fakeRequest{method: "GET", path: "/secret"}
	resp := &fakeResponse{}
	e.HandleRequest(req, resp)

	if resp.status != 401 {
		t.Fatalf("status = %d, want 401", resp.status)
	}

	depth, err := q.GetQueueDepth(auditQueueName)
	if err != nil {
		t.Fatalf("GetQueueDepth: %v", err)
	}
	if depth != 1 {
		t.Fatalf("GetQueueDepth(%q) = %d, want 1", auditQueueName, depth)
	}
}

func TestValidTokenWithDisallowedRoleRejected(t *testing.T) {
	jwtSvc := security.NewJWTService("secret")
	e := newTestEngine(t, jwtSvc)

	token, err := jwtSvc.GenerateTokenWithClaims("user1", time.Hour, map[string]interface{}{"role": "guest"})
	if err != nil {
		t.Fatalf("GenerateTokenWithClaims: %v", err)
	}

	req := &fakeRequest{method: "GET", path: "/secret", auth: "Bearer " + token}
	resp := &fakeResponse{}
	e.HandleRequest(req, resp)

	if resp.status != 403 {
		t.Errorf("status = %d, want 403", resp.status)
	}
}
