package session

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/evalgo-org/cutelyst-go/dispatch"
)

type noteController struct{}

func (c *noteController) Note(ctx *dispatch.Context, _ dispatch.Global) (bool, error) {
	if v, ok := Get(ctx, "visits"); ok {
		ctx.Resp.WriteBody([]byte(v))
	} else {
		ctx.Resp.WriteBody([]byte("0"))
	}
	Set(ctx, "visits", "1")
	return true, nil
}

type fakeRequest struct {
	path   string
	cookie string
}

func (r *fakeRequest) Method() string   { return "GET" }
func (r *fakeRequest) Path() string     { return r.path }
func (r *fakeRequest) RawQuery() string { return "" }
func (r *fakeRequest) Header(string) string { return "" }
func (r *fakeRequest) Headers() map[string][]string { return nil }
func (r *fakeRequest) Cookie(name string) (string, bool) {
	if name == cookieName && r.cookie != "" {
		return r.cookie, true
	}
	return "", false
}
func (r *fakeRequest) QueryParam(string) string { return "" }
func (r *fakeRequest) FormValue(string) string  { return "" }
func (r *fakeRequest) Body() io.Reader    { return bytes.NewReader(nil) }
func (r *fakeRequest) RemoteAddr() string { return "" }

type fakeResponse struct {
	headers map[string]string
	body    []byte
	status  int
}

func newFakeResponse() *fakeResponse { return &fakeResponse{headers: map[string]string{}} }

func (w *fakeResponse) SetStatus(code int)       { w.status = code }
func (w *fakeResponse) Status() int              { return w.status }
func (w *fakeResponse) SetHeader(n, v string)     { w.headers[n] = v }
func (w *fakeResponse) AddHeader(n, v string)     { w.headers[n] = v }
func (w *fakeResponse) Header(n string) string    { return w.headers[n] }
func (w *fakeResponse) WriteBody(b []byte) (int, error) {
	if b == nil {
		w.body = nil
		return 0, nil
	}
	w.body = append(w.body, b...)
	return len(b), nil
}
func (w *fakeResponse) BodyLen() int    { return len(w.body) }
func (w *fakeResponse) Finalize() error { return nil }

func TestSessionPersistsAcrossRequests(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store, err := New(context.Background(), Config{RedisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	defer store.Close()

	e := dispatch.NewEngine(dispatch.DefaultEngineConfig(), nil)
	_, err = e.RegisterController(&noteController{}, nil)
	require.NoError(t, err)
	require.NoError(t, e.Freeze())
	store.Install(e)

	req1 := &fakeRequest{path: "/note"}
	resp1 := newFakeResponse()
	e.HandleRequest(req1, resp1)
	require.Equal(t, "0", string(resp1.body))

	sessionID := req1Cookie(resp1)
	require.NotEmpty(t, sessionID)

	req2 := &fakeRequest{path: "/note", cookie: sessionID}
	resp2 := newFakeResponse()
	e.HandleRequest(req2, resp2)
	require.Equal(t, "1", string(resp2.body))
}

func req1Cookie(resp *fakeResponse) string {
	header := resp.headers["Set-Cookie"]
	prefix := cookieName + "="
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return ""
	}
	rest := header[len(prefix):]
	for i, c := range rest {
		if c == ';' {
			return rest[:i]
		}
	}
	return rest
}
