package dispatch

import (
	"bytes"
	"io"
)

// fakeRequest is a minimal Request implementation used across the
// package's tests, standing in for the transport collaborator.
type fakeRequest struct {
	method  string
	path    string
	query   string
	headers map[string]string
	cookies map[string]string
	form    map[string]string
}

func newFakeRequest(method, path string) *fakeRequest {
	return &fakeRequest{method: method, path: path, headers: map[string]string{}}
}

func (r *fakeRequest) Method() string    { return r.method }
func (r *fakeRequest) Path() string      { return r.path }
func (r *fakeRequest) RawQuery() string  { return r.query }
func (r *fakeRequest) Header(n string) string {
	return r.headers[n]
}
func (r *fakeRequest) Headers() map[string][]string {
	out := make(map[string][]string, len(r.headers))
	for k, v := range r.headers {
		out[k] = []string{v}
	}
	return out
}
func (r *fakeRequest) Cookie(name string) (string, bool) {
	v, ok := r.cookies[name]
	return v, ok
}
func (r *fakeRequest) QueryParam(name string) string { return "" }
func (r *fakeRequest) FormValue(name string) string  { return r.form[name] }
func (r *fakeRequest) Body() io.Reader               { return bytes.NewReader(nil) }
func (r *fakeRequest) RemoteAddr() string            { return "127.0.0.1:0" }

// fakeResponse is a minimal ResponseWriter implementation recording
// everything written to it.
type fakeResponse struct {
	status  int
	headers map[string]string
	body    bytes.Buffer
}

func newFakeResponse() *fakeResponse {
	return &fakeResponse{headers: map[string]string{}}
}

func (w *fakeResponse) SetStatus(code int)         { w.status = code }
func (w *fakeResponse) Status() int                { return w.status }
func (w *fakeResponse) SetHeader(name, value string) { w.headers[name] = value }
func (w *fakeResponse) AddHeader(name, value string) { w.headers[name] = value }
func (w *fakeResponse) Header(name string) string    { return w.headers[name] }
func (w *fakeResponse) WriteBody(b []byte) (int, error) {
	if b == nil {
		w.body.Reset()
		return 0, nil
	}
	return w.body.Write(b)
}
func (w *fakeResponse) BodyLen() int { return w.body.Len() }
func (w *fakeResponse) Finalize() error { return nil }
