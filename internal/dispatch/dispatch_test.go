package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/unkn0wn-root/playterm/internal/errdef"
	"github.com/unkn0wn-root/playterm/internal/gist"
	"github.com/unkn0wn-root/playterm/internal/history"
	"github.com/unkn0wn-root/playterm/internal/output"
	"github.com/unkn0wn-root/playterm/internal/playground"
	"github.com/unkn0wn-root/playterm/internal/transport"
)

type call struct {
	route string
	body  any
}

type handlerFunc func(ctx context.Context, body any) (any, error)

// fakeTransport answers each route with a handler and records every call.
type fakeTransport struct {
	mu       sync.Mutex
	calls    []call
	handlers map[string]handlerFunc
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{handlers: make(map[string]handlerFunc)}
}

func (f *fakeTransport) on(route string, h handlerFunc) {
	f.mu.Lock()
	f.handlers[route] = h
	f.mu.Unlock()
}

func (f *fakeTransport) Post(ctx context.Context, route string, body any, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, call{route: route, body: body})
	h := f.handlers[route]
	f.mu.Unlock()
	if h == nil {
		return errors.New("no handler for " + route)
	}
	resp, err := h(ctx, body)
	if err != nil {
		return err
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (f *fakeTransport) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func reply(v any) handlerFunc {
	return func(context.Context, any) (any, error) { return v, nil }
}

func reject(err error) handlerFunc {
	return func(context.Context, any) (any, error) { return nil, err }
}

type fakeSnippets struct {
	loaded  gist.Gist
	saved   gist.Gist
	loadErr error
	saveErr error
	code    string
}

func (f *fakeSnippets) Load(_ context.Context, id string) (gist.Gist, error) {
	if f.loadErr != nil {
		return gist.Gist{}, f.loadErr
	}
	g := f.loaded
	g.ID = id
	return g, nil
}

func (f *fakeSnippets) Save(_ context.Context, code string) (gist.Gist, error) {
	f.code = code
	if f.saveErr != nil {
		return gist.Gist{}, f.saveErr
	}
	return f.saved, nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []history.Entry
}

func (r *fakeRecorder) Append(e history.Entry) error {
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
	return nil
}

func (r *fakeRecorder) all() []history.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]history.Entry(nil), r.entries...)
}

func newTestDispatcher(t *testing.T, tr Transport) (*Dispatcher, *fakeRecorder) {
	t.Helper()
	rec := &fakeRecorder{}
	d := New(Config{
		Store:     output.NewStore(),
		Session:   playground.NewSession("fn main(){}", playground.DefaultConfiguration()),
		Transport: tr,
		Snippets:  &fakeSnippets{},
		Recorder:  rec,
	})
	return d, rec
}

func TestExecuteSuccess(t *testing.T) {
	tr := newFakeTransport()
	tr.on(playground.RouteExecute, reply(map[string]any{"success": true, "stdout": "", "stderr": ""}))
	d, _ := newTestDispatcher(t, tr)

	cmd := d.Execute(context.Background())
	if got := d.Store().Get(output.KindExecute).State; got != output.StatePending {
		t.Fatalf("expected pending before the request runs, got %s", got)
	}
	if d.Store().InFlight() != 1 {
		t.Fatalf("expected one request in flight")
	}
	if !d.Apply(cmd()) {
		t.Fatalf("expected completion to apply")
	}

	got := d.Store().Get(output.KindExecute)
	if got != (output.Result{State: output.StateSucceeded}) {
		t.Fatalf("unexpected result %+v", got)
	}
	if d.Store().InFlight() != 0 {
		t.Fatalf("expected nothing in flight")
	}

	calls := tr.recorded()
	if len(calls) != 1 || calls[0].route != playground.RouteExecute {
		t.Fatalf("unexpected calls %+v", calls)
	}
	body := calls[0].body.(playground.ExecuteRequest)
	want := playground.ExecuteRequest{
		Channel:   playground.ChannelStable,
		Mode:      playground.ModeDebug,
		CrateType: playground.CrateBinary,
		Tests:     false,
		Code:      "fn main(){}",
	}
	if body != want {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestCompileToAsm(t *testing.T) {
	tr := newFakeTransport()
	tr.on(playground.RouteCompile, reply(map[string]any{"success": true, "code": "...asm...", "stdout": "", "stderr": ""}))
	d, _ := newTestDispatcher(t, tr)

	d.Apply(d.CompileTo(context.Background(), playground.TargetAssembly)())

	got := d.Store().Get(output.KindAsm)
	if got.State != output.StateSucceeded || got.Code != "...asm..." {
		t.Fatalf("unexpected asm result %+v", got)
	}
	if err := d.Store().SetFocus(output.KindAsm); err != nil {
		t.Fatalf("focus asm: %v", err)
	}
	if d.Store().Focus() != output.KindAsm {
		t.Fatalf("expected asm focus")
	}
	body := tr.recorded()[0].body.(playground.CompileRequest)
	if body.Target != playground.TargetAssembly {
		t.Fatalf("unexpected target %q", body.Target)
	}
	if d.Session().Code() != "fn main(){}" {
		t.Fatalf("compile must not touch the buffer")
	}
}

func TestCompileToMIRUsesOwnSlot(t *testing.T) {
	tr := newFakeTransport()
	tr.on(playground.RouteCompile, func(_ context.Context, body any) (any, error) {
		req := body.(playground.CompileRequest)
		return map[string]any{"success": true, "code": "target=" + string(req.Target)}, nil
	})
	d, _ := newTestDispatcher(t, tr)

	d.Apply(d.CompileTo(context.Background(), playground.TargetMIR)())
	d.Apply(d.CompileTo(context.Background(), playground.TargetLLVMIR)())

	if got := d.Store().Get(output.KindMIR).Code; got != "target=mir" {
		t.Fatalf("unexpected mir code %q", got)
	}
	if got := d.Store().Get(output.KindLLVMIR).Code; got != "target=llvm-ir" {
		t.Fatalf("unexpected llvm code %q", got)
	}
	if d.Store().Get(output.KindAsm).State != output.StateIdle {
		t.Fatalf("asm slot should be untouched")
	}
}

func TestSupersedeLastDispatchWins(t *testing.T) {
	tr := newFakeTransport()
	gate := make(chan struct{})
	tr.on(playground.RouteExecute, func(_ context.Context, body any) (any, error) {
		req := body.(playground.ExecuteRequest)
		if req.Code == "A" {
			<-gate
			return map[string]any{"stdout": "A"}, nil
		}
		return map[string]any{"stdout": "B"}, nil
	})
	d, rec := newTestDispatcher(t, tr)

	d.Session().SetCode("A")
	d.Go(d.Execute(context.Background()))
	d.Session().SetCode("B")
	d.Go(d.Execute(context.Background()))

	waitFor(t, func() bool {
		return d.Store().Get(output.KindExecute).State == output.StateSucceeded
	})
	if d.Store().InFlight() != 1 {
		t.Fatalf("expected the slow request to still be in flight, got %d", d.Store().InFlight())
	}
	close(gate)
	d.Wait()

	got := d.Store().Get(output.KindExecute)
	if got.Stdout != "B" {
		t.Fatalf("expected last dispatch to win, got %+v", got)
	}
	if d.Store().InFlight() != 0 {
		t.Fatalf("expected counter back at zero, got %d", d.Store().InFlight())
	}

	entries := rec.all()
	if len(entries) != 2 {
		t.Fatalf("expected two history entries, got %d", len(entries))
	}
	superseded := 0
	for _, e := range entries {
		if e.Superseded {
			superseded++
			if e.Snippet != "A" {
				t.Fatalf("superseded entry should belong to request A, got %q", e.Snippet)
			}
		}
	}
	if superseded != 1 {
		t.Fatalf("expected exactly one superseded entry, got %d", superseded)
	}
}

func TestSupersedeOutOfOrderApply(t *testing.T) {
	tr := newFakeTransport()
	tr.on(playground.RouteExecute, func(_ context.Context, body any) (any, error) {
		return map[string]any{"stdout": body.(playground.ExecuteRequest).Code}, nil
	})
	d, _ := newTestDispatcher(t, tr)

	d.Session().SetCode("A")
	first := d.Execute(context.Background())
	d.Session().SetCode("B")
	second := d.Execute(context.Background())

	if !d.Apply(second()) {
		t.Fatalf("latest completion should apply")
	}
	if d.Apply(first()) {
		t.Fatalf("stale completion must be dropped")
	}
	if got := d.Store().Get(output.KindExecute).Stdout; got != "B" {
		t.Fatalf("expected B, got %q", got)
	}
}

func TestLintFailureVerbatim(t *testing.T) {
	tr := newFakeTransport()
	tr.on(playground.RouteClippy, reject(&transport.ServerError{Status: 500, Message: "ICE"}))
	d, _ := newTestDispatcher(t, tr)

	d.Apply(d.Lint(context.Background())())

	got := d.Store().Get(output.KindClippy)
	if got != output.Failed("ICE") {
		t.Fatalf("unexpected clippy result %+v", got)
	}
	if !d.Store().HasAnyContent() {
		t.Fatalf("a failure counts as content")
	}
}

func TestNetworkErrorIsStringified(t *testing.T) {
	tr := newFakeTransport()
	tr.on(playground.RouteExecute, reject(errdef.New(errdef.CodeTransport, "dial tcp: refused")))
	d, _ := newTestDispatcher(t, tr)

	d.Apply(d.Execute(context.Background())())

	got := d.Store().Get(output.KindExecute)
	if got.State != output.StateFailed || got.Error == "" {
		t.Fatalf("expected failed with text, got %+v", got)
	}
}

func TestServerErrorOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"syntax error"}`))
	}))
	defer srv.Close()

	client := transport.NewClientWithHTTP(srv.URL, srv.Client())
	d, _ := newTestDispatcher(t, client)

	d.Apply(d.Execute(context.Background())())

	got := d.Store().Get(output.KindExecute)
	if got != output.Failed("syntax error") {
		t.Fatalf("expected verbatim server error, got %+v", got)
	}
}

func TestIndependentKinds(t *testing.T) {
	tr := newFakeTransport()
	tr.on(playground.RouteExecute, reply(map[string]any{"stdout": "run"}))
	tr.on(playground.RouteFormat, reply(map[string]any{"success": true, "code": "fn main() {}\n"}))
	d, _ := newTestDispatcher(t, tr)

	exec := d.Execute(context.Background())
	d.Apply(d.Format(context.Background(), playground.FormatDefault)())

	if d.Store().Get(output.KindExecute).State != output.StatePending {
		t.Fatalf("format must not alter execute")
	}
	d.Apply(exec())
	if d.Store().Get(output.KindExecute).Stdout != "run" {
		t.Fatalf("execute result lost")
	}
}

func TestFormatReplacesCode(t *testing.T) {
	tr := newFakeTransport()
	tr.on(playground.RouteFormat, reply(map[string]any{"success": true, "code": "fn main() {}\n"}))
	d, _ := newTestDispatcher(t, tr)

	d.Apply(d.Format(context.Background(), playground.FormatRFC)())

	if d.Session().Code() != "fn main() {}\n" {
		t.Fatalf("expected formatted buffer, got %q", d.Session().Code())
	}
	body := tr.recorded()[0].body.(playground.FormatRequest)
	if body.Style != playground.FormatRFC || body.Code != "fn main(){}" {
		t.Fatalf("unexpected format body %+v", body)
	}
}

func TestFormatUnsuccessfulKeepsCode(t *testing.T) {
	tr := newFakeTransport()
	tr.on(playground.RouteFormat, reply(map[string]any{"success": false, "stderr": "error: expected item"}))
	d, _ := newTestDispatcher(t, tr)

	d.Apply(d.Format(context.Background(), "")())

	if d.Session().Code() != "fn main(){}" {
		t.Fatalf("buffer must survive a failed format")
	}
	if d.Store().Get(output.KindFormat).Stderr != "error: expected item" {
		t.Fatalf("stderr should be kept")
	}
}

func TestStaleFormatDoesNotReplaceCode(t *testing.T) {
	tr := newFakeTransport()
	tr.on(playground.RouteFormat, func(_ context.Context, body any) (any, error) {
		return map[string]any{"success": true, "code": "formatted:" + body.(playground.FormatRequest).Code}, nil
	})
	d, _ := newTestDispatcher(t, tr)

	d.Session().SetCode("one")
	first := d.Format(context.Background(), playground.FormatDefault)
	d.Session().SetCode("two")
	second := d.Format(context.Background(), playground.FormatDefault)

	d.Apply(second())
	d.Apply(first())

	if d.Session().Code() != "formatted:two" {
		t.Fatalf("stale format overwrote the buffer: %q", d.Session().Code())
	}
}

func TestSnapshotTakenAtDispatch(t *testing.T) {
	tr := newFakeTransport()
	tr.on(playground.RouteExecute, reply(map[string]any{}))
	d, _ := newTestDispatcher(t, tr)

	cmd := d.Execute(context.Background())
	d.Session().SetCode("edited")
	d.Session().Update(func(c *playground.Configuration) { c.Channel = playground.ChannelNightly })
	d.Apply(cmd())

	body := tr.recorded()[0].body.(playground.ExecuteRequest)
	if body.Code != "fn main(){}" || body.Channel != playground.ChannelStable {
		t.Fatalf("request should use the dispatch-time snapshot, got %+v", body)
	}
}

func TestGistSaveAndLoad(t *testing.T) {
	snippets := &fakeSnippets{
		saved:  gist.Gist{ID: "abc", URL: "https://gist.github.com/abc"},
		loaded: gist.Gist{URL: "https://gist.github.com/xyz", Code: "fn loaded() {}"},
	}
	d := New(Config{
		Session:   playground.NewSession("fn saved() {}", playground.DefaultConfiguration()),
		Transport: newFakeTransport(),
		Snippets:  snippets,
	})

	d.Apply(d.SaveSnippet(context.Background())())
	got := d.Store().Get(output.KindGist)
	if got.State != output.StateSucceeded || got.Gist.ID != "abc" || got.Gist.Code != "fn saved() {}" {
		t.Fatalf("unexpected save result %+v", got)
	}
	if snippets.code != "fn saved() {}" {
		t.Fatalf("save should send the buffer, got %q", snippets.code)
	}

	d.Apply(d.LoadSnippet(context.Background(), "xyz")())
	got = d.Store().Get(output.KindGist)
	if got.Gist.ID != "xyz" || got.Gist.Code != "fn loaded() {}" {
		t.Fatalf("unexpected load result %+v", got)
	}
	if d.Session().Code() != "fn loaded() {}" {
		t.Fatalf("load should replace the buffer, got %q", d.Session().Code())
	}
}

func TestGistLoadFailure(t *testing.T) {
	d := New(Config{
		Transport: newFakeTransport(),
		Snippets:  &fakeSnippets{loadErr: &transport.ServerError{Status: 404, Message: "Not Found"}},
	})
	before := d.Session().Code()

	cmd := d.LoadSnippet(context.Background(), "missing")
	if d.Store().Get(output.KindGist).State != output.StatePending {
		t.Fatalf("load should be pending first")
	}
	d.Apply(cmd())

	if got := d.Store().Get(output.KindGist); got != output.Failed("Not Found") {
		t.Fatalf("unexpected gist result %+v", got)
	}
	if d.Session().Code() != before {
		t.Fatalf("failed load must keep the buffer")
	}
	if d.Store().InFlight() != 0 {
		t.Fatalf("failed load must release its slot")
	}
}

func TestMissingSnippetsFails(t *testing.T) {
	d := New(Config{Transport: newFakeTransport()})
	d.Apply(d.SaveSnippet(context.Background())())
	if d.Store().Get(output.KindGist).State != output.StateFailed {
		t.Fatalf("expected failure without snippet storage")
	}
}

func TestInFlightCounter(t *testing.T) {
	tr := newFakeTransport()
	tr.on(playground.RouteExecute, reply(map[string]any{}))
	tr.on(playground.RouteClippy, reject(errors.New("boom")))
	d, rec := newTestDispatcher(t, tr)

	a := d.Execute(context.Background())
	b := d.Lint(context.Background())
	c := d.Execute(context.Background())
	if d.Store().InFlight() != 3 {
		t.Fatalf("expected 3 in flight, got %d", d.Store().InFlight())
	}
	for i, cmd := range []Cmd{a, b, c} {
		d.Apply(cmd())
		if want := 2 - i; d.Store().InFlight() != want {
			t.Fatalf("after %d settles expected %d in flight, got %d", i+1, want, d.Store().InFlight())
		}
	}
	if len(rec.all()) != 3 {
		t.Fatalf("expected every settle recorded")
	}
}

func TestRequestIDsAreUnique(t *testing.T) {
	tr := newFakeTransport()
	tr.on(playground.RouteExecute, reply(map[string]any{}))
	d, _ := newTestDispatcher(t, tr)

	first := d.Execute(context.Background())()
	second := d.Execute(context.Background())()
	if first.RequestID == "" || first.RequestID == second.RequestID {
		t.Fatalf("expected distinct request ids, got %q and %q", first.RequestID, second.RequestID)
	}
	d.Apply(second)
	d.Apply(first)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
