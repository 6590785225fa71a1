package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/unkn0wn-root/playterm/internal/gist"
	"github.com/unkn0wn-root/playterm/internal/history"
	"github.com/unkn0wn-root/playterm/internal/logging"
	"github.com/unkn0wn-root/playterm/internal/output"
	"github.com/unkn0wn-root/playterm/internal/playground"
	"github.com/unkn0wn-root/playterm/internal/telemetry"
	"github.com/unkn0wn-root/playterm/internal/transport"
)

// Transport posts a JSON body to a playground route and decodes the reply
// into out. Failures are returned as errors; transport.FailureText turns
// them into the text shown to the user.
type Transport interface {
	Post(ctx context.Context, route string, body any, out any) error
}

type Snippets interface {
	Load(ctx context.Context, id string) (gist.Gist, error)
	Save(ctx context.Context, code string) (gist.Gist, error)
}

// Recorder receives one entry per settled dispatch.
type Recorder interface {
	Append(entry history.Entry) error
}

type Config struct {
	Store     *output.Store
	Session   *playground.Session
	Transport Transport
	Snippets  Snippets
	Logger    *slog.Logger
	Tracer    trace.Tracer
	Recorder  Recorder
	Clock     func() time.Time
}

// Completion is the outcome of one dispatch, produced off the UI loop and
// handed back to Apply.
type Completion struct {
	RequestID string
	Kind      output.Kind
	Seq       uint64
	Result    output.Result
	Snapshot  playground.Snapshot

	// ReplaceCode asks Apply to swap the session buffer for Code, but only
	// when the completion is still the latest of its kind.
	ReplaceCode bool
	Code        string

	Started time.Time
	Elapsed time.Duration

	span trace.Span
}

// Cmd performs the network half of a dispatch. It may run on any goroutine.
type Cmd func() Completion

// Dispatcher turns user intents into requests and applies their results to
// the store.
type Dispatcher struct {
	store     *output.Store
	session   *playground.Session
	transport Transport
	snippets  Snippets
	logger    *slog.Logger
	tracer    trace.Tracer
	recorder  Recorder
	now       func() time.Time

	wg sync.WaitGroup
}

func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		store:     cfg.Store,
		session:   cfg.Session,
		transport: cfg.Transport,
		snippets:  cfg.Snippets,
		logger:    cfg.Logger,
		tracer:    cfg.Tracer,
		recorder:  cfg.Recorder,
		now:       cfg.Clock,
	}
	if d.store == nil {
		d.store = output.NewStore()
	}
	if d.session == nil {
		d.session = playground.NewSession(playground.DefaultCode, playground.DefaultConfiguration())
	}
	if d.logger == nil {
		d.logger = logging.Discard()
	}
	if d.tracer == nil {
		d.tracer = telemetry.Noop().Tracer()
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

func (d *Dispatcher) Store() *output.Store {
	return d.store
}

func (d *Dispatcher) Session() *playground.Session {
	return d.session
}

type request struct {
	ctx  context.Context
	id   string
	kind output.Kind
	seq  uint64
	snap playground.Snapshot
	at   time.Time
	span trace.Span
}

// begin marks kind Pending and captures everything the request needs.
func (d *Dispatcher) begin(ctx context.Context, kind output.Kind, attrs ...attribute.KeyValue) request {
	if ctx == nil {
		ctx = context.Background()
	}
	seq := d.store.Begin(kind)
	snap := d.session.Snapshot()
	id := uuid.NewString()

	attrs = append(attrs,
		attribute.String("playterm.request_id", id),
		attribute.String("playterm.kind", string(kind)),
		attribute.Int64("playterm.seq", int64(seq)),
		attribute.String("playterm.channel", string(snap.Configuration.Channel)),
		attribute.String("playterm.mode", string(snap.Configuration.Mode)),
	)
	ctx, span := d.tracer.Start(ctx, "dispatch."+string(kind), trace.WithAttributes(attrs...))

	d.logger.Debug("dispatch",
		"id", id,
		"kind", string(kind),
		"seq", seq,
		"in_flight", d.store.InFlight(),
	)
	return request{ctx: ctx, id: id, kind: kind, seq: seq, snap: snap, at: d.now(), span: span}
}

func (d *Dispatcher) complete(r request, result output.Result) Completion {
	return Completion{
		RequestID: r.id,
		Kind:      r.kind,
		Seq:       r.seq,
		Result:    result,
		Snapshot:  r.snap,
		Started:   r.at,
		Elapsed:   d.now().Sub(r.at),
		span:      r.span,
	}
}

func failed(err error) output.Result {
	return output.Failed(transport.FailureText(err))
}

func (d *Dispatcher) Execute(ctx context.Context) Cmd {
	r := d.begin(ctx, output.KindExecute)
	body := playground.NewExecuteRequest(r.snap)
	return func() Completion {
		var resp playground.ExecuteResponse
		if err := d.transport.Post(r.ctx, playground.RouteExecute, body, &resp); err != nil {
			return d.complete(r, failed(err))
		}
		return d.complete(r, output.Result{
			State:  output.StateSucceeded,
			Stdout: resp.Stdout,
			Stderr: resp.Stderr,
		})
	}
}

// CompileTo compiles the buffer to target. MIR is sent regardless of channel;
// the server decides whether the toolchain supports it.
func (d *Dispatcher) CompileTo(ctx context.Context, target playground.Target) Cmd {
	kind := output.KindForTarget(target)
	if kind == output.KindNone {
		kind = output.KindAsm
		target = playground.TargetAssembly
	}
	r := d.begin(ctx, kind, attribute.String("playterm.target", string(target)))
	body := playground.NewCompileRequest(r.snap, target)
	return func() Completion {
		var resp playground.CompileResponse
		if err := d.transport.Post(r.ctx, playground.RouteCompile, body, &resp); err != nil {
			return d.complete(r, failed(err))
		}
		return d.complete(r, output.Result{
			State:  output.StateSucceeded,
			Code:   resp.Code,
			Stdout: resp.Stdout,
			Stderr: resp.Stderr,
		})
	}
}

// Format sends the buffer to rustfmt. A successful reply replaces the
// session code once applied.
func (d *Dispatcher) Format(ctx context.Context, style playground.FormatStyle) Cmd {
	if style == "" {
		style = playground.FormatDefault
	}
	r := d.begin(ctx, output.KindFormat, attribute.String("playterm.style", string(style)))
	body := playground.FormatRequest{Code: r.snap.Code, Style: style}
	return func() Completion {
		var resp playground.FormatResponse
		if err := d.transport.Post(r.ctx, playground.RouteFormat, body, &resp); err != nil {
			return d.complete(r, failed(err))
		}
		c := d.complete(r, output.Result{
			State:  output.StateSucceeded,
			Code:   resp.Code,
			Stdout: resp.Stdout,
			Stderr: resp.Stderr,
		})
		if resp.Success && resp.Code != "" {
			c.ReplaceCode = true
			c.Code = resp.Code
		}
		return c
	}
}

func (d *Dispatcher) Lint(ctx context.Context) Cmd {
	r := d.begin(ctx, output.KindClippy)
	body := playground.ClippyRequest{Code: r.snap.Code}
	return func() Completion {
		var resp playground.ClippyResponse
		if err := d.transport.Post(r.ctx, playground.RouteClippy, body, &resp); err != nil {
			return d.complete(r, failed(err))
		}
		return d.complete(r, output.Result{
			State:  output.StateSucceeded,
			Stdout: resp.Stdout,
			Stderr: resp.Stderr,
		})
	}
}

// SaveSnippet publishes the buffer as a gist.
func (d *Dispatcher) SaveSnippet(ctx context.Context) Cmd {
	r := d.begin(ctx, output.KindGist, attribute.String("playterm.gist_op", "save"))
	return func() Completion {
		if d.snippets == nil {
			return d.complete(r, output.Failed("snippet storage is not configured"))
		}
		g, err := d.snippets.Save(r.ctx, r.snap.Code)
		if err != nil {
			return d.complete(r, failed(err))
		}
		return d.complete(r, output.Result{
			State: output.StateSucceeded,
			Gist:  output.Gist{ID: g.ID, URL: g.URL, Code: r.snap.Code},
		})
	}
}

// LoadSnippet fetches gist id. On success the loaded code replaces the
// session buffer once applied.
func (d *Dispatcher) LoadSnippet(ctx context.Context, id string) Cmd {
	r := d.begin(ctx, output.KindGist,
		attribute.String("playterm.gist_op", "load"),
		attribute.String("playterm.gist_id", id),
	)
	return func() Completion {
		if d.snippets == nil {
			return d.complete(r, output.Failed("snippet storage is not configured"))
		}
		g, err := d.snippets.Load(r.ctx, id)
		if err != nil {
			return d.complete(r, failed(err))
		}
		c := d.complete(r, output.Result{
			State: output.StateSucceeded,
			Gist:  output.Gist{ID: g.ID, URL: g.URL, Code: g.Code},
		})
		c.ReplaceCode = true
		c.Code = g.Code
		return c
	}
}

// Apply settles c against the store. Superseded completions still release
// their in-flight slot but change nothing else. It reports whether c was
// applied.
func (d *Dispatcher) Apply(c Completion) bool {
	applied := d.store.Settle(c.Kind, c.Seq, c.Result)
	if applied && c.ReplaceCode {
		d.session.SetCode(c.Code)
	}

	attrs := []any{
		"id", c.RequestID,
		"kind", string(c.Kind),
		"seq", c.Seq,
		"state", c.Result.State.String(),
		"elapsed", c.Elapsed,
		"in_flight", d.store.InFlight(),
	}
	switch {
	case !applied:
		d.logger.Debug("dispatch superseded", attrs...)
	case c.Result.State == output.StateFailed:
		d.logger.Warn("dispatch failed", append(attrs, "error", c.Result.Error)...)
	default:
		d.logger.Info("dispatch settled", attrs...)
	}

	d.record(c, applied)
	d.endSpan(c, applied)
	return applied
}

func (d *Dispatcher) record(c Completion, applied bool) {
	if d.recorder == nil {
		return
	}
	entry := history.Entry{
		ID:         c.RequestID,
		ExecutedAt: c.Started,
		Kind:       string(c.Kind),
		State:      c.Result.State.String(),
		Superseded: !applied,
		Channel:    string(c.Snapshot.Configuration.Channel),
		Mode:       string(c.Snapshot.Configuration.Mode),
		Duration:   c.Elapsed,
		Error:      c.Result.Error,
		Snippet:    c.Snapshot.Code,
	}
	if err := d.recorder.Append(entry); err != nil {
		d.logger.Warn("history append failed", "id", c.RequestID, "error", err)
	}
}

func (d *Dispatcher) endSpan(c Completion, applied bool) {
	if c.span == nil {
		return
	}
	c.span.SetAttributes(
		attribute.String("playterm.state", c.Result.State.String()),
		attribute.Bool("playterm.superseded", !applied),
	)
	if c.Result.State == output.StateFailed {
		c.span.SetStatus(codes.Error, c.Result.Error)
	}
	c.span.End()
}

// Go runs cmd on its own goroutine and applies the completion.
func (d *Dispatcher) Go(cmd Cmd) {
	if cmd == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.Apply(cmd())
	}()
}

// Wait blocks until every Cmd started with Go has been applied.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
