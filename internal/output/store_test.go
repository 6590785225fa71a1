package output

import (
	"sync"
	"testing"

	"github.com/unkn0wn-root/playterm/internal/errdef"
)

// set stores result for kind as if a dispatch had settled it.
func (s *Store) set(kind Kind, result Result) {
	s.Settle(kind, s.Begin(kind), result)
}

func TestNewStoreStartsIdle(t *testing.T) {
	s := NewStore()
	for _, kind := range Kinds {
		if got := s.Get(kind); got.State != StateIdle || !got.IsEmpty() {
			t.Fatalf("expected %s to start idle and empty, got %+v", kind, got)
		}
	}
	if s.HasAnyContent() {
		t.Fatalf("fresh store must not report content")
	}
	if s.InFlight() != 0 {
		t.Fatalf("expected no requests in flight")
	}
}

func TestBeginSupersedesTerminalState(t *testing.T) {
	s := NewStore()
	seq := s.Begin(KindExecute)
	if !s.Settle(KindExecute, seq, Result{State: StateSucceeded, Stdout: "A"}) {
		t.Fatalf("expected first settle to apply")
	}

	next := s.Begin(KindExecute)
	if next <= seq {
		t.Fatalf("expected sequence to grow, got %d after %d", next, seq)
	}
	got := s.Get(KindExecute)
	if got.State != StatePending || got.Stdout != "" {
		t.Fatalf("expected pending to discard previous result, got %+v", got)
	}
}

func TestSettleLastDispatchWins(t *testing.T) {
	s := NewStore()
	first := s.Begin(KindExecute)
	second := s.Begin(KindExecute)
	if s.InFlight() != 2 {
		t.Fatalf("expected 2 in flight, got %d", s.InFlight())
	}

	if !s.Settle(KindExecute, second, Result{State: StateSucceeded, Stdout: "B"}) {
		t.Fatalf("expected latest dispatch to apply")
	}
	if s.Settle(KindExecute, first, Result{State: StateSucceeded, Stdout: "A"}) {
		t.Fatalf("expected superseded dispatch to be dropped")
	}
	if got := s.Get(KindExecute); got.Stdout != "B" {
		t.Fatalf("expected B to win, got %+v", got)
	}
	if s.InFlight() != 0 {
		t.Fatalf("expected counter back at zero, got %d", s.InFlight())
	}
}

func TestSettleRejectsSecondTerminalForSameSeq(t *testing.T) {
	s := NewStore()
	seq := s.Begin(KindClippy)
	s.Settle(KindClippy, seq, Failed("ICE"))
	if s.Settle(KindClippy, seq, Result{State: StateSucceeded, Stdout: "late"}) {
		t.Fatalf("a settled dispatch must not settle twice")
	}
	if got := s.Get(KindClippy); got.State != StateFailed || got.Error != "ICE" {
		t.Fatalf("unexpected state %+v", got)
	}
}

func TestInFlightNeverNegative(t *testing.T) {
	s := NewStore()
	s.Settle(KindFormat, 1, Result{State: StateSucceeded})
	if s.InFlight() != 0 {
		t.Fatalf("expected in-flight to clamp at zero, got %d", s.InFlight())
	}
}

func TestKindsAreIndependent(t *testing.T) {
	s := NewStore()
	s.Begin(KindExecute)
	seq := s.Begin(KindFormat)
	s.Settle(KindFormat, seq, Failed("bad"))

	if got := s.Get(KindExecute); got.State != StatePending {
		t.Fatalf("format must not touch execute, got %+v", got)
	}
}

func TestHasAnyContentIgnoresPendingAndEmptySuccess(t *testing.T) {
	s := NewStore()
	seq := s.Begin(KindExecute)
	if s.HasAnyContent() {
		t.Fatalf("pending alone is not content")
	}
	s.Settle(KindExecute, seq, Result{State: StateSucceeded})
	if s.HasAnyContent() {
		t.Fatalf("empty success is not content")
	}

	seq = s.Begin(KindClippy)
	s.Settle(KindClippy, seq, Failed("ICE"))
	if !s.HasAnyContent() {
		t.Fatalf("a failure message is content")
	}
}

func TestConcurrentBeginSettle(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq := s.Begin(KindAsm)
			s.Settle(KindAsm, seq, Result{State: StateSucceeded, Code: "mov"})
		}()
	}
	wg.Wait()
	if s.InFlight() != 0 {
		t.Fatalf("expected every dispatch to settle, got %d in flight", s.InFlight())
	}
	if got := s.Get(KindAsm).State; got != StateSucceeded && got != StatePending {
		t.Fatalf("unexpected state %s", got)
	}
}

func TestFocusLifecycle(t *testing.T) {
	s := NewStore()
	if s.Focus() != KindNone {
		t.Fatalf("expected no initial focus")
	}
	seq := s.Begin(KindExecute)
	s.Settle(KindExecute, seq, Result{State: StateSucceeded, Stdout: "hi"})
	if s.Focus() != KindNone {
		t.Fatalf("a completed dispatch must not auto-focus")
	}

	if err := s.SetFocus(KindExecute); err != nil {
		t.Fatalf("set focus: %v", err)
	}
	if s.Focus() != KindExecute {
		t.Fatalf("expected execute focus, got %q", s.Focus())
	}

	s.Close()
	if s.Focus() != KindNone {
		t.Fatalf("expected close to clear focus")
	}
	if got := s.Get(KindExecute); got.Stdout != "hi" {
		t.Fatalf("close must keep results, got %+v", got)
	}
}

func TestSetFocusRejectsPaneless(t *testing.T) {
	s := NewStore()
	_ = s.SetFocus(KindAsm)
	err := s.SetFocus(KindFormat)
	if !errdef.Is(err, errdef.CodeUI) {
		t.Fatalf("expected ui error, got %v", err)
	}
	if s.Focus() != KindAsm {
		t.Fatalf("rejected focus must leave focus unchanged, got %q", s.Focus())
	}
}

func TestTabsFollowContent(t *testing.T) {
	s := NewStore()
	s.set(KindGist, Result{State: StateSucceeded, Gist: Gist{ID: "1", URL: "https://gist"}})
	s.set(KindExecute, Result{State: StateSucceeded, Stdout: "x"})
	s.set(KindLLVMIR, Result{State: StateSucceeded})
	s.set(KindFormat, Failed("rustfmt"))

	tabs := s.Tabs()
	want := []Kind{KindExecute, KindGist}
	if len(tabs) != len(want) {
		t.Fatalf("expected tabs %v, got %v", want, tabs)
	}
	for i := range want {
		if tabs[i] != want[i] {
			t.Fatalf("expected tabs %v, got %v", want, tabs)
		}
	}
}

func TestFocusedTabSurvivesRedispatch(t *testing.T) {
	s := NewStore()
	seq := s.Begin(KindExecute)
	s.Settle(KindExecute, seq, Result{State: StateSucceeded, Stdout: "hi"})
	if err := s.SetFocus(KindExecute); err != nil {
		t.Fatalf("focus: %v", err)
	}

	seq = s.Begin(KindExecute)
	tabs := s.Tabs()
	if len(tabs) != 1 || tabs[0] != KindExecute {
		t.Fatalf("focused kind must keep its tab while pending, got %v", tabs)
	}

	s.Begin(KindClippy)
	tabs = s.Tabs()
	if len(tabs) != 2 || tabs[1] != KindClippy {
		t.Fatalf("pending clippy should have a tab, got %v", tabs)
	}

	s.Settle(KindExecute, seq, Result{State: StateSucceeded, Stdout: "again"})
	if got := s.Get(KindExecute).Stdout; got != "again" {
		t.Fatalf("unexpected result %q", got)
	}
	if s.Focus() != KindExecute {
		t.Fatalf("settling must not move focus")
	}
}

func TestCycleFocus(t *testing.T) {
	s := NewStore()
	if got := s.CycleFocus(true); got != KindNone {
		t.Fatalf("expected no focus without tabs, got %q", got)
	}
	s.set(KindExecute, Result{State: StateSucceeded, Stdout: "x"})
	s.set(KindAsm, Result{State: StateSucceeded, Code: "ret"})

	if got := s.CycleFocus(true); got != KindExecute {
		t.Fatalf("expected first tab, got %q", got)
	}
	if got := s.CycleFocus(true); got != KindAsm {
		t.Fatalf("expected asm, got %q", got)
	}
	if got := s.CycleFocus(true); got != KindExecute {
		t.Fatalf("expected wrap to execute, got %q", got)
	}
	if got := s.CycleFocus(false); got != KindAsm {
		t.Fatalf("expected backwards wrap to asm, got %q", got)
	}
}
