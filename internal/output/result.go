package output

import "github.com/unkn0wn-root/playterm/internal/playground"

// Kind identifies an operation and its result slot.
type Kind string

const (
	KindNone    Kind = ""
	KindExecute Kind = "execute"
	KindClippy  Kind = "clippy"
	KindAsm     Kind = "asm"
	KindLLVMIR  Kind = "llvm-ir"
	KindMIR     Kind = "mir"
	KindFormat  Kind = "format"
	KindGist    Kind = "gist"
)

// Kinds lists every result slot.
var Kinds = []Kind{KindExecute, KindClippy, KindAsm, KindLLVMIR, KindMIR, KindFormat, KindGist}

// focusable is the tab order of kinds that own an output pane.
var focusable = []Kind{KindExecute, KindClippy, KindAsm, KindLLVMIR, KindMIR, KindGist}

func (k Kind) Focusable() bool {
	for _, f := range focusable {
		if f == k {
			return true
		}
	}
	return false
}

func (k Kind) Label() string {
	switch k {
	case KindExecute:
		return "Execution"
	case KindClippy:
		return "Clippy"
	case KindAsm:
		return "ASM"
	case KindLLVMIR:
		return "LLVM IR"
	case KindMIR:
		return "MIR"
	case KindFormat:
		return "Format"
	case KindGist:
		return "Gist"
	default:
		return string(k)
	}
}

// HasCode reports whether the kind's success payload carries a code field.
func (k Kind) HasCode() bool {
	switch k {
	case KindAsm, KindLLVMIR, KindMIR, KindFormat:
		return true
	default:
		return false
	}
}

// KindForTarget maps a compile target to its result slot.
func KindForTarget(t playground.Target) Kind {
	switch t {
	case playground.TargetAssembly:
		return KindAsm
	case playground.TargetLLVMIR:
		return KindLLVMIR
	case playground.TargetMIR:
		return KindMIR
	default:
		return KindNone
	}
}

type State int

const (
	StateIdle State = iota
	StatePending
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Terminal reports whether s ends a dispatch lifecycle.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Gist is a saved or loaded snippet.
type Gist struct {
	ID   string
	URL  string
	Code string
}

// Result is the tagged state of one slot. Empty optional fields mean there
// is nothing to show.
type Result struct {
	State  State
	Stdout string
	Stderr string
	Code   string
	Error  string
	Gist   Gist
}

func Idle() Result    { return Result{} }
func Pending() Result { return Result{State: StatePending} }

func Failed(msg string) Result {
	return Result{State: StateFailed, Error: msg}
}

// IsEmpty is true when no optional field is populated.
func (r Result) IsEmpty() bool {
	return r.Stdout == "" &&
		r.Stderr == "" &&
		r.Code == "" &&
		r.Error == "" &&
		r.Gist.ID == "" &&
		r.Gist.URL == ""
}
