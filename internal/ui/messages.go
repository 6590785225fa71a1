package ui

import "github.com/unkn0wn-root/playterm/internal/dispatch"

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusWarn
	statusError
	statusSuccess
)

type statusMsg struct {
	text  string
	level statusLevel
}

// completionMsg carries a finished dispatch back into Update, where it is
// applied on the UI goroutine.
type completionMsg struct {
	completion dispatch.Completion
}
