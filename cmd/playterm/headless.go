package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/playterm/internal/dispatch"
	"github.com/unkn0wn-root/playterm/internal/gist"
	"github.com/unkn0wn-root/playterm/internal/output"
)

// errFailed marks a headless run whose operation settled as Failed. The
// message has already been printed.
var errFailed = errors.New("operation failed")

type intent func(ctx context.Context, d *dispatch.Dispatcher) dispatch.Cmd

// runHeadless dispatches one intent, waits for it to settle and prints the
// result. With printCode the session buffer is printed once the result has
// replaced it.
func runHeadless(cmd *cobra.Command, opts *rootOptions, kind output.Kind, printCode bool, fire intent) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, *opts)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	d := a.dispatcher
	d.Go(fire(ctx, d))
	d.Wait()

	r := d.Store().Get(kind)
	printResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), kind, r, a.settings.PlaygroundURL(), printCode)
	if r.State == output.StateFailed {
		return errFailed
	}
	if printCode && (r.Code != "" || r.Gist.Code != "") {
		if _, err := io.WriteString(cmd.OutOrStdout(), d.Session().Code()); err != nil {
			return err
		}
	}
	return nil
}

func printResult(stdout, stderr io.Writer, kind output.Kind, r output.Result, playgroundURL string, printCode bool) {
	if r.State == output.StateFailed {
		fmt.Fprintf(stderr, "error: %s\n", r.Error)
		return
	}
	if r.Stderr != "" {
		fmt.Fprint(stderr, ensureNewline(r.Stderr))
	}
	switch kind {
	case output.KindGist:
		if r.Gist.ID == "" {
			return
		}
		// links go to stderr when stdout carries the loaded code
		w := stdout
		if printCode {
			w = stderr
		}
		fmt.Fprintf(w, "id: %s\n", r.Gist.ID)
		fmt.Fprintf(w, "permalink: %s\n", gist.Permalink(playgroundURL, r.Gist.ID))
		if r.Gist.URL != "" {
			fmt.Fprintf(w, "gist: %s\n", r.Gist.URL)
		}
	case output.KindFormat:
		// formatted code is written by the caller once it reaches the session
	default:
		if r.Code != "" && kind.HasCode() {
			fmt.Fprint(stdout, ensureNewline(r.Code))
		}
		if r.Stdout != "" {
			fmt.Fprint(stdout, ensureNewline(r.Stdout))
		}
	}
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
