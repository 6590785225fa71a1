package errdef

import (
	"errors"
	"testing"
)

func TestWrapNilReturnsNil(t *testing.T) {
	if err := Wrap(CodeTransport, nil, "ignored"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestWrapFormatsCodeMessageAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeTransport, cause, "post %s", "/execute")
	if got, want := err.Error(), "transport: post /execute: connection refused"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped error to unwrap to cause")
	}
	if CodeOf(err) != CodeTransport {
		t.Fatalf("expected transport code, got %s", CodeOf(err))
	}
}

func TestNewDefaultsEmptyCode(t *testing.T) {
	err := New("", "boom")
	if !Is(err, CodeUnknown) {
		t.Fatalf("expected unknown code, got %s", CodeOf(err))
	}
	if Is(nil, CodeUnknown) {
		t.Fatalf("nil error must not match any code")
	}
	if Message(nil) != "" {
		t.Fatalf("expected empty message for nil error")
	}
}
