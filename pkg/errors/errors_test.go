package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"unauthorized", Unauthorized("submit"), KindUnauthorized},
		{"validation", Validation("enqueue", "missing %s", "action"), KindValidation},
		{"not found", NotFound("ban", "no ban for %s", "1"), KindNotFound},
		{"upstream", Upstream("roblox", fmt.Errorf("dial tcp")), KindUpstreamUnavailable},
		{"wrapped", fmt.Errorf("handler: %w", Validation("enqueue", "bad")), KindValidation},
		{"plain", fmt.Errorf("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSentinelMatching(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("ledger.GetBan", "subject %s", "42"))

	if !stderrors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is to match ErrNotFound")
	}
	if stderrors.Is(err, ErrValidation) {
		t.Error("did not expect errors.Is to match ErrValidation")
	}
}

func TestErrorMessage(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Internal("queue.Enqueue", cause)

	if got, want := err.Error(), "queue.Enqueue: Internal: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected the cause to be reachable through Unwrap")
	}
}

func TestIsNil(t *testing.T) {
	if Is(nil, KindInternal) {
		t.Error("Is(nil) should be false")
	}
}

func TestRecoverMiddlewareCountsPanics(t *testing.T) {
	h := NewErrorHandler("test", "", nil)
	defer h.Stop()

	prev := handler
	handler = h
	defer func() { handler = prev }()

	func() {
		defer RecoverMiddleware()()
		panic("kaboom")
	}()

	if h.ErrorCount() != 1 {
		t.Errorf("ErrorCount() = %d, want 1", h.ErrorCount())
	}
}

func TestMessage(t *testing.T) {
	if got := Message(Validation("enqueue", "Missing action or data")); got != "Missing action or data" {
		t.Errorf("Message() = %q", got)
	}
	if got := Message(Unauthorized("auth")); got != "Unauthorized" {
		t.Errorf("Message() = %q", got)
	}
	if got := Message(fmt.Errorf("raw")); got != "Internal" {
		t.Errorf("Message() = %q", got)
	}
}
