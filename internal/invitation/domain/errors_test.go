package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("redeem: %w", NewError(KindNotFound, MsgCodeNotFound))
	if got := KindOf(wrapped); got != KindNotFound {
		t.Fatalf("expected not-found, got %s", got)
	}
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Fatalf("expected internal for foreign error, got %s", got)
	}
	if !errors.Is(wrapped, ErrNotFound) {
		t.Fatal("expected errors.Is to match on kind")
	}
	if errors.Is(wrapped, ErrAlreadyExists) {
		t.Fatal("expected kinds to be distinct")
	}
}

func TestKindNames(t *testing.T) {
	cases := map[Kind][2]string{
		KindUnauthenticated:    {"unauthenticated", "UNAUTHENTICATED"},
		KindNotFound:           {"not-found", "NOT_FOUND"},
		KindAlreadyExists:      {"already-exists", "ALREADY_EXISTS"},
		KindFailedPrecondition: {"failed-precondition", "FAILED_PRECONDITION"},
		KindInternal:           {"internal", "INTERNAL"},
		KindResourceExhausted:  {"resource-exhausted", "RESOURCE_EXHAUSTED"},
	}
	for kind, want := range cases {
		if kind.String() != want[0] || kind.Status() != want[1] {
			t.Fatalf("kind %d: got %s/%s", kind, kind.String(), kind.Status())
		}
	}
}
