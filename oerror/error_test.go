package oerror

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	base := Newk(KindMissingBody, "agent %d has no body", 4)
	wrapped := fmt.Errorf("tick 12: %w", Wrap(KindTrace, base, "record"))

	if !Is(wrapped, KindTrace) {
		t.Fatalf("expected outer kind to match")
	}
	if !Is(wrapped, KindMissingBody) {
		t.Fatalf("expected wrapped kind to match")
	}
	if Is(wrapped, KindConflict) {
		t.Fatalf("unexpected match for unrelated kind")
	}
	if Is(errors.New("plain"), KindUnknown) {
		t.Fatalf("plain errors never match a kind")
	}
	if got := wrapped.Error(); got != "tick 12: record: agent 4 has no body" {
		t.Fatalf("unexpected message %q", got)
	}
}
