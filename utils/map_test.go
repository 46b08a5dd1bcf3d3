package utils

import "testing"

func TestKeyValsToString(t *testing.T) {
	if got := KeyValsToString([]any{"foo", 1, "bar", true, "odd"}); got != "[foo=1 bar=true]" {
		t.Fatalf("unexpected string %q", got)
	}
	if got := KeyValsToString(nil); got != "[]" {
		t.Fatalf("unexpected string for empty input %q", got)
	}
}

func TestKeyValsToOrderedMapKeepsOrder(t *testing.T) {
	m := KeyValsToOrderedMap([]any{"z", 1, 2, "two", "a", 3.5})
	if got := OrderedMapToString(m); got != "[z=1 2=two a=3.5]" {
		t.Fatalf("unexpected ordered string %q", got)
	}
	if v := KeyValsToMap([]any{"k", "v"})["k"]; v != "v" {
		t.Fatalf("expected v, got %v", v)
	}
}
