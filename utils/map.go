package utils

import (
	"fmt"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
)

// KeyValsToMap turns alternating key/value pairs into a map. Non-string keys are formatted with %v and a trailing
// key without a value is ignored.
func KeyValsToMap(kv []any) (m map[string]any) {
	m = make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[keyString(kv[i])] = kv[i+1]
	}
	return
}

// KeyValsToOrderedMap behaves like KeyValsToMap but keeps the insertion order of the keys.
func KeyValsToOrderedMap(kv []any) *orderedmap.OrderedMap[string, any] {
	m := orderedmap.NewOrderedMap[string, any]()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(keyString(kv[i]), kv[i+1])
	}
	return m
}

// KeyValsToString formats slog-style keyvals into a single bracketed string.
// Example: KeyValsToString("foo", 1, "bar", true) => "[foo=1 bar=true]".
// If an odd number of values is provided, the last value is ignored.
func KeyValsToString(kv []any) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i+1 < len(kv); i += 2 {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s=%v", keyString(kv[i]), kv[i+1])
	}
	sb.WriteByte(']')
	return sb.String()
}

// OrderedMapToString formats an ordered map the same way KeyValsToString formats pairs.
func OrderedMapToString(m *orderedmap.OrderedMap[string, any]) string {
	if m == nil {
		return "[]"
	}
	kv := make([]any, 0, m.Len()*2)
	for el := m.Front(); el != nil; el = el.Next() {
		kv = append(kv, el.Key, el.Value)
	}
	return KeyValsToString(kv)
}

func keyString(key any) string {
	if s, ok := key.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", key)
}
