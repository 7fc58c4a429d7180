package scenario

import "sort"

func (r *Runner) failf(format string, args ...any) error {
	return r.assertions.Failf(format, args...)
}

func (r *Runner) assertf(format string, args ...any) error {
	return r.assertions.Assertf(format, args...)
}

func readInt(args map[string]any, key string) (int, bool) {
	value, ok := args[key].(int)
	return value, ok
}

func optionalInt(args map[string]any, key string, fallback int) int {
	if value, ok := readInt(args, key); ok {
		return value
	}
	return fallback
}

func optionalString(args map[string]any, key, fallback string) string {
	if value, ok := args[key].(string); ok {
		return value
	}
	return fallback
}

func requiredString(args map[string]any, key string) string {
	return optionalString(args, key, "")
}

func readBool(args map[string]any, key string) (bool, bool) {
	value, ok := args[key].(bool)
	return value, ok
}

func optionalBool(args map[string]any, key string, fallback bool) bool {
	if value, ok := readBool(args, key); ok {
		return value
	}
	return fallback
}

// readDice reads a two-element die list.
func readDice(args map[string]any, key string) ([2]int, bool) {
	values, ok := intList(args[key])
	if !ok || len(values) != 2 {
		return [2]int{}, false
	}
	return [2]int{values[0], values[1]}, true
}

func intList(value any) ([]int, bool) {
	list, ok := value.([]any)
	if !ok {
		return nil, false
	}
	out := make([]int, 0, len(list))
	for _, item := range list {
		n, ok := item.(int)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

// sameInts compares as multisets.
func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	left := append([]int(nil), a...)
	right := append([]int(nil), b...)
	sort.Ints(left)
	sort.Ints(right)
	for i := range left {
		if left[i] != right[i] {
			return false
		}
	}
	return true
}
