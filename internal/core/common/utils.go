package common

import "sort"

// SortedUnique merges the given identifier lists into one sorted list with
// duplicates and empty strings removed. The result is never nil.
func SortedUnique(lists ...[]string) []string {
	seen := make(map[string]struct{})
	for _, l := range lists {
		for _, id := range l {
			if id == "" {
				continue
			}
			seen[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
