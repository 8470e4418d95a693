package publication

import "strings"

// dedupe trims whitespace and drops empties and duplicates while preserving
// the caller's order. The order matters: it decides the sequence positions
// newly appended mappings receive.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// diff splits desired against current into the additions and removals that
// turn current into desired. Both outputs keep their source ordering, and
// added and removed are disjoint by construction.
func diff(desired, current []string) (added, removed []string) {
	currentSet := make(map[string]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	desiredSet := make(map[string]struct{}, len(desired))
	for _, id := range desired {
		desiredSet[id] = struct{}{}
	}

	for _, id := range desired {
		if _, ok := currentSet[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range current {
		if _, ok := desiredSet[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}
