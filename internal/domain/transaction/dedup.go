package transaction

import "sort"

// Merge returns existing concatenated with only those incoming entries whose
// dedup key is not already present among existing's keys. Order of existing is
// preserved and new entries keep their relative order. Merging the same batch
// twice has no additional effect, which is what makes repeated upstream
// delivery safe.
func Merge(existing, incoming []*Transaction) []*Transaction {
	if len(incoming) == 0 {
		return existing
	}
	if len(existing) == 0 {
		return incoming
	}

	seen := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		seen[t.DedupKey()] = struct{}{}
	}

	// Fresh backing array: appending in place could write into spare
	// capacity the caller's slice still aliases.
	merged := make([]*Transaction, len(existing), len(existing)+len(incoming))
	copy(merged, existing)
	for _, t := range incoming {
		key := t.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, t)
	}

	return merged
}

// FindDuplicateKeys reports the dedup keys that occur more than once within a
// single list, sorted for reproducible output. It is diagnostic only: the list
// is not mutated and duplicates are not resolved.
func FindDuplicateKeys(list []*Transaction) []string {
	counts := make(map[string]int, len(list))
	for _, t := range list {
		counts[t.DedupKey()]++
	}

	var duplicates []string
	for key, n := range counts {
		if n > 1 {
			duplicates = append(duplicates, key)
		}
	}
	sort.Strings(duplicates)

	return duplicates
}
