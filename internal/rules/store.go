package rules

// Store holds the working set of rules for one user session. Insertion order is
// preserved and duplicates are allowed; nothing survives the session.
//
// The store is read during evaluation and mutated only between refresh cycles,
// so it carries no locking. It is not safe for concurrent use.
type Store struct {
	rules []Rule
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{}
}

// Add appends a rule to the end of the collection.
func (s *Store) Add(r Rule) {
	s.rules = append(s.rules, r)
}

// Remove deletes the rule at index, preserving the order of the rest.
// Out-of-range indexes are ignored.
func (s *Store) Remove(index int) {
	if index < 0 || index >= len(s.rules) {
		return
	}
	s.rules = append(s.rules[:index], s.rules[index+1:]...)
}

// List returns a copy of the rules in insertion order.
func (s *Store) List() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Len reports the number of rules.
func (s *Store) Len() int {
	return len(s.rules)
}

// CoinIDs returns the deduplicated union of coin identifiers referenced by the
// rules, in order of first appearance.
func (s *Store) CoinIDs() []string {
	seen := make(map[string]struct{}, len(s.rules))
	ids := make([]string, 0, len(s.rules))
	for _, r := range s.rules {
		if _, ok := seen[r.CoinID]; ok {
			continue
		}
		seen[r.CoinID] = struct{}{}
		ids = append(ids, r.CoinID)
	}
	return ids
}
