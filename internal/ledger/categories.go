package ledger

// CategorySet is an append-only, order-preserving set of labels,
// deduplicated by exact match. It is not safe for concurrent use on its own;
// Ledger guards it.
type CategorySet struct {
	order []string
	seen  map[string]bool
}

// NewCategorySet seeds a set with labels, dropping duplicates and empties.
func NewCategorySet(labels []string) *CategorySet {
	s := &CategorySet{seen: make(map[string]bool, len(labels))}
	for _, l := range labels {
		s.Add(l)
	}
	return s
}

// Add inserts label if it is new and reports whether the set grew.
func (s *CategorySet) Add(label string) bool {
	if label == "" || s.seen[label] {
		return false
	}
	s.seen[label] = true
	s.order = append(s.order, label)
	return true
}

// Contains reports exact membership.
func (s *CategorySet) Contains(label string) bool {
	return s.seen[label]
}

// List returns a copy of the labels in insertion order.
func (s *CategorySet) List() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of labels.
func (s *CategorySet) Len() int {
	return len(s.order)
}
