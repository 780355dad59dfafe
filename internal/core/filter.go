package core

// Compound live filter over an in-memory transaction list. Each criterion
// change recomputes the full visible set; Apply is a pure function of the
// criteria and the snapshot, so there is no state to coordinate.

// FilterAll is the sentinel meaning "no restriction" for the type and
// category criteria.
const FilterAll = "All"

// Filter holds the four browse criteria. Type and Category carry either
// FilterAll or an exact value. From and To hold the raw date text exactly as
// typed: text that does not parse as a calendar date leaves that bound unset
// (fail-open), which mirrors live text inputs being edited keystroke by
// keystroke.
type Filter struct {
	Type     string
	Category string
	From     string
	To       string
}

// NewFilter returns the unrestricted filter.
func NewFilter() Filter {
	return Filter{Type: FilterAll, Category: FilterAll}
}

// Match reports whether a single transaction satisfies every criterion.
func (f Filter) Match(t Transaction) bool {
	if f.Type != FilterAll && f.Type != "" && string(t.Type) != f.Type {
		return false
	}
	if f.Category != FilterAll && f.Category != "" && t.Category.Name != f.Category {
		return false
	}
	if from, ok := parseFilterDate(f.From); ok && t.Date.Time.Before(from.Time) {
		return false
	}
	if to, ok := parseFilterDate(f.To); ok && t.Date.Time.After(to.Time) {
		return false
	}
	return true
}

// Apply narrows the snapshot to the visible subset, preserving order.
func (f Filter) Apply(ts []Transaction) []Transaction {
	visible := make([]Transaction, 0, len(ts))
	for _, t := range ts {
		if f.Match(t) {
			visible = append(visible, t)
		}
	}
	return visible
}

// CategoryOptions derives the category criterion candidates from the
// unfiltered owner list: FilterAll first, then the distinct category names in
// first-seen order. A category with no transactions never shows up.
func CategoryOptions(ts []Transaction) []string {
	options := []string{FilterAll}
	seen := make(map[string]struct{}, len(ts))
	for _, t := range ts {
		if _, ok := seen[t.Category.Name]; ok {
			continue
		}
		seen[t.Category.Name] = struct{}{}
		options = append(options, t.Category.Name)
	}
	return options
}

// parseFilterDate is deliberately fail-open: blank or malformed input means
// the bound is unset, never "match nothing".
func parseFilterDate(s string) (Date, bool) {
	if s == "" {
		return Date{}, false
	}
	d, err := ParseDate(s)
	if err != nil {
		return Date{}, false
	}
	return d, true
}
