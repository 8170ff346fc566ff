package domain

import "sort"

// Filters maps a column to the set of accepted values. An empty set places
// no constraint on its column.
type Filters map[Field]map[string]struct{}

// Toggle adds value to the column's set, or removes it if already present.
func (f Filters) Toggle(field Field, value string) {
	set, ok := f[field]
	if !ok {
		set = make(map[string]struct{})
		f[field] = set
	}
	if _, ok := set[value]; ok {
		delete(set, value)
		if len(set) == 0 {
			delete(f, field)
		}
		return
	}
	set[value] = struct{}{}
}

// Match reports whether the item passes every active column: AND across
// columns, OR within a column.
func (f Filters) Match(it InventoryItem) bool {
	for field, set := range f {
		if len(set) == 0 {
			continue
		}
		if _, ok := set[it.Value(field)]; !ok {
			return false
		}
	}
	return true
}

func (f Filters) Active() bool {
	for _, set := range f {
		if len(set) > 0 {
			return true
		}
	}
	return false
}

// Snapshot returns the filter state with sorted values.
func (f Filters) Snapshot() map[Field][]string {
	out := make(map[Field][]string, len(f))
	for field, set := range f {
		if len(set) == 0 {
			continue
		}
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		sort.Strings(values)
		out[field] = values
	}
	return out
}

// Apply returns the items that pass the filters, in collection order.
func (f Filters) Apply(items []InventoryItem) []InventoryItem {
	out := make([]InventoryItem, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return out
}
