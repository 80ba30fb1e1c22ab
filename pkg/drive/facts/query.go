package facts

import "slices"

// Query is a predicate evaluated against a single fact. Absent fields do not constrain.
type Query struct {
	Property          string   `json:"property,omitempty"`
	ItemID            []string `json:"itemID,omitempty"`
	FactID            []string `json:"factID,omitempty"`
	Value             any      `json:"value,omitempty"`
	ValueIncludes     any      `json:"valueIncludes,omitempty"`
	ValueAtOrAbove    *float64 `json:"valueAtOrAbove,omitempty"`
	ValueAtOrBelow    *float64 `json:"valueAtOrBelow,omitempty"`
	CreatedAtOrAfter  *int64   `json:"createdAtOrAfter,omitempty"`
	CreatedAtOrBefore *int64   `json:"createdAtOrBefore,omitempty"`
}

// FilterFact reports whether f satisfies every constraint of q
func FilterFact(f Fact, q Query) bool {
	return filterProperty(f, q) &&
		filterIDs(f, q) &&
		filterTimestamp(f.Timestamp, q) &&
		filterValue(f.Value, q)
}

// MatchesAny reports whether f satisfies at least one of the queries
func MatchesAny(f Fact, queries []Query) bool {
	for _, q := range queries {
		if FilterFact(f, q) {
			return true
		}
	}
	return false
}

func filterProperty(f Fact, q Query) bool {
	return q.Property == "" || q.Property == f.Property
}

func filterIDs(f Fact, q Query) bool {
	if q.ItemID != nil && !slices.Contains(q.ItemID, f.ItemID) {
		return false
	}

	if q.FactID != nil && !slices.Contains(q.FactID, f.FactID) {
		return false
	}

	return true
}

func filterTimestamp(timestamp int64, q Query) bool {
	return (q.CreatedAtOrAfter == nil || timestamp >= *q.CreatedAtOrAfter) &&
		(q.CreatedAtOrBefore == nil || timestamp <= *q.CreatedAtOrBefore)
}

// filterValue applies the first value constraint present in q, in the order
// value, valueIncludes, range.
func filterValue(v Value, q Query) bool {
	if q.Value != nil {
		return filterValueEquals(v, q.Value)
	}

	if q.ValueIncludes != nil {
		return filterValueIncludes(v, q.ValueIncludes)
	}

	if q.ValueAtOrAbove != nil || q.ValueAtOrBelow != nil {
		return filterValueRange(v, q.ValueAtOrAbove, q.ValueAtOrBelow)
	}

	return true
}

func filterValueEquals(v Value, expected any) bool {
	switch v.Kind() {
	case KindLiteral:
		return LiteralEqual(v.literal, expected)
	case KindReference:
		id, ok := expected.(string)
		return ok && id == v.ref
	}
	return false
}

func filterValueIncludes(v Value, expected any) bool {
	switch v.Kind() {
	case KindList, KindSet:
		for _, e := range v.Elements() {
			if literal, ok := e.Literal(); ok && LiteralEqual(literal, expected) {
				return true
			}
		}
		return false
	case KindLiteral:
		return LiteralEqual(v.literal, expected)
	}
	return false
}

// filterValueRange lets collections through unconditionally, range bounds are only
// defined for scalar literals.
func filterValueRange(v Value, atOrAbove, atOrBelow *float64) bool {
	switch v.Kind() {
	case KindList, KindSet:
		return true
	case KindLiteral:
		n, ok := AsNumber(v.literal)
		if !ok {
			return false
		}
		return (atOrAbove == nil || n >= *atOrAbove) && (atOrBelow == nil || n <= *atOrBelow)
	}
	return false
}
