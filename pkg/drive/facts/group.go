package facts

// PropertyGroup is the subset of a query's predicates sharing one property name
type PropertyGroup struct {
	Property string
	Queries  []Query
}

// GroupQueriesByProperty partitions queries by property in order of first appearance.
// Queries without a property are dropped.
func GroupQueriesByProperty(queries []Query) []PropertyGroup {
	groups := []PropertyGroup{}
	index := map[string]int{}

	for _, q := range queries {
		if q.Property == "" {
			continue
		}

		i, ok := index[q.Property]
		if !ok {
			i = len(groups)
			index[q.Property] = i
			groups = append(groups, PropertyGroup{Property: q.Property})
		}

		groups[i].Queries = append(groups[i].Queries, q)
	}

	return groups
}

// GroupByProperty maps each property to its facts, keeping the order of facts
func GroupByProperty(facts []Fact) map[string][]Fact {
	groups := map[string][]Fact{}
	for _, f := range facts {
		groups[f.Property] = append(groups[f.Property], f)
	}
	return groups
}

// ByProperties collects the facts of the named properties from grouped facts
func ByProperties(groups map[string][]Fact, properties ...string) []Fact {
	result := []Fact{}
	for _, p := range properties {
		result = append(result, groups[p]...)
	}
	return result
}
