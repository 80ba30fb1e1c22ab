package ontology

import (
	"context"

	"github.com/diwise/item-drive/pkg/drive/facts"
)

// ClassSet is a set of class ids
type ClassSet map[string]struct{}

func NewClassSet(ids ...string) ClassSet {
	s := ClassSet{}
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s ClassSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Intersects reports whether s and other share at least one class
func (s ClassSet) Intersects(other ClassSet) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}

	for id := range small {
		if large.Has(id) {
			return true
		}
	}
	return false
}

// SubClassClosure collects seeds and every class reachable from them over subClassOf edges.
// A class already in the closure is never expanded again, so cyclic graphs terminate.
func SubClassClosure(ctx context.Context, fetcher ItemFetcher, seeds []string) (ClassSet, error) {
	closure := ClassSet{}
	worklist := append([]string{}, seeds...)

	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]

		if closure.Has(id) {
			continue
		}
		closure[id] = struct{}{}

		item, err := fetcher.FetchItem(ctx, id)
		if err != nil {
			return nil, err
		}

		if item == nil {
			continue
		}

		for _, f := range item.FactsOf(PropertySubClassOf) {
			if parent, ok := referenceOf(f.Value); ok && !closure.Has(parent) {
				worklist = append(worklist, parent)
			}
		}
	}

	return closure, nil
}

// referenceOf returns the normalized id of a reference value
func referenceOf(v facts.Value) (string, bool) {
	id, ok := v.Reference()
	if !ok {
		return "", false
	}
	return Normalize(id), true
}
