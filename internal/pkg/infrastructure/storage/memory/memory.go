package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/diwise/item-drive/pkg/drive/errors"
	"github.com/diwise/item-drive/pkg/drive/facts"
)

type entry struct {
	fact facts.Fact
	seq  uint64
}

// Store keeps facts in two indexes, item id to facts and fact id to item id.
// Facts are returned in insertion order.
type Store struct {
	mu sync.RWMutex

	factsByItemID  map[string]map[string]entry
	itemIDByFactID map[string]string
	factIDs        []string
	seq            uint64

	now func() time.Time
}

func New() *Store {
	return &Store{
		factsByItemID:  map[string]map[string]entry{},
		itemIDByFactID: map[string]string{},
		factIDs:        []string{},
		now:            time.Now,
	}
}

func (s *Store) InsertFact(ctx context.Context, partial facts.PartialFact) (facts.Fact, error) {
	inserted, err := s.InsertFacts(ctx, []facts.PartialFact{partial})
	if err != nil {
		return facts.Fact{}, err
	}
	return inserted[0], nil
}

// InsertFacts builds all facts with a shared default timestamp and stores either all
// of them or, if any fact is invalid or already exists, none of them.
func (s *Store) InsertFacts(ctx context.Context, partials []facts.PartialFact) ([]facts.Fact, error) {
	now := s.now()
	made := make([]facts.Fact, 0, len(partials))
	batch := map[string]struct{}{}

	for _, p := range partials {
		f, err := facts.MakeFact(p, now)
		if err != nil {
			return nil, err
		}

		if _, ok := batch[f.FactID]; ok {
			return nil, errors.NewAlreadyExistsError(fmt.Sprintf("fact %s is inserted more than once", f.FactID))
		}
		batch[f.FactID] = struct{}{}

		made = append(made, f)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range made {
		if _, ok := s.itemIDByFactID[f.FactID]; ok {
			return nil, errors.NewAlreadyExistsError(fmt.Sprintf("fact %s already exists", f.FactID))
		}
	}

	for _, f := range made {
		item, ok := s.factsByItemID[f.ItemID]
		if !ok {
			item = map[string]entry{}
			s.factsByItemID[f.ItemID] = item
		}

		s.seq++
		item[f.FactID] = entry{fact: f, seq: s.seq}
		s.itemIDByFactID[f.FactID] = f.ItemID
		s.factIDs = append(s.factIDs, f.FactID)
	}

	return made, nil
}

func (s *Store) FetchFact(ctx context.Context, factID string) (facts.Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.lookup(factID)
	if !ok {
		return facts.Fact{}, errors.NewNotFoundError(fmt.Sprintf("fact %s not found", factID))
	}

	return e.fact, nil
}

// FetchFacts returns the union of the facts matching each query
func (s *Store) FetchFacts(ctx context.Context, queries []facts.Query) ([]facts.Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if queries == nil {
		result := make([]facts.Fact, 0, len(s.factIDs))
		for _, factID := range s.factIDs {
			e, _ := s.lookup(factID)
			result = append(result, e.fact)
		}
		return result, nil
	}

	matches := map[string]entry{}

	for _, q := range queries {
		for _, e := range s.candidates(q) {
			if facts.FilterFact(e.fact, q) {
				matches[e.fact.FactID] = e
			}
		}
	}

	ordered := make([]entry, 0, len(matches))
	for _, e := range matches {
		ordered = append(ordered, e)
	}

	slices.SortFunc(ordered, func(a, b entry) int {
		return cmp.Compare(a.seq, b.seq)
	})

	result := make([]facts.Fact, 0, len(ordered))
	for _, e := range ordered {
		result = append(result, e.fact)
	}

	return result, nil
}

// candidates uses the indexes for queries naming item or fact ids and falls back to
// every stored fact otherwise. Unknown ids are skipped.
func (s *Store) candidates(q facts.Query) []entry {
	result := []entry{}

	if q.ItemID != nil {
		for _, itemID := range q.ItemID {
			for _, e := range s.factsByItemID[itemID] {
				result = append(result, e)
			}
		}
		return result
	}

	if q.FactID != nil {
		for _, factID := range q.FactID {
			if e, ok := s.lookup(factID); ok {
				result = append(result, e)
			}
		}
		return result
	}

	for _, factID := range s.factIDs {
		e, _ := s.lookup(factID)
		result = append(result, e)
	}

	return result
}

func (s *Store) lookup(factID string) (entry, bool) {
	itemID, ok := s.itemIDByFactID[factID]
	if !ok {
		return entry{}, false
	}

	e, ok := s.factsByItemID[itemID][factID]
	return e, ok
}
