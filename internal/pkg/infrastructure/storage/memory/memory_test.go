package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/diwise/item-drive/internal/pkg/application/itemdrive"
	"github.com/diwise/item-drive/internal/pkg/infrastructure/storage/storagetest"
	"github.com/diwise/item-drive/pkg/drive/facts"
	"github.com/matryer/is"
)

func TestMemoryStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) itemdrive.DataSource {
		return New()
	})
}

func TestIndexesAreUpdatedTogether(t *testing.T) {
	is := is.New(t)
	s := New()

	f, err := s.InsertFact(context.Background(), facts.PartialFact{ItemID: "a", Property: "name", Value: facts.Literal("Ash")})
	is.NoErr(err)

	is.Equal(s.itemIDByFactID[f.FactID], "a")
	is.Equal(s.factsByItemID["a"][f.FactID].fact.FactID, f.FactID)
}

func TestConcurrentInsertsAndFetches(t *testing.T) {
	is := is.New(t)
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.InsertFact(context.Background(), facts.PartialFact{ItemID: "a", Property: "n", Value: facts.Literal(i)})
		}()
		go func() {
			defer wg.Done()
			s.FetchFacts(context.Background(), []facts.Query{{ItemID: []string{"a"}}})
		}()
	}
	wg.Wait()

	all, err := s.FetchFacts(context.Background(), nil)
	is.NoErr(err)
	is.Equal(len(all), 16)
}
