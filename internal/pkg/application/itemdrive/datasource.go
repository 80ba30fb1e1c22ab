package itemdrive

import (
	"context"

	"github.com/diwise/item-drive/pkg/drive/facts"
)

// DataSource is the storage port that persists facts for a drive.
//
// FetchFacts returns the facts matching any of the queries. A nil slice of queries
// returns every fact, an empty one returns none. FetchFact fails with a not found
// error when no fact has the given id. Inserting a fact whose id already exists
// fails with an already exists error.
type DataSource interface {
	InsertFact(ctx context.Context, partial facts.PartialFact) (facts.Fact, error)
	InsertFacts(ctx context.Context, partials []facts.PartialFact) ([]facts.Fact, error)
	FetchFacts(ctx context.Context, queries []facts.Query) ([]facts.Fact, error)
	FetchFact(ctx context.Context, factID string) (facts.Fact, error)
}
