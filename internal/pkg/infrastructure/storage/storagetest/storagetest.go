// Package storagetest contains the behaviour every DataSource implementation must share
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/diwise/item-drive/internal/pkg/application/itemdrive"
	driveerrors "github.com/diwise/item-drive/pkg/drive/errors"
	"github.com/diwise/item-drive/pkg/drive/facts"
	"github.com/matryer/is"
)

// Factory returns an empty data source for a single test
type Factory func(t *testing.T) itemdrive.DataSource

// Run runs the data source contract suite against the data sources returned by factory
func Run(t *testing.T, factory Factory) {
	tests := []struct {
		name string
		test func(*testing.T, itemdrive.DataSource)
	}{
		{"InsertFactCompletesPartialFact", testInsertFactCompletesPartialFact},
		{"InsertFactRejectsInvalidFact", testInsertFactRejectsInvalidFact},
		{"InsertFactsShareTimestamp", testInsertFactsShareTimestamp},
		{"InsertFactsRejectsDuplicateFactID", testInsertFactsRejectsDuplicateFactID},
		{"InsertFactsIsAllOrNothing", testInsertFactsIsAllOrNothing},
		{"FetchFactsWithoutQueriesReturnsAll", testFetchFactsWithoutQueriesReturnsAll},
		{"FetchFactsWithEmptyQueriesReturnsNone", testFetchFactsWithEmptyQueriesReturnsNone},
		{"FetchFactsByItemID", testFetchFactsByItemID},
		{"FetchFactsByFactID", testFetchFactsByFactID},
		{"FetchFactsSkipsUnknownIDs", testFetchFactsSkipsUnknownIDs},
		{"FetchFactsByPropertyAndValue", testFetchFactsByPropertyAndValue},
		{"FetchFactsIsUnionOfQueries", testFetchFactsIsUnionOfQueries},
		{"FetchFactsByRange", testFetchFactsByRange},
		{"FetchFactsByTimestamp", testFetchFactsByTimestamp},
		{"FetchFactNotFound", testFetchFactNotFound},
		{"ValuesSurviveStorage", testValuesSurviveStorage},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.test(t, factory(t))
		})
	}
}

func ptr[T any](v T) *T { return &v }

func insert(t *testing.T, ds itemdrive.DataSource, partials ...facts.PartialFact) []facts.Fact {
	t.Helper()

	inserted, err := ds.InsertFacts(context.Background(), partials)
	if err != nil {
		t.Fatalf("failed to insert facts: %s", err.Error())
	}

	return inserted
}

func factIDs(fs []facts.Fact) []string {
	ids := make([]string, 0, len(fs))
	for _, f := range fs {
		ids = append(ids, f.FactID)
	}
	return ids
}

func testInsertFactCompletesPartialFact(t *testing.T, ds itemdrive.DataSource) {
	is := is.New(t)

	f, err := ds.InsertFact(context.Background(), facts.PartialFact{Property: "name", Value: facts.Literal("Ethan")})
	is.NoErr(err)

	is.True(f.FactID != "")
	is.True(f.ItemID != "")
	is.True(f.Timestamp > 0)

	stored, err := ds.FetchFact(context.Background(), f.FactID)
	is.NoErr(err)
	is.Equal(stored.ItemID, f.ItemID)
	is.Equal(stored.Timestamp, f.Timestamp)
	is.True(stored.Value.Equal(f.Value))
}

func testInsertFactRejectsInvalidFact(t *testing.T, ds itemdrive.DataSource) {
	is := is.New(t)

	_, err := ds.InsertFact(context.Background(), facts.PartialFact{Property: "name"})

	is.True(errors.Is(err, driveerrors.ErrValidation))
}

func testInsertFactsShareTimestamp(t *testing.T, ds itemdrive.DataSource) {
	is := is.New(t)
	ts := int64(7)

	inserted := insert(t, ds,
		facts.PartialFact{ItemID: "a", Property: "name", Value: facts.Literal("Ash")},
		facts.PartialFact{ItemID: "a", Property: "type", Value: facts.Literal("person")},
		facts.PartialFact{ItemID: "a", Property: "age", Value: facts.Literal(10), Timestamp: &ts},
	)

	is.Equal(len(inserted), 3)
	is.Equal(inserted[0].Timestamp, inserted[1].Timestamp)
	is.Equal(inserted[2].Timestamp, ts)
}

func testInsertFactsRejectsDuplicateFactID(t *testing.T, ds itemdrive.DataSource) {
	is := is.New(t)

	insert(t, ds, facts.PartialFact{FactID: "f1", ItemID: "a", Property: "name", Value: facts.Literal("Ash")})

	_, err := ds.InsertFact(context.Background(), facts.PartialFact{FactID: "f1", ItemID: "b", Property: "name", Value: facts.Literal("Dawn")})
	is.True(errors.Is(err, driveerrors.ErrAlreadyExists))

	stored, err := ds.FetchFact(context.Background(), "f1")
	is.NoErr(err)
	is.Equal(stored.ItemID, "a") // the first fact should be kept
}

func testInsertFactsIsAllOrNothing(t *testing.T, ds itemdrive.DataSource) {
	is := is.New(t)

	insert(t, ds, facts.PartialFact{FactID: "f1", ItemID: "a", Property: "name", Value: facts.Literal("Ash")})

	_, err := ds.InsertFacts(context.Background(), []facts.PartialFact{
		{FactID: "f2", ItemID: "b", Property: "name", Value: facts.Literal("Dawn")},
		{FactID: "f1", ItemID: "b", Property: "type", Value: facts.Literal("person")},
	})
	is.True(errors.Is(err, driveerrors.ErrAlreadyExists))

	_, err = ds.FetchFact(context.Background(), "f2")
	is.True(errors.Is(err, driveerrors.ErrNotFound)) // no fact from a failed batch should be stored
}

func testFetchFactsWithoutQueriesReturnsAll(t *testing.T, ds itemdrive.DataSource) {
	is := is.New(t)

	inserted := insert(t, ds,
		facts.PartialFact{ItemID: "a", Property: "name", Value: facts.Literal("Ash")},
		facts.PartialFact{ItemID: "b", Property: "name", Value: facts.Literal("Dawn")},
	)
	inserted = append(inserted, insert(t, ds, facts.PartialFact{ItemID: "a", Property: "type", Value: facts.Literal("person")})...)

	all, err := ds.FetchFacts(context.Background(), nil)
	is.NoErr(err)

	is.Equal(factIDs(all), factIDs(inserted)) // facts should be returned in insertion order
}

func testFetchFactsWithEmptyQueriesReturnsNone(t *testing.T, ds itemdrive.DataSource) {
	is := is.New(t)

	insert(t, ds, facts.PartialFact{Property: "name", Value: facts.Literal("Ash")})

	result, err := ds.FetchFacts(context.Background(), []facts.Query{})
	is.NoErr(err)

	is.Equal(len(result), 0)
}

func testFetchFactsByItemID(t *testing.T, ds itemdrive.DataSource) {
	is := is.New(t)

	insert(t, ds,
		facts.PartialFact{ItemID: "a", Property: "name", Value: facts.Literal("Ash")},
		facts.PartialFact{ItemID: "b", Property: "name", Value: facts.Literal("Dawn")},
		facts.PartialFact{ItemID: "a", Property: "type", Value: facts.Literal("person")},
	)

	result, err := ds.FetchFacts(context.Background(), []facts.Query{{ItemID: []string{"a"}}})
	is.NoErr(err)
	is.Equal(len(result), 2)
	is.Equal(result[0].Property, "name")
	is.Equal(result[1].Property, "type")

	result, err = ds.FetchFacts(context.Background(), []facts.Query{{ItemID: []string{"a"}, Property: "type"}})
	is.NoErr(err)
	is.Equal(len(result), 1)
}

func testFetchFactsByFactID(t *testing.T, ds itemdrive.DataSource) {
	is := is.New(t)

	inserted := insert(t, ds,
		facts.PartialFact{Property: "name", Value: facts.Literal("Ash")},
		facts.PartialFact{Property: "name", Value: facts.Literal("Dawn")},
	)

	result, err := ds.FetchFacts(context.Background(), []facts.Query{{FactID: []string{inserted[1].FactID}}})
	is.NoErr(err)

	is.Equal(len(result), 1)
	is.Equal(result[0].FactID, inserted[1].FactID)
}

func testFetchFactsSkipsUnknownIDs(t *testing.T, ds itemdrive.DataSource) {
	is := is.New(t)

	inserted := insert(t, ds, facts.PartialFact{ItemID: "a", Property: "name", Value: facts.Literal("Ash")})

	result, err := ds.FetchFacts(context.Background(), []facts.Query{
		{FactID: []string{"unknown", inserted[0].FactID}},
		{ItemID: []string{"nobody"}},
	})
	is.NoErr(err)

	is.Equal(len(result), 1)
}

func testFetchFactsByPropertyAndValue(t *testing.T, ds itemdrive.DataSource) {
	is := is.New(t)

	insert(t, ds,
		facts.PartialFact{ItemID: "a", Property: "name", Value: facts.Literal("Ash")},
		facts.PartialFact{ItemID: "b", Property: "name", Value: facts.Literal("Dawn")},
		facts.PartialFact{ItemID: "b", Property: "knows", Value: facts.Reference("a")},
	)

	result, err := ds.FetchFacts(context.Background(), []facts.Query{{Property: "name", Value: "Dawn"}})
	is.NoErr(err)
	is.Equal(len(result), 1)
	is.Equal(result[0].ItemID, "b")

	result, err = ds.FetchFacts(context.Background(), []facts.Query{{Property: "knows", Value: "a"}})
	is.NoErr(err)
	is.Equal(len(result), 1)
}

func testFetchFactsIsUnionOfQueries(t *testing.T, ds itemdrive.DataSource) {
	is := is.New(t)

	insert(t, ds,
		facts.PartialFact{ItemID: "a", Property: "name", Value: facts.Literal("Ash")},
		facts.PartialFact{ItemID: "b", Property: "name", Value: facts.Literal("Dawn")},
		facts.PartialFact{ItemID: "c", Property: "name", Value: facts.Literal("Misty")},
	)

	result, err := ds.FetchFacts(context.Background(), []facts.Query{
		{Property: "name", Value: "Ash"},
		{Property: "name", Value: "Dawn"},
		{ItemID: []string{"a"}},
	})
	is.NoErr(err)

	is.Equal(len(result), 2) // a fact matching several queries should be returned once
	is.Equal(result[0].ItemID, "a")
	is.Equal(result[1].ItemID, "b")
}

func testFetchFactsByRange(t *testing.T, ds itemdrive.DataSource) {
	is := is.New(t)

	insert(t, ds,
		facts.PartialFact{ItemID: "a", Property: "age", Value: facts.Literal(10)},
		facts.PartialFact{ItemID: "b", Property: "age", Value: facts.Literal(20)},
		facts.PartialFact{ItemID: "c", Property: "age", Value: facts.List(facts.Literal(99))},
	)

	result, err := ds.FetchFacts(context.Background(), []facts.Query{{Property: "age", ValueAtOrAbove: ptr(10.0), ValueAtOrBelow: ptr(10.0)}})
	is.NoErr(err)
	is.Equal(len(result), 2) // the literal on the boundary and the list
	is.Equal(result[0].ItemID, "a")
	is.Equal(result[1].ItemID, "c")
}

func testFetchFactsByTimestamp(t *testing.T, ds itemdrive.DataSource) {
	is := is.New(t)
	early, late := int64(1000), int64(2000)

	insert(t, ds,
		facts.PartialFact{ItemID: "a", Property: "seen", Value: facts.Literal(true), Timestamp: &early},
		facts.PartialFact{ItemID: "b", Property: "seen", Value: facts.Literal(true), Timestamp: &late},
	)

	result, err := ds.FetchFacts(context.Background(), []facts.Query{{Property: "seen", CreatedAtOrAfter: ptr(int64(1500))}})
	is.NoErr(err)
	is.Equal(len(result), 1)
	is.Equal(result[0].ItemID, "b")
}

func testFetchFactNotFound(t *testing.T, ds itemdrive.DataSource) {
	is := is.New(t)

	_, err := ds.FetchFact(context.Background(), "nonexistent")

	is.True(errors.Is(err, driveerrors.ErrNotFound))
}

func testValuesSurviveStorage(t *testing.T, ds itemdrive.DataSource) {
	is := is.New(t)

	values := []facts.Value{
		facts.Literal("text"),
		facts.Literal(42),
		facts.Literal(map[string]any{"nested": []any{1.0, "two"}}),
		facts.Reference("https://example.com/item"),
		facts.List(facts.Literal(1), facts.Reference("x")),
		facts.Set(facts.Literal("a"), facts.Literal("b")),
	}

	for _, v := range values {
		f, err := ds.InsertFact(context.Background(), facts.PartialFact{Property: "v", Value: v})
		is.NoErr(err)

		stored, err := ds.FetchFact(context.Background(), f.FactID)
		is.NoErr(err)
		is.True(stored.Value.Equal(v)) // stored value should equal inserted value
		is.Equal(stored.Value.Kind(), v.Kind())
	}
}
