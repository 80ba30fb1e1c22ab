package facts

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func ptr[T any](v T) *T { return &v }

func testFact(property string, value Value) Fact {
	f, _ := MakeFact(PartialFact{Property: property, Value: value}, time.Now())
	return f
}

func TestFilterFactByItemIDAndFactID(t *testing.T) {
	is := is.New(t)
	f := testFact("name", Literal("Ethan"))

	is.True(FilterFact(f, Query{ItemID: []string{f.ItemID}}))
	is.True(FilterFact(f, Query{FactID: []string{f.FactID}}))
	is.True(!FilterFact(f, Query{ItemID: []string{"Not Ethan"}}))
	is.True(!FilterFact(f, Query{FactID: []string{"Not Ethan"}}))
}

func TestFilterFactByProperty(t *testing.T) {
	is := is.New(t)
	f := testFact("name", Literal("Ethan"))

	is.True(FilterFact(f, Query{Property: "name"}))
	is.True(!FilterFact(f, Query{Property: "age"}))
}

func TestFilterFactByValue(t *testing.T) {
	is := is.New(t)
	f := testFact("name", Literal("Ethan"))

	is.True(FilterFact(f, Query{Property: "name", Value: "Ethan"}))
	is.True(!FilterFact(f, Query{Property: "name", Value: "Not Ethan"}))
}

func TestFilterFactByValueMatchesTypedCollections(t *testing.T) {
	is := is.New(t)
	f := testFact("tags", Literal([]string{"a"}))

	is.True(FilterFact(f, Query{Property: "tags", Value: []any{"a"}}))
	is.True(!FilterFact(f, Query{Property: "tags", Value: []any{"b"}}))
}

func TestFilterFactByReferenceValue(t *testing.T) {
	is := is.New(t)
	f := testFact("@type", Reference("https://schema.org/Person"))

	is.True(FilterFact(f, Query{Value: "https://schema.org/Person"}))
	is.True(!FilterFact(f, Query{Value: "https://schema.org/Place"}))
}

func TestFilterFactByValueIncludes(t *testing.T) {
	is := is.New(t)
	f := testFact("tags", List(Literal("a"), Reference("b"), Literal(3)))

	is.True(FilterFact(f, Query{ValueIncludes: "a"}))
	is.True(FilterFact(f, Query{ValueIncludes: 3.0}))
	is.True(!FilterFact(f, Query{ValueIncludes: "b"})) // references are not literal payloads
	is.True(FilterFact(testFact("tag", Literal("a")), Query{ValueIncludes: "a"}))
	is.True(FilterFact(testFact("tags", Set(Literal("x"))), Query{ValueIncludes: "x"}))
}

func TestFilterFactRangeBoundaries(t *testing.T) {
	is := is.New(t)
	f := testFact("age", Literal(10))

	is.True(FilterFact(f, Query{Property: "age", ValueAtOrAbove: ptr(10.0)}))
	is.True(FilterFact(f, Query{Property: "age", ValueAtOrBelow: ptr(10.0)}))
	is.True(!FilterFact(f, Query{Property: "age", ValueAtOrAbove: ptr(11.0)}))
	is.True(!FilterFact(f, Query{Property: "age", ValueAtOrBelow: ptr(9.0)}))
	is.True(!FilterFact(f, Query{ValueAtOrAbove: ptr(0.0), ValueAtOrBelow: ptr(9.0)}))
}

func TestFilterFactRangeLetsCollectionsThrough(t *testing.T) {
	is := is.New(t)

	is.True(FilterFact(testFact("ages", List(Literal(1))), Query{ValueAtOrAbove: ptr(100.0)}))
	is.True(FilterFact(testFact("ages", Set()), Query{ValueAtOrBelow: ptr(-1.0)}))
	is.True(!FilterFact(testFact("age", Literal("ten")), Query{ValueAtOrAbove: ptr(0.0)}))
}

func TestValueTakesPrecedenceOverOtherValueConstraints(t *testing.T) {
	is := is.New(t)
	f := testFact("age", Literal(10))

	is.True(FilterFact(f, Query{Value: 10, ValueAtOrAbove: ptr(11.0)}))
	is.True(!FilterFact(f, Query{Value: 11, ValueIncludes: 10}))
}

func TestFilterFactByTimestamp(t *testing.T) {
	is := is.New(t)
	ts := int64(0)

	f, _ := MakeFact(PartialFact{Property: "name", Value: Literal("Ethan"), Timestamp: &ts}, time.Now())

	is.True(FilterFact(f, Query{Property: "name", CreatedAtOrAfter: ptr(int64(0))}))
	is.True(FilterFact(f, Query{Property: "name", CreatedAtOrBefore: ptr(int64(0))}))
	is.True(!FilterFact(f, Query{Property: "name", CreatedAtOrAfter: ptr(int64(1))}))
	is.True(!FilterFact(f, Query{Property: "name", CreatedAtOrBefore: ptr(int64(-1))}))
}

func TestMatchesAny(t *testing.T) {
	is := is.New(t)
	f := testFact("name", Literal("Dawn"))

	is.True(MatchesAny(f, []Query{{Value: "Ash"}, {Value: "Dawn"}}))
	is.True(!MatchesAny(f, []Query{}))
}

func TestGroupQueriesByProperty(t *testing.T) {
	is := is.New(t)

	groups := GroupQueriesByProperty([]Query{
		{Property: "name", Value: "Ash"},
		{ItemID: []string{"1"}},
		{Property: "type", Value: "person"},
		{Property: "name", Value: "Dawn"},
	})

	is.Equal(len(groups), 2)
	is.Equal(groups[0].Property, "name")
	is.Equal(len(groups[0].Queries), 2)
	is.Equal(groups[1].Property, "type")
}
