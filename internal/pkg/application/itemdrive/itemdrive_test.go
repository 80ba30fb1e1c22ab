package itemdrive

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/diwise/item-drive/internal/pkg/application/ontology"
	"github.com/diwise/item-drive/internal/pkg/infrastructure/storage/memory"
	driveerrors "github.com/diwise/item-drive/pkg/drive/errors"
	"github.com/diwise/item-drive/pkg/drive/facts"
	"github.com/diwise/item-drive/pkg/drive/items"
	"github.com/matryer/is"
)

func TestInsertItemThenFetchItem(t *testing.T) {
	is, ctx, drive := setupDriveTest(t)

	inserted, err := drive.InsertItem(ctx, items.PartialItem{
		ItemID: "ethan",
		Facts: []facts.PartialFact{
			{ItemID: "someone-else", Property: "name", Value: facts.Literal("Ethan")},
			{Property: "age", Value: facts.Literal(23)},
		},
	})
	is.NoErr(err)

	item, err := drive.FetchItem(ctx, inserted.ItemID)
	is.NoErr(err)
	is.True(item != nil)

	is.Equal(len(item.Facts), 2)
	is.Equal(item.Facts[0].ItemID, "ethan") // the fact should belong to the item it was inserted with
	is.Equal(item.Facts[1].ItemID, "ethan")
	is.Equal(item.Facts[0].Timestamp, testTime.UnixMilli())
}

func TestFetchUnknownItemReturnsNil(t *testing.T) {
	is, ctx, drive := setupDriveTest(t)

	item, err := drive.FetchItem(ctx, "nobody")

	is.NoErr(err)
	is.True(item == nil)
}

func TestFetchUnknownFactFails(t *testing.T) {
	is, ctx, drive := setupDriveTest(t)

	_, err := drive.FetchFact(ctx, "nothing")

	is.True(errors.Is(err, driveerrors.ErrNotFound))
}

func TestFetchFactByID(t *testing.T) {
	is, ctx, drive := setupDriveTest(t)

	item, err := drive.InsertItem(ctx, items.PartialItem{Facts: []facts.PartialFact{{Property: "name", Value: facts.Literal("Ash")}}})
	is.NoErr(err)

	f, err := drive.FetchFact(ctx, item.Facts[0].FactID)
	is.NoErr(err)
	is.Equal(f.ItemID, item.ItemID)
}

func TestFetchItemsIsConjunctionAcrossProperties(t *testing.T) {
	is, ctx, drive := setupDriveTest(t)
	insertPeople(t, drive)

	result, err := drive.FetchItems(ctx, []facts.Query{
		{Property: "name", Value: "Ash"},
		{Property: "type", Value: "robot"},
	})
	is.NoErr(err)
	is.Equal(len(result), 0) // no item is named Ash and is a robot

	result, err = drive.FetchItems(ctx, []facts.Query{
		{Property: "name", Value: "Ash"},
		{Property: "type", Value: "person"},
	})
	is.NoErr(err)
	is.Equal(len(result), 1)
	is.Equal(result[0].ItemID, "A")
}

func TestFetchItemsIsDisjunctionWithinProperty(t *testing.T) {
	is, ctx, drive := setupDriveTest(t)
	insertPeople(t, drive)

	result, err := drive.FetchItems(ctx, []facts.Query{
		{Property: "name", Value: "Ash"},
		{Property: "name", Value: "Dawn"},
	})
	is.NoErr(err)

	is.Equal(len(result), 2)
	is.Equal(result[0].ItemID, "A")
	is.Equal(result[1].ItemID, "B")
}

func TestFetchItemsWithoutQueriesReturnsAll(t *testing.T) {
	is, ctx, drive := setupDriveTest(t)
	insertPeople(t, drive)

	result, err := drive.FetchItems(ctx, nil)
	is.NoErr(err)
	is.Equal(len(result), 3)

	result, err = drive.FetchItems(ctx, []facts.Query{})
	is.NoErr(err)
	is.Equal(len(result), 0) // an empty query should match nothing

	result, err = drive.FetchItems(ctx, []facts.Query{{ItemID: []string{"A"}}})
	is.NoErr(err)
	is.Equal(len(result), 0) // queries without a property are dropped
}

func TestFetchItemsByRange(t *testing.T) {
	is, ctx, drive := setupDriveTest(t)
	insertPeople(t, drive)

	ten := 10.0
	result, err := drive.FetchItems(ctx, []facts.Query{{Property: "age", ValueAtOrAbove: &ten}})
	is.NoErr(err)

	is.Equal(len(result), 2)
}

func TestItemIDsMatchingGroupWidensWithIDFilters(t *testing.T) {
	is, ctx, drive := setupDriveTest(t)
	insertPeople(t, drive)

	app := drive.(*itemDriveApp)

	ids, err := app.itemIDsMatchingGroup(ctx, facts.PropertyGroup{
		Property: "name",
		Queries: []facts.Query{
			{Property: "name", Value: "Ash"},
			{Property: "name", ItemID: []string{"C"}},
		},
	})
	is.NoErr(err)

	is.Equal(ids, []string{"A", "C"})
}

func TestInsertItemsNotifies(t *testing.T) {
	is := is.New(t)
	n := &notifierMock{}
	drive := New(memory.New(), WithNotifier(n))

	_, err := drive.InsertItems(context.Background(), []items.PartialItem{
		{Facts: []facts.PartialFact{{Property: "name", Value: facts.Literal("Ash")}}},
		{Facts: []facts.PartialFact{{Property: "name", Value: facts.Literal("Dawn")}}},
	})
	is.NoErr(err)

	is.Equal(len(n.created), 2)
}

func TestInsertItemsFailsOnInvalidFact(t *testing.T) {
	is, ctx, drive := setupDriveTest(t)

	_, err := drive.InsertItems(ctx, []items.PartialItem{
		{ItemID: "ok", Facts: []facts.PartialFact{{Property: "name", Value: facts.Literal("Ash")}}},
		{ItemID: "bad", Facts: []facts.PartialFact{{Property: "name"}}},
	})
	is.True(errors.Is(err, driveerrors.ErrValidation))

	item, err := drive.FetchItem(ctx, "ok")
	is.NoErr(err)
	is.True(item == nil) // no item of a failed batch should be stored
}

func TestCheckItemAgainstStoredOntology(t *testing.T) {
	is, ctx, drive := setupDriveTest(t)

	_, err := drive.InsertItems(ctx, schema(ontology.DataTypeText))
	is.NoErr(err)

	err = drive.CheckItem(ctx, ethan(t))
	is.NoErr(err)
}

func TestCheckItemRangeMismatch(t *testing.T) {
	is, ctx, drive := setupDriveTest(t)

	_, err := drive.InsertItems(ctx, schema(ontology.DataTypeNumber))
	is.NoErr(err)

	err = drive.CheckItem(ctx, ethan(t))

	reason, ok := driveerrors.SchemaReasonOf(err)
	is.True(ok)
	is.Equal(reason, driveerrors.ReasonRangeMismatch)
}

func TestPropertiesOfType(t *testing.T) {
	is, ctx, drive := setupDriveTest(t)

	_, err := drive.InsertItems(ctx, schema(ontology.DataTypeText))
	is.NoErr(err)

	properties, err := drive.PropertiesOfType(ctx, person)
	is.NoErr(err)

	is.Equal(len(properties), 1)
	is.Equal(properties[0].ItemID, name)
}

func TestIngestDocument(t *testing.T) {
	is, ctx, drive := setupDriveTest(t)

	doc := `{
		"@context": {"@vocab": "https://schema.org/"},
		"@graph": [
			{"@id": "https://schema.org/Person", "@type": "http://www.w3.org/2000/01/rdf-schema#Class"},
			{"@id": "https://example.com/ethan", "@type": "Person", "name": "Ethan"}
		]
	}`

	ingested, err := IngestDocument(ctx, drive, strings.NewReader(doc))
	is.NoErr(err)
	is.Equal(len(ingested), 2)

	result, err := drive.FetchItems(ctx, []facts.Query{{Property: "@type", Value: person}})
	is.NoErr(err)
	is.Equal(len(result), 1)
	is.Equal(result[0].ItemID, "https://example.com/ethan")
}

const (
	person string = "https://schema.org/Person"
	name   string = "https://schema.org/name"
)

var testTime = time.Date(2024, 3, 24, 12, 0, 0, 0, time.UTC)

func setupDriveTest(t *testing.T) (*is.I, context.Context, ItemDrive) {
	is := is.New(t)
	drive := New(memory.New(), WithClock(func() time.Time { return testTime }))
	return is, context.Background(), drive
}

func insertPeople(t *testing.T, drive ItemDrive) {
	_, err := drive.InsertItems(context.Background(), []items.PartialItem{
		{ItemID: "A", Facts: []facts.PartialFact{
			{Property: "name", Value: facts.Literal("Ash")},
			{Property: "type", Value: facts.Literal("person")},
			{Property: "age", Value: facts.Literal(10)},
		}},
		{ItemID: "B", Facts: []facts.PartialFact{
			{Property: "name", Value: facts.Literal("Dawn")},
			{Property: "type", Value: facts.Literal("person")},
			{Property: "age", Value: facts.Literal(12)},
		}},
		{ItemID: "C", Facts: []facts.PartialFact{
			{Property: "name", Value: facts.Literal("Robbie")},
			{Property: "type", Value: facts.Literal("robot")},
		}},
	})
	if err != nil {
		t.Fatalf("failed to insert people: %s", err.Error())
	}
}

func ref(property, id string) facts.PartialFact {
	return facts.PartialFact{Property: property, Value: facts.Reference(id)}
}

func schema(nameRange string) []items.PartialItem {
	return []items.PartialItem{
		{ItemID: person, Facts: []facts.PartialFact{ref("@type", ontology.ExternalClassClass)}},
		{ItemID: ontology.DataTypeText, Facts: []facts.PartialFact{ref("@type", ontology.ExternalClassClass)}},
		{ItemID: ontology.DataTypeNumber, Facts: []facts.PartialFact{ref("@type", ontology.ExternalClassClass)}},
		{ItemID: name, Facts: []facts.PartialFact{
			ref("@type", ontology.ExternalClassProperty),
			ref(ontology.PropertyDomainIncludes, person),
			ref(ontology.PropertyRangeIncludes, nameRange),
		}},
	}
}

func ethan(t *testing.T) items.Item {
	item, err := items.MakeItem(items.PartialItem{
		ItemID: "ethan",
		Facts: []facts.PartialFact{
			ref("@type", person),
			{Property: name, Value: facts.Literal("Ethan")},
		},
	}, time.Now())
	if err != nil {
		t.Fatalf("failed to make item: %s", err.Error())
	}
	return item
}

type notifierMock struct {
	created []items.Item
}

func (n *notifierMock) Start() error { return nil }
func (n *notifierMock) Stop() error  { return nil }

func (n *notifierMock) ItemCreated(ctx context.Context, item items.Item) {
	n.created = append(n.created, item)
}
