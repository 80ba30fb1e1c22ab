package facts

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	driveerrors "github.com/diwise/item-drive/pkg/drive/errors"
	"github.com/matryer/is"
)

func TestMakeFactRequiresProperty(t *testing.T) {
	is := is.New(t)

	_, err := MakeFact(PartialFact{Value: Literal("Ethan")}, time.Now())

	is.True(errors.Is(err, driveerrors.ErrValidation))
}

func TestMakeFactRequiresValue(t *testing.T) {
	is := is.New(t)

	_, err := MakeFact(PartialFact{Property: "name"}, time.Now())

	is.True(errors.Is(err, driveerrors.ErrValidation))
}

func TestMakeFactFromPropertyAndValue(t *testing.T) {
	is := is.New(t)
	date := time.UnixMilli(0)

	f, err := MakeFact(PartialFact{Property: "name", Value: Literal("Ethan")}, date)
	is.NoErr(err)

	is.Equal(f.Property, "name")
	is.True(f.Value.Equal(Literal("Ethan")))
	is.Equal(f.Timestamp, int64(0))
	is.True(f.FactID != "")
	is.True(f.ItemID != "")
	is.True(f.FactID != f.ItemID) // generated ids should be unique
}

func TestMakeFactKeepsSuppliedFields(t *testing.T) {
	is := is.New(t)
	ts := int64(1234)

	f, err := MakeFact(PartialFact{
		FactID:    "fact-1",
		ItemID:    "item-1",
		Property:  "name",
		Timestamp: &ts,
		Value:     Literal("Ash"),
	}, time.Now())
	is.NoErr(err)

	is.Equal(f.FactID, "fact-1")
	is.Equal(f.ItemID, "item-1")
	is.Equal(f.Timestamp, ts)
}

func TestNewIDIsSortableByTimestamp(t *testing.T) {
	is := is.New(t)

	early := NewID(1000)
	late := NewID(2000)

	is.Equal(len(early), 26)
	is.True(early < late)
}

func TestFactJSON(t *testing.T) {
	is := is.New(t)

	f, _ := MakeFact(PartialFact{FactID: "f", ItemID: "i", Property: "age", Value: Literal(23)}, time.UnixMilli(5))
	b, err := json.Marshal(f)
	is.NoErr(err)
	is.Equal(string(b), `{"factID":"f","itemID":"i","property":"age","timestamp":5,"value":{"@value":23}}`)
}
