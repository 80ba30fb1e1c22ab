package facts

import (
	"fmt"
	"time"

	"github.com/diwise/item-drive/pkg/drive/errors"
)

// Fact is one timestamped assertion about an item. Facts are never mutated once made,
// corrections are recorded as new facts.
type Fact struct {
	FactID    string `json:"factID"`
	ItemID    string `json:"itemID"`
	Property  string `json:"property"`
	Timestamp int64  `json:"timestamp"`
	Value     Value  `json:"value"`
}

// PartialFact holds the caller supplied parts of a fact. Empty strings, a nil
// Timestamp and a zero Value mean "not supplied".
type PartialFact struct {
	FactID    string `json:"factID,omitempty"`
	ItemID    string `json:"itemID,omitempty"`
	Property  string `json:"property,omitempty"`
	Timestamp *int64 `json:"timestamp,omitempty"`
	Value     Value  `json:"value"`
}

// Partial returns a PartialFact carrying every field of f
func (f Fact) Partial() PartialFact {
	ts := f.Timestamp
	return PartialFact{
		FactID:    f.FactID,
		ItemID:    f.ItemID,
		Property:  f.Property,
		Timestamp: &ts,
		Value:     f.Value,
	}
}

// Millis converts t to the millisecond timestamps used by facts
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// MakeFact completes a partial fact. The timestamp defaults to now and missing
// fact and item ids are generated from the effective timestamp.
func MakeFact(p PartialFact, now time.Time) (Fact, error) {
	if p.Property == "" {
		return Fact{}, errors.NewValidationError("property is required")
	}

	if p.Value.IsZero() {
		return Fact{}, errors.NewValidationError(fmt.Sprintf("value is required for property %s", p.Property))
	}

	timestamp := Millis(now)
	if p.Timestamp != nil {
		timestamp = *p.Timestamp
	}

	f := Fact{
		FactID:    p.FactID,
		ItemID:    p.ItemID,
		Property:  p.Property,
		Timestamp: timestamp,
		Value:     p.Value,
	}

	if f.FactID == "" {
		f.FactID = NewID(timestamp)
	}

	if f.ItemID == "" {
		f.ItemID = NewID(timestamp)
	}

	return f, nil
}
