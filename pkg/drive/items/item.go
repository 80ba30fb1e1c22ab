package items

import (
	"time"

	"github.com/diwise/item-drive/pkg/drive/facts"
)

// Item is the set of facts sharing an item id. It is materialized on read and never stored as such.
type Item struct {
	ItemID string       `json:"itemID"`
	Facts  []facts.Fact `json:"facts"`
}

// PartialItem is the caller supplied shape used when building or ingesting items
type PartialItem struct {
	ItemID string              `json:"itemID,omitempty"`
	Facts  []facts.PartialFact `json:"facts,omitempty"`
}

// MakeItem resolves the item id, generating one from now when absent, and builds every
// fact of the partial item. Each fact is owned by the item, so any item id declared on
// a partial fact is replaced by the item's own.
func MakeItem(p PartialItem, now time.Time) (Item, error) {
	itemID := p.ItemID
	if itemID == "" {
		itemID = facts.NewID(facts.Millis(now))
	}

	item := Item{
		ItemID: itemID,
		Facts:  make([]facts.Fact, 0, len(p.Facts)),
	}

	for _, pf := range p.Facts {
		pf.ItemID = itemID

		f, err := facts.MakeFact(pf, now)
		if err != nil {
			return Item{}, err
		}

		item.Facts = append(item.Facts, f)
	}

	return item, nil
}

// PartialFactsOf returns the facts of an already built item in their partial form
func PartialFactsOf(item Item) []facts.PartialFact {
	partials := make([]facts.PartialFact, 0, len(item.Facts))
	for _, f := range item.Facts {
		partials = append(partials, f.Partial())
	}
	return partials
}

// Partial returns the item as a PartialItem that MakeItem rebuilds into an equal item
func (i Item) Partial() PartialItem {
	return PartialItem{
		ItemID: i.ItemID,
		Facts:  PartialFactsOf(i),
	}
}

// FactsOf returns the facts of item with the given property, in order
func (i Item) FactsOf(property string) []facts.Fact {
	result := []facts.Fact{}
	for _, f := range i.Facts {
		if f.Property == property {
			result = append(result, f)
		}
	}
	return result
}
