package jsonld

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/diwise/item-drive/pkg/drive/errors"
	"github.com/diwise/item-drive/pkg/drive/facts"
	"github.com/diwise/item-drive/pkg/drive/items"
	"github.com/piprate/json-gold/ld"
)

const (
	KeywordID    string = "@id"
	KeywordType  string = "@type"
	KeywordValue string = "@value"
	KeywordList  string = "@list"
	KeywordSet   string = "@set"
)

// NodeObject is a flattened JSON-LD node keyed by absolute property identifiers
type NodeObject map[string]any

// FlattenDocument flattens a JSON-LD document into a list of node objects
func FlattenDocument(document any) ([]NodeObject, error) {
	proc := ld.NewJsonLdProcessor()
	options := ld.NewJsonLdOptions("")

	flattened, err := proc.Flatten(document, nil, options)
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("failed to flatten json-ld document: %s", err.Error()))
	}

	list, ok := flattened.([]any)
	if !ok {
		return nil, errors.NewValidationError("expected flattened json-ld to be an array")
	}

	nodes := make([]NodeObject, 0, len(list))
	for _, n := range list {
		node, ok := n.(map[string]any)
		if !ok {
			return nil, errors.NewValidationError("expected flattened json-ld to contain node objects")
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}

// ItemsFromDocument flattens document and converts every resulting node into a partial item
func ItemsFromDocument(document any) ([]items.PartialItem, error) {
	nodes, err := FlattenDocument(document)
	if err != nil {
		return nil, err
	}

	return ItemsFromNodes(nodes)
}

// ItemsFromReader decodes a JSON-LD document from r and converts it into partial items
func ItemsFromReader(r io.Reader) ([]items.PartialItem, error) {
	var document any

	if err := json.NewDecoder(r).Decode(&document); err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("failed to decode json-ld document: %s", err.Error()))
	}

	return ItemsFromDocument(document)
}

func ItemsFromNodes(nodes []NodeObject) ([]items.PartialItem, error) {
	result := make([]items.PartialItem, 0, len(nodes))

	for _, node := range nodes {
		item, err := ItemFromNode(node)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}

	return result, nil
}

// ItemFromNode converts a flat node object into a partial item with one fact per property value
func ItemFromNode(node NodeObject) (items.PartialItem, error) {
	itemID, ok := node[KeywordID].(string)
	if !ok {
		return items.PartialItem{}, errors.NewValidationError("node object must have a string @id")
	}

	item := items.PartialItem{ItemID: itemID, Facts: []facts.PartialFact{}}

	for _, property := range sortedProperties(node) {
		pfs, err := factsFromProperty(property, node[property])
		if err != nil {
			return items.PartialItem{}, err
		}
		item.Facts = append(item.Facts, pfs...)
	}

	return item, nil
}

func factsFromProperty(property string, value any) ([]facts.PartialFact, error) {
	if values, ok := value.([]any); ok {
		result := []facts.PartialFact{}
		for _, v := range values {
			pfs, err := factsFromProperty(property, v)
			if err != nil {
				return nil, err
			}
			result = append(result, pfs...)
		}
		return result, nil
	}

	if value == nil {
		return nil, errors.NewValidationError(fmt.Sprintf("unexpected value for property %s", property))
	}

	if typeID, ok := value.(string); ok && property == KeywordType {
		return []facts.PartialFact{{Property: property, Value: facts.Reference(typeID)}}, nil
	}

	v, err := ValueOf(value)
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", property, err)
	}

	return []facts.PartialFact{{Property: property, Value: v}}, nil
}

// ValueOf converts one JSON-LD value into a fact value
func ValueOf(value any) (facts.Value, error) {
	if value == nil {
		return facts.Value{}, errors.NewValidationError("unexpected value")
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return facts.Literal(value), nil
	}

	if id, ok := obj[KeywordID].(string); ok {
		return facts.Reference(id), nil
	}

	if literal, ok := obj[KeywordValue]; ok {
		return facts.Literal(literal), nil
	}

	if elements, ok := obj[KeywordList].([]any); ok {
		values, err := valuesOf(elements)
		if err != nil {
			return facts.Value{}, err
		}
		return facts.List(values...), nil
	}

	if elements, ok := obj[KeywordSet].([]any); ok {
		values, err := valuesOf(elements)
		if err != nil {
			return facts.Value{}, err
		}
		return facts.Set(values...), nil
	}

	return facts.Value{}, errors.NewValidationError("unexpected object value")
}

func valuesOf(elements []any) ([]facts.Value, error) {
	values := make([]facts.Value, 0, len(elements))
	for _, e := range elements {
		v, err := ValueOf(e)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
