package facts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
)

// Kind tells which of the four shapes a Value holds
type Kind int

const (
	KindNone Kind = iota
	KindLiteral
	KindReference
	KindList
	KindSet
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "@value"
	case KindReference:
		return "@id"
	case KindList:
		return "@list"
	case KindSet:
		return "@set"
	}
	return "none"
}

// Value is the typed payload of a fact. Exactly one of literal, reference,
// list or set is populated. The zero Value is absent and is rejected by MakeFact.
type Value struct {
	kind     Kind
	literal  any
	ref      string
	elements []Value
}

func Literal(v any) Value {
	return Value{kind: KindLiteral, literal: v}
}

func Reference(itemID string) Value {
	return Value{kind: KindReference, ref: itemID}
}

func List(elements ...Value) Value {
	return Value{kind: KindList, elements: append([]Value{}, elements...)}
}

func Set(elements ...Value) Value {
	return Value{kind: KindSet, elements: append([]Value{}, elements...)}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsZero() bool {
	return v.kind == KindNone
}

// Literal returns the wrapped scalar or structured payload of a literal value
func (v Value) Literal() (any, bool) {
	return v.literal, v.kind == KindLiteral
}

// Reference returns the identifier of the item a reference value points at
func (v Value) Reference() (string, bool) {
	return v.ref, v.kind == KindReference
}

// Elements returns a copy of the members of a list or a set
func (v Value) Elements() []Value {
	if v.kind != KindList && v.kind != KindSet {
		return nil
	}
	return append([]Value{}, v.elements...)
}

// Equal compares values structurally. Lists are order sensitive, sets are not.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindNone:
		return true
	case KindLiteral:
		return LiteralEqual(v.literal, other.literal)
	case KindReference:
		return v.ref == other.ref
	case KindList:
		if len(v.elements) != len(other.elements) {
			return false
		}
		for i := range v.elements {
			if !v.elements[i].Equal(other.elements[i]) {
				return false
			}
		}
		return true
	case KindSet:
		return containsAll(v.elements, other.elements) && containsAll(other.elements, v.elements)
	}

	return false
}

func containsAll(haystack, needles []Value) bool {
	for _, n := range needles {
		found := false
		for _, h := range haystack {
			if h.Equal(n) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// LiteralEqual deep-compares two literal payloads. Numbers compare by exact value, so an
// int stored by Go code equals the float64 decoded from JSON. Slices and maps compare
// element by element whatever their Go element type.
func LiteralEqual(a, b any) bool {
	if x, ok := exactNumber(a); ok {
		y, ok := exactNumber(b)
		return ok && x.Cmp(y) == 0
	}

	if _, ok := exactNumber(b); ok {
		return false
	}

	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)

	switch {
	case isSequence(va) && isSequence(vb):
		if va.Len() != vb.Len() {
			return false
		}
		for i := 0; i < va.Len(); i++ {
			if !LiteralEqual(va.Index(i).Interface(), vb.Index(i).Interface()) {
				return false
			}
		}
		return true
	case va.Kind() == reflect.Map && vb.Kind() == reflect.Map:
		return mapsEqual(va, vb)
	}

	return reflect.DeepEqual(a, b)
}

func isSequence(v reflect.Value) bool {
	return v.Kind() == reflect.Slice || v.Kind() == reflect.Array
}

func mapsEqual(a, b reflect.Value) bool {
	if a.Len() != b.Len() {
		return false
	}

	keyType := b.Type().Key()

	iter := a.MapRange()
	for iter.Next() {
		key := iter.Key()

		if key.Type() != keyType {
			if key.Kind() != reflect.String || keyType.Kind() != reflect.String {
				return false
			}
			key = reflect.ValueOf(key.String()).Convert(keyType)
		}

		other := b.MapIndex(key)
		if !other.IsValid() || !LiteralEqual(iter.Value().Interface(), other.Interface()) {
			return false
		}
	}

	return true
}

// exactNumber returns v as an exact rational. Non-finite floats are not numbers here.
func exactNumber(v any) (*big.Rat, bool) {
	r := new(big.Rat)

	switch n := v.(type) {
	case int:
		return r.SetInt64(int64(n)), true
	case int8:
		return r.SetInt64(int64(n)), true
	case int16:
		return r.SetInt64(int64(n)), true
	case int32:
		return r.SetInt64(int64(n)), true
	case int64:
		return r.SetInt64(n), true
	case uint:
		return r.SetUint64(uint64(n)), true
	case uint8:
		return r.SetUint64(uint64(n)), true
	case uint16:
		return r.SetUint64(uint64(n)), true
	case uint32:
		return r.SetUint64(uint64(n)), true
	case uint64:
		return r.SetUint64(n), true
	case float32:
		return floatRat(r, float64(n))
	case float64:
		return floatRat(r, n)
	case json.Number:
		_, ok := r.SetString(n.String())
		return r, ok
	}

	return nil, false
}

func floatRat(r *big.Rat, f float64) (*big.Rat, bool) {
	if r.SetFloat64(f) == nil {
		return nil, false
	}
	return r, true
}

// AsNumber reports whether v is numeric and returns it as a float64
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindLiteral:
		return json.Marshal(map[string]any{"@value": v.literal})
	case KindReference:
		return json.Marshal(map[string]string{"@id": v.ref})
	case KindList, KindSet:
		return json.Marshal(map[string][]Value{v.kind.String(): v.elements})
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Value{}
		return nil
	}

	var contents map[string]json.RawMessage
	if err := json.Unmarshal(data, &contents); err != nil {
		return fmt.Errorf("failed to unmarshal fact value: %w", err)
	}

	if len(contents) != 1 {
		return fmt.Errorf("a fact value must have exactly one of @value, @id, @list or @set")
	}

	for key, raw := range contents {
		switch key {
		case "@value":
			var literal any
			if err := json.Unmarshal(raw, &literal); err != nil {
				return err
			}
			*v = Literal(literal)
		case "@id":
			var id string
			if err := json.Unmarshal(raw, &id); err != nil {
				return fmt.Errorf("@id must be a string: %w", err)
			}
			*v = Reference(id)
		case "@list", "@set":
			elements := []Value{}
			if err := json.Unmarshal(raw, &elements); err != nil {
				return err
			}
			if key == "@list" {
				*v = List(elements...)
			} else {
				*v = Set(elements...)
			}
		default:
			return fmt.Errorf("unsupported fact value key %q", key)
		}
	}

	return nil
}
