package facts

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
)

func TestListEqualityIsOrderSensitive(t *testing.T) {
	is := is.New(t)

	a := List(Literal(1), Literal(2))
	b := List(Literal(2), Literal(1))

	is.True(a.Equal(List(Literal(1.0), Literal(2.0))))
	is.True(!a.Equal(b))
}

func TestSetEqualityIgnoresOrder(t *testing.T) {
	is := is.New(t)

	a := Set(Literal("x"), Reference("urn:y"))
	b := Set(Reference("urn:y"), Literal("x"))

	is.True(a.Equal(b))
	is.True(!a.Equal(Set(Literal("x"))))
	is.True(!a.Equal(List(Literal("x"), Reference("urn:y"))))
}

func TestLiteralDeepEquality(t *testing.T) {
	is := is.New(t)

	a := Literal(map[string]any{"n": 1, "tags": []any{"a", "b"}})
	b := Literal(map[string]any{"n": 1.0, "tags": []any{"a", "b"}})

	is.True(a.Equal(b))
	is.True(!Literal("1").Equal(Literal(1)))
}

func TestLiteralEqualityKeepsLargeIntegersApart(t *testing.T) {
	is := is.New(t)

	is.True(!Literal(int64(9007199254740993)).Equal(Literal(int64(9007199254740992))))
	is.True(!Literal(uint64(1<<63 + 1)).Equal(Literal(uint64(1 << 63))))
	is.True(!Literal(int64(9007199254740993)).Equal(Literal(float64(9007199254740992))))
	is.True(Literal(json.Number("42")).Equal(Literal(42)))
	is.True(Literal(2.5).Equal(Literal(float32(2.5))))
}

func TestLiteralEqualityIgnoresGoElementTypes(t *testing.T) {
	is := is.New(t)

	is.True(Literal([]string{"a", "b"}).Equal(Literal([]any{"a", "b"})))
	is.True(Literal([]int{1, 2}).Equal(Literal([]any{1.0, 2.0})))
	is.True(!Literal([]string{"a"}).Equal(Literal([]any{"a", "b"})))
	is.True(Literal(map[string]string{"k": "v"}).Equal(Literal(map[string]any{"k": "v"})))
	is.True(!Literal(map[string]string{"k": "v"}).Equal(Literal(map[string]any{"x": "v"})))
	is.True(!Literal([]any{"a"}).Equal(Literal(map[string]any{"0": "a"})))
	is.True(Literal(nil).Equal(Literal(nil)))
}

func TestValueJSONRoundTrip(t *testing.T) {
	is := is.New(t)

	v := List(Literal("a"), Reference("urn:b"), Set(Literal(true)))

	b, err := json.Marshal(v)
	is.NoErr(err)
	is.Equal(string(b), `{"@list":[{"@value":"a"},{"@id":"urn:b"},{"@set":[{"@value":true}]}]}`)

	var decoded Value
	is.NoErr(json.Unmarshal(b, &decoded))
	is.True(decoded.Equal(v))
}

func TestUnmarshalRejectsAmbiguousValue(t *testing.T) {
	is := is.New(t)

	var v Value
	err := json.Unmarshal([]byte(`{"@value": 1, "@id": "x"}`), &v)
	is.True(err != nil)

	err = json.Unmarshal([]byte(`{"@language": "sv"}`), &v)
	is.True(err != nil)
}

func TestUnmarshalNullIsAbsent(t *testing.T) {
	is := is.New(t)

	p := PartialFact{}
	is.NoErr(json.Unmarshal([]byte(`{"property":"name","value":null}`), &p))
	is.True(p.Value.IsZero())
}
