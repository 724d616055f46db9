package layerstack

import (
	"fmt"
	"math"
)

// ValueKind enumerates the parameter value shapes layerforge understands.
// Host parameter dictionaries are loosely typed; anything that does not fit
// one of these shapes is rejected rather than guessed at.
type ValueKind int

const (
	KindInvalid ValueKind = iota
	KindInt
	KindFloat
	KindIntPair
	KindFloat2
	KindFloat4
	KindString
)

func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindIntPair:
		return "int2"
	case KindFloat2:
		return "float2"
	case KindFloat4:
		return "float4"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Value is a tagged parameter value. The zero value is invalid.
// Values are immutable; scaling operations return new values.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	ip   [2]int64
	f2   [2]float64
	f4   [4]float64
	s    string
}

func IntValue(v int64) Value                   { return Value{kind: KindInt, i: v} }
func FloatValue(v float64) Value               { return Value{kind: KindFloat, f: v} }
func IntPairValue(x, y int64) Value            { return Value{kind: KindIntPair, ip: [2]int64{x, y}} }
func Float2Value(x, y float64) Value           { return Value{kind: KindFloat2, f2: [2]float64{x, y}} }
func Float4Value(a, b, c, d float64) Value     { return Value{kind: KindFloat4, f4: [4]float64{a, b, c, d}} }
func StringValue(v string) Value               { return Value{kind: KindString, s: v} }

// Kind returns the value's shape tag.
func (v Value) Kind() ValueKind { return v.kind }

// Int returns the integer payload. ok is false for any other kind.
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Float returns the float payload. ok is false for any other kind.
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }

// IntPair returns the integer pair payload. ok is false for any other kind.
func (v Value) IntPair() ([2]int64, bool) { return v.ip, v.kind == KindIntPair }

// Float2 returns the float pair payload. ok is false for any other kind.
func (v Value) Float2() ([2]float64, bool) { return v.f2, v.kind == KindFloat2 }

// Float4 returns the float quad payload. ok is false for any other kind.
func (v Value) Float4() ([4]float64, bool) { return v.f4, v.kind == KindFloat4 }

// Str returns the string payload. ok is false for any other kind.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// IsNumericScalar reports whether the value is a plain int or float.
func (v Value) IsNumericScalar() bool { return v.kind == KindInt || v.kind == KindFloat }

// Equal reports exact equality of kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindIntPair:
		return v.ip == o.ip
	case KindFloat2:
		return v.f2 == o.f2
	case KindFloat4:
		return v.f4 == o.f4
	case KindString:
		return v.s == o.s
	default:
		return true
	}
}

// String renders the value for report messages.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindIntPair:
		return fmt.Sprintf("(%d, %d)", v.ip[0], v.ip[1])
	case KindFloat2:
		return fmt.Sprintf("(%g, %g)", v.f2[0], v.f2[1])
	case KindFloat4:
		return fmt.Sprintf("(%g, %g, %g, %g)", v.f4[0], v.f4[1], v.f4[2], v.f4[3])
	case KindString:
		return v.s
	default:
		return "<invalid>"
	}
}

// Numeric floors applied when scaling. Integers never drop below one
// (a zero tile count breaks the host generator); floats never drop below 0.1.
const (
	minScaledInt   = 1
	minScaledFloat = 0.1
)

// ScaleClamped multiplies a numeric scalar by factor under the per-kind clamp
// policy: ints round to nearest with floor 1, floats floor at 0.1. ok is
// false for non-scalar kinds, which are left to shape-specific handlers.
func (v Value) ScaleClamped(factor float64) (Value, bool) {
	switch v.kind {
	case KindInt:
		return IntValue(scaleIntClamped(v.i, factor)), true
	case KindFloat:
		return FloatValue(math.Max(minScaledFloat, v.f*factor)), true
	default:
		return v, false
	}
}

// ScalePairClamped multiplies both components of an integer pair by factor,
// rounding each independently with floor 1. ok is false for other kinds.
func (v Value) ScalePairClamped(factor float64) (Value, bool) {
	if v.kind != KindIntPair {
		return v, false
	}
	return IntPairValue(scaleIntClamped(v.ip[0], factor), scaleIntClamped(v.ip[1], factor)), true
}

func scaleIntClamped(v int64, factor float64) int64 {
	scaled := int64(math.Round(float64(v) * factor))
	if scaled < minScaledInt {
		return minScaledInt
	}
	return scaled
}

// FromAny converts a loosely typed document value (as produced by YAML or
// JSON decoding) into a Value. Sequences of two integers become int pairs,
// other numeric sequences of length two or four become float tuples.
// Unknown shapes return an error; they are never coerced.
func FromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case int:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case float64:
		return FloatValue(x), nil
	case float32:
		return FloatValue(float64(x)), nil
	case string:
		return StringValue(x), nil
	case bool:
		// Hosts encode toggles as 0/1 ints.
		if x {
			return IntValue(1), nil
		}
		return IntValue(0), nil
	case []any:
		return fromSlice(x)
	}
	return Value{}, fmt.Errorf("unsupported parameter value shape %T", raw)
}

func fromSlice(xs []any) (Value, error) {
	allInts := true
	floats := make([]float64, len(xs))
	ints := make([]int64, len(xs))
	for i, e := range xs {
		switch n := e.(type) {
		case int:
			ints[i], floats[i] = int64(n), float64(n)
		case int64:
			ints[i], floats[i] = n, float64(n)
		case float64:
			allInts = false
			floats[i] = n
		case float32:
			allInts = false
			floats[i] = float64(n)
		default:
			return Value{}, fmt.Errorf("unsupported tuple element shape %T", e)
		}
	}
	switch {
	case len(xs) == 2 && allInts:
		return IntPairValue(ints[0], ints[1]), nil
	case len(xs) == 2:
		return Float2Value(floats[0], floats[1]), nil
	case len(xs) == 4:
		return Float4Value(floats[0], floats[1], floats[2], floats[3]), nil
	}
	return Value{}, fmt.Errorf("unsupported tuple length %d", len(xs))
}

// ToAny converts a Value back to a document-friendly representation.
func (v Value) ToAny() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindIntPair:
		return []any{v.ip[0], v.ip[1]}
	case KindFloat2:
		return []any{v.f2[0], v.f2[1]}
	case KindFloat4:
		return []any{v.f4[0], v.f4[1], v.f4[2], v.f4[3]}
	case KindString:
		return v.s
	default:
		return nil
	}
}

// Params is a parameter dictionary keyed by the host's parameter names.
type Params map[string]Value

// Clone returns an independent copy of the dictionary.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
