package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"

	"github.com/shopspring/decimal"
)

// Value is a sealed interface over the JSON data model.
// Only Null, String, Number, Bool, Array, and Object implement it.
type Value interface {
	jsonValue() // Sealed - only these types implement it
}

// Null represents a JSON null.
// Using an explicit type keeps a present-but-null key distinct from an
// absent key.
type Null struct{}

func (Null) jsonValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String represents a JSON string.
type String string

func (String) jsonValue() {}

// Number represents a JSON number.
// Numbers are held as exact decimals so that 1 and 1.0 compare equal and
// ordering never suffers float rounding.
type Number struct {
	d decimal.Decimal
}

func (Number) jsonValue() {}

// NewInt creates a Number from an integer.
func NewInt(n int64) Number {
	return Number{d: decimal.NewFromInt(n)}
}

// NewFloat creates a Number from a float64.
func NewFloat(f float64) Number {
	return Number{d: decimal.NewFromFloat(f)}
}

// NewNumber wraps an existing decimal.
func NewNumber(d decimal.Decimal) Number {
	return Number{d: d}
}

// MaxExponent bounds the decimal exponent of a parsed Number. Comparing or
// printing a decimal rescales it, which costs time linear in the exponent.
const MaxExponent = 1000

// ParseNumber parses a JSON number literal.
func ParseNumber(s string) (Number, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Number{}, fmt.Errorf("invalid number %q: %w", s, err)
	}
	if err := checkExponent(d); err != nil {
		return Number{}, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return Number{d: d}, nil
}

// CheckBounds reports the first number in v whose exponent exceeds
// MaxExponent. Values built with NewNumber skip the check ParseNumber does.
func CheckBounds(v Value) error {
	switch val := v.(type) {
	case Number:
		return checkExponent(val.d)
	case Array:
		for i, elem := range val {
			if err := CheckBounds(elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
	case Object:
		for k, elem := range val {
			if err := CheckBounds(elem); err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
		}
	}
	return nil
}

func checkExponent(d decimal.Decimal) error {
	if exp := d.Exponent(); exp > MaxExponent || exp < -MaxExponent {
		return fmt.Errorf("exponent %d out of range [-%d, %d]", exp, MaxExponent, MaxExponent)
	}
	return nil
}

// Decimal returns the underlying decimal.
func (n Number) Decimal() decimal.Decimal {
	return n.d
}

// Cmp compares two numbers: -1 if n < o, 0 if equal, +1 if n > o.
func (n Number) Cmp(o Number) int {
	return n.d.Cmp(o.d)
}

// String returns the shortest decimal text of the number.
func (n Number) String() string {
	return n.d.String()
}

// MarshalJSON implements json.Marshaler for Number (unquoted).
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.d.String()), nil
}

// Bool represents a JSON boolean.
type Bool bool

func (Bool) jsonValue() {}

// Array represents a JSON array.
type Array []Value

func (Array) jsonValue() {}

// Object represents a JSON object.
// Use SortedKeys() for deterministic iteration.
type Object map[string]Value

func (Object) jsonValue() {}

// Kind names the variant held by v. Used in error messages.
func Kind(v Value) string {
	switch v.(type) {
	case Null:
		return "null"
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Array:
		return "array"
	case Object:
		return "object"
	case nil:
		return "absent"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units.
// Go's native string order is UTF-8 bytes, which differs above the BMP.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// UnmarshalJSON implements json.Unmarshaler for Object.
func (obj *Object) UnmarshalJSON(data []byte) error {
	v, err := Unmarshal(data)
	if err != nil {
		return err
	}
	o, ok := v.(Object)
	if !ok {
		return fmt.Errorf("expected JSON object, got %s", Kind(v))
	}
	*obj = o
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Array.
func (arr *Array) UnmarshalJSON(data []byte) error {
	v, err := Unmarshal(data)
	if err != nil {
		return err
	}
	a, ok := v.(Array)
	if !ok {
		return fmt.Errorf("expected JSON array, got %s", Kind(v))
	}
	*arr = a
	return nil
}

// MarshalJSON implements json.Marshaler for Object with sorted keys.
// NOTE: This is not canonical marshaling; use MarshalCanonical for
// byte-stable output.
func (obj Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := Marshal(obj[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for Array.
func (arr Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := Marshal(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Marshal encodes a Value as JSON.
func Marshal(v Value) ([]byte, error) {
	switch val := v.(type) {
	case Null, nil:
		return []byte("null"), nil
	case String:
		return json.Marshal(string(val))
	case Number:
		return val.MarshalJSON()
	case Bool:
		return json.Marshal(bool(val))
	case Array:
		return val.MarshalJSON()
	case Object:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown value type: %T", v)
	}
}

// Unmarshal decodes one JSON document into a Value.
// Numbers are decoded exactly (no float64 round trip).
func Unmarshal(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}

	return FromGo(raw)
}

// UnmarshalObject decodes a JSON document that must be an object.
func UnmarshalObject(data []byte) (Object, error) {
	var obj Object
	if err := obj.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return obj, nil
}
