package canonical

import (
	"fmt"
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the structured value types that can
// appear in an event payload or case record.
// Only Null, Bool, Number, String, Array, and Object implement it.
type Value interface {
	value() // sealed
}

// Null represents a JSON null.
type Null struct{}

func (Null) value() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) value() {}

// Number represents any numeric value as a float64, matching the producer's
// number semantics. Integral values render without a decimal point; see
// formatNumber for the exact rules.
type Number float64

func (Number) value() {}

// String represents a string value. Stored exactly as received - no
// normalization.
type String string

func (String) value() {}

// Array represents an ordered list. Order is semantically significant and
// is preserved through serialization.
type Array []Value

func (Array) value() {}

// Object represents a key-value mapping. Use SortedKeys for deterministic
// iteration.
type Object map[string]Value

func (Object) value() {}

// SortedKeys returns keys in canonical order (UTF-16 code units).
// Go's sort.Strings compares UTF-8 bytes, which produces a DIFFERENT order
// for keys outside the basic plane; do not substitute it.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareCodeUnits)
	return keys
}

// compareCodeUnits compares strings by UTF-16 code units, the ordering the
// producer's key sort uses. Surrogate pairs make this diverge from byte
// comparison for supplementary-plane characters.
func compareCodeUnits(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := len(a16)
	if len(b16) < n {
		n = len(b16)
	}
	for i := 0; i < n; i++ {
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

// FromGo converts a plain Go value (as produced by encoding/json or
// yaml.v3 decoding into any) to a Value.
//
// nil becomes Null. json.Number is handled by the decode path before it
// reaches here; numeric Go types all collapse to Number, matching the
// producer's single number representation.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Number(val), nil
	case int64:
		return Number(val), nil
	case uint64:
		return Number(val), nil
	case float64:
		return Number(val), nil
	case float32:
		return Number(val), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			cv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = cv
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			cv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = cv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type for canonical value: %T", v)
	}
}
